package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/temirov/fsmcp/internal/commands"
	"github.com/temirov/fsmcp/internal/security"
	"github.com/temirov/fsmcp/internal/services/mcp"
	"github.com/temirov/fsmcp/internal/tools"
)

const errorDecodeArgumentsFormat = "decode %s arguments: %w"

// httpServerConfig exposes folderTool as the only capability of the HTTP tool server.
func httpServerConfig(address string, folderTool *tools.FolderStructureTool, logger *zap.Logger) mcp.Config {
	return mcp.Config{
		Address: address,
		Capabilities: []mcp.Capability{
			{Name: folderTool.Name(), Description: folderTool.Description()},
		},
		Executors: map[string]mcp.ToolExecutor{
			folderTool.Name(): folderStructureExecutor(folderTool),
		},
		Logger: logger,
	}
}

func folderStructureExecutor(folderTool *tools.FolderStructureTool) mcp.ToolExecutor {
	return mcp.ToolExecutorFunc(func(ctx context.Context, request mcp.ToolRequest) (mcp.ToolResponse, error) {
		return executeFolderStructure(ctx, folderTool, request)
	})
}

func executeFolderStructure(ctx context.Context, folderTool *tools.FolderStructureTool, request mcp.ToolRequest) (mcp.ToolResponse, error) {
	var folderRequest tools.FolderStructureRequest
	decoder := json.NewDecoder(bytes.NewReader(request.Payload))
	decoder.DisallowUnknownFields()
	if decodeErr := decoder.Decode(&folderRequest); decodeErr != nil {
		return mcp.ToolResponse{}, mcp.NewToolExecutionError(http.StatusBadRequest, fmt.Errorf(errorDecodeArgumentsFormat, folderTool.Name(), decodeErr))
	}
	result, executeErr := folderTool.Execute(ctx, folderRequest)
	if executeErr != nil {
		return mcp.ToolResponse{}, mcp.NewToolExecutionError(statusCodeForToolError(executeErr), executeErr)
	}
	return mcp.ToolResponse{
		Output: result.Output,
		Format: result.Format,
		Tokens: result.Tokens,
		Model:  result.Model,
	}, nil
}

// statusCodeForToolError maps tool failures onto HTTP status codes.
func statusCodeForToolError(err error) int {
	switch {
	case errors.Is(err, tools.ErrInvalidArguments):
		return http.StatusBadRequest
	case errors.Is(err, security.ErrPathNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, commands.ErrDirectoryNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
