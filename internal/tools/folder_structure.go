// Package tools implements the file-system inspection tools served by fsmcp.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/temirov/fsmcp/internal/commands"
	"github.com/temirov/fsmcp/internal/output"
	"github.com/temirov/fsmcp/internal/tokenizer"
	"github.com/temirov/fsmcp/internal/types"
)

const (
	// ArgumentFullPath names the directory to render.
	ArgumentFullPath = "fullPath"
	// ArgumentRecursive selects full recursion or a single level.
	ArgumentRecursive = "recursive"
	// ArgumentFormat selects the rendering.
	ArgumentFormat = "format"
	// ArgumentTokens requests a token estimate of the rendering.
	ArgumentTokens = "tokens"

	folderStructureDescription = "Return the folder structure of a directory as a YAML-style tree. " +
		"Entries excluded by .gitignore files, built-in build and cache directories, and hidden names are omitted."

	tokenSummaryFormat   = "tokens: %d (%s)"
	errorAuthorizeFormat = "authorizing %s: %w"
	errorRenderFormat    = "rendering %s: %w"
	errorTokensFormat    = "counting tokens: %w"

	logRenderedTree = "rendered folder structure"
)

// ErrInvalidArguments reports a tool call whose arguments cannot be used.
var ErrInvalidArguments = errors.New("invalid arguments")

// PathAuthorizer vets paths before they are read.
type PathAuthorizer interface {
	Authorize(targetPath string) error
}

// FolderStructureRequest carries decoded tool arguments.
type FolderStructureRequest struct {
	FullPath  string `json:"fullPath"`
	Recursive *bool  `json:"recursive,omitempty"`
	Format    string `json:"format,omitempty"`
	Tokens    bool   `json:"tokens,omitempty"`
}

// FolderStructureResult is the outcome of one tool call.
type FolderStructureResult struct {
	Output string `json:"output"`
	Format string `json:"format"`
	Tokens int    `json:"tokens,omitempty"`
	Model  string `json:"model,omitempty"`
}

// FolderStructureConfig holds the collaborators of a FolderStructureTool.
type FolderStructureConfig struct {
	// Authorizer is consulted before every rendering; nil admits every path.
	Authorizer    PathAuthorizer
	ExtraPatterns []string
	TokenModel    string
	Logger        *zap.Logger
}

// FolderStructureTool renders directory trees for tool calls.
type FolderStructureTool struct {
	config       FolderStructureConfig
	logger       *zap.Logger
	counterOnce  sync.Once
	counter      tokenizer.Counter
	counterModel string
	counterError error
}

// NewFolderStructureTool constructs the get_folder_structure tool.
func NewFolderStructureTool(config FolderStructureConfig) *FolderStructureTool {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FolderStructureTool{config: config, logger: logger}
}

// Name returns the tool name used by every transport.
func (tool *FolderStructureTool) Name() string {
	return types.ToolFolderStructure
}

// Description returns the human readable tool summary.
func (tool *FolderStructureTool) Description() string {
	return folderStructureDescription
}

// Definition returns the MCP schema of the tool.
func (tool *FolderStructureTool) Definition() mcp.Tool {
	return mcp.NewTool(types.ToolFolderStructure,
		mcp.WithDescription(folderStructureDescription),
		mcp.WithString(ArgumentFullPath,
			mcp.Required(),
			mcp.Description("Absolute path of the directory to inspect"),
		),
		mcp.WithBoolean(ArgumentRecursive,
			mcp.DefaultBool(true),
			mcp.Description("Descend into subdirectories; when false only the first level is listed"),
		),
		mcp.WithString(ArgumentFormat,
			mcp.DefaultString(types.FormatYAML),
			mcp.Enum(types.FormatYAML, types.FormatTree, types.FormatJSON),
			mcp.Description("Rendering of the tree"),
		),
		mcp.WithBoolean(ArgumentTokens,
			mcp.DefaultBool(false),
			mcp.Description("Append an estimate of the rendering's token count"),
		),
	)
}

// Handle adapts Execute to the MCP tool handler signature.
// Failures are reported as tool errors so the client can read them.
func (tool *FolderStructureTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recursive := request.GetBool(ArgumentRecursive, true)
	folderRequest := FolderStructureRequest{
		FullPath:  request.GetString(ArgumentFullPath, ""),
		Recursive: &recursive,
		Format:    request.GetString(ArgumentFormat, types.FormatYAML),
		Tokens:    request.GetBool(ArgumentTokens, false),
	}
	result, executeError := tool.Execute(ctx, folderRequest)
	if executeError != nil {
		return mcp.NewToolResultError(executeError.Error()), nil
	}
	contents := []mcp.Content{mcp.NewTextContent(result.Output)}
	if folderRequest.Tokens {
		contents = append(contents, mcp.NewTextContent(fmt.Sprintf(tokenSummaryFormat, result.Tokens, result.Model)))
	}
	return &mcp.CallToolResult{Content: contents}, nil
}

// Execute validates, authorizes and renders one request.
func (tool *FolderStructureTool) Execute(ctx context.Context, request FolderStructureRequest) (FolderStructureResult, error) {
	fullPath := strings.TrimSpace(request.FullPath)
	if fullPath == "" {
		return FolderStructureResult{}, fmt.Errorf("%w: %s is required", ErrInvalidArguments, ArgumentFullPath)
	}
	format := strings.ToLower(strings.TrimSpace(request.Format))
	if format == "" {
		format = types.FormatYAML
	}
	if !types.IsSupportedFormat(format) {
		return FolderStructureResult{}, fmt.Errorf("%w: %w: %q", ErrInvalidArguments, output.ErrUnsupportedFormat, request.Format)
	}
	recursive := true
	if request.Recursive != nil {
		recursive = *request.Recursive
	}

	if tool.config.Authorizer != nil {
		if authorizeError := tool.config.Authorizer.Authorize(fullPath); authorizeError != nil {
			return FolderStructureResult{}, fmt.Errorf(errorAuthorizeFormat, fullPath, authorizeError)
		}
	}

	renderer := &commands.TreeRenderer{
		ExtraPatterns: tool.config.ExtraPatterns,
		Format:        format,
		Palette:       output.PlainPalette(),
		Logger:        tool.logger,
	}
	rendered, renderError := renderer.RenderTree(ctx, fullPath, recursive)
	if renderError != nil {
		return FolderStructureResult{}, fmt.Errorf(errorRenderFormat, fullPath, renderError)
	}
	result := FolderStructureResult{Output: rendered, Format: format}

	if request.Tokens {
		counter, model, counterError := tool.tokenCounter()
		if counterError != nil {
			return FolderStructureResult{}, fmt.Errorf(errorTokensFormat, counterError)
		}
		tokens, countError := counter.CountString(rendered)
		if countError != nil {
			return FolderStructureResult{}, fmt.Errorf(errorTokensFormat, countError)
		}
		result.Tokens = tokens
		result.Model = model
	}

	tool.logger.Debug(logRenderedTree,
		zap.String("path", fullPath),
		zap.Bool("recursive", recursive),
		zap.String("format", format),
		zap.Int("bytes", len(rendered)),
	)
	return result, nil
}

func (tool *FolderStructureTool) tokenCounter() (tokenizer.Counter, string, error) {
	tool.counterOnce.Do(func() {
		tool.counter, tool.counterModel, tool.counterError = tokenizer.NewCounter(tokenizer.Config{Model: tool.config.TokenModel})
	})
	return tool.counter, tool.counterModel, tool.counterError
}
