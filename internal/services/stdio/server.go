// Package stdio serves tools over the Model Context Protocol on standard input and output.
package stdio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	defaultServerName = "fsmcp"
	logServing        = "serving MCP over stdio"
	logRegisteredTool = "registered tool"
)

// Tool is a single MCP tool with its schema and handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Config defines runtime options for the stdio server.
type Config struct {
	Name    string
	Version string
	Tools   []Tool
	Logger  *zap.Logger
}

// Server exposes registered tools through an mcp-go server.
type Server struct {
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewServer creates the MCP server and registers every configured tool.
func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := config.Name
	if name == "" {
		name = defaultServerName
	}
	mcpServer := server.NewMCPServer(
		name,
		config.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, tool := range config.Tools {
		definition := tool.Definition()
		mcpServer.AddTool(definition, tool.Handle)
		logger.Debug(logRegisteredTool, zap.String("tool", definition.Name))
	}
	return &Server{mcpServer: mcpServer, logger: logger}
}

// HandleMessage processes one JSON-RPC message without a transport.
func (stdioServer *Server) HandleMessage(ctx context.Context, message []byte) mcp.JSONRPCMessage {
	return stdioServer.mcpServer.HandleMessage(ctx, message)
}

// Serve reads requests from input and writes responses to output until ctx is canceled
// or input is exhausted.
func (stdioServer *Server) Serve(ctx context.Context, input io.Reader, output io.Writer) error {
	transport := server.NewStdioServer(stdioServer.mcpServer)
	transport.SetErrorLogger(zap.NewStdLog(stdioServer.logger))
	stdioServer.logger.Debug(logServing)
	listenError := transport.Listen(ctx, input, output)
	if listenError == nil || errors.Is(listenError, context.Canceled) || errors.Is(listenError, io.EOF) {
		return nil
	}
	return fmt.Errorf("serve stdio: %w", listenError)
}
