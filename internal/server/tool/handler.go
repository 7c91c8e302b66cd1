// Package tool provides tool handling functionality for the MCP server.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/auth/guard"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/requester"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// UnauthorizedMessage is the tool error returned when nobody is signed in
const UnauthorizedMessage = "Unauthorized: run realtor login"

// Executor runs one tool call and returns a JSON-encodable result
type Executor func(ctx context.Context, args map[string]any) (any, error)

// Handler manages tool execution and authentication.
type Handler struct {
	checker guard.Checker // nil skips the session check
}

// NewHandler creates a new tool handler.
func NewHandler(checker guard.Checker) *Handler {
	return &Handler{checker: checker}
}

// CreateHandler creates a handler function for a specific tool.
// Missing sessions, bad arguments and API errors become tool errors; only
// transport failures are returned as protocol errors.
func (h *Handler) CreateHandler(tool *mcp.Tool, executor Executor) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if h.checker != nil {
			if err := guard.RequireCLI(ctx, h.checker); err != nil {
				logger.Warn("Tool called without a session", zap.String("tool", tool.Name))
				return mcp.NewToolResultError(UnauthorizedMessage), nil
			}
		}

		result, err := executor(ctx, request.GetArguments())
		if err != nil {
			return errorResult(tool.Name, err)
		}

		body, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode result for tool %s: %w", tool.Name, err)
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func errorResult(toolName string, err error) (*mcp.CallToolResult, error) {
	var apiErr *requester.APIError
	var argErr *ArgumentError
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, guard.ErrLoginRequired):
		return mcp.NewToolResultError(UnauthorizedMessage), nil
	case errors.As(err, &apiErr):
		logger.Error("HTTP Error",
			zap.String("tool", toolName),
			zap.Int("status", apiErr.StatusCode),
			zap.String("error", apiErr.Message),
		)
		return mcp.NewToolResultError(fmt.Sprintf("HTTP Error %d: %s", apiErr.StatusCode, apiErr.Message)), nil
	case errors.As(err, &argErr):
		return mcp.NewToolResultError(argErr.Error()), nil
	default:
		return nil, fmt.Errorf("failed to execute request for tool %s: %w", toolName, err)
	}
}
