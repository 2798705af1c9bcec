package util

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// LegacyToolHandlerFunc is the argument-map handler shape used by the tool
// packages; AdaptLegacyHandler lifts it to the server's handler type.
type LegacyToolHandlerFunc func(arguments map[string]interface{}) (*mcp.CallToolResult, error)

// AdaptLegacyHandler adapts a legacy handler to the current server handler
// signature.
func AdaptLegacyHandler(handler LegacyToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(request.Params.Arguments)
	}
}

// ErrorGuard converts a panic inside a tool handler into a tool error
// result so one bad request cannot take the server down.
func ErrorGuard(handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"tool":  request.Params.Name,
					"panic": r,
				}).Error(string(debug.Stack()))
				result = mcp.NewToolResultError(fmt.Sprintf("internal error: %v", r))
				err = nil
			}
		}()
		return handler(ctx, request)
	}
}
