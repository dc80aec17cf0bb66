// Package tools registers discovered tools on an MCP server and routes
// their calls through the dispatcher.
package tools

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/barnabasJ/ash-ai/internal/bridge"
	"github.com/barnabasJ/ash-ai/internal/dispatch"
	"github.com/barnabasJ/ash-ai/internal/schema"
	"github.com/barnabasJ/ash-ai/internal/types"
)

const methodCallTool = "tools/call"

// ServerOptions returns the options a server passed to Register should be
// created with. The tools capability is advertised even when the tool set
// is empty or failed to load.
func ServerOptions() *mcp.ServerOptions {
	return &mcp.ServerOptions{HasTools: true}
}

// Register lists the dispatcher's tool set on server and routes every
// tools/call request through the dispatcher, with the execution context read
// from the session's assigns. A tool set that fails to load is listed as
// empty; calls then report the load failure. It returns the number of tools
// listed.
func Register(server *mcp.Server, d *dispatch.Dispatcher, assigns bridge.Assigns) int {
	ec := bridge.FromSession(assigns)
	server.AddReceivingMiddleware(callMiddleware(d, ec))

	discovered, err := d.Tools()
	if err != nil {
		log.Printf("Warning: failed to load tools, listing none: %v", err)
		return 0
	}

	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Handle(ctx, req.Params.Name, req.Params.Arguments, ec)
	}
	for _, tool := range discovered {
		var inputSchema any = tool.InputSchema
		if doc, err := schema.Document(tool.InputSchema); err != nil {
			log.Printf("Warning: sending compiled schema for %s as is: %v", tool.Name, err)
		} else {
			inputSchema = doc
		}
		server.AddTool(&mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchema,
		}, handler)
	}
	log.Printf("Registered %d tools", len(discovered))
	return len(discovered)
}

// callMiddleware answers tools/call before the server looks the tool up, so
// name resolution and its errors are the dispatcher's.
func callMiddleware(d *dispatch.Dispatcher, ec types.ExecutionContext) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			call, ok := req.(*mcp.CallToolRequest)
			if method != methodCallTool || !ok || call.Params == nil {
				return next(ctx, method, req)
			}
			res, err := d.Handle(ctx, call.Params.Name, call.Params.Arguments, ec)
			if err != nil {
				return nil, err
			}
			return res, nil
		}
	}
}
