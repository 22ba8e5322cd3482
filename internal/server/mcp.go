// Package server はツールカタログを MCP（stdio / streamable HTTP）と REST で公開する。
package server

import (
	"context"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/0x6d61/futu-mcp/internal/tools"
)

// ServerName は MCP の initialize で名乗る実装名。
const ServerName = "futu-mcp"

// NewMCPServer は登録順に全ツールを載せた MCP サーバーを返す。
func NewMCPServer(d *tools.Dispatcher, version string, log *zap.Logger) *mcp.Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	specs := d.Registry().List()
	order := make(map[string]int, len(specs))
	for i, spec := range specs {
		order[spec.Name] = i
	}
	s.AddReceivingMiddleware(catalogOrder(order))
	for _, spec := range specs {
		s.AddTool(&mcp.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema(),
		}, toolHandler(d, spec.Name, log))
	}
	return s
}

// catalogOrder は tools/list の結果を登録順に並べ替える。SDK は名前順で返す。
func catalogOrder(order map[string]int) mcp.Middleware {
	rank := func(name string) int {
		if i, ok := order[name]; ok {
			return i
		}
		return len(order)
	}
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			res, err := next(ctx, method, req)
			if err != nil || method != "tools/list" {
				return res, err
			}
			if list, ok := res.(*mcp.ListToolsResult); ok {
				slices.SortStableFunc(list.Tools, func(a, b *mcp.Tool) int {
					return rank(a.Name) - rank(b.Name)
				})
			}
			return res, nil
		}
	}
}

func toolHandler(d *tools.Dispatcher, name string, log *zap.Logger) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args []byte
		if req.Params != nil {
			args = req.Params.Arguments
		}
		env, err := d.InvokeJSON(ctx, name, args)
		if err != nil {
			// 登録済みの名前でしかハンドラは呼ばれないので、ここに来るのは不整合のみ
			log.Error("mcp: dispatch failed", zap.String("tool", name), zap.Error(err))
			return nil, err
		}
		return toCallToolResult(env), nil
	}
}

func toCallToolResult(env *tools.Envelope) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(env.Content))
	for _, c := range env.Content {
		content = append(content, &mcp.TextContent{Text: c.Text})
	}
	return &mcp.CallToolResult{Content: content, IsError: env.IsError}
}

// ServeStdio は stdin/stdout 上で MCP セッションを 1 つ処理する。ctx のキャンセルで終了する。
func ServeStdio(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
