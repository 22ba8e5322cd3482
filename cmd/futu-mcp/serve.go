package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0x6d61/futu-mcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP (stdio, or streamable HTTP with --http)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			mcpServer := server.NewMCPServer(a.dispatcher, version, a.log)
			if a.cfg.HTTP.Addr == "" {
				a.log.Info("serving MCP over stdio", zap.Int("tools", a.registry.Len()))
				return server.ServeStdio(ctx, mcpServer)
			}

			hcfg := server.DefaultConfig()
			hcfg.Addr = a.cfg.HTTP.Addr
			hcfg.ShutdownTimeout = a.cfg.HTTP.ShutdownTimeout
			router := server.NewRouter(a.dispatcher, mcpServer, a.log)
			return server.NewServer(router, hcfg, a.log).Run(ctx)
		},
	}
	cmd.Flags().String("http", "", "listen address for streamable HTTP MCP and REST (e.g. 127.0.0.1:8080)")
	return cmd
}
