package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0x6d61/futu-mcp/internal/bridge"
	"github.com/0x6d61/futu-mcp/internal/config"
	"github.com/0x6d61/futu-mcp/internal/logging"
	"github.com/0x6d61/futu-mcp/internal/tools"
)

// quietAnnotation を持つコマンドではログを出さない（console が画面を占有するため）。
const quietAnnotation = "futu-mcp/quiet"

// app はサブコマンドが共有する依存。PersistentPreRunE で組み立てる。
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	registry   *tools.Registry
	dispatcher *tools.Dispatcher

	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "futu-mcp",
		Short:         "⚡ futu-mcp: market data tools over MCP",
		Long:          "futu-mcp exposes futu market-data scripts as MCP tools (stdio or streamable HTTP).",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./"+config.DefaultConfigFile+" if present)")
	pf.StringVar(&a.envFile, "env-file", config.DefaultEnvFile, ".env file loaded into the environment")
	pf.String("scripts-dir", config.DefaultScriptsDir, "directory holding the tool scripts")
	pf.String("interpreter", config.DefaultInterpreter, "executable used to run each script")
	pf.String("timeout", config.DefaultTimeout.String(), "per-call time budget")
	pf.Int64("max-output-bytes", config.DefaultMaxOutputBytes, "combined stdout+stderr budget per call")
	pf.String("tools-dir", "", "directory of extra or overriding tool YAML files")
	pf.Bool("debug", false, "diagnostic logging")

	root.AddCommand(
		newServeCmd(a),
		newToolsCmd(a),
		newCallCmd(a),
		newBatchCmd(a),
		newConsoleCmd(a),
	)
	return root
}

// setup は設定を読み、Runner・Registry・Dispatcher を組み立てる。
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cmd.Annotations[quietAnnotation] == "true" {
		a.log = zap.NewNop()
	} else {
		log, err := logging.New(cfg.Debug)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		a.log = log
	}

	runner := bridge.NewRunner(bridge.Config{
		Timeout:        cfg.Timeout,
		MaxOutputBytes: cfg.MaxOutputBytes,
		Debug:          cfg.Debug,
	}, bridge.WithLogger(a.log))

	a.registry = tools.NewRegistry()
	bind := tools.ScriptBinder(cfg.Interpreter, cfg.ScriptsDir)
	if _, err := a.registry.LoadBuiltin(bind); err != nil {
		return fmt.Errorf("builtin catalog: %w", err)
	}
	if cfg.ToolsDir != "" {
		n, err := a.registry.LoadDir(cfg.ToolsDir, bind)
		if err != nil {
			return err
		}
		a.log.Debug("loaded tool definitions", zap.String("dir", cfg.ToolsDir), zap.Int("count", n))
	}

	a.dispatcher = tools.NewDispatcher(a.registry, runner,
		tools.WithDispatchLogger(a.log),
		tools.WithLogStore(tools.NewLogStore(cfg.LogCapacity)),
	)
	a.log.Debug("configuration loaded",
		zap.String("config_file", cfg.ConfigFile),
		zap.String("scripts_dir", cfg.ScriptsDir),
		zap.String("interpreter", cfg.Interpreter),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("tools", a.registry.Len()),
	)
	return nil
}
