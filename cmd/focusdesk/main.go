package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"focusdesk/internal/api"
	"focusdesk/internal/bootstrap"
	"focusdesk/internal/config"
	"focusdesk/internal/repl"
	"focusdesk/internal/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	baseDir    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "focusdesk",
		Short:         "Focus timer with to-dos, ambient noise and quotes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (JSON/JSONC or YAML)")
	root.PersistentFlags().StringVar(&opts.baseDir, "data-dir", "", "data directory override (database, logs)")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newREPLCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTodoCmd(opts))
	root.AddCommand(newImageCmd(opts))
	root.AddCommand(newInitCmd())
	root.AddCommand(newConfigCmd(opts))
	return root
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.baseDir != "" {
		dir, err := filepath.Abs(opts.baseDir)
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.Storage.BaseDir = dir
	}
	return cfg, nil
}

// loadApp 构建应用；调用方负责 Close
// loadApp builds the app; caller must Close it
func loadApp(ctx context.Context, opts *rootOptions) (*bootstrap.BuildResult, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg, bootstrap.Options{})
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	app, err := loadApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return tui.Run(ctx, app.TUIDeps())
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the full-screen terminal UI (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
}

func newREPLCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Run the line-oriented command shell",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			in, inputErr := repl.NewLineInput(filepath.Join(app.Config.Storage.BaseDir, "repl.history"))
			if inputErr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "line editor unavailable, fallback to basic input: %v\n", inputErr)
			}
			defer in.Close()

			loop := repl.NewLoop(app, in)
			loop.Version = version
			return loop.Run(cmd.Context())
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Close()
			if app.StartupErr != nil {
				return app.StartupErr
			}
			if addr == "" {
				addr = app.Config.Serve.Addr
			}

			go func() { _ = app.Timer.Run(ctx, time.After) }()

			srv := api.NewServer(addr, api.NewRouter(app.APIDeps()), app.Logger)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "focusdesk API on http://%s\n", addr)
			return srv.ListenAndServe(ctx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return serve
}

func newInitCmd() *cobra.Command {
	var locale string
	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a project config scaffold",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return err
			}
			if locale != "" {
				if err := config.WriteUILocale(dir, locale); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&locale, "locale", "", "UI locale to record (en, zh-CN)")
	return initCmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Quotes.Remote.APIKey != "" {
				cfg.Quotes.Remote.APIKey = "***"
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}
