package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fundamentals-agent/internal/app"
	"fundamentals-agent/internal/trace"
)

var configPath string

func main() {
	rootCmd := newAnalyzeCmd()
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// stdout carries the report
		return app.Init(os.Stderr)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = trace.Shutdown(context.Background())
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default $CONFIG_PATH or config.yaml)")
	rootCmd.AddCommand(newSummaryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration named by --config and wires the application
func bootstrap(ctx context.Context) (*app.App, error) {
	path := configPath
	if path == "" {
		path = app.ConfigPath()
	}
	cfg, err := app.LoadConfig(ctx, path)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
