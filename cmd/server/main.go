package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctai-labs/clinical-trial-ai/internal/analyzer"
	"github.com/ctai-labs/clinical-trial-ai/internal/config"
	"github.com/ctai-labs/clinical-trial-ai/internal/llm"
	"github.com/ctai-labs/clinical-trial-ai/internal/server"
	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ctai",
		Short:        "Clinical trial data quality assistant",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newAskCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			srv := server.New(*app.cfg, app.analyzer, app.model)
			slog.Info("starting server", "host", app.cfg.Server.Host, "port", app.cfg.Server.Port)
			if err := srv.Run(); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
}

// app holds the process wide dependencies shared by every command.
type app struct {
	cfg       *config.Config
	analyzer  *analyzer.Analyzer
	warehouse warehouse.Adapter
	model     string
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.SetDefault(cfg.Log.NewLogger())

	llmProvider, err := llm.NewOpenAI(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	wh := warehouse.Open(ctx, cfg.Warehouse)

	return &app{
		cfg:       cfg,
		analyzer:  analyzer.New(wh, llmProvider),
		warehouse: wh,
		model:     llmProvider.Model(),
	}, nil
}

func (a *app) close() {
	if c, ok := a.warehouse.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("Closing warehouse failed", "error", err)
		}
	}
}
