package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkravets/claimpilot/internal/dashboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring dashboard API server",
	Long: `Serve exposes the dashboard API:
- GET  /api/health
- GET  /api/processing-steps
- POST /api/start-processing/{claimID}
- POST /api/stop-processing/{claimID}
- POST /api/claims/{claimID}/process

Example:
  claimpilot serve
  claimpilot serve --addr :3000 --steps-file claimpilot-steps.json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":3000", "dashboard listen address")
	serveCmd.Flags().StringVar(&stepsFile, "steps-file", "claimpilot-steps.json", "workflow step log path")
	serveCmd.Flags().StringVar(&mcpURL, "mcp-url", "http://localhost:8080", "MCP data-access server URL")
	serveCmd.Flags().StringVar(&agentsHost, "agents-host", "localhost", "host where the specialist agents listen")
	serveCmd.Flags().StringVar(&rulesFile, "rules", "", "local coverage rules YAML (default: rules_catalog via MCP)")
	serveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable claim record cache (force fresh fetch)")

	// LLM flags
	serveCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM request clarification")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, azure)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg := configFromFlags()
	cfg.Dashboard.Addr = serveAddr
	if err := applyLLMEnv(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, stepLog, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	server := dashboard.NewServer(stepLog, orch, logger)
	httpServer := &http.Server{
		Addr:              cfg.Dashboard.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", zap.String("addr", cfg.Dashboard.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// newLogger builds the server logger. Verbose mode switches to the
// human-readable development encoder.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
