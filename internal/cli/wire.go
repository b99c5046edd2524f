package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pkravets/claimpilot/internal/a2a"
	"github.com/pkravets/claimpilot/internal/agents"
	"github.com/pkravets/claimpilot/internal/cache"
	"github.com/pkravets/claimpilot/internal/llm"
	"github.com/pkravets/claimpilot/internal/mcp"
	"github.com/pkravets/claimpilot/internal/model"
	"github.com/pkravets/claimpilot/internal/rules"
	"github.com/pkravets/claimpilot/internal/worker"
	"github.com/pkravets/claimpilot/internal/workflow"
)

// buildStore wires the MCP store with the configured cache.
func buildStore(cfg *model.Config) *mcp.Store {
	client := mcp.NewClient(cfg.MCP.BaseURL, cfg.MCP.Timeout,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL)
	}
	return mcp.NewStore(client, c, cfg.Cache.MemoryTTL)
}

func a2aClient(cfg *model.Config) *a2a.Client {
	return a2a.NewClient(cfg.Agents.Timeout,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
}

// buildDispatcher wires the rate-limited A2A dispatcher over the fixed
// agent registry.
func buildDispatcher(cfg *model.Config) *agents.Dispatcher {
	client := a2aClient(cfg)
	registry := agents.DefaultRegistry(cfg.Agents.Host)
	limiter := worker.NewLimiter(cfg.Agents.RequestsPerSecond, cfg.Agents.Burst)
	return agents.NewDispatcher(client, registry, limiter, cfg.Agents.Retries)
}

// buildEngine compiles the coverage rules, preferring a local YAML file and
// falling back to the rules catalog served over MCP. A missing catalog is
// not fatal; local rule evaluation is simply skipped.
func buildEngine(ctx context.Context, cfg *model.Config, store *mcp.Store) (*rules.Engine, error) {
	var (
		coverageRules []model.CoverageRule
		err           error
	)
	if cfg.Rules.File != "" {
		coverageRules, err = rules.LoadFile(cfg.Rules.File)
		if err != nil {
			return nil, fmt.Errorf("load rules file: %w", err)
		}
	} else {
		coverageRules, err = store.ListRules(ctx)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "Rules catalog unavailable, skipping local evaluation: %v\n", err)
			}
			return nil, nil
		}
	}
	if len(coverageRules) == 0 {
		return nil, nil
	}
	return rules.NewEngine(coverageRules)
}

// buildOrchestrator assembles the full workflow from configuration.
func buildOrchestrator(ctx context.Context, cfg *model.Config) (*workflow.Orchestrator, *workflow.StepLog, error) {
	store := buildStore(cfg)
	dispatcher := buildDispatcher(cfg)

	engine, err := buildEngine(ctx, cfg, store)
	if err != nil {
		return nil, nil, err
	}

	stepLog, err := workflow.NewStepLog(cfg.Dashboard.StepsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open step log: %w", err)
	}

	orch := workflow.New(store, dispatcher, engine, stepLog)

	if cfg.LLM.Provider != "" {
		clarifier, err := llm.NewClarifier(cfg.LLM)
		if err != nil {
			return nil, nil, fmt.Errorf("configure clarifier: %w", err)
		}
		orch.SetClarifier(clarifier)
	}

	return orch, stepLog, nil
}

// applyLLMEnv pulls the API key for the configured provider from the
// environment. Keys never come from the config file.
func applyLLMEnv(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "":
		return nil
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "azure":
		cfg.LLM.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("AZURE_OPENAI_API_KEY environment variable not set")
		}
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("AZURE_OPENAI_ENDPOINT")
		}
		if cfg.LLM.BaseURL == "" {
			return fmt.Errorf("AZURE_OPENAI_ENDPOINT environment variable not set")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %s", cfg.LLM.Provider)
	}
	return nil
}
