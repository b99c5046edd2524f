package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkravets/claimpilot/internal/model"
	"github.com/pkravets/claimpilot/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	mcpURL      string
	agentsHost  string
	rulesFile   string
	stepsFile   string
	timeout     time.Duration
	noCache     bool
	jsonOut     bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <request text>",
	Short: "Process one claim request through the agent workflow",
	Long: `Process runs a free-text claim request end to end:
- Extract the claim identifier from the request
- Fetch the claim record through the MCP server
- Dispatch analysis tasks to the specialist agents
- Evaluate coverage rules
- Record workflow steps and emit the final decision

Example:
  claimpilot process "Please process claim OP-05"
  claimpilot process "Review the outpatient bill for OP-05" --json
  claimpilot process "handle my claim" --llm --llm-provider openai`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&mcpURL, "mcp-url", "http://localhost:8080", "MCP data-access server URL")
	processCmd.Flags().StringVar(&agentsHost, "agents-host", "localhost", "host where the specialist agents listen")
	processCmd.Flags().StringVar(&rulesFile, "rules", "", "local coverage rules YAML (default: rules_catalog via MCP)")
	processCmd.Flags().StringVar(&stepsFile, "steps-file", "claimpilot-steps.json", "workflow step log path")
	processCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall processing timeout")
	processCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable claim record cache (force fresh fetch)")
	processCmd.Flags().BoolVar(&jsonOut, "json", false, "emit the decision as JSON on stdout")

	// LLM flags
	processCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM request clarification")
	processCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, azure)")
	processCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runProcess(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Request: %s\n", text)
		fmt.Fprintf(os.Stderr, "MCP: %s\n", mcpURL)
		fmt.Fprintf(os.Stderr, "Agents host: %s\n", agentsHost)
		fmt.Fprintln(os.Stderr)
	}

	cfg := configFromFlags()
	if err := applyLLMEnv(cfg); err != nil {
		return err
	}

	orch, _, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	decision, err := orch.Process(ctx, text)
	if err != nil {
		if errors.Is(err, workflow.ErrNoClaimReference) {
			return fmt.Errorf("no claim identifier found in the request (expected e.g. OP-05)")
		}
		return fmt.Errorf("process failed: %w", err)
	}

	return printDecision(decision)
}

// configFromFlags builds configuration from the shared command flags.
func configFromFlags() *model.Config {
	cfg := model.DefaultConfig()
	cfg.MCP.BaseURL = mcpURL
	cfg.Agents.Host = agentsHost
	cfg.Rules.File = rulesFile
	cfg.Dashboard.StepsFile = stepsFile
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.JSON = jsonOut

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
	}
	return cfg
}

func printDecision(decision *model.Decision) error {
	if jsonOut {
		data, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Claim:    %s\n", decision.ClaimID)
	fmt.Printf("Outcome:  %s\n", decision.Outcome)
	for _, reason := range decision.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	return nil
}
