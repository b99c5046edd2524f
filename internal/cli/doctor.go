package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkravets/claimpilot/internal/agents"
	"github.com/pkravets/claimpilot/internal/mcp"
	"github.com/spf13/cobra"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment and report every problem at once",
	Long: `Doctor validates the deployment before any workflow runs:
- Required environment variables for the configured LLM provider
- MCP server reachability and advertised tools
- Each specialist agent's card endpoint

All problems are reported together rather than failing on the first one.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVar(&mcpURL, "mcp-url", "http://localhost:8080", "MCP data-access server URL")
	doctorCmd.Flags().StringVar(&agentsHost, "agents-host", "localhost", "host where the specialist agents listen")
	doctorCmd.Flags().BoolVar(&llmEnabled, "llm", false, "also check LLM clarifier configuration")
	doctorCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, azure)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := configFromFlags()
	var problems []string

	// Environment variables, collected before anything is used.
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		switch llmProvider {
		case "openai":
			if os.Getenv("OPENAI_API_KEY") == "" {
				problems = append(problems, "OPENAI_API_KEY not set")
			}
		case "azure":
			if os.Getenv("AZURE_OPENAI_API_KEY") == "" {
				problems = append(problems, "AZURE_OPENAI_API_KEY not set")
			}
			if os.Getenv("AZURE_OPENAI_ENDPOINT") == "" {
				problems = append(problems, "AZURE_OPENAI_ENDPOINT not set")
			}
		default:
			problems = append(problems, fmt.Sprintf("unknown LLM provider: %s", llmProvider))
		}
	}

	// MCP server.
	client := mcp.NewClient(cfg.MCP.BaseURL, cfg.MCP.Timeout,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	tools, err := client.ListTools(ctx)
	if err != nil {
		problems = append(problems, fmt.Sprintf("MCP server %s unreachable: %v", cfg.MCP.BaseURL, err))
	} else {
		fmt.Printf("ok  MCP server %s (%d tools)\n", cfg.MCP.BaseURL, len(tools))
	}

	// Specialist agents.
	a2a := a2aClient(cfg)
	registry := agents.DefaultRegistry(cfg.Agents.Host)
	for _, name := range registry.Names() {
		url, err := registry.URL(name)
		if err != nil {
			continue
		}
		if _, err := a2a.FetchCard(ctx, url); err != nil {
			problems = append(problems, fmt.Sprintf("agent %s unreachable at %s", name, url))
			continue
		}
		fmt.Printf("ok  agent %s at %s\n", name, url)
	}

	if len(problems) > 0 {
		fmt.Fprintln(os.Stderr)
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "problem: %s\n", p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	}

	fmt.Println("\nAll checks passed.")
	return nil
}
