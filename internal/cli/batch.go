package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/pkravets/claimpilot/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Process multiple claim requests from a file in parallel",
	Long: `Batch processes multiple claim requests concurrently:
- Read requests from input file (one per line, # comments allowed)
- Process requests in parallel with configurable worker count
- Dispatch to agents with shared rate limiting
- Print a per-request decision summary

Example:
  claimpilot batch requests.txt
  claimpilot batch requests.txt --concurrency 10
  claimpilot batch requests.txt --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared workflow flags
	batchCmd.Flags().StringVar(&mcpURL, "mcp-url", "http://localhost:8080", "MCP data-access server URL")
	batchCmd.Flags().StringVar(&agentsHost, "agents-host", "localhost", "host where the specialist agents listen")
	batchCmd.Flags().StringVar(&rulesFile, "rules", "", "local coverage rules YAML (default: rules_catalog via MCP)")
	batchCmd.Flags().StringVar(&stepsFile, "steps-file", "claimpilot-steps.json", "workflow step log path")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable claim record cache (force fresh fetch)")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM request clarification")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, azure)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	requests, err := readRequests(file)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("no requests found in %s", file)
	}

	fmt.Fprintf(os.Stderr, "Input file:  %s\n", file)
	fmt.Fprintf(os.Stderr, "Requests:    %d\n", len(requests))
	fmt.Fprintf(os.Stderr, "Workers:     %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Timeout:     %v\n", batchTimeout)
	fmt.Fprintln(os.Stderr)

	cfg := configFromFlags()
	cfg.Concurrency.Workers = concurrency
	if err := applyLLMEnv(cfg); err != nil {
		return err
	}

	orch, _, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	pool := worker.NewPool(concurrency)
	pool.Start()
	go func() {
		for _, text := range requests {
			pool.Submit(&worker.ProcessJob{Text: text, Processor: orch})
		}
		pool.Close()
	}()

	total := 0
	successCount := 0
	failureCount := 0
	for result := range pool.Results() {
		total++
		pr, ok := result.(*worker.ProcessResult)
		if !ok {
			continue
		}
		if pr.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %q: %v\n", pr.Text, pr.Err)
			continue
		}
		successCount++
		fmt.Printf("%s  %s\n", pr.Decision.ClaimID, pr.Decision.Outcome)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:     %d requests\n", total)
	fmt.Fprintf(os.Stderr, "Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures:  %d\n", failureCount)

	return nil
}

// readRequests loads one request per line, skipping blanks and # comments.
func readRequests(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer f.Close()

	var requests []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		requests = append(requests, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}
	return requests, nil
}
