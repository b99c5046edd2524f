package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkravets/claimpilot/internal/agents"
	"github.com/spf13/cobra"
)

// agentsCmd represents the agents command
var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect the specialist agent fleet",
}

var agentsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe every agent and report availability",
	Long: `Status fetches each agent's card from /.well-known/agent.json and
reports which agents are reachable on their fixed ports.`,
	RunE: runAgentsStatus,
}

var agentsCardCmd = &cobra.Command{
	Use:   "card <agent>",
	Short: "Show one agent's card",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsCard,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
	agentsCmd.AddCommand(agentsStatusCmd)
	agentsCmd.AddCommand(agentsCardCmd)

	agentsCmd.PersistentFlags().StringVar(&agentsHost, "agents-host", "localhost", "host where the specialist agents listen")
}

func runAgentsStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := configFromFlags()
	client := a2aClient(cfg)
	registry := agents.DefaultRegistry(cfg.Agents.Host)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tPORT\tSTATUS\tDESCRIPTION")

	for _, name := range registry.Names() {
		agent, _ := registry.Lookup(name)
		url, err := registry.URL(name)
		if err != nil {
			continue
		}

		card, err := client.FetchCard(ctx, url)
		if err != nil {
			fmt.Fprintf(w, "%s\t%d\tdown\t\n", name, agent.Port)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\tup\t%s\n", name, agent.Port, card.Description)
	}
	return w.Flush()
}

func runAgentsCard(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := configFromFlags()
	client := a2aClient(cfg)
	registry := agents.DefaultRegistry(cfg.Agents.Host)

	url, err := registry.URL(name)
	if err != nil {
		return err
	}

	card, err := client.FetchCard(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch card for %s: %w", name, err)
	}

	fmt.Printf("Name:         %s\n", card.Name)
	fmt.Printf("Description:  %s\n", card.Description)
	fmt.Printf("URL:          %s\n", card.URL)
	fmt.Printf("Version:      %s\n", card.Version)
	for _, skill := range card.Skills {
		fmt.Printf("Skill:        %s (%s)\n", skill.Name, skill.ID)
	}
	return nil
}
