package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/pkravets/claimpilot/internal/supervisor"
	"github.com/spf13/cobra"
)

var servicesFile string

// superviseCmd represents the supervise command
var superviseCmd = &cobra.Command{
	Use:   "supervise",
	Short: "Run the local agent fleet as supervised subprocesses",
	Long: `Supervise starts every service in the table, waits for each to pass
its health check, and keeps them running until interrupted. Ctrl-C stops
the fleet in reverse start order.

Example:
  claimpilot supervise
  claimpilot supervise --services services.yaml
  claimpilot supervise status`,
	RunE: runSupervise,
}

var superviseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the service table without starting anything",
	RunE:  runSuperviseStatus,
}

func init() {
	rootCmd.AddCommand(superviseCmd)
	superviseCmd.AddCommand(superviseStatusCmd)

	superviseCmd.PersistentFlags().StringVar(&servicesFile, "services", "", "service table YAML (default: built-in table)")
}

func loadServiceTable() ([]supervisor.ServiceSpec, error) {
	if servicesFile == "" {
		return supervisor.DefaultSpecs(), nil
	}
	return supervisor.LoadSpecs(servicesFile)
}

func runSupervise(cmd *cobra.Command, args []string) error {
	specs, err := loadServiceTable()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sup, err := supervisor.New(specs, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sup.StartAll(ctx); err != nil {
		sup.StopAll()
		return fmt.Errorf("start fleet: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Fleet up: %d services. Ctrl-C to stop.\n", len(specs))
	<-ctx.Done()

	sup.StopAll()
	return nil
}

func runSuperviseStatus(cmd *cobra.Command, args []string) error {
	specs, err := loadServiceTable()
	if err != nil {
		return err
	}

	sup, err := supervisor.New(specs, nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tPORT\tHEALTHY")
	for _, status := range sup.Status(context.Background()) {
		fmt.Fprintf(w, "%s\t%d\t%v\n", status.Name, status.Port, status.Healthy)
	}
	return w.Flush()
}
