package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"paper-analyzer/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch [run-id]",
	Short: "Print progress events published over NATS",
	Long: `Watch subscribes to analysis progress on NATS_URL and prints one line per
finished figure. Without a run id it follows every run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()
		if deps.NATS == nil {
			return fmt.Errorf("NATS_URL is required to watch progress")
		}

		var runID string
		if len(args) == 1 {
			runID = args[0]
		}
		deps.Log.Info("watching progress", "subject", events.Subject(runID))
		return deps.NATS.Subscribe(cmd.Context(), runID, printProgress(cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func printProgress(w io.Writer) events.Handler {
	return func(_ context.Context, p events.Progress) {
		fmt.Fprintf(w, "%s %-9s figure %d done (%d/%d)\n", p.RunID, p.Phase, p.Figure, p.Completed, p.Total)
	}
}
