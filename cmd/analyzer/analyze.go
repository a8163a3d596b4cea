package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"paper-analyzer/internal/app"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf>",
	Short: "Run the full analysis of a paper",
	Long: `Analyze extracts the paper text, asks for the figure count, title, authors,
abstract and background, then asks two questions per figure in parallel and
optionally expands every answer. Results are written to
<output-dir>/<pdf name>/metadata.txt, background.txt and figures_analysis.txt.

figures_analysis.txt is appended to, and only when every figure succeeded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()

		runID := uuid.NewString()
		analyzer, err := app.BuildAnalyzer(cmd.Context(), deps, app.ProviderConfig(deps.Config), runID)
		if err != nil {
			return err
		}
		deps.Log.Info("starting analysis", "run_id", runID, "pdf", args[0])

		res, err := analyzer.Run(cmd.Context(), args[0])
		if err != nil {
			deps.Log.Error("analysis failed", "run_id", runID, "err", err)
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run:       %s\n", runID)
		fmt.Fprintf(out, "Title:     %s\n", res.Details.Title)
		fmt.Fprintf(out, "Authors:   %s\n", res.Details.Authors)
		fmt.Fprintf(out, "Figures:   %d\n", res.Figures)
		fmt.Fprintf(out, "LLM calls: %d\n", res.Calls)
		fmt.Fprintf(out, "Output:    %s\n", res.Dir)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("output-dir", "", "root directory for reports (default from OUTPUT_DIR)")
	analyzeCmd.Flags().Int("workers", 0, "concurrent figure workers (default: min(32, CPUs+4))")
	analyzeCmd.Flags().Bool("no-expand", false, "skip the expansion pass over figure answers")

	rootCmd.AddCommand(analyzeCmd)
}
