package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"paper-analyzer/internal/app"
	"paper-analyzer/internal/document"
)

var askCmd = &cobra.Command{
	Use:   "ask <pdf> <question>",
	Short: "Ask a free-form question about a paper",
	Long: `Ask sends a question together with the full paper text, expands the answer
and prints it. Nothing is written to disk.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args[1:], " "))
		if question == "" {
			return fmt.Errorf("question must not be empty")
		}

		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()

		doc, err := document.Load(args[0])
		if err != nil {
			return err
		}
		analyzer, err := app.BuildAnalyzer(cmd.Context(), deps, app.ProviderConfig(deps.Config), uuid.NewString())
		if err != nil {
			return err
		}
		resp, err := analyzer.Ask(cmd.Context(), doc, question)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Content())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
