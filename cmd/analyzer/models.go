package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"paper-analyzer/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported providers and models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return printCatalog(cmd.OutOrStdout(), llm.Catalog(), asJSON)
	},
}

func init() {
	modelsCmd.Flags().Bool("json", false, "output the catalog as JSON")

	rootCmd.AddCommand(modelsCmd)
}

func printCatalog(w io.Writer, catalog []llm.ProviderInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	}
	for _, info := range catalog {
		fmt.Fprintln(w, info.Provider)
		for i, m := range info.Models {
			if i == 0 {
				fmt.Fprintf(w, "  %s (default)\n", m)
				continue
			}
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
	return nil
}
