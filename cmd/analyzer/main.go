// Package main is the paper-analyzer command line: full analysis runs, ad-hoc
// questions, the model catalog and a progress watcher.
package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"paper-analyzer/internal/app"
	"paper-analyzer/internal/config"
	"paper-analyzer/internal/llm"
)

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Summarize research papers with an LLM",
	Long: `analyzer extracts the text of a PDF research paper and asks an LLM a fixed
set of questions about it: title, authors and abstract, the background needed
to read it, and what every figure shows and how it supports the results.

Answers are written as plain-text files under the output directory. Settings
come from the environment (or a .env file) and can be overridden by flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: openai, openrouter, gemini")
	rootCmd.PersistentFlags().String("model", "", "model name (default: provider's first catalog model)")
	rootCmd.PersistentFlags().String("api-key", "", "API key for the selected provider")
	rootCmd.PersistentFlags().String("base-url", "", "override the provider endpoint")
}

// buildDeps loads configuration, applies command-line overrides and logs to
// stderr so answers on stdout stay clean.
func buildDeps(cmd *cobra.Command) (app.Deps, error) {
	return app.Build(cmd.ErrOrStderr(), func(cfg *config.Config) {
		applyFlags(cmd, cfg)
	})
}

// applyFlags overrides cfg with every flag the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("provider") {
		cfg.LLMProvider, _ = flags.GetString("provider")
		if !flags.Changed("model") && !knownModel(cfg.LLMProvider, cfg.LLMModel) {
			cfg.LLMModel = llm.DefaultModel(llm.Provider(cfg.LLMProvider))
		}
	}
	if flags.Changed("model") {
		cfg.LLMModel, _ = flags.GetString("model")
	}
	if flags.Changed("base-url") {
		cfg.LLMBaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("api-key") {
		key, _ := flags.GetString("api-key")
		switch cfg.LLMProvider {
		case "openai":
			cfg.OpenAIKey = key
		case "openrouter":
			cfg.OpenRouterKey = key
		case "gemini":
			cfg.GoogleKey = key
		}
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("workers") {
		cfg.FigureWorkers, _ = flags.GetInt("workers")
	}
	if flags.Changed("no-expand") {
		noExpand, _ := flags.GetBool("no-expand")
		cfg.ExpandFigures = !noExpand
	}
}

func knownModel(provider, model string) bool {
	info, ok := llm.Lookup(llm.Provider(provider))
	return ok && slices.Contains(info.Models, model)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
