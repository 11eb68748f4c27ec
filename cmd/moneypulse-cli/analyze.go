package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/ternarybob/moneypulse/internal/app"
	"github.com/ternarybob/moneypulse/internal/services/analysis"
	"github.com/ternarybob/moneypulse/internal/services/llm"
)

var analyzeInputs inputFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score the inputs and print a headline with three tips",
	Long: `Runs the full analysis once. When a provider is configured the advice
text comes from one bounded call; any failure falls back to local advice.
Nothing is stored.`,
	RunE: runAnalyze,
}

func init() {
	analyzeInputs.register(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	raw, err := analyzeInputs.resolve(cmd)
	if err != nil {
		return err
	}

	params, err := app.LoadParams(config)
	if err != nil {
		return err
	}

	generator := llm.NewProviderFactory(config, nil, logger)
	defer generator.Close()

	service := analysis.NewService(params, app.Generator(generator), nil, nil, config.Analysis, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, config.RequestTimeout())
	defer cancel()

	result, err := service.Analyze(ctx, raw)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "State:  %s\n", result.State)
	fmt.Fprintf(out, "Health: %d/100\n", result.Health)
	fmt.Fprintf(out, "Source: %s (%s)\n\n", result.Source, result.ParameterVersion)
	fmt.Fprintln(out, result.Message)
	return nil
}
