package main

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"
	"github.com/ternarybob/moneypulse/internal/app"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

var scoreInputs inputFlags

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute metrics, state and health locally",
	Long:  `Prints the ratio metrics, the classified state and the health score breakdown. No outbound calls are made.`,
	RunE:  runScore,
}

func init() {
	scoreInputs.register(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	raw, err := scoreInputs.resolve(cmd)
	if err != nil {
		return err
	}

	params, err := app.LoadParams(config)
	if err != nil {
		return err
	}

	assessment := params.Assess(raw)

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, map[string]interface{}{
			"state":             assessment.State,
			"health":            assessment.Health,
			"metrics":           assessment.Metrics,
			"parameter_version": assessment.Version,
		})
	}

	writeAssessment(out, assessment)
	return nil
}

func writeAssessment(out io.Writer, a rating.Assessment) {
	m := a.Metrics
	fmt.Fprintf(out, "State:         %s\n", a.State)
	fmt.Fprintf(out, "Health:        %d/100\n", a.Health.Score)
	fmt.Fprintf(out, "Parameters:    %s\n\n", a.Version)

	fmt.Fprintf(out, "Budget ratio:  %s\n", formatRatio(m.BudgetRatio))
	fmt.Fprintf(out, "Runway:        %.1f months\n", m.RunwayMonths)
	fmt.Fprintf(out, "Invest rate:   %s\n", formatRatio(m.InvestRate))
	fmt.Fprintf(out, "Debt/income:   %s\n\n", formatRatio(m.DTI))

	c := a.Health.Components
	fmt.Fprintf(out, "Baseline %+.0f, budget %+.0f, runway %+.0f, invest %+.0f, debt %+.0f (raw %.0f)\n",
		c.Baseline, c.Budget, c.Runway, c.Invest, c.Debt, c.Raw)
	if a.Health.Reasoning != "" {
		fmt.Fprintln(out, a.Health.Reasoning)
	}
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "no income"
	}
	return fmt.Sprintf("%.0f%%", v*100)
}
