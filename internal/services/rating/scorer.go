package rating

import (
	"fmt"
	"strings"

	"github.com/ternarybob/moneypulse/internal/models"
)

// ComputeHealth scores metrics with the default parameter set.
func ComputeHealth(m models.Metrics) int {
	return DefaultParameterSet().Score.Calculate(m).Score
}

// Calculate applies one bucket per dimension to the baseline, then clamps to
// [0, 100] and rounds.
func (t ScoreTable) Calculate(m models.Metrics) HealthResult {
	c := HealthComponents{
		Baseline: t.Baseline,
		Budget:   t.Budget.points(m.BudgetRatio),
		Runway:   t.Runway.points(m.RunwayMonths),
		Invest:   t.Invest.points(m.InvestRate),
		Debt:     t.Debt.points(m.DTI),
	}
	c.Raw = c.Baseline + c.Budget + c.Runway + c.Invest + c.Debt

	score := RoundScore(c.Raw)

	return HealthResult{
		Score:      score,
		Components: c,
		Reasoning:  buildHealthReasoning(c, score),
	}
}

func (d DimensionTable) points(value float64) float64 {
	for _, b := range d.Buckets {
		if compare(value, b.Op, b.Value) {
			return b.Points
		}
	}
	return d.Otherwise
}

func buildHealthReasoning(c HealthComponents, score int) string {
	parts := []string{
		fmt.Sprintf("base %+.0f", c.Baseline),
		fmt.Sprintf("budget %+.0f", c.Budget),
		fmt.Sprintf("runway %+.0f", c.Runway),
		fmt.Sprintf("invest %+.0f", c.Invest),
		fmt.Sprintf("debt %+.0f", c.Debt),
	}
	reasoning := strings.Join(parts, ", ")
	if float64(score) != c.Raw {
		reasoning += fmt.Sprintf(" (raw %.0f clamped to %d)", c.Raw, score)
	}
	return reasoning
}
