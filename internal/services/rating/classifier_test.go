package rating

import (
	"math"
	"testing"

	"github.com/ternarybob/moneypulse/internal/models"
)

// metricsOf builds metrics directly with a positive income so only the ratios
// drive classification.
func metricsOf(budget, runway, invest, dti float64) models.Metrics {
	return models.Metrics{
		BudgetRatio:  budget,
		RunwayMonths: runway,
		InvestRate:   invest,
		DTI:          dti,
		Inputs:       models.RawInputs{MonthlyIncome: 1000},
	}
}

func TestPickState(t *testing.T) {
	tests := []struct {
		name    string
		metrics models.Metrics
		want    models.State
	}{
		{"reference household is healthy", ComputeMetrics(models.RawInputs{
			MonthlyIncome: 5000, MonthlySpending: 3000, TotalSavings: 10000, TotalDebt: 2000, MonthlyInvestments: 500,
		}), models.StateHealthy},
		{"no income", ComputeMetrics(models.RawInputs{TotalSavings: 1_000_000}), models.StateFlatlined},
		{"budget exactly 1.5 is worst", metricsOf(1.5, 24, 0.2, 0), models.StateFlatlined},
		{"runway just below half a month", metricsOf(0.5, 0.49, 0.2, 0), models.StateFlatlined},
		{"runway exactly half a month is critical", metricsOf(0.5, 0.5, 0.2, 0), models.StateCritical},
		{"budget just below 1.5", metricsOf(1.49, 24, 0.2, 0), models.StateCritical},
		{"budget exactly 1.10 is not critical", metricsOf(1.10, 24, 0.2, 0), models.StateStruggling},
		{"dti above 1.20", metricsOf(0.5, 24, 0.2, 1.21), models.StateCritical},
		{"dti exactly 1.20 is not critical", metricsOf(0.5, 24, 0.2, 1.20), models.StateStruggling},
		{"runway below two months", metricsOf(0.5, 1.99, 0.2, 0), models.StateStruggling},
		{"budget exactly 0.95 is surviving", metricsOf(0.95, 24, 0.2, 0), models.StateSurviving},
		{"low invest rate caps at surviving", metricsOf(0.5, 24, 0.04, 0), models.StateSurviving},
		{"all band edges land in healthy", metricsOf(0.80, 3.0, 0.05, 0.60), models.StateHealthy},
		{"thriving requires every ratio", metricsOf(0.70, 6.01, 0.10, 0.40), models.StateThriving},
		{"runway exactly 6 is not thriving", metricsOf(0.70, 6.0, 0.10, 0.40), models.StateHealthy},
		{"legendary is checked before thriving", metricsOf(0.60, 12.5, 0.15, 0.20), models.StateLegendary},
		{"legendary misses on debt", metricsOf(0.60, 12.5, 0.15, 0.21), models.StateThriving},
		{"excellent ratios cannot hide one bad ratio", metricsOf(0.2, 100, 0.5, 1.3), models.StateCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickState(tt.metrics); got != tt.want {
				t.Errorf("PickState() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPickState_Total(t *testing.T) {
	values := []float64{0, 0.05, 0.1, 0.2, 0.4, 0.5, 0.6, 0.8, 0.9, 0.95, 1.0, 1.1, 1.2, 1.5, 3, 6, 12, 99.999, math.Inf(1)}
	incomes := []float64{0, 1000}

	for _, ps := range []*ParameterSet{newV1ParameterSet(), newClassicParameterSet()} {
		for _, income := range incomes {
			for _, b := range values {
				for _, r := range values {
					for _, inv := range values {
						if math.IsInf(inv, 0) {
							continue
						}
						for _, d := range values {
							m := metricsOf(b, r, inv, d)
							m.Inputs.MonthlyIncome = income
							got := ps.Classifier.PickState(m)
							if !got.IsValid() {
								t.Fatalf("%s: PickState(%+v) = %q, not a known state", ps.Version, m, got)
							}
							if income <= 0 && got != models.StateFlatlined {
								t.Fatalf("%s: no income classified as %s", ps.Version, got)
							}
						}
					}
				}
			}
		}
	}
}

func TestClassify_ReportsRuleIndex(t *testing.T) {
	table := DefaultParameterSet().Classifier

	state, idx := table.Classify(metricsOf(0.7, 4, 0.06, 0.5))
	if state != models.StateHealthy || idx != -1 {
		t.Errorf("Classify() = (%s, %d), want (HEALTHY, -1)", state, idx)
	}

	state, idx = table.Classify(metricsOf(2, 4, 0.06, 0.5))
	if state != models.StateFlatlined || idx != 0 {
		t.Errorf("Classify() = (%s, %d), want (FLATLINED, 0)", state, idx)
	}
}
