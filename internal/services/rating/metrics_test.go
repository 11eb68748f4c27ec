package rating

import (
	"math"
	"testing"

	"github.com/ternarybob/moneypulse/internal/models"
)

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name       string
		input      models.RawInputs
		wantBudget float64
		wantRunway float64
		wantInvest float64
		wantDTI    float64
	}{
		{
			name: "reference household",
			input: models.RawInputs{
				MonthlyIncome:      5000,
				MonthlySpending:    3000,
				TotalSavings:       10000,
				TotalDebt:          2000,
				MonthlyInvestments: 500,
			},
			wantBudget: 0.6,
			wantRunway: 10000.0 / 3000.0,
			wantInvest: 0.10,
			wantDTI:    0.40,
		},
		{
			name:       "no income",
			input:      models.RawInputs{MonthlySpending: 1000, TotalSavings: 500, TotalDebt: 100, MonthlyInvestments: 50},
			wantBudget: math.Inf(1),
			wantRunway: 0.5,
			wantInvest: 0,
			wantDTI:    math.Inf(1),
		},
		{
			name:       "savings but no spending uses sentinel",
			input:      models.RawInputs{MonthlyIncome: 1000, TotalSavings: 500},
			wantBudget: 0,
			wantRunway: models.RunwaySentinel,
			wantInvest: 0,
			wantDTI:    0,
		},
		{
			name:       "nothing at all",
			input:      models.RawInputs{},
			wantBudget: math.Inf(1),
			wantRunway: 0,
			wantInvest: 0,
			wantDTI:    math.Inf(1),
		},
		{
			name: "non-finite and negative values coerce to zero",
			input: models.RawInputs{
				MonthlyIncome:      2000,
				MonthlySpending:    math.NaN(),
				TotalSavings:       math.Inf(1),
				TotalDebt:          -400,
				MonthlyInvestments: math.Inf(-1),
			},
			wantBudget: 0,
			wantRunway: 0,
			wantInvest: 0,
			wantDTI:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(tt.input)
			if !floatEqual(m.BudgetRatio, tt.wantBudget) {
				t.Errorf("BudgetRatio = %v, want %v", m.BudgetRatio, tt.wantBudget)
			}
			if !floatEqual(m.RunwayMonths, tt.wantRunway) {
				t.Errorf("RunwayMonths = %v, want %v", m.RunwayMonths, tt.wantRunway)
			}
			if !floatEqual(m.InvestRate, tt.wantInvest) {
				t.Errorf("InvestRate = %v, want %v", m.InvestRate, tt.wantInvest)
			}
			if !floatEqual(m.DTI, tt.wantDTI) {
				t.Errorf("DTI = %v, want %v", m.DTI, tt.wantDTI)
			}
			if math.IsInf(m.InvestRate, 0) || math.IsNaN(m.InvestRate) {
				t.Errorf("InvestRate must be finite, got %v", m.InvestRate)
			}
			for _, v := range []float64{m.BudgetRatio, m.RunwayMonths, m.InvestRate, m.DTI} {
				if v < 0 {
					t.Errorf("ratio must be non-negative, got %v", v)
				}
			}
		})
	}
}

func floatEqual(got, want float64) bool {
	if math.IsInf(want, 1) {
		return math.IsInf(got, 1)
	}
	return math.Abs(got-want) < 1e-9
}
