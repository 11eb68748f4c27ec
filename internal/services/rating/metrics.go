package rating

import (
	"math"

	"github.com/ternarybob/moneypulse/internal/models"
)

// ComputeMetrics derives the four ratios from raw inputs.
// Division by zero is resolved explicitly:
//   - no income: budget ratio and DTI are +Inf, invest rate is 0
//   - no spending: runway is models.RunwaySentinel with savings, else 0
func ComputeMetrics(raw models.RawInputs) models.Metrics {
	in := raw.Sanitized()

	m := models.Metrics{Inputs: in}

	if in.MonthlyIncome > 0 {
		m.BudgetRatio = in.MonthlySpending / in.MonthlyIncome
		m.InvestRate = in.MonthlyInvestments / in.MonthlyIncome
		m.DTI = in.TotalDebt / in.MonthlyIncome
	} else {
		m.BudgetRatio = math.Inf(1)
		m.InvestRate = 0
		m.DTI = math.Inf(1)
	}

	switch {
	case in.MonthlySpending > 0:
		m.RunwayMonths = in.TotalSavings / in.MonthlySpending
	case in.TotalSavings > 0:
		m.RunwayMonths = models.RunwaySentinel
	default:
		m.RunwayMonths = 0
	}

	return m
}

// metricValue reads a named metric. Income is read from the sanitized inputs.
func metricValue(m models.Metrics, name Metric) float64 {
	switch name {
	case MetricIncome:
		return m.Inputs.MonthlyIncome
	case MetricBudgetRatio:
		return m.BudgetRatio
	case MetricRunwayMonths:
		return m.RunwayMonths
	case MetricInvestRate:
		return m.InvestRate
	case MetricDTI:
		return m.DTI
	}
	return math.NaN()
}
