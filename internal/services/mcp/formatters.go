package mcp

import (
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

// formatAnalysis formats an analysis result as markdown
func formatAnalysis(result *models.AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (health %d)\n\n", result.State, result.Health))
	sb.WriteString(result.Headline)
	sb.WriteString("\n\n")
	for _, line := range result.Advice {
		sb.WriteString(fmt.Sprintf("- %s\n", line))
	}
	sb.WriteString("\n")
	sb.WriteString(formatMetrics(result.Metrics))
	sb.WriteString(fmt.Sprintf("\n**Source:** %s | **Parameters:** %s | **ID:** %s\n", result.Source, result.ParameterVersion, result.ID))
	return sb.String()
}

// formatAssessment formats a local assessment with its score breakdown
func formatAssessment(a rating.Assessment) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (health %d)\n\n", a.State, a.Health.Score))
	sb.WriteString(formatMetrics(a.Metrics))

	c := a.Health.Components
	sb.WriteString("\n### Score breakdown\n")
	sb.WriteString("| Baseline | Budget | Runway | Invest | Debt | Raw |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| %g | %+g | %+g | %+g | %+g | %g |\n", c.Baseline, c.Budget, c.Runway, c.Invest, c.Debt, c.Raw))

	if a.Health.Reasoning != "" {
		sb.WriteString("\n")
		sb.WriteString(a.Health.Reasoning)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n**Parameters:** %s\n", a.Version))
	return sb.String()
}

func formatMetrics(m models.Metrics) string {
	var sb strings.Builder
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Budget ratio | %s |\n", formatRatio(m.BudgetRatio)))
	sb.WriteString(fmt.Sprintf("| Runway months | %.1f |\n", m.RunwayMonths))
	sb.WriteString(fmt.Sprintf("| Invest rate | %s |\n", formatRatio(m.InvestRate)))
	sb.WriteString(fmt.Sprintf("| Debt to income | %s |\n", formatRatio(m.DTI)))
	return sb.String()
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "no income"
	}
	return fmt.Sprintf("%.0f%%", v*100)
}
