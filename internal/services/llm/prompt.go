package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

// adviceSystemInstruction fixes the reply contract for every provider.
const adviceSystemInstruction = `You are a friendly money coach for beginners.
Reply with ONE JSON object and nothing else, shaped as:
{"state": STATE, "health": INTEGER, "headline": STRING, "advice": [STRING, STRING, STRING]}
Rules:
- state must be one of the allowed states given in the context.
- health is an integer from 0 to 100; use the health given in the context.
- headline is one short sentence.
- advice has exactly 3 short sentences. Each sentence contains exactly one number a person can act on, written with digits.
- Use plain words a 10 year old understands. Do not use jargon such as DTI, runway or ratio.
- Do not use symbols such as percent signs, slashes, parentheses, colons or emoji. Write "percent" and "per" as words.`

// NewAdviceRequest builds the outbound request for a local assessment.
func NewAdviceRequest(a rating.Assessment) *models.AdviceRequest {
	ctx := models.AdviceContext{
		Inputs:           a.Metrics.Inputs,
		Metrics:          a.Metrics,
		State:            a.State,
		Health:           a.Health.Score,
		AllowedStates:    models.AllStates(),
		ParameterVersion: a.Version,
	}
	return &models.AdviceRequest{
		Context: ctx,
		Prompt:  BuildAdvicePrompt(ctx),
	}
}

// BuildAdvicePrompt renders the context as prose for providers that only
// accept text.
func BuildAdvicePrompt(c models.AdviceContext) string {
	var b strings.Builder

	b.WriteString("Write money advice for this household.\n\n")
	b.WriteString("Monthly figures:\n")
	fmt.Fprintf(&b, "- income: %.2f\n", c.Inputs.MonthlyIncome)
	fmt.Fprintf(&b, "- spending: %.2f\n", c.Inputs.MonthlySpending)
	fmt.Fprintf(&b, "- investing: %.2f\n", c.Inputs.MonthlyInvestments)
	b.WriteString("Totals:\n")
	fmt.Fprintf(&b, "- savings: %.2f\n", c.Inputs.TotalSavings)
	fmt.Fprintf(&b, "- debt: %.2f\n", c.Inputs.TotalDebt)
	fmt.Fprintf(&b, "- investment balance: %.2f\n", c.Inputs.InvestmentBalance)
	b.WriteString("Computed:\n")
	fmt.Fprintf(&b, "- share of income spent: %s\n", describeRatio(c.Metrics.BudgetRatio, true))
	fmt.Fprintf(&b, "- months of spending covered by savings: %s\n", describeRatio(c.Metrics.RunwayMonths, false))
	fmt.Fprintf(&b, "- share of income invested: %s\n", describeRatio(c.Metrics.InvestRate, true))
	fmt.Fprintf(&b, "- debt compared to one month of income: %s\n", describeRatio(c.Metrics.DTI, true))
	fmt.Fprintf(&b, "\nstate: %s\nhealth: %d\n", c.State, c.Health)

	states := make([]string, len(c.AllowedStates))
	for i, s := range c.AllowedStates {
		states[i] = string(s)
	}
	fmt.Fprintf(&b, "allowed states, worst to best: %s\n", strings.Join(states, ", "))

	if ctxJSON, err := json.Marshal(c); err == nil {
		b.WriteString("\ncontext json:\n")
		b.Write(ctxJSON)
		b.WriteString("\n")
	}

	return b.String()
}

func describeRatio(v float64, asPercent bool) string {
	if math.IsInf(v, 1) {
		return "no income"
	}
	if asPercent {
		return fmt.Sprintf("%.0f percent", v*100)
	}
	return fmt.Sprintf("%.1f", v)
}

// adviceMessages wraps the prompt as a single user turn.
func adviceMessages(req *models.AdviceRequest) []interfaces.Message {
	return []interfaces.Message{
		{Role: "system", Content: adviceSystemInstruction},
		{Role: "user", Content: req.Prompt},
	}
}

// AdviceOutputSchema is the JSON schema of the reply, used for structured
// output where the provider supports it.
func AdviceOutputSchema() map[string]interface{} {
	states := make([]interface{}, 0, 7)
	for _, s := range models.AllStates() {
		states = append(states, string(s))
	}

	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"state", "health", "headline", "advice"},
		"properties": map[string]interface{}{
			"state": map[string]interface{}{
				"type": "string",
				"enum": states,
			},
			"health": map[string]interface{}{
				"type":    "integer",
				"minimum": float64(0),
				"maximum": float64(100),
			},
			"headline": map[string]interface{}{
				"type":        "string",
				"description": "One short plain sentence.",
			},
			"advice": map[string]interface{}{
				"type":        "array",
				"description": "Exactly 3 short sentences, each with one number.",
				"items":       map[string]interface{}{"type": "string"},
			},
		},
	}
}
