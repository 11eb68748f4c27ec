package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/advice"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

// handleAnalyzeFinances implements the analyze_finances tool
func handleAnalyzeFinances(analyzer Analyzer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := inputsFromRequest(request)

		result, err := analyzer.Analyze(ctx, raw)
		if err != nil {
			logger.Error().Err(err).Msg("Analysis failed")
			return mcp.NewToolResultError(fmt.Sprintf("Analysis error: %v", err)), nil
		}

		if wantsJSON(request) {
			return jsonResult(result)
		}
		return mcp.NewToolResultText(formatAnalysis(result)), nil
	}
}

// handleComputeHealth implements the compute_health tool
func handleComputeHealth(params *rating.ParameterSet) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assessment := params.Assess(inputsFromRequest(request))

		if wantsJSON(request) {
			return jsonResult(map[string]interface{}{
				"state":             assessment.State,
				"health":            assessment.Health,
				"metrics":           assessment.Metrics,
				"parameter_version": assessment.Version,
			})
		}
		return mcp.NewToolResultText(formatAssessment(assessment)), nil
	}
}

// handleSanitizeText implements the sanitize_text tool
func handleSanitizeText() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil || strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("Error: text parameter is required"), nil
		}
		maxLength := request.GetInt("max_length", 0)

		var lines []string
		for _, line := range strings.Split(text, "\n") {
			cleaned := advice.SanitizeLine(line)
			if maxLength > 0 {
				cleaned = advice.Shorten(cleaned, maxLength)
			}
			if cleaned != "" {
				lines = append(lines, cleaned)
			}
		}

		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}
}

// inputsFromRequest reads the six figures leniently: numbers or numeric
// strings, anything else is 0.
func inputsFromRequest(request mcp.CallToolRequest) models.RawInputs {
	args := request.GetArguments()
	return models.RawInputs{
		MonthlyIncome:      amountArg(args, "monthly_income"),
		MonthlySpending:    amountArg(args, "monthly_spending"),
		TotalSavings:       amountArg(args, "total_savings"),
		TotalDebt:          amountArg(args, "total_debt"),
		MonthlyInvestments: amountArg(args, "monthly_investments"),
		InvestmentBalance:  amountArg(args, "investment_balance"),
	}
}

func amountArg(args map[string]interface{}, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return models.CoerceAmount(v)
	case int:
		return models.CoerceAmount(float64(v))
	case int64:
		return models.CoerceAmount(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return models.CoerceAmount(f)
	case string:
		return models.ParseAmountString(v)
	}
	return 0
}

func wantsJSON(request mcp.CallToolRequest) bool {
	return strings.EqualFold(request.GetString("format", "markdown"), "json")
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Encoding error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
