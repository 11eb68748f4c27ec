package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var inputFields = []struct {
	name        string
	description string
}{
	{"monthly_income", "Take-home income per month"},
	{"monthly_spending", "Total spending per month"},
	{"total_savings", "Cash savings balance"},
	{"total_debt", "Total outstanding debt"},
	{"monthly_investments", "Amount invested per month"},
	{"investment_balance", "Current investment balance"},
}

func withInputs(opts ...mcp.ToolOption) []mcp.ToolOption {
	for _, f := range inputFields {
		opts = append(opts, mcp.WithNumber(f.name,
			mcp.Description(f.description+". Missing or negative values count as 0."),
		))
	}
	return opts
}

func withFormat() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format"),
		mcp.DefaultString("markdown"),
		mcp.Enum("markdown", "json"),
	)
}

// createAnalyzeFinancesTool returns the analyze_finances tool definition
func createAnalyzeFinancesTool() mcp.Tool {
	opts := withInputs(
		mcp.WithDescription("Score six money figures and return a state, a 0-100 health score, a headline and three plain advice lines. May call the configured text provider; always returns a result."),
		withFormat(),
	)
	return mcp.NewTool("analyze_finances", opts...)
}

// createComputeHealthTool returns the compute_health tool definition
func createComputeHealthTool() mcp.Tool {
	opts := withInputs(
		mcp.WithDescription("Compute the ratios, state and health score locally, with the points each dimension contributed. No external calls."),
		withFormat(),
	)
	return mcp.NewTool("compute_health", opts...)
}

// createSanitizeTextTool returns the sanitize_text tool definition
func createSanitizeTextTool() mcp.Tool {
	return mcp.NewTool("sanitize_text",
		mcp.WithDescription("Rewrite advice text into plain language: no emoji, symbols spelled out, jargon replaced, one sentence per line"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to clean; each line is cleaned separately"),
		),
		mcp.WithNumber("max_length",
			mcp.Description("Cut each line to at most this many characters (default: no limit)"),
		),
	)
}
