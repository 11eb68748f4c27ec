// Package mcp exposes the analysis pipeline as Model Context Protocol tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

// Analyzer runs the full analysis pipeline
type Analyzer interface {
	Analyze(ctx context.Context, raw models.RawInputs) (*models.AnalysisResult, error)
}

// NewServer creates an MCP server with every tool registered. analyzer may
// be nil, in which case analyze_finances is not offered.
func NewServer(analyzer Analyzer, params *rating.ParameterSet, version string, logger arbor.ILogger) *server.MCPServer {
	if params == nil {
		params = rating.DefaultParameterSet()
	}

	s := server.NewMCPServer(
		"moneypulse",
		version,
		server.WithToolCapabilities(true),
	)

	if analyzer != nil {
		s.AddTool(createAnalyzeFinancesTool(), handleAnalyzeFinances(analyzer, logger))
	}
	s.AddTool(createComputeHealthTool(), handleComputeHealth(params))
	s.AddTool(createSanitizeTextTool(), handleSanitizeText())

	return s
}
