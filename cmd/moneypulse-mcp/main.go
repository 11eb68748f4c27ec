package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/moneypulse/internal/app"
	"github.com/ternarybob/moneypulse/internal/common"
	"github.com/ternarybob/moneypulse/internal/services/analysis"
	"github.com/ternarybob/moneypulse/internal/services/llm"
	"github.com/ternarybob/moneypulse/internal/services/mcp"
)

// The stdio server is stateless: it opens no storage so it can run next to
// the HTTP server, and API keys come from env or config only.
func main() {
	var configFiles []string
	if configPath := os.Getenv("MONEYPULSE_CONFIG"); configPath != "" {
		configFiles = append(configFiles, configPath)
	} else if _, err := os.Stat("moneypulse.toml"); err == nil {
		configFiles = append(configFiles, "moneypulse.toml")
	}

	if err := common.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load env file: %v\n", err)
		os.Exit(1)
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:       arbor_models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
	}).WithLevelFromString("warn")

	params, err := app.LoadParams(config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load parameter set")
		os.Exit(1)
	}

	generator := llm.NewProviderFactory(config, nil, logger)
	defer generator.Close()

	analysisService := analysis.NewService(params, app.Generator(generator), nil, nil, config.Analysis, logger)

	mcpServer := mcp.NewServer(analysisService, params, common.GetVersion(), logger)

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}
