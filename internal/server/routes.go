package server

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Analysis
	mux.HandleFunc("/api/analyze", s.app.AnalysisHandler.AnalyzeHandler)  // POST
	mux.HandleFunc("/api/analyses", s.app.AnalysisHandler.HistoryHandler) // GET ?limit=N
	mux.HandleFunc("/api/params", s.app.AnalysisHandler.ParamsHandler)    // GET

	// API routes - Progress
	mux.HandleFunc("/api/progress", s.app.ProgressHandler.GetProgressHandler)      // GET
	mux.HandleFunc("/api/progress/deposit", s.app.ProgressHandler.DepositHandler) // POST
	mux.HandleFunc("/api/progress/goal", s.app.ProgressHandler.GoalHandler)       // PUT

	// API routes - Variables (provider API keys)
	mux.HandleFunc("/api/kv", s.app.KVHandler.ListKVHandler) // GET
	mux.HandleFunc("/api/kv/", s.app.KVHandler.ItemHandler)  // PUT/DELETE /{key}

	// API routes - Background jobs
	mux.HandleFunc("/api/jobs", s.app.SchedulerHandler.ListJobsHandler) // GET
	mux.HandleFunc("/api/jobs/", s.app.SchedulerHandler.RunJobHandler)  // POST /{name}/run

	// MCP (Model Context Protocol) over streamable HTTP
	if s.app.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer))
	}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/shutdown", s.ShutdownHandler) // Graceful shutdown endpoint (dev mode)

	// 404 handler for unmatched routes
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
