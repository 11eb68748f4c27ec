package app

import (
	"context"
	"fmt"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/common"
	"github.com/ternarybob/moneypulse/internal/handlers"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/services/analysis"
	"github.com/ternarybob/moneypulse/internal/services/kv"
	"github.com/ternarybob/moneypulse/internal/services/llm"
	"github.com/ternarybob/moneypulse/internal/services/mcp"
	"github.com/ternarybob/moneypulse/internal/services/progress"
	"github.com/ternarybob/moneypulse/internal/services/rating"
	"github.com/ternarybob/moneypulse/internal/services/scheduler"
	"github.com/ternarybob/moneypulse/internal/storage"
)

// RolloverJobName is the scheduled job that moves trackers to the new day
const RolloverJobName = "progress_rollover"

const rolloverTimeout = time.Minute

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	Params    *rating.ParameterSet
	Generator *llm.ProviderFactory

	KVService        *kv.Service
	ProgressService  *progress.Service
	AnalysisService  *analysis.Service
	SchedulerService *scheduler.Service

	// MCP over streamable HTTP, mounted at /mcp
	MCPServer *mcpserver.MCPServer

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	AnalysisHandler  *handlers.AnalysisHandler
	ProgressHandler  *handlers.ProgressHandler
	KVHandler        *handlers.KVHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New initializes storage, services and handlers in dependency order
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: config,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("provider", app.Generator.Name()).
		Str("parameter_version", app.Params.Version).
		Str("request_timeout", config.RequestTimeout().String()).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initServices() error {
	params, err := LoadParams(a.Config)
	if err != nil {
		return err
	}
	a.Params = params

	a.KVService = kv.NewService(a.StorageManager.KeyValueStorage(), a.Logger)
	a.Generator = llm.NewProviderFactory(a.Config, a.StorageManager.KeyValueStorage(), a.Logger)

	a.ProgressService = progress.NewService(
		a.StorageManager.ProgressStorage(),
		a.Config.Progress.DailyGoal,
		a.Logger,
	)

	a.AnalysisService = analysis.NewService(
		params,
		Generator(a.Generator),
		a.StorageManager.AnalysisStorage(),
		a.ProgressService,
		a.Config.Analysis,
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.Logger)
	if a.Config.Progress.RolloverEnabled {
		err := a.SchedulerService.RegisterJob(
			RolloverJobName,
			a.Config.Progress.RolloverSchedule,
			"Move deposit trackers to the current day",
			a.rollover,
		)
		if err != nil {
			return fmt.Errorf("failed to register rollover job: %w", err)
		}
	}
	a.SchedulerService.Start()

	a.MCPServer = mcp.NewServer(a.AnalysisService, params, common.GetVersion(), a.Logger)

	return nil
}

func (a *App) rollover() error {
	ctx, cancel := context.WithTimeout(context.Background(), rolloverTimeout)
	defer cancel()

	count, err := a.ProgressService.RolloverAll(ctx)
	if err != nil {
		return err
	}
	a.Logger.Debug().Int("trackers", count).Msg("Progress rollover complete")
	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Generator.Name(), a.Logger)
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.AnalysisService, a.Config.RequestTimeout(), a.Logger)
	a.ProgressHandler = handlers.NewProgressHandler(a.ProgressService, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)

	// Cached provider clients are dropped on every write so a rotated key
	// is picked up by the next call.
	a.KVHandler = handlers.NewKVHandler(a.KVService, func() {
		if err := a.Generator.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to reset provider clients")
		}
	}, a.Logger)
}

// Close stops background work and releases storage
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.Generator != nil {
		if err := a.Generator.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close provider clients")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}

// LoadParams returns the parameter set named by config. A params file wins
// over the registry version.
func LoadParams(config *common.Config) (*rating.ParameterSet, error) {
	if config.Scoring.ParamsFile != "" {
		params, err := rating.LoadParameterSet(config.Scoring.ParamsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load parameter set: %w", err)
		}
		return params, nil
	}

	version := config.Scoring.ParameterVersion
	if version == "" {
		version = rating.DefaultVersion
	}
	params, err := rating.LookupParameterSet(version)
	if err != nil {
		return nil, fmt.Errorf("failed to select parameter set: %w", err)
	}
	return params, nil
}

// Generator returns factory as a TextGenerator, or nil when no provider is
// configured so the orchestrator skips the outbound call entirely.
func Generator(factory *llm.ProviderFactory) interfaces.TextGenerator {
	if factory == nil || !factory.Enabled() {
		return nil
	}
	return factory
}
