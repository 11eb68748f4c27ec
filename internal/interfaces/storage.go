package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/moneypulse/internal/models"
)

// ErrProgressNotFound is returned when no progress record exists for an id
var ErrProgressNotFound = errors.New("progress not found")

// ErrAnalysisNotFound is returned when an analysis id is unknown
var ErrAnalysisNotFound = errors.New("analysis not found")

// ProgressStorage persists the daily deposit tracker
type ProgressStorage interface {
	GetProgress(ctx context.Context, id string) (*models.Progress, error)
	SaveProgress(ctx context.Context, progress *models.Progress) error

	// UpdateProgress loads the record (or nil when absent), applies fn and
	// saves the result. Calls for the same store are serialized.
	UpdateProgress(ctx context.Context, id string, fn func(current *models.Progress) (models.Progress, error)) (*models.Progress, error)

	// ListProgress returns every stored tracker, used by the rollover job
	ListProgress(ctx context.Context) ([]*models.Progress, error)
}

// AnalysisStorage keeps a bounded history of analysis results
type AnalysisStorage interface {
	SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisResult, error)

	// ListAnalyses returns up to limit results, newest first
	ListAnalyses(ctx context.Context, limit int) ([]*models.AnalysisResult, error)

	// PruneAnalyses keeps the newest keep results and returns how many were removed
	PruneAnalyses(ctx context.Context, keep int) (int, error)

	CountAnalyses(ctx context.Context) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	ProgressStorage() ProgressStorage
	AnalysisStorage() AnalysisStorage
	Close() error
}
