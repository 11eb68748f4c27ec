package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements the AnalysisStorage interface for Badger
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

// SaveAnalysis stores a result keyed by its id
func (s *AnalysisStorage) SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("analysis result requires an id")
	}
	if err := s.db.Store().Upsert(result.ID, result); err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", result.ID, err)
	}
	return nil
}

// GetAnalysis retrieves a result by id
func (s *AnalysisStorage) GetAnalysis(ctx context.Context, id string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := s.db.Store().Get(id, &result)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return &result, nil
}

// ListAnalyses returns up to limit results, newest first. limit <= 0 returns all.
func (s *AnalysisStorage) ListAnalyses(ctx context.Context, limit int) ([]*models.AnalysisResult, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.AnalysisResult
	if err := s.db.Store().Find(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	results := make([]*models.AnalysisResult, len(rows))
	for i := range rows {
		results[i] = &rows[i]
	}
	return results, nil
}

// PruneAnalyses deletes everything older than the newest keep results
func (s *AnalysisStorage) PruneAnalyses(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	var stale []models.AnalysisResult
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse().Skip(keep)
	if err := s.db.Store().Find(&stale, query); err != nil {
		return 0, fmt.Errorf("failed to find stale analyses: %w", err)
	}

	removed := 0
	for _, r := range stale {
		if err := s.db.Store().Delete(r.ID, &models.AnalysisResult{}); err != nil {
			s.logger.Warn().Err(err).Str("id", r.ID).Msg("Failed to prune analysis")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("kept", keep).Msg("Pruned analysis history")
	}
	return removed, nil
}

// CountAnalyses returns the number of stored results
func (s *AnalysisStorage) CountAnalyses(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.AnalysisResult{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return int(count), nil
}
