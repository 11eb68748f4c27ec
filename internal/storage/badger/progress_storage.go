package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ProgressStorage implements the ProgressStorage interface for Badger
type ProgressStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex // serializes UpdateProgress within this process
}

// NewProgressStorage creates a new ProgressStorage instance
func NewProgressStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ProgressStorage {
	return &ProgressStorage{
		db:     db,
		logger: logger,
	}
}

func progressKey(id string) string {
	if id == "" {
		return models.DefaultProgressID
	}
	return id
}

// GetProgress retrieves a tracker by id
func (s *ProgressStorage) GetProgress(ctx context.Context, id string) (*models.Progress, error) {
	var p models.Progress
	err := s.db.Store().Get(progressKey(id), &p)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress %s: %w", id, err)
	}
	return &p, nil
}

// SaveProgress upserts a tracker
func (s *ProgressStorage) SaveProgress(ctx context.Context, progress *models.Progress) error {
	if progress == nil {
		return fmt.Errorf("progress cannot be nil")
	}
	progress.ID = progressKey(progress.ID)
	if err := s.db.Store().Upsert(progress.ID, progress); err != nil {
		return fmt.Errorf("failed to save progress %s: %w", progress.ID, err)
	}
	return nil
}

const maxUpdateAttempts = 3

// UpdateProgress applies fn to the stored tracker and saves the result in one
// Badger transaction. A write conflict from another handle is retried.
func (s *ProgressStorage) UpdateProgress(ctx context.Context, id string, fn func(current *models.Progress) (models.Progress, error)) (*models.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey(id)
	var next models.Progress
	var err error

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		err = s.db.Store().Badger().Update(func(txn *badger.Txn) error {
			var stored models.Progress
			var current *models.Progress

			getErr := s.db.Store().TxGet(txn, key, &stored)
			switch {
			case getErr == nil:
				current = &stored
			case !errors.Is(getErr, badgerhold.ErrNotFound):
				return fmt.Errorf("failed to get progress %s: %w", key, getErr)
			}

			updated, fnErr := fn(current)
			if fnErr != nil {
				return fnErr
			}
			updated.ID = key
			next = updated

			return s.db.Store().TxUpsert(txn, key, &next)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.logger.Debug().Str("id", key).Int("attempt", attempt).Msg("Progress update conflicted, retrying")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("id", next.ID).
		Str("day", next.Day).
		Int("streak_days", next.StreakDays).
		Str("last_action", string(next.LastAction)).
		Msg("Progress updated")

	return &next, nil
}

// ListProgress returns every stored tracker
func (s *ProgressStorage) ListProgress(ctx context.Context) ([]*models.Progress, error) {
	var rows []models.Progress
	if err := s.db.Store().Find(&rows, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	result := make([]*models.Progress, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
