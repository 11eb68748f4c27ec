package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// KVStorage holds API keys and small runtime settings
type KVStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewKVStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KeyValueStorage {
	return &KVStorage{db: db, logger: logger}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	pair, err := s.GetPair(ctx, key)
	if err != nil {
		return "", err
	}
	return pair.Value, nil
}

// GetPair returns the pair with its timestamps
func (s *KVStorage) GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error) {
	var pair interfaces.KeyValuePair
	err := s.db.Store().Get(normalizeKey(key), &pair)
	switch {
	case errors.Is(err, badgerhold.ErrNotFound):
		return nil, interfaces.ErrKeyNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return &pair, nil
}

// Set upserts a pair. CreatedAt of an existing pair is kept; the read and
// the write share one transaction.
func (s *KVStorage) Set(ctx context.Context, key string, value string, description string) error {
	normalized := normalizeKey(key)
	if normalized == "" {
		return fmt.Errorf("key cannot be empty")
	}

	store := s.db.Store()
	err := store.Badger().Update(func(txn *badger.Txn) error {
		now := time.Now()
		pair := interfaces.KeyValuePair{
			Key:         normalized,
			Value:       value,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		var existing interfaces.KeyValuePair
		err := store.TxGet(txn, normalized, &existing)
		switch {
		case err == nil:
			pair.CreatedAt = existing.CreatedAt
		case !errors.Is(err, badgerhold.ErrNotFound):
			return err
		}

		return store.TxUpsert(txn, normalized, &pair)
	})
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", normalized, err)
	}

	s.logger.Debug().Str("key", normalized).Msg("Stored key/value pair")
	return nil
}

func (s *KVStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Delete(normalizeKey(key), &interfaces.KeyValuePair{})
	switch {
	case errors.Is(err, badgerhold.ErrNotFound):
		return interfaces.ErrKeyNotFound
	case err != nil:
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// List returns every pair, most recently updated first
func (s *KVStorage) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	var pairs []interfaces.KeyValuePair
	if err := s.db.Store().Find(&pairs, badgerhold.Where("Key").Ne("").SortBy("UpdatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list key/value pairs: %w", err)
	}
	return pairs, nil
}
