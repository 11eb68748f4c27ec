package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB owns the badgerhold store shared by the progress, analysis and KV
// storages. Badger locks its directory, so only one process may hold it.
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	path   string
}

// NewBadgerDB opens (or creates) the store at config.Path
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	path := filepath.Clean(config.Path)

	if config.ResetOnStartup {
		if err := os.RemoveAll(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to reset database directory")
		} else {
			logger.Debug().Str("path", path).Msg("Database reset (reset_on_startup=true)")
		}
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.SyncWrites = config.SyncWrites
	options.NumVersionsToKeep = 1
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}

	logger.Debug().
		Str("path", path).
		Bool("sync_writes", config.SyncWrites).
		Msg("Badger database opened")

	return &BadgerDB{store: store, logger: logger, path: path}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Path returns the cleaned database directory
func (b *BadgerDB) Path() string {
	return b.path
}

func (b *BadgerDB) Close() error {
	if b.store == nil {
		return nil
	}
	err := b.store.Close()
	b.store = nil
	return err
}
