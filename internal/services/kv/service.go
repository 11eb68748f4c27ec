package kv

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
)

// ErrInvalidKey is returned for keys outside [a-z0-9_.-] or longer than 128
var ErrInvalidKey = errors.New("invalid key")

var keyPattern = regexp.MustCompile(`^[a-z0-9_.-]{1,128}$`)

// Service validates keys in front of the key/value store. Provider API keys
// live here so they can rotate without a restart.
type Service struct {
	storage interfaces.KeyValueStorage
	logger  arbor.ILogger
}

// NewService creates a new key/value service
func NewService(storage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// NormalizeKey lowercases and trims a key and checks its shape
func NormalizeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

// Get retrieves a value by key
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}
	return s.storage.Get(ctx, key)
}

// Set stores or updates a key/value pair
func (s *Service) Set(ctx context.Context, key string, value string, description string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value for %s cannot be empty", key)
	}

	if err := s.storage.Set(ctx, key, value, description); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to store key/value pair")
		return err
	}

	s.logger.Info().Str("key", key).Msg("Stored key/value pair")
	return nil
}

// Delete removes a key/value pair
func (s *Service) Delete(ctx context.Context, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		if !errors.Is(err, interfaces.ErrKeyNotFound) {
			s.logger.Error().Err(err).Str("key", key).Msg("Failed to delete key/value pair")
		}
		return err
	}

	s.logger.Info().Str("key", key).Msg("Deleted key/value pair")
	return nil
}

// List returns all key/value pairs
func (s *Service) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	pairs, err := s.storage.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list key/value pairs")
		return nil, err
	}

	s.logger.Debug().Int("count", len(pairs)).Msg("Listed key/value pairs")
	return pairs, nil
}
