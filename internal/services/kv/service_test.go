package kv

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
)

type memoryKV struct {
	values map[string]interfaces.KeyValuePair
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string]interfaces.KeyValuePair{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	pair, ok := m.values[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return pair.Value, nil
}

func (m *memoryKV) GetPair(_ context.Context, key string) (*interfaces.KeyValuePair, error) {
	pair, ok := m.values[key]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}
	return &pair, nil
}

func (m *memoryKV) Set(_ context.Context, key, value, description string) error {
	m.values[key] = interfaces.KeyValuePair{Key: key, Value: value, Description: description}
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	if _, ok := m.values[key]; !ok {
		return interfaces.ErrKeyNotFound
	}
	delete(m.values, key)
	return nil
}

func (m *memoryKV) List(_ context.Context) ([]interfaces.KeyValuePair, error) {
	pairs := make([]interfaces.KeyValuePair, 0, len(m.values))
	for _, p := range m.values {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "lowercased", key: "  GEMINI_API_KEY ", want: "gemini_api_key"},
		{name: "dots and dashes", key: "claude.api-key", want: "claude.api-key"},
		{name: "empty", key: "   ", wantErr: true},
		{name: "slash", key: "a/b", wantErr: true},
		{name: "space inside", key: "api key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemoryKV()
	svc := NewService(store, arbor.NewLogger())

	require.NoError(t, svc.Set(ctx, "Gemini_API_Key", "secret-value", "provider key"))

	value, err := svc.Get(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret-value", value)

	pairs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "gemini_api_key", pairs[0].Key)

	require.NoError(t, svc.Delete(ctx, "GEMINI_API_KEY"))
	assert.ErrorIs(t, svc.Delete(ctx, "gemini_api_key"), interfaces.ErrKeyNotFound)
}

func TestService_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryKV(), arbor.NewLogger())

	assert.ErrorIs(t, svc.Set(ctx, "bad key", "v", ""), ErrInvalidKey)
	assert.Error(t, svc.Set(ctx, "good_key", "   ", ""))
	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
