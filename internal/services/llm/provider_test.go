package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/moneypulse/internal/common"
)

func TestNewLimiter_Unlimited(t *testing.T) {
	limiter := newLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
}

func TestNewLimiter_QueuedCallerFailsWithinItsOwnDeadline(t *testing.T) {
	limiter := newLimiter(4 * time.Second)
	require.True(t, limiter.Allow(), "first call takes the burst token")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.Wait(ctx)
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Less(t, elapsed, time.Second, "a wait longer than the deadline is refused up front")
}

func TestProviderFactory_DisabledSkipsLimiter(t *testing.T) {
	f := &ProviderFactory{limiter: newLimiter(time.Hour)}
	f.limiter.Allow()

	start := time.Now()
	_, err := f.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewProviderFactory_RateLimit(t *testing.T) {
	tests := []struct {
		name      string
		rateLimit string
		want      rate.Limit
	}{
		{"default four seconds", "", rate.Every(4 * time.Second)},
		{"configured", "500ms", rate.Every(500 * time.Millisecond)},
		{"zero disables", "0", rate.Inf},
		{"invalid keeps default", "soon", rate.Every(4 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := common.NewDefaultConfig()
			cfg.LLM.Provider = common.LLMProviderGemini
			cfg.Gemini.RateLimit = tt.rateLimit

			f := NewProviderFactory(cfg, nil, arbor.NewLogger())
			assert.Equal(t, tt.want, f.limiter.Limit())
		})
	}
}
