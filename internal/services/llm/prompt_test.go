package llm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/common"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/rating"
	"google.golang.org/genai"
)

func TestNewAdviceRequest(t *testing.T) {
	assessment := rating.DefaultParameterSet().Assess(models.RawInputs{
		MonthlyIncome:      5000,
		MonthlySpending:    3000,
		TotalSavings:       10000,
		TotalDebt:          2000,
		MonthlyInvestments: 500,
	})

	req := NewAdviceRequest(assessment)

	assert.Equal(t, assessment.State, req.Context.State)
	assert.Equal(t, assessment.Health.Score, req.Context.Health)
	assert.Equal(t, rating.VersionV1, req.Context.ParameterVersion)
	assert.Len(t, req.Context.AllowedStates, 7)
	assert.Contains(t, req.Prompt, "share of income spent: 60 percent")
	assert.Contains(t, req.Prompt, "allowed states, worst to best: FLATLINED")
	assert.Contains(t, req.Prompt, "context json:")
}

func TestNewAdviceRequest_ZeroIncomeEncodes(t *testing.T) {
	assessment := rating.DefaultParameterSet().Assess(models.RawInputs{MonthlySpending: 900})
	req := NewAdviceRequest(assessment)

	assert.Contains(t, req.Prompt, "share of income spent: no income")

	raw, err := json.Marshal(req)
	require.NoError(t, err, "infinite ratios must still encode")
	assert.Contains(t, string(raw), `"budget_ratio":null`)
}

func TestAdviceOutputSchema_ConvertsForGemini(t *testing.T) {
	schema, err := convertToGenaiSchema(AdviceOutputSchema())
	require.NoError(t, err)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"state", "health", "headline", "advice"}, schema.Required)
	require.Contains(t, schema.Properties, "state")
	assert.Len(t, schema.Properties["state"].Enum, 7)
	require.NotNil(t, schema.Properties["health"].Maximum)
	assert.Equal(t, 100.0, *schema.Properties["health"].Maximum)
	assert.Equal(t, genai.TypeString, schema.Properties["advice"].Items.Type)

	_, err = convertToGenaiSchema(map[string]interface{}{"type": "tuple"})
	assert.Error(t, err)
}

func TestConvertMessages(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "numbers"},
		{Role: "assistant", Content: "ok"},
	}

	claudeMessages, system, err := convertMessagesToClaude(messages)
	require.NoError(t, err)
	assert.Equal(t, "rules", system)
	assert.Len(t, claudeMessages, 2)

	contents, system, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	assert.Equal(t, "rules", system)
	require.Len(t, contents, 2)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)

	_, _, err = convertMessagesToGemini([]interfaces.Message{{Role: "system", Content: "only"}})
	assert.Error(t, err)
	_, _, err = convertMessagesToClaude(nil)
	assert.Error(t, err)
}

func TestProviderFactory_None(t *testing.T) {
	config := common.NewDefaultConfig()
	factory := NewProviderFactory(config, nil, arbor.NewLogger())

	assert.False(t, factory.Enabled())
	assert.Equal(t, "none", factory.Name())

	_, err := factory.Generate(context.Background(), &models.AdviceRequest{})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestProviderFactory_Names(t *testing.T) {
	config := common.NewDefaultConfig()
	config.LLM.Provider = common.LLMProviderGemini
	config.Gemini.Model = "google/gemini-2.5-flash"
	assert.Equal(t, "gemini/gemini-2.5-flash", NewProviderFactory(config, nil, arbor.NewLogger()).Name())

	config.LLM.Provider = common.LLMProviderClaude
	config.Claude.Model = "claude-3-5-haiku-latest"
	assert.Equal(t, "claude/claude-3-5-haiku-latest", NewProviderFactory(config, nil, arbor.NewLogger()).Name())
}

func TestProviderFactory_LimiterHonoursDeadline(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("MONEYPULSE_CLAUDE_API_KEY", "")

	config := common.NewDefaultConfig()
	config.LLM.Provider = common.LLMProviderClaude
	config.Claude.APIKey = ""
	config.Claude.RateLimit = "1h"
	factory := NewProviderFactory(config, nil, arbor.NewLogger())

	// First call takes the only token and fails on the missing key.
	_, err := factory.Generate(context.Background(), &models.AdviceRequest{Prompt: "x"})
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = factory.Generate(ctx, &models.AdviceRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "limiter must not outlive the deadline")
	assert.Contains(t, []ErrorClass{ErrorClassRateLimited, ErrorClassTimeout}, ClassifyError(err))
}
