package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/common"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ProviderFactory owns the provider clients and implements
// interfaces.TextGenerator. Each Generate call makes exactly one request.
type ProviderFactory struct {
	provider     common.LLMProvider
	geminiConfig common.GeminiConfig
	claudeConfig common.ClaudeConfig
	kvStorage    interfaces.KeyValueStorage
	logger       arbor.ILogger
	limiter      *rate.Limiter

	mu           sync.Mutex
	geminiClient *genai.Client
	claudeClient *anthropic.Client
}

var _ interfaces.TextGenerator = (*ProviderFactory)(nil)

// NewProviderFactory creates a provider factory for the configured provider.
// kvStorage may be nil; API keys then come from env or config only.
func NewProviderFactory(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *ProviderFactory {
	f := &ProviderFactory{
		provider:     config.LLM.Provider,
		geminiConfig: config.Gemini,
		claudeConfig: config.Claude,
		kvStorage:    kvStorage,
		logger:       logger,
	}
	if f.provider == "" {
		f.provider = common.LLMProviderNone
	}

	var interval time.Duration
	switch f.provider {
	case common.LLMProviderGemini:
		interval = common.ParseDuration(f.geminiConfig.RateLimit, 4*time.Second)
	case common.LLMProviderClaude:
		interval = common.ParseDuration(f.claudeConfig.RateLimit, time.Second)
	}
	f.limiter = newLimiter(interval)

	return f
}

// newLimiter returns the process-wide outbound limiter. Calls share it, but
// each waits under its own deadline and Wait refuses up front when the slot
// would arrive too late. A zero interval disables limiting.
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Name identifies the provider and model in logs
func (f *ProviderFactory) Name() string {
	switch f.provider {
	case common.LLMProviderGemini:
		return "gemini/" + normalizeModel(f.geminiConfig.Model)
	case common.LLMProviderClaude:
		return "claude/" + normalizeModel(f.claudeConfig.Model)
	}
	return string(common.LLMProviderNone)
}

// Enabled reports whether outbound calls are configured
func (f *ProviderFactory) Enabled() bool {
	return f.provider == common.LLMProviderGemini || f.provider == common.LLMProviderClaude
}

// Generate sends the advice request to the configured provider and returns
// the raw response document. The limiter wait counts against ctx.
func (f *ProviderFactory) Generate(ctx context.Context, request *models.AdviceRequest) ([]byte, error) {
	if !f.Enabled() {
		return nil, ErrNoProvider
	}
	if request == nil {
		return nil, fmt.Errorf("advice request cannot be nil")
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	f.logger.Debug().
		Str("provider", f.Name()).
		Str("state", string(request.Context.State)).
		Int("health", request.Context.Health).
		Msg("Requesting advice text")

	switch f.provider {
	case common.LLMProviderClaude:
		return f.generateWithClaude(ctx, request)
	default:
		return f.generateWithGemini(ctx, request)
	}
}

// normalizeModel removes a provider prefix from a model name if present
func normalizeModel(model string) string {
	for _, prefix := range []string{"claude/", "anthropic/", "gemini/", "google/"} {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

func (f *ProviderFactory) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.geminiClient != nil {
		return f.geminiClient, nil
	}

	apiKey, err := common.ResolveAPIKey(ctx, f.kvStorage, "gemini_api_key", f.geminiConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Gemini API key: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

func (f *ProviderFactory) getClaudeClient(ctx context.Context) (*anthropic.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claudeClient != nil {
		return f.claudeClient, nil
	}

	apiKey, err := common.ResolveAPIKey(ctx, f.kvStorage, "anthropic_api_key", f.claudeConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Anthropic API key: %w", err)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	f.claudeClient = &client
	return f.claudeClient, nil
}

// generateWithGemini returns the full GenerateContentResponse as JSON so the
// caller sees the provider's candidate structure.
func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *models.AdviceRequest) ([]byte, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, systemText, err := convertMessagesToGemini(adviceMessages(request))
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(f.geminiConfig.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}
	if level := parseGeminiThinkingLevel(f.geminiConfig.Thinking); level != "" {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingLevel: level}
	}

	schema, err := convertToGenaiSchema(AdviceOutputSchema())
	if err != nil {
		f.logger.Warn().Err(err).Msg("Failed to convert output schema, requesting free text")
	} else if schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = schema
	}

	model := normalizeModel(f.geminiConfig.Model)
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode Gemini response: %w", err)
	}
	return raw, nil
}

func (f *ProviderFactory) generateWithClaude(ctx context.Context, request *models.AdviceRequest) ([]byte, error) {
	client, err := f.getClaudeClient(ctx)
	if err != nil {
		return nil, err
	}

	claudeMessages, systemText, err := convertMessagesToClaude(adviceMessages(request))
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	maxTokens := f.claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	model := normalizeModel(f.claudeConfig.Model)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}
	if f.claudeConfig.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(f.claudeConfig.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude %s: %w", model, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, ErrEmptyResponse
	}

	return []byte(text.String()), nil
}

// parseGeminiThinkingLevel converts a string thinking level to genai.ThinkingLevel
func parseGeminiThinkingLevel(level string) genai.ThinkingLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "MINIMAL":
		return genai.ThinkingLevelMinimal
	case "LOW":
		return genai.ThinkingLevelLow
	case "MEDIUM":
		return genai.ThinkingLevelMedium
	case "HIGH":
		return genai.ThinkingLevelHigh
	default:
		return ""
	}
}

// Close drops cached clients; the next call recreates them
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.geminiClient = nil
	f.claudeClient = nil
	return nil
}
