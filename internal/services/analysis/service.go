// Package analysis composes the final result for a set of raw inputs: local
// scoring, one bounded call for advice text, response interpretation and
// post-processing.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/common"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/advice"
	"github.com/ternarybob/moneypulse/internal/services/llm"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

// ErrAnalysisTimeout is returned when the caller's deadline passes before a
// result is composed. Outbound timeouts never surface; they fall back.
var ErrAnalysisTimeout = errors.New("analysis timed out")

// errGeneratorPanic stands in for the reply when the generator panics
var errGeneratorPanic = errors.New("text generator panicked")

const (
	// PlaceholderMessage is used when there is neither headline nor advice
	PlaceholderMessage = "Your numbers are saved. Check back soon for your money tips."

	// Bullet prefixes each advice line in the composed message
	Bullet = "• "

	defaultTimeout       = 15 * time.Second
	defaultMaxLineLength = 140
	fillerLine           = "Check your 6 numbers again in 7 days to see your progress."
)

// ResultRecorder receives every composed result, e.g. the progress tracker
type ResultRecorder interface {
	RecordAnalysis(ctx context.Context, result *models.AnalysisResult) error
}

// Service is the response orchestrator. It is safe for concurrent use; each
// call works from its own inputs and shares no mutable state.
type Service struct {
	params    *rating.ParameterSet
	generator interfaces.TextGenerator
	history   interfaces.AnalysisStorage
	recorder  ResultRecorder
	config    common.AnalysisConfig
	logger    arbor.ILogger
	now       func() time.Time
}

// NewService creates the orchestrator. generator, history and recorder may
// be nil; a nil generator means every result is computed locally.
func NewService(
	params *rating.ParameterSet,
	generator interfaces.TextGenerator,
	history interfaces.AnalysisStorage,
	recorder ResultRecorder,
	config common.AnalysisConfig,
	logger arbor.ILogger,
) *Service {
	if params == nil {
		params = rating.DefaultParameterSet()
	}
	if config.TimeoutMs <= 0 {
		config.TimeoutMs = int(defaultTimeout / time.Millisecond)
	}
	if config.MaxLineLength <= 0 {
		config.MaxLineLength = defaultMaxLineLength
	}

	return &Service{
		params:    params,
		generator: generator,
		history:   history,
		recorder:  recorder,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Params returns the active parameter set
func (s *Service) Params() *rating.ParameterSet {
	return s.params
}

// Analyze scores the inputs and returns a complete result. Outbound and
// parse failures degrade to the local generator and are only logged. An
// error is returned only when ctx ends before the result is ready.
func (s *Service) Analyze(ctx context.Context, raw models.RawInputs) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, callerError(err)
	}

	start := s.now()
	assessment := s.params.Assess(raw)
	fallback := advice.ComputeLocalFallback(assessment.Metrics, s.params)

	fields, source := s.requestAdvice(ctx, assessment)

	if err := ctx.Err(); err != nil {
		s.logger.Warn().
			Err(err).
			Dur("elapsed", s.now().Sub(start)).
			Msg("Analysis abandoned by caller")
		return nil, callerError(err)
	}

	result := s.compose(assessment, fallback, fields, source)
	result.ID = common.NewAnalysisID()
	result.CreatedAt = s.now()

	s.record(ctx, result)

	s.logger.Info().
		Str("id", result.ID).
		Str("state", string(result.State)).
		Int("health", result.Health).
		Str("source", string(result.Source)).
		Str("version", result.ParameterVersion).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Analysis complete")

	return result, nil
}

func callerError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAnalysisTimeout, err)
	}
	return fmt.Errorf("analysis canceled: %w", err)
}

type generateResult struct {
	raw []byte
	err error
}

// requestAdvice makes the single outbound call and interprets the reply.
// A nil return means the local fallback supplies everything.
func (s *Service) requestAdvice(ctx context.Context, assessment rating.Assessment) (*llm.AdviceFields, models.ResultSource) {
	if s.generator == nil {
		return nil, models.SourceLocal
	}

	timeout := time.Duration(s.config.TimeoutMs) * time.Millisecond
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request := llm.NewAdviceRequest(assessment)

	// Buffered so a generator that ignores ctx cannot leak a blocked send.
	done := make(chan generateResult, 1)
	common.SafeGo(s.logger, "advice-generate", func() {
		res := generateResult{err: errGeneratorPanic}
		defer func() { done <- res }()
		res.raw, res.err = s.generator.Generate(callCtx, request)
	})

	var res generateResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = generateResult{err: callCtx.Err()}
	}

	if res.err != nil {
		s.logger.Warn().
			Err(res.err).
			Str("provider", s.generator.Name()).
			Str("class", string(llm.ClassifyError(res.err))).
			Dur("retry_after", llm.ExtractRetryDelay(res.err)).
			Msg("Advice request failed, using local advice")
		return nil, models.SourceLocal
	}

	switch parsed := llm.ParseResponse(res.raw).(type) {
	case llm.NormalizedResponse:
		return &parsed.AdviceFields, models.SourceNormalized
	case llm.LegacyCandidateResponse:
		if parsed.StateCoerced {
			s.logger.Debug().Str("state", string(parsed.State)).Msg("Advice state outside the allowed set, coerced")
		}
		return &parsed.AdviceFields, models.SourceLegacy
	case llm.Unparseable:
		s.logger.Warn().
			Str("provider", s.generator.Name()).
			Str("reason", parsed.Reason).
			Int("bytes", len(res.raw)).
			Msg("Advice response unusable, using local advice")
	}
	return nil, models.SourceLocal
}

// compose post-processes the chosen fields into a result
func (s *Service) compose(assessment rating.Assessment, fallback advice.Fallback, fields *llm.AdviceFields, source models.ResultSource) *models.AnalysisResult {
	state := assessment.State
	health := assessment.Health.Score
	var headline string
	var lines []string

	if fields != nil {
		if !s.config.PreferLocalScores {
			state = fields.State
			health = rating.RoundScore(fields.Health)
		}
		headline = fields.Headline
		lines = fields.Advice

		if len(lines) == 0 || strings.TrimSpace(headline) == "" {
			msgHeadline, msgLines := splitMessage(fields.Message)
			if strings.TrimSpace(headline) == "" {
				headline = msgHeadline
			}
			if len(lines) == 0 {
				lines = msgLines
			}
		}
	}

	if !state.IsValid() {
		state = models.DefaultState
	}

	headline = s.clean(headline)
	if headline == "" {
		headline = s.clean(advice.Headline(state, health))
	}

	adviceLines := s.mergeAdvice(lines, fallback.Advice)

	return &models.AnalysisResult{
		State:            state,
		Health:           health,
		Headline:         headline,
		Advice:           adviceLines,
		Message:          ComposeMessage(headline, adviceLines),
		Source:           source,
		ParameterVersion: assessment.Version,
		Metrics:          assessment.Metrics,
	}
}

func (s *Service) clean(line string) string {
	return advice.Shorten(advice.SanitizeLine(line), s.config.MaxLineLength)
}

// mergeAdvice keeps up to three distinct remote lines and pads from the
// local lines until there are exactly three.
func (s *Service) mergeAdvice(remote, local []string) []string {
	cleaned := make([]string, 0, len(remote)+len(local)+1)
	for _, line := range remote {
		cleaned = append(cleaned, s.clean(line))
	}
	unique := advice.UniqueList(cleaned)
	if len(unique) > models.AdviceLines {
		unique = unique[:models.AdviceLines]
	}

	padding := make([]string, 0, len(local)+1)
	padding = append(padding, local...)
	padding = append(padding, fillerLine)
	for _, line := range padding {
		if len(unique) >= models.AdviceLines {
			break
		}
		unique = advice.UniqueList(append(unique, s.clean(line)))
	}

	return unique
}

// splitMessage reads a composed message back into headline and lines
func splitMessage(message string) (string, []string) {
	var parts []string
	for _, line := range strings.Split(message, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

// ComposeMessage joins the headline and bulleted advice lines. The result is
// never empty.
func ComposeMessage(headline string, lines []string) string {
	var b strings.Builder
	headline = strings.TrimSpace(headline)
	b.WriteString(headline)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Bullet)
		b.WriteString(line)
	}

	if b.Len() == 0 {
		return PlaceholderMessage
	}
	return b.String()
}

// record stores the result and notifies the recorder. Failures are logged;
// the result is already final.
func (s *Service) record(ctx context.Context, result *models.AnalysisResult) {
	ctx = context.WithoutCancel(ctx)

	if s.history != nil {
		if err := s.history.SaveAnalysis(ctx, result); err != nil {
			s.logger.Warn().Err(err).Str("id", result.ID).Msg("Failed to store analysis")
		} else if s.config.HistoryLimit > 0 {
			if _, err := s.history.PruneAnalyses(ctx, s.config.HistoryLimit); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to prune analysis history")
			}
		}
	}

	if s.recorder != nil {
		if err := s.recorder.RecordAnalysis(ctx, result); err != nil {
			s.logger.Warn().Err(err).Str("id", result.ID).Msg("Failed to record analysis on progress")
		}
	}
}

// History returns up to limit stored results, newest first
func (s *Service) History(ctx context.Context, limit int) ([]*models.AnalysisResult, error) {
	if s.history == nil {
		return []*models.AnalysisResult{}, nil
	}
	return s.history.ListAnalyses(ctx, limit)
}
