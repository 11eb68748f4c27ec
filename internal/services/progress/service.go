package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
)

// ErrInvalidAmount is returned for deposits or goals outside the accepted range
var ErrInvalidAmount = errors.New("invalid amount")

// Service applies the pure transitions against stored progress
type Service struct {
	storage   interfaces.ProgressStorage
	dailyGoal float64
	logger    arbor.ILogger
	validate  *validator.Validate
	now       func() time.Time
}

// NewService creates a progress service. dailyGoal seeds new trackers.
func NewService(storage interfaces.ProgressStorage, dailyGoal float64, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		dailyGoal: dailyGoal,
		logger:    logger,
		validate:  validator.New(),
		now:       time.Now,
	}
}

func (s *Service) update(ctx context.Context, fn func(p models.Progress, now time.Time) models.Progress) (*models.Progress, error) {
	return s.storage.UpdateProgress(ctx, models.DefaultProgressID, func(current *models.Progress) (models.Progress, error) {
		now := s.now()
		p := New(models.DefaultProgressID, s.dailyGoal, now)
		if current != nil {
			p = *current
		}
		return fn(p, now), nil
	})
}

// Get returns today's view of the tracker, rolling the day over if needed
func (s *Service) Get(ctx context.Context) (*models.Progress, error) {
	return s.update(ctx, Rollover)
}

// Deposit records a savings deposit
func (s *Service) Deposit(ctx context.Context, req models.DepositRequest) (*models.Progress, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, fmt.Errorf("%w: amount must be finite", ErrInvalidAmount)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	p, err := s.update(ctx, func(p models.Progress, now time.Time) models.Progress {
		return ApplyDeposit(p, req.Amount, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("amount", fmt.Sprintf("%.2f", req.Amount)).
		Str("deposited_today", fmt.Sprintf("%.2f", p.DepositedToday)).
		Int("streak_days", p.StreakDays).
		Bool("goal_met", GoalMet(*p)).
		Msg("Deposit recorded")

	return p, nil
}

// SetGoal replaces the daily goal
func (s *Service) SetGoal(ctx context.Context, req models.GoalRequest) (*models.Progress, error) {
	if math.IsNaN(req.DailyGoal) || math.IsInf(req.DailyGoal, 0) {
		return nil, fmt.Errorf("%w: goal must be finite", ErrInvalidAmount)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return s.update(ctx, func(p models.Progress, now time.Time) models.Progress {
		return SetDailyGoal(p, req.DailyGoal, now)
	})
}

// RecordAnalysis stores the latest state and health on the tracker
func (s *Service) RecordAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	_, err := s.update(ctx, func(p models.Progress, now time.Time) models.Progress {
		return RecordAnalysis(p, result, now)
	})
	return err
}

// RolloverAll moves every stored tracker to today. Used by the scheduled job.
func (s *Service) RolloverAll(ctx context.Context) (int, error) {
	all, err := s.storage.ListProgress(ctx)
	if err != nil {
		return 0, err
	}

	rolled := 0
	for _, stored := range all {
		before := stored.Day
		p, err := s.storage.UpdateProgress(ctx, stored.ID, func(current *models.Progress) (models.Progress, error) {
			if current == nil {
				return *stored, nil
			}
			return Rollover(*current, s.now()), nil
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("id", stored.ID).Msg("Failed to roll progress over")
			continue
		}
		if p.Day != before {
			rolled++
		}
	}

	s.logger.Debug().Int("trackers", len(all)).Int("rolled", rolled).Msg("Progress rollover complete")
	return rolled, nil
}
