package handlers

import (
	"context"

	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/rating"
	"github.com/ternarybob/moneypulse/internal/services/scheduler"
)

// AnalysisService defines the methods needed from the response orchestrator.
type AnalysisService interface {
	Analyze(ctx context.Context, raw models.RawInputs) (*models.AnalysisResult, error)
	History(ctx context.Context, limit int) ([]*models.AnalysisResult, error)
	Params() *rating.ParameterSet
}

// ProgressService defines the methods needed from the daily deposit tracker.
type ProgressService interface {
	Get(ctx context.Context) (*models.Progress, error)
	Deposit(ctx context.Context, req models.DepositRequest) (*models.Progress, error)
	SetGoal(ctx context.Context, req models.GoalRequest) (*models.Progress, error)
}

// JobScheduler defines the methods needed from the scheduler service.
type JobScheduler interface {
	GetAllJobStatuses() []*scheduler.JobStatus
	TriggerJob(name string) error
}

// KVService defines the methods needed from the key/value store.
type KVService interface {
	List(ctx context.Context) ([]interfaces.KeyValuePair, error)
	Set(ctx context.Context, key string, value string, description string) error
	Delete(ctx context.Context, key string) error
}
