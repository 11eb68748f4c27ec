package models

import "time"

// ProgressAction names the last user-visible action recorded on Progress.
type ProgressAction string

const (
	ActionNone        ProgressAction = ""
	ActionDeposit     ProgressAction = "deposit"
	ActionGoalReached ProgressAction = "goal_reached"
	ActionGoalSet     ProgressAction = "goal_set"
	ActionAnalysis    ProgressAction = "analysis"
)

// DefaultProgressID keys the single client's progress record.
const DefaultProgressID = "default"

// Progress tracks daily savings deposits for one client. It is a plain value:
// transitions return a new Progress and never touch stored state.
type Progress struct {
	ID             string         `json:"id"`
	Day            string         `json:"day"` // YYYY-MM-DD in the client's zone
	DepositedToday float64        `json:"deposited_today"`
	DailyGoal      float64        `json:"daily_goal"`
	TotalDeposited float64        `json:"total_deposited"`
	Deposits       int            `json:"deposits"`
	StreakDays     int            `json:"streak_days"`
	LastAction     ProgressAction `json:"last_action"`
	LastActionAt   time.Time      `json:"last_action_at"`
	LastState      State          `json:"last_state,omitempty"`
	LastHealth     int            `json:"last_health"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// DepositRequest is the body of a deposit call
type DepositRequest struct {
	Amount float64 `json:"amount" validate:"gt=0,lte=1000000000"`
}

// GoalRequest is the body of a daily goal update
type GoalRequest struct {
	DailyGoal float64 `json:"daily_goal" validate:"gte=0,lte=1000000000"`
}
