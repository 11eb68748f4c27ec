// Package progress holds the pure transitions of the daily savings tracker.
// Every function takes a Progress value and returns the next one; storage is
// the caller's concern.
package progress

import (
	"math"
	"time"

	"github.com/ternarybob/moneypulse/internal/models"
)

const dayLayout = "2006-01-02"

// New returns an empty tracker for the given day.
func New(id string, dailyGoal float64, now time.Time) models.Progress {
	if id == "" {
		id = models.DefaultProgressID
	}
	return models.Progress{
		ID:        id,
		Day:       now.Format(dayLayout),
		DailyGoal: models.CoerceAmount(dailyGoal),
		UpdatedAt: now,
	}
}

// Rollover moves p to the calendar day of now. The streak grows when the day
// being closed met its goal and directly precedes now; otherwise it resets.
func Rollover(p models.Progress, now time.Time) models.Progress {
	today := now.Format(dayLayout)
	if p.Day == today {
		return p
	}
	if p.Day == "" {
		p.Day = today
		p.UpdatedAt = now
		return p
	}

	closed, err := time.ParseInLocation(dayLayout, p.Day, now.Location())
	consecutive := err == nil && closed.AddDate(0, 0, 1).Format(dayLayout) == today

	if consecutive && GoalMet(p) {
		p.StreakDays++
	} else {
		p.StreakDays = 0
	}

	p.Day = today
	p.DepositedToday = 0
	p.UpdatedAt = now
	return p
}

// ApplyDeposit records a deposit made at now. Non-positive or non-finite
// amounts only roll the day over.
func ApplyDeposit(p models.Progress, amount float64, now time.Time) models.Progress {
	p = Rollover(p, now)
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return p
	}

	wasMet := GoalMet(p)

	p.DepositedToday += amount
	p.TotalDeposited += amount
	p.Deposits++
	p.LastAction = models.ActionDeposit
	if !wasMet && GoalMet(p) {
		p.LastAction = models.ActionGoalReached
	}
	p.LastActionAt = now
	p.UpdatedAt = now
	return p
}

// SetDailyGoal replaces the daily target. Invalid goals become 0 (no goal).
func SetDailyGoal(p models.Progress, goal float64, now time.Time) models.Progress {
	p = Rollover(p, now)
	p.DailyGoal = models.CoerceAmount(goal)
	p.LastAction = models.ActionGoalSet
	p.LastActionAt = now
	p.UpdatedAt = now
	return p
}

// RecordAnalysis remembers the latest state and health shown to the client.
func RecordAnalysis(p models.Progress, result *models.AnalysisResult, now time.Time) models.Progress {
	p = Rollover(p, now)
	if result == nil {
		return p
	}
	p.LastState = result.State
	p.LastHealth = result.Health
	p.LastAction = models.ActionAnalysis
	p.LastActionAt = now
	p.UpdatedAt = now
	return p
}

// GoalMet reports whether today's deposits reach a positive goal.
func GoalMet(p models.Progress) bool {
	return p.DailyGoal > 0 && p.DepositedToday >= p.DailyGoal
}

// Remaining is what is left to deposit today, never negative.
func Remaining(p models.Progress) float64 {
	return math.Max(p.DailyGoal-p.DepositedToday, 0)
}
