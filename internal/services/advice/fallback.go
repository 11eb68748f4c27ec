package advice

import (
	"fmt"
	"math"

	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

// Targets used by the local advice templates.
const (
	TargetBudgetRatio  = 0.80
	TargetRunwayMonths = 3.0
	TargetDTI          = 0.60
	TargetInvestRate   = 0.10

	PraiseInvestRate = 0.05

	weeksPerYear = 52.0
)

// Fallback is a complete result produced without any external call.
type Fallback struct {
	State    models.State
	Health   int
	Headline string
	Advice   []string
}

var headlineTemplates = map[models.State]string{
	models.StateFlatlined:  "Money alarm. Your health score is %d and needs fast action.",
	models.StateCritical:   "Danger zone. Your health score is %d, so steady things this week.",
	models.StateStruggling: "Things are tight. Your health score is %d with room to climb.",
	models.StateSurviving:  "You are holding on. Your health score is %d and the basics are close.",
	models.StateHealthy:    "Nice and steady. Your health score is %d.",
	models.StateThriving:   "You are thriving with a health score of %d.",
	models.StateLegendary:  "Legendary money habits. Your health score is %d.",
}

// ComputeLocalFallback builds state, health, a headline and three numeric
// advice lines from metrics alone. A nil parameter set uses the default.
func ComputeLocalFallback(m models.Metrics, params *rating.ParameterSet) Fallback {
	if params == nil {
		params = rating.DefaultParameterSet()
	}
	a := params.AssessMetrics(m)

	return Fallback{
		State:    a.State,
		Health:   a.Health.Score,
		Headline: Headline(a.State, a.Health.Score),
		Advice: []string{
			praiseLine(m),
			correctionLine(m),
			nextStepLine(m),
		},
	}
}

// Headline returns the template line for a tier.
func Headline(state models.State, health int) string {
	tmpl, ok := headlineTemplates[state]
	if !ok {
		tmpl = headlineTemplates[models.DefaultState]
	}
	return fmt.Sprintf(tmpl, health)
}

// praiseLine picks the first strong dimension: low spending, then savings,
// then investing.
func praiseLine(m models.Metrics) string {
	in := m.Inputs
	switch {
	case in.MonthlyIncome > 0 && m.BudgetRatio <= TargetBudgetRatio:
		return fmt.Sprintf("Great job keeping spending to %s of your income.", formatPercent(m.BudgetRatio))
	case in.MonthlySpending <= 0 && in.TotalSavings > 0:
		return fmt.Sprintf("You have %s saved with no monthly spending logged.", formatMoney(in.TotalSavings))
	case m.RunwayMonths >= TargetRunwayMonths:
		return fmt.Sprintf("Your savings cover %s of spending, a solid cushion.", formatMonths(m.RunwayMonths))
	case m.InvestRate >= PraiseInvestRate:
		return fmt.Sprintf("You invest %s of your income each month, keep it going.", formatPercent(m.InvestRate))
	}
	return fmt.Sprintf("You took the first step by checking in today with %s saved and %s invested.",
		formatMoney(in.TotalSavings), formatPercent(m.InvestRate))
}

type weakness int

const (
	weakNone weakness = iota
	weakIncome
	weakBudget
	weakRunway
	weakDebt
	weakInvest
)

// worstDimension ranks each dimension by how far it sits from its target,
// relative to that target. Investing counts half as much as the others.
func worstDimension(m models.Metrics) weakness {
	in := m.Inputs
	if in.MonthlyIncome <= 0 {
		return weakIncome
	}

	worst, worstGap := weakNone, 0.0
	consider := func(w weakness, gap float64) {
		if gap > worstGap {
			worst, worstGap = w, gap
		}
	}

	consider(weakBudget, (m.BudgetRatio-TargetBudgetRatio)/TargetBudgetRatio)
	consider(weakRunway, (TargetRunwayMonths-m.RunwayMonths)/TargetRunwayMonths)
	consider(weakDebt, (m.DTI-TargetDTI)/TargetDTI)
	consider(weakInvest, 0.5*(TargetInvestRate-m.InvestRate)/TargetInvestRate)

	return worst
}

func correctionLine(m models.Metrics) string {
	in := m.Inputs
	switch worstDimension(m) {
	case weakIncome:
		if in.MonthlySpending > 0 {
			return fmt.Sprintf("Bring in at least %s a month so income covers your spending.", formatMoney(in.MonthlySpending))
		}
		return fmt.Sprintf("Log your monthly income so the plan can start, it shows %s a month right now.", formatMoney(in.MonthlyIncome))
	case weakBudget:
		target := TargetBudgetRatio * in.MonthlyIncome
		return fmt.Sprintf("Trim spending by %s a month to get it down to %s, about 80 percent of your income.",
			formatMoney(in.MonthlySpending-target), formatMoney(target))
	case weakRunway:
		if in.MonthlySpending <= 0 {
			return fmt.Sprintf("Log your monthly spending and build on the %s you have saved.", formatMoney(in.TotalSavings))
		}
		target := TargetRunwayMonths * in.MonthlySpending
		return fmt.Sprintf("Grow savings by %s to reach 3 months of spending, about %s in total.",
			formatMoney(target-in.TotalSavings), formatMoney(target))
	case weakDebt:
		target := TargetDTI * in.MonthlyIncome
		return fmt.Sprintf("Pay down %s of debt to bring it under %s, which is 60 percent of one month of income.",
			formatMoney(in.TotalDebt-target), formatMoney(target))
	case weakInvest:
		return fmt.Sprintf("Raise investing by %s a month to reach 10 percent of your income.",
			formatMoney(TargetInvestRate*in.MonthlyIncome-in.MonthlyInvestments))
	}
	return fmt.Sprintf("Keep spending at or below %s of income to protect your score.", formatPercent(math.Max(m.BudgetRatio, 0)))
}

func nextStepLine(m models.Metrics) string {
	in := m.Inputs
	if in.MonthlyIncome <= 0 {
		weekly := math.Max(10, math.Ceil(in.MonthlySpending*0.05*12/weeksPerYear))
		return fmt.Sprintf("Start an emergency fund with %s a week to reach %s in a year from the %s saved today.",
			formatMoney(weekly), formatMoney(in.TotalSavings+weekly*weeksPerYear), formatMoney(in.TotalSavings))
	}

	target := TargetInvestRate * in.MonthlyIncome
	if in.MonthlyInvestments < target {
		weekly := math.Ceil((target - in.MonthlyInvestments) * 12 / weeksPerYear)
		return fmt.Sprintf("Set up a weekly auto-transfer of %s to reach a 10 percent investing rate.", formatMoney(weekly))
	}

	weekly := math.Ceil(in.MonthlyInvestments * 12 / weeksPerYear)
	return fmt.Sprintf("Keep your weekly auto-transfer of about %s going and review it in 30 days.", formatMoney(weekly))
}
