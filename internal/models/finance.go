package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RunwaySentinel is reported as runway when there is savings but no spending.
const RunwaySentinel = 99.999

// RawInputs holds the six user-supplied figures. JSON fields accept either
// numbers or numeric strings such as "5,000" or "$1200".
type RawInputs struct {
	MonthlyIncome      float64 `json:"monthly_income"`
	MonthlySpending    float64 `json:"monthly_spending"`
	TotalSavings       float64 `json:"total_savings"`
	TotalDebt          float64 `json:"total_debt"`
	MonthlyInvestments float64 `json:"monthly_investments"`
	InvestmentBalance  float64 `json:"investment_balance"`
}

// Sanitized returns a copy with every missing, negative or non-finite field
// coerced to 0.
func (r RawInputs) Sanitized() RawInputs {
	return RawInputs{
		MonthlyIncome:      CoerceAmount(r.MonthlyIncome),
		MonthlySpending:    CoerceAmount(r.MonthlySpending),
		TotalSavings:       CoerceAmount(r.TotalSavings),
		TotalDebt:          CoerceAmount(r.TotalDebt),
		MonthlyInvestments: CoerceAmount(r.MonthlyInvestments),
		InvestmentBalance:  CoerceAmount(r.InvestmentBalance),
	}
}

// UnmarshalJSON decodes each field leniently. Values that cannot be read as a
// number become 0 rather than failing the whole document.
func (r *RawInputs) UnmarshalJSON(data []byte) error {
	var aux struct {
		MonthlyIncome      json.RawMessage `json:"monthly_income"`
		MonthlySpending    json.RawMessage `json:"monthly_spending"`
		TotalSavings       json.RawMessage `json:"total_savings"`
		TotalDebt          json.RawMessage `json:"total_debt"`
		MonthlyInvestments json.RawMessage `json:"monthly_investments"`
		InvestmentBalance  json.RawMessage `json:"investment_balance"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = RawInputs{
		MonthlyIncome:      ParseAmount(aux.MonthlyIncome),
		MonthlySpending:    ParseAmount(aux.MonthlySpending),
		TotalSavings:       ParseAmount(aux.TotalSavings),
		TotalDebt:          ParseAmount(aux.TotalDebt),
		MonthlyInvestments: ParseAmount(aux.MonthlyInvestments),
		InvestmentBalance:  ParseAmount(aux.InvestmentBalance),
	}
	return nil
}

// ParseAmount reads a JSON number or numeric string. Anything else is 0.
func ParseAmount(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		return ParseAmountString(s)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return CoerceAmount(f)
}

var amountReplacer = strings.NewReplacer("$", "", ",", "", "_", "", " ", "")

// ParseAmountString parses user-typed money such as " $1,200.50 ".
func ParseAmountString(s string) float64 {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return CoerceAmount(f)
}

// CoerceAmount maps NaN, infinities and negative values to 0.
func CoerceAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Metrics are the four dimensionless ratios derived from RawInputs, together
// with the sanitized totals they were computed from. BudgetRatio and DTI may
// be +Inf when there is no income.
type Metrics struct {
	BudgetRatio  float64
	RunwayMonths float64
	InvestRate   float64
	DTI          float64

	Inputs RawInputs
}

type metricsJSON struct {
	BudgetRatio  *float64  `json:"budget_ratio"`
	RunwayMonths float64   `json:"runway_months"`
	InvestRate   float64   `json:"invest_rate"`
	DTI          *float64  `json:"dti"`
	Inputs       RawInputs `json:"inputs"`
}

// MarshalJSON renders +Inf ratios as null since JSON has no infinity.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		BudgetRatio:  finiteOrNil(m.BudgetRatio),
		RunwayMonths: m.RunwayMonths,
		InvestRate:   m.InvestRate,
		DTI:          finiteOrNil(m.DTI),
		Inputs:       m.Inputs,
	})
}

// UnmarshalJSON restores null ratios as +Inf.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var aux metricsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Metrics{
		BudgetRatio:  infIfNil(aux.BudgetRatio),
		RunwayMonths: aux.RunwayMonths,
		InvestRate:   aux.InvestRate,
		DTI:          infIfNil(aux.DTI),
		Inputs:       aux.Inputs,
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func infIfNil(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}
