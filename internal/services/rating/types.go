// Package rating provides pure calculation functions for financial health:
// ratio metrics, tier classification and the 0-100 health score.
// All functions are stateless and perform no I/O.
package rating

import "github.com/ternarybob/moneypulse/internal/models"

// Metric names a value a rule or bucket is evaluated against.
type Metric string

const (
	MetricIncome       Metric = "income"
	MetricBudgetRatio  Metric = "budget_ratio"
	MetricRunwayMonths Metric = "runway_months"
	MetricInvestRate   Metric = "invest_rate"
	MetricDTI          Metric = "dti"
)

// Comparator is the comparison applied between a metric and a threshold.
// Strict and non-strict forms are distinct; boundary values depend on it.
type Comparator string

const (
	OpLT Comparator = "lt"
	OpLE Comparator = "le"
	OpGT Comparator = "gt"
	OpGE Comparator = "ge"
)

// MatchMode controls how the conditions of a tier combine.
type MatchMode string

const (
	MatchAny MatchMode = "any"
	MatchAll MatchMode = "all"
)

// Condition compares one metric against a threshold.
type Condition struct {
	Metric Metric     `json:"metric" toml:"metric" yaml:"metric" validate:"required,oneof=income budget_ratio runway_months invest_rate dti"`
	Op     Comparator `json:"op" toml:"op" yaml:"op" validate:"required,oneof=lt le gt ge"`
	Value  float64    `json:"value" toml:"value" yaml:"value"`
}

// TierRule assigns State when its conditions match.
type TierRule struct {
	State      models.State `json:"state" toml:"state" yaml:"state" validate:"required"`
	Match      MatchMode    `json:"match" toml:"match" yaml:"match" validate:"required,oneof=any all"`
	Conditions []Condition  `json:"conditions" toml:"conditions" yaml:"conditions" validate:"required,min=1,dive"`
}

// ClassifierTable is an ordered rule list: the first matching rule wins.
type ClassifierTable struct {
	Rules   []TierRule   `json:"rules" toml:"rules" yaml:"rules" validate:"required,min=1,dive"`
	Default models.State `json:"default" toml:"default" yaml:"default" validate:"required"`
}

// Bucket awards Points when the dimension's value satisfies Op Value.
type Bucket struct {
	Op     Comparator `json:"op" toml:"op" yaml:"op" validate:"required,oneof=lt le gt ge"`
	Value  float64    `json:"value" toml:"value" yaml:"value"`
	Points float64    `json:"points" toml:"points" yaml:"points"`
}

// DimensionTable is evaluated top to bottom; exactly one bucket applies, or
// Otherwise when none match.
type DimensionTable struct {
	Buckets   []Bucket `json:"buckets" toml:"buckets" yaml:"buckets" validate:"required,min=1,dive"`
	Otherwise float64  `json:"otherwise" toml:"otherwise" yaml:"otherwise"`
}

// ScoreTable holds the additive health adjustments. It is tuned
// independently of ClassifierTable.
type ScoreTable struct {
	Baseline float64        `json:"baseline" toml:"baseline" yaml:"baseline"`
	Budget   DimensionTable `json:"budget" toml:"budget" yaml:"budget"`
	Runway   DimensionTable `json:"runway" toml:"runway" yaml:"runway"`
	Invest   DimensionTable `json:"invest" toml:"invest" yaml:"invest"`
	Debt     DimensionTable `json:"debt" toml:"debt" yaml:"debt"`
}

// ParameterSet is a versioned, swappable pair of classifier and score tables.
type ParameterSet struct {
	Version     string          `json:"version" toml:"version" yaml:"version" validate:"required"`
	Description string          `json:"description" toml:"description" yaml:"description"`
	Classifier  ClassifierTable `json:"classifier" toml:"classifier" yaml:"classifier"`
	Score       ScoreTable      `json:"score" toml:"score" yaml:"score"`
}

// HealthComponents holds the points each dimension contributed.
type HealthComponents struct {
	Baseline float64 `json:"baseline"`
	Budget   float64 `json:"budget"`
	Runway   float64 `json:"runway"`
	Invest   float64 `json:"invest"`
	Debt     float64 `json:"debt"`
	Raw      float64 `json:"raw"` // sum before clamping
}

// HealthResult is the output of CalculateHealth.
type HealthResult struct {
	Score      int              `json:"score"`
	Components HealthComponents `json:"components"`
	Reasoning  string           `json:"reasoning"`
}

// Assessment bundles everything computed locally for one set of inputs.
type Assessment struct {
	Metrics models.Metrics
	State   models.State
	Health  HealthResult
	Version string
}
