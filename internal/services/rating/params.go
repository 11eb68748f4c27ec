package rating

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/moneypulse/internal/models"
)

// Built-in parameter set versions.
const (
	VersionV1      = "v1"
	VersionClassic = "v0-classic"
)

// DefaultVersion is used when no version is configured.
const DefaultVersion = VersionV1

var parameterSets = map[string]func() *ParameterSet{
	VersionV1:      newV1ParameterSet,
	VersionClassic: newClassicParameterSet,
}

// DefaultParameterSet returns a fresh copy of the v1 tables.
func DefaultParameterSet() *ParameterSet {
	return newV1ParameterSet()
}

// LookupParameterSet returns a fresh copy of a built-in set.
func LookupParameterSet(version string) (*ParameterSet, error) {
	ctor, ok := parameterSets[strings.TrimSpace(version)]
	if !ok {
		return nil, fmt.Errorf("unknown parameter set version %q (available: %s)", version, strings.Join(ParameterSetVersions(), ", "))
	}
	return ctor(), nil
}

// ParameterSetVersions lists the built-in versions, sorted.
func ParameterSetVersions() []string {
	versions := make([]string, 0, len(parameterSets))
	for v := range parameterSets {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// LoadParameterSet reads a parameter set from a .toml, .yaml or .yml file and
// validates it.
func LoadParameterSet(path string) (*ParameterSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter set %s: %w", path, err)
	}

	var ps ParameterSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &ps)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ps)
	default:
		return nil, fmt.Errorf("unsupported parameter set format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse parameter set %s: %w", path, err)
	}

	if err := ps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameter set %s: %w", path, err)
	}
	return &ps, nil
}

var paramsValidator = validator.New()

// Validate checks field constraints, that every state named is a known tier
// and that score buckets are monotonic.
func (p *ParameterSet) Validate() error {
	if err := paramsValidator.Struct(p); err != nil {
		return err
	}

	if !p.Classifier.Default.IsValid() {
		return fmt.Errorf("classifier default %q is not a known state", p.Classifier.Default)
	}
	for i, rule := range p.Classifier.Rules {
		if !rule.State.IsValid() {
			return fmt.Errorf("classifier rule %d: %q is not a known state", i, rule.State)
		}
	}

	dims := []struct {
		name  string
		table DimensionTable
	}{
		{"budget", p.Score.Budget},
		{"runway", p.Score.Runway},
		{"invest", p.Score.Invest},
		{"debt", p.Score.Debt},
	}
	for _, d := range dims {
		if len(d.table.Buckets) == 0 {
			return fmt.Errorf("score table %s has no buckets", d.name)
		}
		if err := checkBucketOrder(d.table.Buckets); err != nil {
			return fmt.Errorf("score table %s: %w", d.name, err)
		}
	}
	return nil
}

func isUpperBound(op Comparator) bool {
	return op == OpLT || op == OpLE
}

// checkBucketOrder requires every bucket in a dimension to be reachable.
// Buckets share one direction: lt/le thresholds ascend, gt/ge thresholds
// descend. A repeated threshold is only reachable when the strict comparator
// comes first (lt 1.5 then le 1.5).
func checkBucketOrder(buckets []Bucket) error {
	for i, b := range buckets {
		switch b.Op {
		case OpLT, OpLE, OpGT, OpGE:
		default:
			return fmt.Errorf("bucket %d: unknown comparator %q", i, b.Op)
		}
		if i == 0 {
			continue
		}

		prev := buckets[i-1]
		if isUpperBound(prev.Op) != isUpperBound(b.Op) {
			return fmt.Errorf("bucket %d: %s mixes direction with %s in bucket %d", i, b.Op, prev.Op, i-1)
		}

		var ordered bool
		switch {
		case b.Value == prev.Value:
			ordered = (prev.Op == OpLT && b.Op == OpLE) || (prev.Op == OpGT && b.Op == OpGE)
		case isUpperBound(b.Op):
			ordered = b.Value > prev.Value
		default:
			ordered = b.Value < prev.Value
		}
		if !ordered {
			return fmt.Errorf("bucket %d (%s %g) is unreachable after bucket %d (%s %g)", i, b.Op, b.Value, i-1, prev.Op, prev.Value)
		}
	}
	return nil
}

// Assess runs the metric, classifier and scorer pipeline with this set.
func (p *ParameterSet) Assess(raw models.RawInputs) Assessment {
	m := ComputeMetrics(raw)
	return p.AssessMetrics(m)
}

// AssessMetrics classifies and scores already computed metrics.
func (p *ParameterSet) AssessMetrics(m models.Metrics) Assessment {
	return Assessment{
		Metrics: m,
		State:   p.Classifier.PickState(m),
		Health:  p.Score.Calculate(m),
		Version: p.Version,
	}
}

func conds(c ...Condition) []Condition { return c }

func cond(metric Metric, op Comparator, value float64) Condition {
	return Condition{Metric: metric, Op: op, Value: value}
}

// newV1ParameterSet is the canonical rule set. Worse tiers match on ANY
// disqualifying ratio; the two best tiers require ALL ratios to qualify and
// are checked best first.
func newV1ParameterSet() *ParameterSet {
	return &ParameterSet{
		Version:     VersionV1,
		Description: "Canonical thresholds",
		Classifier: ClassifierTable{
			Rules: []TierRule{
				{State: models.StateFlatlined, Match: MatchAny, Conditions: conds(
					cond(MetricIncome, OpLE, 0),
					cond(MetricBudgetRatio, OpGE, 1.5),
					cond(MetricRunwayMonths, OpLT, 0.5),
				)},
				{State: models.StateCritical, Match: MatchAny, Conditions: conds(
					cond(MetricBudgetRatio, OpGT, 1.10),
					cond(MetricRunwayMonths, OpLT, 1.0),
					cond(MetricDTI, OpGT, 1.20),
				)},
				{State: models.StateStruggling, Match: MatchAny, Conditions: conds(
					cond(MetricBudgetRatio, OpGT, 0.95),
					cond(MetricRunwayMonths, OpLT, 2.0),
					cond(MetricDTI, OpGT, 0.90),
				)},
				{State: models.StateSurviving, Match: MatchAny, Conditions: conds(
					cond(MetricBudgetRatio, OpGT, 0.80),
					cond(MetricRunwayMonths, OpLT, 3.0),
					cond(MetricDTI, OpGT, 0.60),
					cond(MetricInvestRate, OpLT, 0.05),
				)},
				{State: models.StateLegendary, Match: MatchAll, Conditions: conds(
					cond(MetricBudgetRatio, OpLE, 0.60),
					cond(MetricRunwayMonths, OpGT, 12),
					cond(MetricInvestRate, OpGE, 0.15),
					cond(MetricDTI, OpLE, 0.20),
				)},
				{State: models.StateThriving, Match: MatchAll, Conditions: conds(
					cond(MetricBudgetRatio, OpLE, 0.70),
					cond(MetricRunwayMonths, OpGT, 6),
					cond(MetricInvestRate, OpGE, 0.10),
					cond(MetricDTI, OpLE, 0.40),
				)},
			},
			Default: models.StateHealthy,
		},
		Score: ScoreTable{
			Baseline: 50,
			Budget: DimensionTable{
				Buckets: []Bucket{
					{Op: OpLE, Value: 0.80, Points: 15},
					{Op: OpLE, Value: 0.90, Points: 5},
					{Op: OpLE, Value: 1.10, Points: -10},
					{Op: OpLT, Value: 1.50, Points: -25},
				},
				Otherwise: -40, // -25 plus the extra -15 at 1.5 and above
			},
			Runway: DimensionTable{
				Buckets: []Bucket{
					{Op: OpGE, Value: 6, Points: 15},
					{Op: OpGE, Value: 3, Points: 10},
					{Op: OpGE, Value: 1, Points: 0},
					{Op: OpGE, Value: 0.5, Points: -10},
				},
				Otherwise: -20,
			},
			Invest: DimensionTable{
				Buckets: []Bucket{
					{Op: OpGE, Value: 0.15, Points: 10},
					{Op: OpGE, Value: 0.10, Points: 5},
					{Op: OpGE, Value: 0.05, Points: 0},
					{Op: OpGT, Value: 0, Points: -5},
				},
				Otherwise: -10,
			},
			Debt: DimensionTable{
				Buckets: []Bucket{
					{Op: OpLE, Value: 0.40, Points: 10},
					{Op: OpLE, Value: 0.60, Points: 5},
					{Op: OpLE, Value: 1.20, Points: -5},
				},
				Otherwise: -15,
			},
		},
	}
}

// newClassicParameterSet keeps the looser cutoffs of the first release, which
// ignored the investment rate below the top tiers.
func newClassicParameterSet() *ParameterSet {
	ps := newV1ParameterSet()
	ps.Version = VersionClassic
	ps.Description = "Looser cutoffs from the first release"
	ps.Classifier = ClassifierTable{
		Rules: []TierRule{
			{State: models.StateFlatlined, Match: MatchAny, Conditions: conds(
				cond(MetricIncome, OpLE, 0),
				cond(MetricBudgetRatio, OpGE, 1.5),
				cond(MetricRunwayMonths, OpLT, 0.5),
			)},
			{State: models.StateCritical, Match: MatchAny, Conditions: conds(
				cond(MetricBudgetRatio, OpGT, 1.20),
				cond(MetricRunwayMonths, OpLT, 0.75),
				cond(MetricDTI, OpGT, 1.50),
			)},
			{State: models.StateStruggling, Match: MatchAny, Conditions: conds(
				cond(MetricBudgetRatio, OpGT, 1.0),
				cond(MetricRunwayMonths, OpLT, 1.0),
				cond(MetricDTI, OpGT, 1.20),
			)},
			{State: models.StateSurviving, Match: MatchAny, Conditions: conds(
				cond(MetricBudgetRatio, OpGT, 0.90),
				cond(MetricRunwayMonths, OpLT, 1.5),
				cond(MetricDTI, OpGT, 0.80),
			)},
			{State: models.StateLegendary, Match: MatchAll, Conditions: conds(
				cond(MetricBudgetRatio, OpLE, 0.70),
				cond(MetricRunwayMonths, OpGT, 9),
				cond(MetricInvestRate, OpGE, 0.12),
				cond(MetricDTI, OpLE, 0.30),
			)},
			{State: models.StateThriving, Match: MatchAll, Conditions: conds(
				cond(MetricBudgetRatio, OpLE, 0.80),
				cond(MetricRunwayMonths, OpGT, 3),
				cond(MetricInvestRate, OpGE, 0.10),
				cond(MetricDTI, OpLE, 0.60),
			)},
		},
		Default: models.StateHealthy,
	}
	return ps
}
