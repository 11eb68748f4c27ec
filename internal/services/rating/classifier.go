package rating

import "github.com/ternarybob/moneypulse/internal/models"

// PickState classifies metrics with the default parameter set.
func PickState(m models.Metrics) models.State {
	return DefaultParameterSet().Classifier.PickState(m)
}

// PickState scans rules in order and returns the first matching tier, or the
// table default. Every input maps to exactly one state.
func (t ClassifierTable) PickState(m models.Metrics) models.State {
	state, _ := t.Classify(m)
	return state
}

// Classify is PickState that also reports the index of the matching rule,
// -1 when the default applied.
func (t ClassifierTable) Classify(m models.Metrics) (models.State, int) {
	for i, rule := range t.Rules {
		if rule.matches(m) {
			return rule.State, i
		}
	}
	return t.Default, -1
}

func (r TierRule) matches(m models.Metrics) bool {
	if len(r.Conditions) == 0 {
		return false
	}

	if r.Match == MatchAll {
		for _, c := range r.Conditions {
			if !c.holds(m) {
				return false
			}
		}
		return true
	}

	for _, c := range r.Conditions {
		if c.holds(m) {
			return true
		}
	}
	return false
}

func (c Condition) holds(m models.Metrics) bool {
	return compare(metricValue(m, c.Metric), c.Op, c.Value)
}
