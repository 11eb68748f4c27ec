package models

import "strings"

// State is one of seven ordered severity tiers.
type State string

const (
	StateFlatlined  State = "FLATLINED"
	StateCritical   State = "CRITICAL"
	StateStruggling State = "STRUGGLING"
	StateSurviving  State = "SURVIVING"
	StateHealthy    State = "HEALTHY"
	StateThriving   State = "THRIVING"
	StateLegendary  State = "LEGENDARY"
)

// DefaultState is used whenever an external state cannot be trusted.
const DefaultState = StateSurviving

// stateOrder lists the tiers worst to best.
var stateOrder = []State{
	StateFlatlined,
	StateCritical,
	StateStruggling,
	StateSurviving,
	StateHealthy,
	StateThriving,
	StateLegendary,
}

// Names used by older variants of the scoring rules.
var stateAliases = map[string]State{
	"ATROCIOUS": StateFlatlined,
	"FANTASTIC": StateLegendary,
}

// AllStates returns the tiers ordered worst to best.
func AllStates() []State {
	out := make([]State, len(stateOrder))
	copy(out, stateOrder)
	return out
}

// Rank returns 0 for the worst tier up to 6 for the best, or -1 if unknown.
func (s State) Rank() int {
	for i, st := range stateOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is one of the seven canonical tiers.
func (s State) IsValid() bool {
	return s.Rank() >= 0
}

func (s State) String() string {
	return string(s)
}

// ParseState accepts canonical names and known aliases, case-insensitively.
func ParseState(raw string) (State, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	if alias, ok := stateAliases[key]; ok {
		return alias, true
	}
	s := State(key)
	if !s.IsValid() {
		return "", false
	}
	return s, true
}
