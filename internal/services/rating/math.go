package rating

import "math"

// ClampFloat64 limits value to [min, max]
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampInt limits value to [min, max]
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundScore rounds half away from zero and clamps to [0, 100].
// NaN maps to 0.
func RoundScore(value float64) int {
	if math.IsNaN(value) {
		return 0
	}
	return int(math.Round(ClampFloat64(value, 0, 100)))
}

func compare(value float64, op Comparator, threshold float64) bool {
	switch op {
	case OpLT:
		return value < threshold
	case OpLE:
		return value <= threshold
	case OpGT:
		return value > threshold
	case OpGE:
		return value >= threshold
	}
	return false
}
