package rating

import (
	"math"
	"testing"
)

func TestRoundScore(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{name: "half rounds up", value: 72.5, want: 73},
		{name: "below half rounds down", value: 72.49, want: 72},
		{name: "clamps above 100", value: 140, want: 100},
		{name: "clamps below zero", value: -15, want: 0},
		{name: "NaN maps to zero", value: math.NaN(), want: 0},
		{name: "positive infinity clamps", value: math.Inf(1), want: 100},
		{name: "negative infinity clamps", value: math.Inf(-1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundScore(tt.value); got != tt.want {
				t.Errorf("RoundScore(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(-3, 0, 6); got != 0 {
		t.Errorf("ClampInt(-3) = %d, want 0", got)
	}
	if got := ClampInt(9, 0, 6); got != 6 {
		t.Errorf("ClampInt(9) = %d, want 6", got)
	}
	if got := ClampInt(4, 0, 6); got != 4 {
		t.Errorf("ClampInt(4) = %d, want 4", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		value     float64
		op        Comparator
		threshold float64
		want      bool
	}{
		{0.80, OpLE, 0.80, true},
		{0.80, OpLT, 0.80, false},
		{1.10, OpGT, 1.10, false},
		{1.11, OpGT, 1.10, true},
		{1.5, OpGE, 1.5, true},
		{math.Inf(1), OpGE, 1.5, true},
		{math.Inf(1), OpLE, 0.2, false},
		{1, Comparator("eq"), 1, false},
	}

	for _, tt := range tests {
		if got := compare(tt.value, tt.op, tt.threshold); got != tt.want {
			t.Errorf("compare(%v %s %v) = %v, want %v", tt.value, tt.op, tt.threshold, got, tt.want)
		}
	}
}
