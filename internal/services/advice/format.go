package advice

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatMoney renders whole dollars with thousands separators, e.g. $12,400.
func formatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		v = 0
	}
	digits := strconv.FormatInt(int64(math.Round(v)), 10)

	var b strings.Builder
	b.WriteByte('$')
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// formatPercent renders a ratio as a whole percentage in words.
func formatPercent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 0
	}
	return fmt.Sprintf("%.0f percent", ratio*100)
}

func formatMonths(months float64) string {
	if months >= 12 {
		return fmt.Sprintf("%.0f months", months)
	}
	return fmt.Sprintf("%.1f months", months)
}
