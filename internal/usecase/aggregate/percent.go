package aggregate

import "math"

// Percent returns matching/total*100 rounded to two decimals, or 0 when total is 0.
func Percent(matching, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(matching) / float64(total) * 100)
}

// Round2 rounds half away from zero to two decimals. NaN and infinities become 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// percentOrZero normalises a remote percentage that may be missing.
func percentOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return Round2(*v)
}
