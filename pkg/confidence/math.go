// Package confidence provides score math utilities.
package confidence

import "math"

// Clamp ensures a score is in valid range [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Round2 rounds to two decimal places, the precision match percentages are
// reported at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
