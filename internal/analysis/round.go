package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
)

const (
	statPrecision    = 4
	percentPrecision = 2
)

// roundTo rounds to the given decimal places; non-finite input yields 0
func roundTo(x float64, places int) float64 {
	if !isFinite(x) {
		return 0
	}
	r, err := stats.Round(x, places)
	if err != nil {
		return 0
	}
	// stats.Round can return -0 for small negatives
	if r == 0 {
		return 0
	}
	return r
}

// roundStat returns a pointer to x rounded to 4 places, or nil when x is not finite
func roundStat(x float64) *float64 {
	if !isFinite(x) {
		return nil
	}
	r := roundTo(x, statPrecision)
	return &r
}

// percentage returns part/total*100 rounded to 2 places, 0 when total is 0
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo(float64(part)/float64(total)*100, percentPrecision)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
