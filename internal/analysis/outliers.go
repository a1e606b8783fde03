package analysis

import "math"

const (
	minOutlierSample = 4
	iqrMultiplier    = 1.5
	// MaxDisplayedOutliers caps the outliers stored on a column profile
	MaxDisplayedOutliers = 10
)

// DetectOutliers returns every value outside [Q1-1.5*IQR, Q3+1.5*IQR] in
// input order, duplicates included. Samples under 4 values have none.
// Fences use nearest-rank quartiles, which intentionally differ from the
// floor-index Q1/Q3 reported in the column stats.
func DetectOutliers(sample []float64) []float64 {
	outliers := make([]float64, 0)
	if len(sample) < minOutlierSample {
		return outliers
	}

	sorted := sortedCopy(sample)
	q1, q3 := fenceQuartile(sorted, 0.25), fenceQuartile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - iqrMultiplier*iqr
	upper := q3 + iqrMultiplier*iqr

	for _, x := range sample {
		if x < lower || x > upper {
			outliers = append(outliers, x)
		}
	}
	return outliers
}

// fenceQuartile is the classic nearest-rank quantile: 1-based rank ceil(p*n)
func fenceQuartile(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
