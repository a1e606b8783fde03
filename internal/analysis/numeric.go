package analysis

import (
	"math"
	"sort"

	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/ingestion"
	"goeda/domain/profile"

	"github.com/montanaflynn/stats"
)

// NumericSample converts values to finite numbers, dropping the rest.
// Input order is kept.
func NumericSample(values []ingestion.Value) []float64 {
	sample := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if f, ok := coercer.ToNumber(v); ok {
			sample = append(sample, f)
		}
	}
	return sample
}

// ComputeNumericStats summarizes the numeric values of a column.
// With no usable values only Count (0) is set.
func ComputeNumericStats(values []ingestion.Value) profile.NumericStats {
	return numericStatsFromSample(NumericSample(values))
}

func numericStatsFromSample(sample []float64) profile.NumericStats {
	sorted := sortedCopy(sample)
	n := len(sorted)
	result := profile.NumericStats{Count: n}
	if n == 0 {
		return result
	}

	mean, _ := stats.Mean(sorted)
	median, _ := stats.Median(sorted)
	q1, q3 := nearestRankQuartiles(sorted)

	// Sample variance; a single value divides by zero and stays undefined
	variance := math.NaN()
	if n > 1 {
		variance, _ = stats.SampleVariance(sorted)
	}
	std := math.Sqrt(variance)

	result.Mean = roundStat(mean)
	result.Median = roundStat(median)
	result.Min = roundStat(sorted[0])
	result.Max = roundStat(sorted[n-1])
	result.Q1 = roundStat(q1)
	result.Q3 = roundStat(q3)
	result.Variance = roundStat(variance)
	result.Std = roundStat(std)

	if n > 2 {
		result.Skewness = roundStat(standardizedMoment(sorted, mean, std, 3))
	}
	if n > 3 {
		result.Kurtosis = roundStat(standardizedMoment(sorted, mean, std, 4) - 3)
	}

	return result
}

// standardizedMoment is the mean of ((x-mean)/std)^k. A zero or undefined
// std yields NaN, which the caller reports as null.
func standardizedMoment(data []float64, mean, std float64, k int) float64 {
	if !isFinite(std) || std == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range data {
		sum += math.Pow((x-mean)/std, float64(k))
	}
	return sum / float64(len(data))
}

// nearestRankQuartiles indexes the sorted sample at floor(n*0.25) and
// floor(n*0.75) without interpolation
func nearestRankQuartiles(sorted []float64) (q1, q3 float64) {
	n := len(sorted)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	return sorted[int(math.Floor(float64(n)*0.25))], sorted[int(math.Floor(float64(n)*0.75))]
}

func sortedCopy(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	sort.Float64s(out)
	return out
}
