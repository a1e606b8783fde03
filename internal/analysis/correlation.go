package analysis

import (
	"math"

	"goeda/domain/profile"

	"gonum.org/v1/gonum/floats"
)

// Pearson computes r over two samples from mean-centered sums. Samples of
// different length or shorter than 2 yield 0, as does a constant sample.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0
	}
	if isConstant(x) || isConstant(y) {
		return 0
	}

	dx := centered(x)
	dy := centered(y)
	varX := floats.Dot(dx, dx)
	varY := floats.Dot(dy, dy)
	if varX == 0 || varY == 0 {
		return 0
	}

	denominator := math.Sqrt(varX) * math.Sqrt(varY)
	if denominator == 0 || !isFinite(denominator) {
		return 0
	}

	r := floats.Dot(dx, dy) / denominator
	// float drift can push a perfect correlation past 1
	r = math.Max(-1, math.Min(1, r))
	return roundTo(r, statPrecision)
}

func isConstant(sample []float64) bool {
	return floats.Min(sample) == floats.Max(sample)
}

// centered returns a copy of sample shifted by its mean
func centered(sample []float64) []float64 {
	out := make([]float64, len(sample))
	copy(out, sample)
	floats.AddConst(-floats.Sum(sample)/float64(len(sample)), out)
	return out
}

// CorrelationMatrix builds the symmetric matrix over the given numeric
// samples. Fewer than two columns give an empty matrix.
func CorrelationMatrix(names []string, samples map[string][]float64) profile.CorrelationMatrix {
	matrix := make(profile.CorrelationMatrix)
	if len(names) < 2 {
		return matrix
	}

	for _, name := range names {
		matrix[name] = make(map[string]float64, len(names))
	}
	for i, a := range names {
		for j := i; j < len(names); j++ {
			b := names[j]
			r := Pearson(samples[a], samples[b])
			matrix[a][b] = r
			matrix[b][a] = r
		}
	}
	return matrix
}
