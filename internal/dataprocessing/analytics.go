package dataprocessing

import (
	"math"
	"sort"

	"ratingprep/pkg/contracts/domain"
)

// mean returns the arithmetic mean of values using compensated summation.
// ok is false for an empty slice.
func mean(values []float64) (m float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	return kahanSum(values) / float64(len(values)), true
}

// kahanSum is Neumaier's variant of compensated summation
func kahanSum(values []float64) float64 {
	var sum, c float64
	for _, v := range values {
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			c += (sum - t) + v
		} else {
			c += (v - t) + sum
		}
		sum = t
	}
	return sum + c
}

// sumSquaredDeviations returns Σ(v-m)² for a known mean m
func sumSquaredDeviations(values []float64, m float64) float64 {
	devs := make([]float64, len(values))
	for i, v := range values {
		d := v - m
		devs[i] = d * d
	}
	return kahanSum(devs)
}

// populationStd divides by n
func populationStd(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values, m) / float64(len(values)))
}

// sampleStd divides by n-1 and is 0 for fewer than two values
func sampleStd(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values, m) / float64(len(values)-1))
}

// quantile uses linear interpolation between closest ranks on sorted values
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// histogram splits [min, max] into equal-width bins. The last bin is closed on
// both ends. A single distinct value is centred in [v-0.5, v+0.5].
func histogram(values []float64, bins int) []domain.HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]domain.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// sortedCopy returns values sorted ascending without touching the input
func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
