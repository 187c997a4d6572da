package peaks

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// madScale converts a median absolute deviation into a sigma estimate for
// normally distributed noise.
const madScale = 1.4826

// median averages the two middle samples of an even-length trace, matching
// the usual signal-processing convention. Quantile interpolation families
// disagree here, so this stays explicit.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(q, stat.LinInterp, sorted, nil)
}

// estimatePolarity compares upper and lower tail peakiness and returns the
// sign that maximizes positive-going peaks.
func estimatePolarity(y []float64) float64 {
	med := median(y)
	posPeakiness := percentile(y, 0.99) - med
	negPeakiness := med - percentile(y, 0.01)
	if posPeakiness >= negPeakiness {
		return 1
	}
	return -1
}

// estimateNoise computes the per-channel noise level. The pretrigger window
// bounds are inclusive; an empty window yields zero noise (which disables
// detection via the infinite threshold).
func estimateNoise(y, t []float64, method NoiseMethod, preRange *TimeRange) float64 {
	switch method {
	case NoiseMAD:
		med := median(y)
		deviations := make([]float64, len(y))
		for i, v := range y {
			deviations[i] = math.Abs(v - med)
		}
		return madScale * median(deviations)
	case NoiseRMS:
		if len(y) == 0 {
			return 0
		}
		return stat.PopStdDev(y, nil)
	case NoiseStdPretrigger:
		var subset []float64
		n := min(len(y), len(t))
		for i := 0; i < n; i++ {
			if t[i] >= preRange.Lo && t[i] <= preRange.Hi {
				subset = append(subset, y[i])
			}
		}
		if len(subset) == 0 {
			return 0
		}
		return stat.PopStdDev(subset, nil)
	default:
		return 0
	}
}
