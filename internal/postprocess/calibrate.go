package postprocess

import (
	"fmt"
	"math"
	"sort"

	"vadseg/internal/services"
)

// Calibrate maps the onset/offset fractions onto absolute thresholds in the
// sequence's native scale. Absolute scale fixes the bounds at [0, 1];
// relative uses the sequence min/max; percentile uses the 1st and 99th
// nearest-rank percentiles.
func Calibrate(scale Scale, onset, offset float64, sequence []float64) (float64, float64, error) {
	var mini, maxi float64
	switch scale {
	case ScaleAbsolute:
		mini, maxi = 0, 1
	case ScaleRelative:
		if len(sequence) == 0 {
			return 0, 0, services.Wrap(services.ErrDegenerateInput, "postprocess", "calibrate", "relative scale requires a non-empty sequence", nil)
		}
		mini, maxi = minMax(sequence)
	case ScalePercentile:
		if len(sequence) == 0 {
			return 0, 0, services.Wrap(services.ErrDegenerateInput, "postprocess", "calibrate", "percentile scale requires a non-empty sequence", nil)
		}
		mini = percentile(sequence, 1)
		maxi = percentile(sequence, 99)
	default:
		return 0, 0, services.Wrap(services.ErrConfiguration, "postprocess", "calibrate", fmt.Sprintf("unknown scale %q", scale), nil)
	}

	return mini + onset*(maxi-mini), mini + offset*(maxi-mini), nil
}

// percentile returns the nearest-rank percentile: the value at rank
// ceil(size*perc/100) of the ascending-sorted data, 1-indexed. This is
// deliberately not interpolated; the median used by overlap smoothing
// interpolates and the two conventions must not be unified.
func percentile(data []float64, perc int) float64 {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	rank := int(math.Ceil(float64(len(sorted)*perc) / 100))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

func minMax(data []float64) (float64, float64) {
	mini, maxi := data[0], data[0]
	for _, v := range data[1:] {
		if v < mini {
			mini = v
		}
		if v > maxi {
			maxi = v
		}
	}
	return mini, maxi
}
