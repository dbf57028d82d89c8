package smoothing

import (
	"fmt"
	"math"
	"sort"

	"vadseg/internal/services"
)

// Method selects the smoothing filter applied where overlapping windows
// contribute to the same output frame.
type Method string

const (
	MethodMean   Method = "mean"
	MethodMedian Method = "median"
)

// Params describes how a frame-prediction sequence was produced by sliding-
// window inference and how to invert that into a continuous sequence at
// FrameLength resolution.
type Params struct {
	Overlap      float64
	WindowLength float64
	ShiftLength  float64
	FrameLength  float64
}

// DefaultParams returns the conventional sliding-window geometry: 50%
// overlap, 0.63 s windows shifted every 10 ms at 10 ms output resolution.
func DefaultParams() Params {
	return Params{
		Overlap:      0.5,
		WindowLength: 0.63,
		ShiftLength:  0.01,
		FrameLength:  0.01,
	}
}

// geometry holds the integer stride quantities derived from Params.
type geometry struct {
	shift       int // output frames per input prediction
	seg         int // output frames covered by one window prediction
	jumpOnFrame int // input predictions to skip between contributions
	targetLen   int
}

func deriveGeometry(predictions int, p Params) (geometry, error) {
	if p.FrameLength <= 0 {
		return geometry{}, services.Wrap(services.ErrConfiguration, "smoothing", "stride", "frame length must be positive", nil)
	}
	shift := int(math.Round(p.ShiftLength / p.FrameLength))
	seg := int(math.Round(p.WindowLength/p.FrameLength)) + 1
	jumpOnTarget := int(math.Round(float64(seg) * (1 - p.Overlap)))
	if shift < 1 {
		return geometry{}, services.Wrap(services.ErrConfiguration, "smoothing", "stride", "shift shorter than one frame", nil)
	}
	jumpOnFrame := int(math.Round(float64(jumpOnTarget) / float64(shift)))
	if jumpOnFrame < 1 {
		return geometry{}, services.Wrap(services.ErrConfiguration, "smoothing", "stride",
			fmt.Sprintf("window/shift/overlap combination cannot advance (jump_on_frame=%d)", jumpOnFrame), nil)
	}
	return geometry{
		shift:       shift,
		seg:         seg,
		jumpOnFrame: jumpOnFrame,
		targetLen:   predictions * shift,
	}, nil
}

// Reconstruct inverts sliding-window inference output into a continuous
// sequence at FrameLength resolution. Every jumpOnFrame-th window prediction
// contributes its value to the output frames it spans; overlapping
// contributions are combined by the selected method and frames with no
// contribution are forward-filled from the nearest preceding covered frame.
func Reconstruct(predictions []float64, p Params, method Method) ([]float64, error) {
	geo, err := deriveGeometry(len(predictions), p)
	if err != nil {
		return nil, err
	}

	switch method {
	case MethodMean:
		return reconstructMean(predictions, geo), nil
	case MethodMedian:
		return reconstructMedian(predictions, geo), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "smoothing", "reconstruct",
			fmt.Sprintf("smoothing method must be mean or median, got %q", method), nil)
	}
}

func reconstructMean(predictions []float64, geo geometry) []float64 {
	sums := make([]float64, geo.targetLen)
	counts := make([]int, geo.targetLen)

	for i, pred := range predictions {
		if i%geo.jumpOnFrame != 0 {
			continue
		}
		start := i * geo.shift
		for j := start; j < start+geo.seg && j < geo.targetLen; j++ {
			sums[j] += pred
			counts[j]++
		}
	}

	out := make([]float64, geo.targetLen)
	last := 0.0
	for j := range out {
		if counts[j] > 0 {
			last = sums[j] / float64(counts[j])
		}
		out[j] = last
	}
	return out
}

func reconstructMedian(predictions []float64, geo geometry) []float64 {
	contributions := make([][]float64, geo.targetLen)

	for i, pred := range predictions {
		if i%geo.jumpOnFrame != 0 {
			continue
		}
		start := i * geo.shift
		for j := start; j < start+geo.seg && j < geo.targetLen; j++ {
			contributions[j] = append(contributions[j], pred)
		}
	}

	out := make([]float64, geo.targetLen)
	last := 0.0
	for j, values := range contributions {
		if len(values) > 0 {
			last = median(values)
		}
		out[j] = last
	}
	return out
}

// median is the linearly interpolated 50% quantile of values, matching the
// interpolating quantile convention rather than the nearest-rank percentile
// used by threshold calibration.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
