package postprocess

import (
	"math"

	"vadseg/internal/segments"
)

// Binarize converts a frame-level probability sequence into speech intervals
// using hysteresis thresholds: the state machine enters speech when a score
// exceeds Onset and leaves when a score drops below Offset. Emitted
// intervals are padded by PadOnset/PadOffset (either may be negative) and
// merge-normalized, since padding can make neighbours overlap.
//
// Onset and Offset must already be absolute values in the sequence's native
// scale; run Calibrate first.
func Binarize(sequence []float64, p Params) []segments.Interval {
	var (
		speech bool
		start  float64
		segs   []segments.Interval
	)

	emit := func(endTime float64) {
		paddedStart := math.Max(0, start-p.PadOnset)
		paddedEnd := endTime + p.PadOffset
		// Aggressive negative padding can invert an interval; drop those.
		if paddedEnd > paddedStart {
			segs = append(segs, segments.Interval{Start: paddedStart, End: paddedEnd})
		}
	}

	for i, score := range sequence {
		frameTime := float64(i) * p.FrameLength
		if speech {
			if score < p.Offset {
				emit(frameTime)
				speech = false
			}
		} else if score > p.Onset {
			start = frameTime
			speech = true
		}
	}

	// Terminal flush: still in speech at end of sequence.
	if speech {
		emit(float64(len(sequence)-1) * p.FrameLength)
	}

	return segments.Merge(segs)
}
