package postprocess

import "vadseg/internal/segments"

// Filter removes short speech segments and re-absorbs short non-speech gaps
// as speech. The two stages are order-sensitive: dropping short speech first
// changes the gap structure the gap stage sees, and vice versa, so the
// ordering is selected by FilterSpeechFirst. A zero MinDurationOn or
// MinDurationOff disables the corresponding stage.
func Filter(segs []segments.Interval, p Params) []segments.Interval {
	if len(segs) == 0 {
		return segs
	}

	if p.FilterSpeechFirst {
		if p.MinDurationOn > 0 {
			segs = segments.FilterShort(segs, p.MinDurationOn)
		}
		if p.MinDurationOff > 0 {
			segs = absorbShortGaps(segs, p.MinDurationOff)
		}
		return segs
	}

	if p.MinDurationOff > 0 {
		segs = absorbShortGaps(segs, p.MinDurationOff)
	}
	if p.MinDurationOn > 0 {
		segs = segments.FilterShort(segs, p.MinDurationOn)
	}
	return segs
}

// absorbShortGaps finds non-speech gaps shorter than threshold and unions
// them back into the speech set.
func absorbShortGaps(segs []segments.Interval, threshold float64) []segments.Interval {
	gaps := segments.Gaps(segs)
	shortGaps := segments.Remove(gaps, segments.FilterShort(gaps, threshold))
	if len(shortGaps) == 0 {
		return segs
	}
	return segments.Merge(append(append([]segments.Interval(nil), segs...), shortGaps...))
}
