package segments

import "sort"

// Interval is a [Start, End] time span in seconds with Start <= End.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// SortByStart orders intervals by ascending start time in place.
func SortByStart(segs []Interval) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].Start == segs[j].Start {
			return segs[i].End < segs[j].End
		}
		return segs[i].Start < segs[j].Start
	})
}

// Merge returns the minimal non-overlapping cover of segs, sorted by start.
// Two consecutive intervals merge when the earlier one ends at or after the
// later one starts; touching counts as overlapping. Inputs of zero or one
// interval pass through unchanged.
func Merge(segs []Interval) []Interval {
	if len(segs) <= 1 {
		return segs
	}

	sorted := append([]Interval(nil), segs...)
	SortByStart(sorted)

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if current.End >= next.Start {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

// Gaps returns the intervals between consecutive segments: for a sorted,
// merged set of size n it yields the n-1 spans [end_i, start_i+1]. Fewer
// than two segments yield nil.
func Gaps(segs []Interval) []Interval {
	if len(segs) < 2 {
		return nil
	}

	sorted := append([]Interval(nil), segs...)
	SortByStart(sorted)

	gaps := make([]Interval, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, Interval{Start: sorted[i-1].End, End: sorted[i].Start})
	}
	return gaps
}

// FilterShort keeps only intervals with duration at or above threshold.
func FilterShort(segs []Interval, threshold float64) []Interval {
	kept := make([]Interval, 0, len(segs))
	for _, seg := range segs {
		if seg.Duration() >= threshold {
			kept = append(kept, seg)
		}
	}
	return kept
}

// Remove returns segs without the intervals listed in toRemove. Matching is
// by exact endpoint equality on both sides.
func Remove(segs, toRemove []Interval) []Interval {
	if len(toRemove) == 0 {
		return append([]Interval(nil), segs...)
	}
	kept := make([]Interval, 0, len(segs))
	for _, seg := range segs {
		removed := false
		for _, candidate := range toRemove {
			if seg == candidate {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, seg)
		}
	}
	return kept
}
