package postprocess

import "vadseg/internal/segments"

// Process runs the full per-sequence pipeline: calibrate the thresholds for
// the configured scale, binarize, filter, and return the result sorted by
// start time. The input Params carry onset/offset as fractions; the
// specialized absolute values are derived per sequence and never escape.
func Process(sequence []float64, p Params) ([]segments.Interval, error) {
	onset, offset, err := Calibrate(p.Scale, p.Onset, p.Offset, sequence)
	if err != nil {
		return nil, err
	}

	specialized := p
	specialized.Onset = onset
	specialized.Offset = offset

	segs := Binarize(sequence, specialized)
	segs = Filter(segs, specialized)
	segments.SortByStart(segs)
	return segs, nil
}
