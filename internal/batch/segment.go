package batch

import (
	"context"
	"path/filepath"

	"vadseg/internal/frameseq"
	"vadseg/internal/postprocess"
	"vadseg/internal/segtable"
)

// SegmentOptions configure a segment-table batch over prediction files.
type SegmentOptions struct {
	Options
	Params postprocess.Params
	RTTM   bool
}

// segmentSuffixes are the prediction file kinds the segment batch accepts:
// raw per-frame predictions and both smoothed variants. One pass picks up
// every matching file in the directory.
var segmentSuffixes = []string{"frame", "mean", "median"}

// DefaultSegmentOutDir returns the conventional output directory for
// segment tables.
func DefaultSegmentOutDir(predDir string) string {
	return filepath.Join(predDir, "seg_output")
}

// SegmentTables converts every matching prediction file into a speech
// segment table, one <stem>.txt or <stem>.rttm per input.
func SegmentTables(ctx context.Context, opts SegmentOptions) (*Summary, error) {
	inputs, err := listInputs(opts.PredDir, segmentSuffixes...)
	if err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		opts.OutDir = DefaultSegmentOutDir(opts.PredDir)
	}

	return runBatch(ctx, opts.Options, "segment", inputs, func(ctx context.Context, input string) (string, error) {
		sequence, stem, err := frameseq.Load(input)
		if err != nil {
			return "", err
		}
		segs, err := postprocess.Process(sequence, opts.Params)
		if err != nil {
			return "", err
		}
		output := filepath.Join(opts.OutDir, stem+segtable.Ext(opts.RTTM))
		if err := segtable.Write(output, stem, segs, opts.RTTM); err != nil {
			return "", err
		}
		return output, nil
	})
}
