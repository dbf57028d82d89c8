package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"vadseg/internal/frameseq"
	"vadseg/internal/smoothing"
)

// SmoothOptions configure an overlap-smoothing batch over *.frame files.
type SmoothOptions struct {
	Options
	Params smoothing.Params
	Method smoothing.Method
}

// DefaultSmoothOutDir returns the conventional output directory for a
// smoothing run, named after the method and overlap so different settings
// never collide.
func DefaultSmoothOutDir(predDir string, method smoothing.Method, overlap float64) string {
	return filepath.Join(predDir, fmt.Sprintf("overlap_smoothing_output_%s_%v", method, overlap))
}

// Smooth reconstructs per-frame sequences from every *.frame file in the
// prediction directory and writes one <stem>.<method> file per input.
func Smooth(ctx context.Context, opts SmoothOptions) (*Summary, error) {
	inputs, err := listInputs(opts.PredDir, "frame")
	if err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		opts.OutDir = DefaultSmoothOutDir(opts.PredDir, opts.Method, opts.Params.Overlap)
	}

	return runBatch(ctx, opts.Options, "smooth", inputs, func(ctx context.Context, input string) (string, error) {
		predictions, stem, err := frameseq.Load(input)
		if err != nil {
			return "", err
		}
		smoothed, err := smoothing.Reconstruct(predictions, opts.Params, opts.Method)
		if err != nil {
			return "", err
		}
		output := filepath.Join(opts.OutDir, stem+"."+string(opts.Method))
		if err := frameseq.Write(output, smoothed); err != nil {
			return "", err
		}
		return output, nil
	})
}
