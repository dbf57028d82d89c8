package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"vadseg/internal/fileutil"
	"vadseg/internal/logging"
	"vadseg/internal/runs"
	"vadseg/internal/services"
)

// lockFileName is created inside the output directory for the duration of a
// run. A second batch targeting the same directory fails fast instead of
// interleaving partial outputs.
const lockFileName = ".vadseg.lock"

// Options are the settings shared by the smooth and segment batches.
type Options struct {
	PredDir string
	OutDir  string
	Workers int
	Logger  *slog.Logger
	Store   *runs.Store
}

func (o *Options) normalize() {
	if o.Workers < 1 {
		o.Workers = 1
	}
	o.Logger = logging.NewComponentLogger(o.Logger, "batch")
}

// Failure pairs a skipped input with the error that caused the skip.
type Failure struct {
	Input string
	Err   error
}

// Summary reports the outcome of a batch run.
type Summary struct {
	RunID     string
	OutDir    string
	Total     int
	Succeeded int
	Failed    int
	Failures  []Failure
	Elapsed   time.Duration
}

// fileResult is the outcome of one worker job, indexed by input position.
type fileResult struct {
	input   string
	output  string
	err     error
	elapsed time.Duration
}

// runPool fans inputs out to opts.Workers goroutines and returns one result
// per input, in input order. The process function must be safe for
// concurrent use.
func runPool(ctx context.Context, opts Options, stage string, inputs []string, process func(ctx context.Context, input string) (string, error)) []fileResult {
	results := make([]fileResult, len(inputs))
	indexes := make(chan int)
	sampler := logging.NewProgressSampler(10)

	var done int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				input := inputs[i]
				started := time.Now()
				output, err := process(services.WithFile(ctx, input), input)
				results[i] = fileResult{
					input:   input,
					output:  output,
					err:     err,
					elapsed: time.Since(started),
				}

				mu.Lock()
				done++
				percent := float64(done) / float64(len(inputs)) * 100
				if sampler.ShouldLog(percent, stage) {
					opts.Logger.Info("batch progress",
						logging.String(logging.FieldStage, stage),
						logging.Int("done", done),
						logging.Int("total", len(inputs)),
						logging.Float64("percent", percent))
				}
				mu.Unlock()
			}
		}()
	}

	for i := range inputs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return results
}

// runBatch is the shared fan-out skeleton: lock the output directory, start
// a ledger run, process every input, record per-file outcomes, and finish
// the run. Per-file failures are skipped and reported in the summary;
// a configuration failure on any file fails the whole run since the same
// settings would fail every remaining file too.
func runBatch(ctx context.Context, opts Options, kind string, inputs []string, process func(ctx context.Context, input string) (string, error)) (*Summary, error) {
	opts.normalize()
	started := time.Now()

	if err := fileutil.EnsureDir(opts.OutDir); err != nil {
		return nil, services.Wrap(services.ErrIO, "batch", kind, "create output directory", err)
	}

	lock := flock.New(filepath.Join(opts.OutDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "batch", kind, "acquire output lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrIO, "batch", kind,
			fmt.Sprintf("output directory %s is locked by another run", opts.OutDir), nil)
	}
	defer lock.Unlock()

	summary := &Summary{OutDir: opts.OutDir, Total: len(inputs)}

	var run *runs.Run
	if opts.Store != nil {
		run, err = opts.Store.BeginRun(ctx, kind, opts.PredDir, opts.OutDir, opts.Workers)
		if err != nil {
			return nil, err
		}
		summary.RunID = run.ID
		ctx = services.WithRunID(ctx, run.ID)
	}

	opts.Logger.Info("batch started",
		logging.String(logging.FieldStage, kind),
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("inputs", len(inputs)),
		logging.Int("workers", opts.Workers))

	results := runPool(ctx, opts, kind, inputs, process)

	var fatal error
	for _, res := range results {
		if res.err == nil {
			summary.Succeeded++
		} else {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Input: res.input, Err: res.err})
			opts.Logger.Warn("input skipped", logging.Args(
				logging.String(logging.FieldStage, kind),
				logging.String(logging.FieldFile, res.input),
				logging.Error(res.err))...)
			if errors.Is(res.err, services.ErrConfiguration) && fatal == nil {
				fatal = res.err
			}
		}
		if run != nil {
			rec := runs.FileRecord{
				RunID:   run.ID,
				Input:   res.input,
				Output:  res.output,
				Status:  runs.StatusOK,
				Elapsed: res.elapsed,
			}
			if res.err != nil {
				rec.Output = ""
				rec.Status = runs.StatusFailed
				rec.ErrorKind = services.Kind(res.err)
				rec.ErrorMessage = res.err.Error()
			}
			if recErr := opts.Store.RecordFile(ctx, rec); recErr != nil {
				opts.Logger.Warn("ledger record failed", logging.Error(recErr))
			}
		}
	}

	if run != nil {
		if err := opts.Store.FinishRun(ctx, run.ID, summary.Total, summary.Succeeded, summary.Failed); err != nil {
			opts.Logger.Warn("ledger finish failed", logging.Error(err))
		}
	}

	summary.Elapsed = time.Since(started)
	opts.Logger.Info("batch finished",
		logging.String(logging.FieldStage, kind),
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Bool("partial", summary.Failed > 0),
		logging.Duration("elapsed", summary.Elapsed))

	if fatal != nil {
		return summary, fatal
	}
	return summary, nil
}

// listInputs globs prediction files matching any of the given suffixes,
// sorted for deterministic ordering across runs and worker counts.
func listInputs(dir string, suffixes ...string) ([]string, error) {
	var matches []string
	for _, suffix := range suffixes {
		found, err := filepath.Glob(filepath.Join(dir, "*."+suffix))
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "batch", "list", dir, err)
		}
		matches = append(matches, found...)
	}
	if len(matches) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "list",
			fmt.Sprintf("no *.{%s} files in %s", strings.Join(suffixes, ","), dir), nil)
	}
	sort.Strings(matches)
	return matches, nil
}
