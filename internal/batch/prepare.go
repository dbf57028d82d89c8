package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vadseg/internal/fileutil"
	"vadseg/internal/logging"
	"vadseg/internal/manifest"
	"vadseg/internal/runs"
	"vadseg/internal/services"
)

// ManifestOptions configure a long-audio manifest pre-split.
type ManifestOptions struct {
	Input   string
	OutPath string
	Params  manifest.SplitParams
	Decoder manifest.Decoder
	Logger  *slog.Logger
	Store   *runs.Store
}

// DefaultManifestOutPath places the split manifest next to the input with a
// _split suffix.
func DefaultManifestOutPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_split" + ext
}

// PrepareManifest reads an inference manifest, probes each entry's audio
// duration, and splits entries longer than the configured duration into
// overlapping chunks. Entries whose audio cannot be decoded are appended to
// error.log next to the output manifest and skipped. The final manifest
// write replaces any existing file; its failure fails the whole run since a
// partial manifest would silently drop audio.
func PrepareManifest(ctx context.Context, opts ManifestOptions) (*Summary, error) {
	opts.Logger = logging.NewComponentLogger(opts.Logger, "batch")
	if opts.Decoder == nil {
		opts.Decoder = manifest.WAVDecoder{}
	}
	if opts.OutPath == "" {
		opts.OutPath = DefaultManifestOutPath(opts.Input)
	}
	started := time.Now()

	if err := fileutil.EnsureDir(filepath.Dir(opts.OutPath)); err != nil {
		return nil, services.Wrap(services.ErrIO, "batch", "manifest", "create output directory", err)
	}

	entries, err := manifest.ReadEntries(opts.Input)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "manifest",
			fmt.Sprintf("no entries in %s", opts.Input), nil)
	}

	summary := &Summary{OutDir: filepath.Dir(opts.OutPath), Total: len(entries)}

	var run *runs.Run
	if opts.Store != nil {
		run, err = opts.Store.BeginRun(ctx, "manifest", opts.Input, opts.OutPath, 1)
		if err != nil {
			return nil, err
		}
		summary.RunID = run.ID
		ctx = services.WithRunID(ctx, run.ID)
	}

	opts.Logger.Info("manifest split started",
		logging.String(logging.FieldStage, "manifest"),
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("entries", len(entries)))

	manifestDir := filepath.Dir(opts.Input)
	sampler := logging.NewProgressSampler(10)
	var out []manifest.Entry
	for i, entry := range entries {
		entryStart := time.Now()
		audioPath := manifest.ResolvePath(entry.AudioFilepath, manifestDir)
		clipDuration, decodeErr := opts.Decoder.ClipDuration(audioPath, entry.Offset, entry.Duration)
		if decodeErr != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Input: entry.AudioFilepath, Err: decodeErr})
			opts.Logger.Warn("entry skipped",
				logging.String(logging.FieldStage, "manifest"),
				logging.String(logging.FieldFile, entry.AudioFilepath),
				logging.Error(decodeErr))
			if logErr := appendErrorLog(summary.OutDir, entry.AudioFilepath, decodeErr); logErr != nil {
				opts.Logger.Warn("error log append failed", logging.Error(logErr))
			}
			recordEntry(ctx, opts, run, entry.AudioFilepath, "", decodeErr, time.Since(entryStart))
			continue
		}

		chunks := manifest.SplitEntry(entry, clipDuration, opts.Params)
		out = append(out, chunks...)
		summary.Succeeded++
		recordEntry(ctx, opts, run, entry.AudioFilepath, opts.OutPath, nil, time.Since(entryStart))

		percent := float64(i+1) / float64(len(entries)) * 100
		if sampler.ShouldLog(percent, "manifest") {
			opts.Logger.Info("manifest progress",
				logging.String(logging.FieldStage, "manifest"),
				logging.Int("done", i+1),
				logging.Int("total", len(entries)),
				logging.Float64("percent", percent))
		}
	}

	writeErr := manifest.WriteEntries(opts.OutPath, out)

	if run != nil {
		if err := opts.Store.FinishRun(ctx, run.ID, summary.Total, summary.Succeeded, summary.Failed); err != nil {
			opts.Logger.Warn("ledger finish failed", logging.Error(err))
		}
	}

	if writeErr != nil {
		return summary, writeErr
	}

	summary.Elapsed = time.Since(started)
	opts.Logger.Info("manifest split finished",
		logging.String(logging.FieldStage, "manifest"),
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("chunks", len(out)),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func recordEntry(ctx context.Context, opts ManifestOptions, run *runs.Run, input, output string, err error, elapsed time.Duration) {
	if run == nil {
		return
	}
	rec := runs.FileRecord{
		RunID:   run.ID,
		Input:   input,
		Output:  output,
		Status:  runs.StatusOK,
		Elapsed: elapsed,
	}
	if err != nil {
		rec.Status = runs.StatusFailed
		rec.ErrorKind = services.Kind(err)
		rec.ErrorMessage = err.Error()
	}
	if recErr := opts.Store.RecordFile(ctx, rec); recErr != nil {
		opts.Logger.Warn("ledger record failed", logging.Error(recErr))
	}
}

// appendErrorLog records a skipped entry in error.log, one line per failure.
func appendErrorLog(dir, audioPath string, cause error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = fmt.Fprintf(file, "%s %v\n", audioPath, cause)
	return err
}
