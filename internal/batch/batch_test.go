package batch_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"vadseg/internal/batch"
	"vadseg/internal/logging"
	"vadseg/internal/manifest"
	"vadseg/internal/postprocess"
	"vadseg/internal/runs"
	"vadseg/internal/services"
	"vadseg/internal/smoothing"
)

func writeFrameFile(t *testing.T, dir, name string, values []float64) string {
	t.Helper()
	var sb strings.Builder
	for _, v := range values {
		fmt.Fprintf(&sb, "%.4f\n", v)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSmoothWorkerCountInvariance(t *testing.T) {
	predDir := t.TempDir()
	seqs := map[string][]float64{
		"a.frame": {0.1, 0.9, 0.2, 0.8, 0.3, 0.7},
		"b.frame": {0.5, 0.5, 0.5, 0.5},
		"c.frame": {0.0, 1.0},
	}
	for name, values := range seqs {
		writeFrameFile(t, predDir, name, values)
	}

	params := smoothing.Params{Overlap: 0.5, WindowLength: 0.02, ShiftLength: 0.01, FrameLength: 0.01}
	runSmooth := func(workers int) map[string][]byte {
		outDir := t.TempDir()
		summary, err := batch.Smooth(context.Background(), batch.SmoothOptions{
			Options: batch.Options{PredDir: predDir, OutDir: outDir, Workers: workers},
			Params:  params,
			Method:  smoothing.MethodMean,
		})
		if err != nil {
			t.Fatalf("Smooth with %d workers returned error: %v", workers, err)
		}
		if summary.Succeeded != 3 || summary.Failed != 0 {
			t.Fatalf("unexpected summary with %d workers: %+v", workers, summary)
		}
		outputs := map[string][]byte{}
		for _, name := range []string{"a.mean", "b.mean", "c.mean"} {
			data, err := os.ReadFile(filepath.Join(outDir, name))
			if err != nil {
				t.Fatalf("read output %s: %v", name, err)
			}
			outputs[name] = data
		}
		return outputs
	}

	serial := runSmooth(1)
	parallel := runSmooth(4)
	for name, want := range serial {
		if string(parallel[name]) != string(want) {
			t.Fatalf("output %s differs between 1 and 4 workers:\n%q\nvs\n%q", name, want, parallel[name])
		}
	}
}

func TestSmoothDefaultOutDir(t *testing.T) {
	got := batch.DefaultSmoothOutDir("/preds", smoothing.MethodMedian, 0.875)
	want := filepath.Join("/preds", "overlap_smoothing_output_median_0.875")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSegmentTablesWritesSegments(t *testing.T) {
	predDir := t.TempDir()
	writeFrameFile(t, predDir, "utt.frame", []float64{0, 0, 0.6, 0.6, 0.6, 0.3, 0.3, 0.3, 0, 0})

	outDir := t.TempDir()
	params := postprocess.DefaultParams()
	params.FrameLength = 1.0
	summary, err := batch.SegmentTables(context.Background(), batch.SegmentOptions{
		Options: batch.Options{PredDir: predDir, OutDir: outDir, Workers: 2},
		Params:  params,
	})
	if err != nil {
		t.Fatalf("SegmentTables returned error: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "utt.txt"))
	if err != nil {
		t.Fatalf("read segment table: %v", err)
	}
	if string(data) != "2.0000 5.0000 speech\n" {
		t.Fatalf("unexpected table contents: %q", string(data))
	}
}

func TestSegmentTablesSelectsAllSuffixes(t *testing.T) {
	predDir := t.TempDir()
	writeFrameFile(t, predDir, "a.frame", []float64{0, 0.9, 0.9, 0})
	writeFrameFile(t, predDir, "b.mean", []float64{0, 0.9, 0.9, 0})
	writeFrameFile(t, predDir, "c.median", []float64{0, 0.9, 0.9, 0})

	outDir := t.TempDir()
	params := postprocess.DefaultParams()
	params.FrameLength = 1.0
	summary, err := batch.SegmentTables(context.Background(), batch.SegmentOptions{
		Options: batch.Options{PredDir: predDir, OutDir: outDir, Workers: 2},
		Params:  params,
	})
	if err != nil {
		t.Fatalf("SegmentTables returned error: %v", err)
	}
	if summary.Total != 3 || summary.Succeeded != 3 {
		t.Fatalf("expected all prediction kinds in one batch, got %+v", summary)
	}
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected segment table %s: %v", name, err)
		}
	}
}

func TestSegmentTablesWorkerCountInvariance(t *testing.T) {
	predDir := t.TempDir()
	seqs := map[string][]float64{
		"a.frame":  {0, 0.9, 0.9, 0.9, 0, 0.8, 0.8, 0},
		"b.mean":   {0.6, 0.6, 0, 0, 0.7, 0.7, 0.7},
		"c.median": {0, 0, 1.0, 1.0, 0},
	}
	for name, values := range seqs {
		writeFrameFile(t, predDir, name, values)
	}

	params := postprocess.DefaultParams()
	params.FrameLength = 1.0
	runSegment := func(workers int) map[string][]byte {
		outDir := t.TempDir()
		summary, err := batch.SegmentTables(context.Background(), batch.SegmentOptions{
			Options: batch.Options{PredDir: predDir, OutDir: outDir, Workers: workers},
			Params:  params,
		})
		if err != nil {
			t.Fatalf("SegmentTables with %d workers returned error: %v", workers, err)
		}
		if summary.Succeeded != 3 || summary.Failed != 0 {
			t.Fatalf("unexpected summary with %d workers: %+v", workers, summary)
		}
		outputs := map[string][]byte{}
		for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
			data, err := os.ReadFile(filepath.Join(outDir, name))
			if err != nil {
				t.Fatalf("read output %s: %v", name, err)
			}
			outputs[name] = data
		}
		return outputs
	}

	serial := runSegment(1)
	parallel := runSegment(4)
	for name, want := range serial {
		if string(parallel[name]) != string(want) {
			t.Fatalf("output %s differs between 1 and 4 workers:\n%q\nvs\n%q", name, want, parallel[name])
		}
	}
}

func TestSegmentTablesSkipsUnreadableInput(t *testing.T) {
	predDir := t.TempDir()
	writeFrameFile(t, predDir, "good.frame", []float64{0, 0.9, 0.9, 0})
	if err := os.WriteFile(filepath.Join(predDir, "bad.frame"), []byte("not a number\n"), 0o644); err != nil {
		t.Fatalf("write bad input: %v", err)
	}

	params := postprocess.DefaultParams()
	params.FrameLength = 1.0
	summary, err := batch.SegmentTables(context.Background(), batch.SegmentOptions{
		Options: batch.Options{PredDir: predDir, OutDir: t.TempDir(), Workers: 1},
		Params:  params,
	})
	if err != nil {
		t.Fatalf("expected per-file skip, got run error: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Failures) != 1 || !strings.HasSuffix(summary.Failures[0].Input, "bad.frame") {
		t.Fatalf("unexpected failures: %+v", summary.Failures)
	}
	if !errors.Is(summary.Failures[0].Err, services.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", summary.Failures[0].Err)
	}
}

func TestSmoothConfigurationErrorFailsRun(t *testing.T) {
	predDir := t.TempDir()
	writeFrameFile(t, predDir, "a.frame", []float64{0.1, 0.2, 0.3})

	// Stride that cannot advance.
	params := smoothing.Params{Overlap: 0.999999, WindowLength: 0.001, ShiftLength: 1.0, FrameLength: 0.01}
	_, err := batch.Smooth(context.Background(), batch.SmoothOptions{
		Options: batch.Options{PredDir: predDir, OutDir: t.TempDir(), Workers: 1},
		Params:  params,
		Method:  smoothing.MethodMean,
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestBatchLogCarriesComponentAndOutcome(t *testing.T) {
	predDir := t.TempDir()
	writeFrameFile(t, predDir, "good.frame", []float64{0, 0.9, 0.9, 0})
	if err := os.WriteFile(filepath.Join(predDir, "bad.mean"), []byte("not a number\n"), 0o644); err != nil {
		t.Fatalf("write bad input: %v", err)
	}

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	params := postprocess.DefaultParams()
	params.FrameLength = 1.0
	if _, err := batch.SegmentTables(context.Background(), batch.SegmentOptions{
		Options: batch.Options{PredDir: predDir, OutDir: t.TempDir(), Workers: 1, Logger: logger},
		Params:  params,
	}); err != nil {
		t.Fatalf("SegmentTables returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "component=batch") {
		t.Fatalf("expected component attribute in log output, got:\n%s", out)
	}
	if !strings.Contains(out, "input skipped") {
		t.Fatalf("expected skip warning in log output, got:\n%s", out)
	}
	if !strings.Contains(out, "partial=true") {
		t.Fatalf("expected partial outcome in log output, got:\n%s", out)
	}
}

func TestSmoothNoInputs(t *testing.T) {
	_, err := batch.Smooth(context.Background(), batch.SmoothOptions{
		Options: batch.Options{PredDir: t.TempDir(), OutDir: t.TempDir(), Workers: 1},
		Params:  smoothing.DefaultParams(),
		Method:  smoothing.MethodMean,
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for empty prediction dir, got %v", err)
	}
}

func TestRunBatchRejectsLockedOutDir(t *testing.T) {
	predDir := t.TempDir()
	writeFrameFile(t, predDir, "a.frame", []float64{0.1, 0.2})
	outDir := t.TempDir()

	lock := flock.New(filepath.Join(outDir, ".vadseg.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take test lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	_, err = batch.Smooth(context.Background(), batch.SmoothOptions{
		Options: batch.Options{PredDir: predDir, OutDir: outDir, Workers: 1},
		Params:  smoothing.DefaultParams(),
		Method:  smoothing.MethodMean,
	})
	if err == nil {
		t.Fatal("expected error for locked output directory")
	}
	if !strings.Contains(err.Error(), "locked") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSmoothRecordsLedger(t *testing.T) {
	predDir := t.TempDir()
	writeFrameFile(t, predDir, "a.frame", []float64{0.1, 0.9, 0.1, 0.9})

	store, err := runs.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	summary, err := batch.Smooth(context.Background(), batch.SmoothOptions{
		Options: batch.Options{PredDir: predDir, OutDir: t.TempDir(), Workers: 1, Store: store},
		Params:  smoothing.Params{Overlap: 0.5, WindowLength: 0.02, ShiftLength: 0.01, FrameLength: 0.01},
		Method:  smoothing.MethodMedian,
	})
	if err != nil {
		t.Fatalf("Smooth returned error: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected ledger run ID in summary")
	}

	ctx := context.Background()
	listed, err := store.ListRuns(ctx, 5)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != summary.RunID {
		t.Fatalf("unexpected runs: %+v", listed)
	}
	if listed[0].Kind != "smooth" || listed[0].Total != 1 || listed[0].Succeeded != 1 {
		t.Fatalf("unexpected run row: %+v", listed[0])
	}

	files, err := store.RunFiles(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("RunFiles returned error: %v", err)
	}
	if len(files) != 1 || files[0].Status != runs.StatusOK {
		t.Fatalf("unexpected file records: %+v", files)
	}
	if !strings.HasSuffix(files[0].Output, "a.median") {
		t.Fatalf("unexpected output path: %q", files[0].Output)
	}
}

type fakeDecoder map[string]float64

func (d fakeDecoder) ClipDuration(path string, offset, maxDuration float64) (float64, error) {
	dur, ok := d[filepath.Base(path)]
	if !ok {
		return 0, services.Wrap(services.ErrDecode, "manifest", "decode", path, nil)
	}
	return dur, nil
}

func TestPrepareManifestSplitsAndSkips(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.json")
	entries := []manifest.Entry{
		{AudioFilepath: "long.wav", Label: "infer", Text: "_"},
		{AudioFilepath: "bad.wav", Label: "infer", Text: "_"},
		{AudioFilepath: "short.wav", Label: "infer", Text: "_"},
	}
	if err := manifest.WriteEntries(input, entries); err != nil {
		t.Fatalf("write input manifest: %v", err)
	}

	outPath := filepath.Join(dir, "out", "split.json")
	summary, err := batch.PrepareManifest(context.Background(), batch.ManifestOptions{
		Input:   input,
		OutPath: outPath,
		Params:  manifest.SplitParams{Label: "infer", SplitDuration: 10, WindowLength: 1},
		Decoder: fakeDecoder{"long.wav": 25, "short.wav": 4},
	})
	if err != nil {
		t.Fatalf("PrepareManifest returned error: %v", err)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	out, err := manifest.ReadEntries(outPath)
	if err != nil {
		t.Fatalf("read output manifest: %v", err)
	}
	// long.wav tiles into 3 chunks, short.wav passes through as one.
	if len(out) != 4 {
		t.Fatalf("expected 4 output entries, got %d: %+v", len(out), out)
	}
	if out[0].Duration != 10 || out[0].Offset != 0 {
		t.Fatalf("unexpected start chunk: %+v", out[0])
	}
	if out[1].Duration != 11 || out[1].Offset != 9 {
		t.Fatalf("unexpected next chunk: %+v", out[1])
	}
	if out[2].Duration != 6 || out[2].Offset != 19 {
		t.Fatalf("unexpected end chunk: %+v", out[2])
	}
	if out[3].AudioFilepath != "short.wav" || out[3].Duration != 4 {
		t.Fatalf("unexpected single chunk: %+v", out[3])
	}

	logData, err := os.ReadFile(filepath.Join(dir, "out", "error.log"))
	if err != nil {
		t.Fatalf("read error.log: %v", err)
	}
	if !strings.Contains(string(logData), "bad.wav") {
		t.Fatalf("expected bad.wav in error.log, got %q", string(logData))
	}
}

func TestDefaultManifestOutPath(t *testing.T) {
	got := batch.DefaultManifestOutPath("/data/infer.json")
	if got != "/data/infer_split.json" {
		t.Fatalf("unexpected default out path: %q", got)
	}
}
