package runs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginRunRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "smooth", "/in", "/out", 4)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected non-empty run ID")
	}

	listed, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 run, got %d", len(listed))
	}
	got := listed[0]
	if got.ID != run.ID || got.Kind != "smooth" || got.InputPath != "/in" || got.OutPath != "/out" || got.Workers != 4 {
		t.Fatalf("unexpected run row: %+v", got)
	}
	if got.FinishedAt != nil {
		t.Fatal("expected in-progress run to have no finish time")
	}
}

func TestFinishRunUpdatesCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "segment", "/in", "/out", 2)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if err := store.FinishRun(ctx, run.ID, 5, 4, 1); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}

	listed, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	got := listed[0]
	if got.Total != 5 || got.Succeeded != 4 || got.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatal("expected finish time to be set")
	}
}

func TestFinishRunUnknownID(t *testing.T) {
	store := openTestStore(t)
	if err := store.FinishRun(context.Background(), "missing", 0, 0, 0); err == nil {
		t.Fatal("expected error for unknown run ID")
	}
}

func TestRecordFilePreservesOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "manifest", "/in", "/out", 1)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	records := []FileRecord{
		{RunID: run.ID, Input: "a.frame", Output: "a.txt", Status: StatusOK, Elapsed: 12 * time.Millisecond},
		{RunID: run.ID, Input: "b.frame", Status: StatusFailed, ErrorKind: "io", ErrorMessage: "read failed", Elapsed: 3 * time.Millisecond},
	}
	for _, rec := range records {
		if err := store.RecordFile(ctx, rec); err != nil {
			t.Fatalf("RecordFile returned error: %v", err)
		}
	}

	got, err := store.RunFiles(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunFiles returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Input != "a.frame" || got[0].Status != StatusOK || got[0].Elapsed != 12*time.Millisecond {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].Status != StatusFailed || got[1].ErrorKind != "io" || got[1].ErrorMessage != "read failed" {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
	if got[1].Output != "" {
		t.Fatalf("expected empty output for failed record, got %q", got[1].Output)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("downgrade schema version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
