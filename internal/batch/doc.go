// Package batch orchestrates the directory-level commands: overlap
// smoothing, segment-table extraction, and manifest pre-splitting. The
// smooth and segment batches fan out over a bounded worker pool, lock the
// output directory for the duration of the run, and record per-file
// outcomes in the run ledger. Per-file failures are skipped and summarized;
// configuration errors fail the whole run.
package batch
