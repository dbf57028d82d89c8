// Package logging centralizes slog construction and the structured field
// vocabulary used across the batch pipeline.
//
// It provides console and JSON handlers, a no-op logger for tests,
// context-derived attributes (run ID, input file, stage), and a progress
// sampler that keeps long batch runs from flooding the log with per-file
// progress lines.
package logging
