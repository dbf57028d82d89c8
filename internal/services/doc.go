// Package services defines shared utilities consumed by the batch pipeline
// and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, input file paths, and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper that translate per-file
//     failures into consistent classifications for the run ledger.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across stages.
package services
