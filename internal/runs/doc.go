// Package runs persists batch run history in a SQLite ledger. Each batch
// invocation becomes one run row with per-file outcome rows attached, which
// the runs command renders for inspection after the fact.
package runs
