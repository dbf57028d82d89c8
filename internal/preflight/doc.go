// Package preflight provides readiness checks for the directories a batch
// run depends on. The batch commands call RunAll before taking the output
// lock; a failed check halts the run before any file is touched.
package preflight
