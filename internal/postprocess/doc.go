// Package postprocess converts frame-level VAD probability sequences into
// speech intervals.
//
// The pipeline stages are threshold calibration (absolute, relative, or
// percentile scale), hysteresis binarization with onset/offset padding, and
// short-segment filtering with a caller-selectable ordering between the
// speech and non-speech stages. Params replaces the untyped parameter bag of
// ad-hoc VAD scripts with an immutable configuration value.
package postprocess
