// Package manifest reads, splits, and writes newline-delimited JSON
// manifests of audio inference work.
//
// Long recordings are divided into bounded-duration chunks before VAD
// inference so a single clip cannot exhaust model memory; non-initial
// chunks are back-padded by one window length so the cut preserves model
// context, and chunk roles (single/start/next/end) are recoverable for
// later re-stitching.
package manifest
