// Package frameseq reads and writes frame-level score sequences: plain text
// files with one numeric value per line, named after the audio unit they
// score.
package frameseq
