// Package segtable writes final speech intervals as on-disk segment tables,
// either plain "start end speech" rows or RTTM speaker-diarization records.
package segtable
