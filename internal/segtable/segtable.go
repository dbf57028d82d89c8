package segtable

import (
	"bytes"
	"fmt"

	"vadseg/internal/fileutil"
	"vadseg/internal/segments"
	"vadseg/internal/services"
)

// unitFrameLen is added to every RTTM duration so a single-frame segment has
// a non-zero extent, matching the convention of the upstream toolchain.
const unitFrameLen = 0.01

// Write stores a sorted, merged, filtered segment set as a segment table.
// Plain rows are "start end speech"; RTTM rows follow the speaker
// diarization record layout with name as the recording identifier. An empty
// set still produces exactly one placeholder row so downstream consumers can
// rely on at least one line per file.
func Write(path, name string, segs []segments.Interval, useRTTM bool) error {
	var buf bytes.Buffer

	if len(segs) == 0 {
		if useRTTM {
			buf.WriteString("SPEAKER <NA> 1 0 0 <NA> <NA> speech <NA> <NA>\n")
		} else {
			buf.WriteString("0 0 speech\n")
		}
	} else {
		for _, seg := range segs {
			if useRTTM {
				fmt.Fprintf(&buf, "SPEAKER %s 1 %.4f %.4f <NA> <NA> speech <NA> <NA>\n",
					name, seg.Start, seg.Duration()+unitFrameLen)
			} else {
				fmt.Fprintf(&buf, "%.4f %.4f speech\n", seg.Start, seg.End)
			}
		}
	}

	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "segtable", "write", path, err)
	}
	return nil
}

// Ext returns the output filename extension for the selected format.
func Ext(useRTTM bool) string {
	if useRTTM {
		return ".rttm"
	}
	return ".txt"
}
