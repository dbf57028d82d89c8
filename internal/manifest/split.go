package manifest

// SplitParams controls how long clips are divided before VAD inference.
type SplitParams struct {
	// Label is stamped on every emitted entry (conventionally "infer").
	Label string
	// SplitDuration is the maximum clip length per emitted entry, seconds.
	SplitDuration float64
	// WindowLength back-pads every non-initial chunk so the model keeps
	// its window context across a cut, seconds.
	WindowLength float64
}

// SplitEntry divides one entry of known clip duration into bounded chunks.
// Clips that fit within SplitDuration are emitted unchanged as a single
// chunk; longer clips become a start chunk of exactly SplitDuration followed
// by next/end chunks that start WindowLength early and run correspondingly
// longer, so that after stripping the back-pad the chunks tile the clip
// exactly. Chunk roles are recoverable afterwards via StreamStatuses.
func SplitEntry(entry Entry, clipDuration float64, p SplitParams) []Entry {
	var out []Entry

	left := clipDuration
	currentOffset := entry.Offset
	status := "single"

	for left > 0 {
		var writeDuration, offsetInc float64

		if left <= p.SplitDuration {
			if status == "single" {
				writeDuration = left
				currentOffset = 0
			} else {
				status = "end"
				writeDuration = left + p.WindowLength
				currentOffset -= p.WindowLength
			}
			offsetInc = left
			left = 0
		} else {
			if status == "start" || status == "next" {
				status = "next"
			} else {
				status = "start"
			}
			if status == "start" {
				writeDuration = p.SplitDuration
				offsetInc = p.SplitDuration
			} else {
				writeDuration = p.SplitDuration + p.WindowLength
				currentOffset -= p.WindowLength
				offsetInc = p.SplitDuration + p.WindowLength
			}
			left -= p.SplitDuration
		}

		out = append(out, Entry{
			AudioFilepath: entry.AudioFilepath,
			Duration:      writeDuration,
			Label:         p.Label,
			Text:          "_",
			Offset:        currentOffset,
		})
		currentOffset += offsetInc
	}

	return out
}

// StreamStatuses derives the single/start/next/end role of each snippet in a
// manifest from its source name, for re-stitching chunked results back into
// full recordings. Consecutive entries with the same source belong to one
// split recording.
func StreamStatuses(sources []string) []string {
	if len(sources) == 0 {
		return nil
	}
	if len(sources) == 1 {
		return []string{"single"}
	}

	statuses := make([]string, len(sources))
	for i := range sources {
		switch {
		case i == 0:
			if sources[i] == sources[i+1] {
				statuses[i] = "start"
			} else {
				statuses[i] = "single"
			}
		case i == len(sources)-1:
			if sources[i] == sources[i-1] {
				statuses[i] = "end"
			} else {
				statuses[i] = "single"
			}
		case sources[i] != sources[i-1] && sources[i] == sources[i+1]:
			statuses[i] = "start"
		case sources[i] == sources[i-1] && sources[i] == sources[i+1]:
			statuses[i] = "next"
		case sources[i] == sources[i-1] && sources[i] != sources[i+1]:
			statuses[i] = "end"
		default:
			statuses[i] = "single"
		}
	}
	return statuses
}
