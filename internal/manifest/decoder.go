package manifest

import (
	"os"

	"github.com/go-audio/wav"

	"vadseg/internal/services"
)

// Decoder reports the playable duration of an audio clip. Implementations
// stand in for the audio loader of the upstream inference toolchain.
type Decoder interface {
	// ClipDuration returns the duration in seconds of the window starting
	// at offset; maxDuration > 0 caps the result.
	ClipDuration(path string, offset, maxDuration float64) (float64, error)
}

// WAVDecoder reads durations from RIFF/WAV headers.
type WAVDecoder struct{}

// ClipDuration implements Decoder.
func (WAVDecoder) ClipDuration(path string, offset, maxDuration float64) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, services.Wrap(services.ErrDecode, "manifest", "decode", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0, services.Wrap(services.ErrDecode, "manifest", "decode", path+": not a valid WAV file", nil)
	}
	total, err := decoder.Duration()
	if err != nil {
		return 0, services.Wrap(services.ErrDecode, "manifest", "decode", path, err)
	}

	duration := total.Seconds() - offset
	if duration < 0 {
		duration = 0
	}
	if maxDuration > 0 && duration > maxDuration {
		duration = maxDuration
	}
	return duration, nil
}
