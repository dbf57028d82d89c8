package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vadseg/internal/fileutil"
	"vadseg/internal/services"
)

// Entry is one logical unit of inference work: an audio reference with an
// optional offset/duration window into the file. A zero Duration means "to
// the end of the file".
type Entry struct {
	AudioFilepath string  `json:"audio_filepath"`
	Duration      float64 `json:"duration"`
	Label         string  `json:"label"`
	Text          string  `json:"text"`
	Offset        float64 `json:"offset"`
}

// ReadEntries loads a newline-delimited JSON manifest.
func ReadEntries(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "manifest", "read", path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			return nil, services.Wrap(services.ErrIO, "manifest", "read",
				fmt.Sprintf("%s:%d: %v", path, line, err), nil)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "manifest", "read", path, err)
	}
	return entries, nil
}

// WriteEntries stores entries as newline-delimited JSON, replacing any
// existing file at path. Unlike per-file pipeline outputs, a failure here is
// fatal for the whole batch.
func WriteEntries(path string, entries []Entry) error {
	var buf bytes.Buffer
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return services.Wrap(services.ErrIO, "manifest", "write", path, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "manifest", "write", path, err)
	}
	return nil
}

// ResolvePath returns the entry's audio path, falling back to a path
// relative to the manifest's directory when the recorded path does not
// exist on its own.
func ResolvePath(audioPath, manifestDir string) string {
	if _, err := os.Stat(audioPath); err == nil {
		return audioPath
	}
	if manifestDir == "" {
		return audioPath
	}
	candidate := filepath.Join(manifestDir, audioPath)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return audioPath
}
