package frameseq

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"vadseg/internal/fileutil"
	"vadseg/internal/services"
)

// Load reads a one-value-per-line numeric sequence file and returns the
// values plus the sequence name derived from the file stem.
func Load(path string) ([]float64, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", services.Wrap(services.ErrIO, "frameseq", "load", path, err)
	}
	defer file.Close()

	var values []float64
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, "", services.Wrap(services.ErrIO, "frameseq", "load",
				fmt.Sprintf("%s:%d: not a number: %q", path, line, text), nil)
		}
		values = append(values, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, "", services.Wrap(services.ErrIO, "frameseq", "load", path, err)
	}

	return values, fileutil.Stem(path), nil
}

// Write stores a sequence as one 4-decimal value per line, atomically.
func Write(path string, values []float64) error {
	var buf bytes.Buffer
	buf.Grow(len(values) * 7)
	for _, value := range values {
		fmt.Fprintf(&buf, "%.4f\n", value)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "frameseq", "write", path, err)
	}
	return nil
}
