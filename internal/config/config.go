package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	LogDir string `toml:"log_dir"`
	RunsDB string `toml:"runs_db"`
}

// Postprocessing contains segment extraction thresholds.
type Postprocessing struct {
	Onset             float64 `toml:"onset"`
	Offset            float64 `toml:"offset"`
	PadOnset          float64 `toml:"pad_onset"`
	PadOffset         float64 `toml:"pad_offset"`
	MinDurationOn     float64 `toml:"min_duration_on"`
	MinDurationOff    float64 `toml:"min_duration_off"`
	FilterSpeechFirst bool    `toml:"filter_speech_first"`
	Scale             string  `toml:"scale"`
	FrameLength       float64 `toml:"frame_length"`
}

// Smoothing contains overlap-window reconstruction settings.
type Smoothing struct {
	Method       string  `toml:"method"`
	Overlap      float64 `toml:"overlap"`
	WindowLength float64 `toml:"window_length"`
	ShiftLength  float64 `toml:"shift_length"`
}

// Manifest contains long-audio pre-split settings.
type Manifest struct {
	SplitDuration float64 `toml:"split_duration"`
	Label         string  `toml:"label"`
}

// Batch contains worker-pool and output settings shared by the batch commands.
type Batch struct {
	Workers    int  `toml:"workers"`
	RTTMOutput bool `toml:"rttm_output"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vadseg.
//
// Configuration sections by subsystem:
//   - Paths: log directory and run ledger database location
//   - Postprocessing: onset/offset hysteresis, padding, duration filters
//   - Smoothing: overlap-window reconstruction method and geometry
//   - Manifest: long-audio split duration and entry label
//   - Batch: worker count, output format, prediction file suffix
//   - Logging: log format and level
type Config struct {
	Paths          Paths          `toml:"paths"`
	Postprocessing Postprocessing `toml:"postprocessing"`
	Smoothing      Smoothing      `toml:"smoothing"`
	Manifest       Manifest       `toml:"manifest"`
	Batch          Batch          `toml:"batch"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vadseg/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. The bool reports whether a file was
// found; when it wasn't, the returned config is the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/vadseg/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vadseg.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.RunsDB, err = expandPath(c.Paths.RunsDB); err != nil {
		return err
	}
	c.Postprocessing.Scale = strings.ToLower(strings.TrimSpace(c.Postprocessing.Scale))
	c.Smoothing.Method = strings.ToLower(strings.TrimSpace(c.Smoothing.Method))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the directories the batch commands rely on.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, filepath.Dir(c.Paths.RunsDB)}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
