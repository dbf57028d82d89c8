package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePostprocessing(); err != nil {
		return err
	}
	if err := c.validateSmoothing(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePostprocessing() error {
	p := c.Postprocessing
	switch p.Scale {
	case "absolute", "relative", "percentile":
	default:
		return fmt.Errorf("postprocessing.scale must be absolute, relative, or percentile (got %q)", p.Scale)
	}
	if p.FrameLength <= 0 {
		return errors.New("postprocessing.frame_length must be positive")
	}
	if p.MinDurationOn < 0 || p.MinDurationOff < 0 {
		return errors.New("postprocessing.min_duration_on and min_duration_off must be non-negative")
	}
	return nil
}

func (c *Config) validateSmoothing() error {
	s := c.Smoothing
	switch s.Method {
	case "mean", "median":
	default:
		return fmt.Errorf("smoothing.method must be mean or median (got %q)", s.Method)
	}
	if s.Overlap < 0 || s.Overlap >= 1 {
		return errors.New("smoothing.overlap must be in [0, 1)")
	}
	if s.WindowLength <= 0 || s.ShiftLength <= 0 {
		return errors.New("smoothing.window_length and shift_length must be positive")
	}
	return nil
}

func (c *Config) validateManifest() error {
	if c.Manifest.SplitDuration <= 0 {
		return errors.New("manifest.split_duration must be positive")
	}
	if c.Manifest.Label == "" {
		return errors.New("manifest.label must be set")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
