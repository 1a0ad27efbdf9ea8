package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateQueue() error {
	if c.Queue.Workers < 1 {
		return errors.New("queue.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.Binary == "" {
		return errors.New("ffmpeg.binary must be set")
	}
	if c.FFmpeg.ProbeBinary == "" {
		return errors.New("ffmpeg.probe_binary must be set")
	}
	if c.FFmpeg.JobTimeout < 0 {
		return errors.New("ffmpeg.job_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.CRF < 0 || c.Output.CRF > 51 {
		return errors.New("output.crf must be between 0 and 51")
	}
	if c.Output.PreviewCRF < 0 || c.Output.PreviewCRF > 51 {
		return errors.New("output.preview_crf must be between 0 and 51")
	}
	if c.Output.ImageQuality < 1 || c.Output.ImageQuality > 31 {
		return errors.New("output.image_quality must be between 1 and 31")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
