package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = ExpandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		if value, ok := os.LookupEnv("CLIPFORGE_FFMPEG"); ok {
			c.FFmpeg.Binary = strings.TrimSpace(value)
		}
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.ProbeBinary = strings.TrimSpace(c.FFmpeg.ProbeBinary)
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = defaultProbeBinary
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Preset = strings.TrimSpace(c.Output.Preset)
	if c.Output.Preset == "" {
		c.Output.Preset = defaultPreset
	}
	c.Output.PreviewPreset = strings.TrimSpace(c.Output.PreviewPreset)
	if c.Output.PreviewPreset == "" {
		c.Output.PreviewPreset = defaultPreviewPreset
	}
	c.Output.AudioBitrate = strings.TrimSpace(c.Output.AudioBitrate)
	if c.Output.AudioBitrate == "" {
		c.Output.AudioBitrate = defaultAudioBitrate
	}
	if c.Output.PreviewScale <= 0 {
		c.Output.PreviewScale = defaultPreviewScale
	}
	if c.Output.ImageQuality <= 0 {
		c.Output.ImageQuality = defaultImageQuality
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
