package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/engine"
	"clipforge/internal/ffprobe"
	"clipforge/internal/ffrunner"
	"clipforge/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	logClose   func() error
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, closeFn, err := logging.NewWithFile(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		}, cfg.Paths.LogDir, "clipforge.log")
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
		c.logClose = closeFn
	})
	return c.logger, c.loggerErr
}

// newEngine builds the engine from the loaded configuration.
func (c *commandContext) newEngine() (*engine.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	var opts []ffrunner.Option
	if cfg.FFmpeg.JobTimeout > 0 {
		opts = append(opts, ffrunner.WithTimeout(time.Duration(cfg.FFmpeg.JobTimeout)*time.Second))
	}
	runner := ffrunner.NewCLI(cfg.FFmpeg.Binary, opts...)

	return engine.New(engine.Options{
		Runner:      runner,
		Logger:      logger,
		Concurrency: cfg.Queue.Workers,
	})
}

func (c *commandContext) newProber() (ffprobe.Prober, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ffprobe.NewCLI(cfg.FFmpeg.ProbeBinary), nil
}
