package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/engine"
	"clipforge/internal/ffgraph"
	"clipforge/internal/history"
	"clipforge/internal/logging"
)

// renderFlags are the options shared by every transcode command.
type renderFlags struct {
	outputDir   string
	orientation string
	preview     bool
	workers     int
	verbose     bool
}

func addRenderFlags(cmd *cobra.Command, f *renderFlags) {
	cmd.Flags().StringVarP(&f.outputDir, "out", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().StringVar(&f.orientation, "orientation", "horizontal", "Canvas orientation: horizontal or vertical")
	cmd.Flags().BoolVar(&f.preview, "preview", false, "Render a low-resolution preview")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Override the concurrent job limit")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print transcoder output lines")
}

func (f renderFlags) parseOrientation() (ffgraph.Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(f.orientation)) {
	case "", "horizontal":
		return ffgraph.Horizontal, nil
	case "vertical":
		return ffgraph.Vertical, nil
	default:
		return "", fmt.Errorf("unknown orientation %q (use horizontal or vertical)", f.orientation)
	}
}

func (f renderFlags) resolveOutputDir(cfg *config.Config) string {
	if strings.TrimSpace(f.outputDir) != "" {
		return f.outputDir
	}
	return cfg.Paths.OutputDir
}

// renderOptions resolves quality settings: preview renders swap in the
// cheaper encoder parameters from config.
func (f renderFlags) renderOptions(cfg *config.Config) (engine.RenderOptions, error) {
	orientation, err := f.parseOrientation()
	if err != nil {
		return engine.RenderOptions{}, err
	}
	quality := ffgraph.Quality{
		CRF:          cfg.Output.CRF,
		Preset:       cfg.Output.Preset,
		AudioBitrate: cfg.Output.AudioBitrate,
		ImageQuality: cfg.Output.ImageQuality,
	}
	if f.preview {
		quality.CRF = cfg.Output.PreviewCRF
		quality.Preset = cfg.Output.PreviewPreset
	}
	return engine.RenderOptions{
		Orientation:  orientation,
		Quality:      quality,
		Preview:      f.preview,
		PreviewScale: cfg.Output.PreviewScale,
	}, nil
}

// executeBatch runs a planned batch and renders its event stream to the
// command's output. It returns an error when any job failed so the process
// exits non-zero.
func executeBatch(cmd *cobra.Command, cctx *commandContext, batch engine.Batch, flags renderFlags) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cctx.ensureLogger()
	if err != nil {
		return err
	}

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required binaries: %s (run `clipforge deps` for details)", strings.Join(missing, ", "))
	}

	eng, err := cctx.newEngine()
	if err != nil {
		return err
	}
	if flags.workers > 0 {
		eng.SetConcurrency(flags.workers)
	}

	var recorder *history.Recorder
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history store unavailable", logging.Error(err))
		} else {
			defer store.Close()
			recorder = history.NewRecorder(store, logger, string(batch.Mode), batch.OutputDir)
		}
	}

	events, err := eng.Run(cmd.Context(), batch)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failedTotal int
	for ev := range events {
		if recorder != nil {
			recorder.Observe(cmd.Context(), ev)
		}
		switch ev.Type {
		case engine.EventStart:
			fmt.Fprintf(out, "Starting %d job(s) with concurrency %d\n", ev.Total, ev.Concurrency)
		case engine.EventTaskStart:
			if flags.verbose {
				fmt.Fprintf(out, "[%d] started\n", ev.Index)
			}
		case engine.EventLog:
			if flags.verbose {
				fmt.Fprintf(out, "[%d] %s\n", ev.Index, ev.Message)
			}
		case engine.EventProgress:
			fmt.Fprintf(out, "[%d] done (%d/%d) -> %s\n", ev.Index, ev.Done+ev.Failed, ev.Total, ev.OutputPath)
		case engine.EventFailed:
			fmt.Fprintf(out, "[%d] failed (%d/%d): %v\n", ev.Index, ev.Done+ev.Failed, ev.Total, ev.Err)
		case engine.EventFinish:
			failedTotal = ev.Failed
			fmt.Fprintf(out, "Finished: %d completed, %d failed in %.1fs\n", ev.Done, ev.Failed, ev.ElapsedSeconds)
		}
	}

	if failedTotal > 0 {
		return fmt.Errorf("%d job(s) failed", failedTotal)
	}
	return nil
}
