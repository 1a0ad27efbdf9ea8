package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/staging"
)

func newCleanCommand(cctx *commandContext) *cobra.Command {
	var dir string
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale staging directories left by crashed runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			target := strings.TrimSpace(dir)
			if target == "" {
				target = cfg.Paths.OutputDir
			}

			result := staging.SweepStale(target, maxAge, logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale staging director%s from %s\n",
				len(result.Removed), pluralY(len(result.Removed)), target)
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d directories could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory to sweep (defaults to paths.output_dir)")
	cmd.Flags().DurationVar(&maxAge, "max-age", 24*time.Hour, "Remove staging directories older than this")

	return cmd
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
