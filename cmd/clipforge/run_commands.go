package main

import (
	"github.com/spf13/cobra"

	"clipforge/internal/engine"
	"clipforge/internal/ffgraph"
)

func newStitchCommand(cctx *commandContext) *cobra.Command {
	var flags renderFlags
	var fronts, backs []string

	cmd := &cobra.Command{
		Use:   "stitch",
		Short: "Concatenate paired front and back clips",
		Long:  "Pairs the --front and --back lists index-wise and renders one stitched clip per pair.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			render, err := flags.renderOptions(cfg)
			if err != nil {
				return err
			}
			prober, err := cctx.newProber()
			if err != nil {
				return err
			}

			batch, err := engine.PlanStitch(cmd.Context(), prober, engine.StitchRequest{
				Fronts:    fronts,
				Backs:     backs,
				OutputDir: flags.resolveOutputDir(cfg),
				Render:    render,
			})
			if err != nil {
				return err
			}
			return executeBatch(cmd, cctx, batch, flags)
		},
	}

	addRenderFlags(cmd, &flags)
	cmd.Flags().StringSliceVar(&fronts, "front", nil, "Front clip paths (repeatable)")
	cmd.Flags().StringSliceVar(&backs, "back", nil, "Back clip paths (repeatable)")
	_ = cmd.MarkFlagRequired("front")
	_ = cmd.MarkFlagRequired("back")

	return cmd
}

func newMergeCommand(cctx *commandContext) *cobra.Command {
	var flags renderFlags
	var (
		secondaries  []string
		backgrounds  []string
		covers       []string
		logo         string
		coverSeconds float64
		trimStart    float64
		trimDuration float64
	)

	cmd := &cobra.Command{
		Use:   "merge [primary clips...]",
		Short: "Composite layered assets over each primary clip",
		Long: "Renders one composite per primary clip. Background and cover candidates\n" +
			"are spread across jobs approximately evenly; the secondary pool works the\n" +
			"same way. A logo applies to every job.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			render, err := flags.renderOptions(cfg)
			if err != nil {
				return err
			}
			prober, err := cctx.newProber()
			if err != nil {
				return err
			}

			request := engine.MergeRequest{
				Primaries:    args,
				Secondaries:  secondaries,
				Backgrounds:  backgrounds,
				Covers:       covers,
				Logo:         logo,
				CoverSeconds: coverSeconds,
				OutputDir:    flags.resolveOutputDir(cfg),
				Render:       render,
			}
			if trimDuration > 0 || trimStart > 0 {
				request.Trims = map[ffgraph.Role]ffgraph.Trim{
					ffgraph.RolePrimary: {Start: trimStart, Duration: trimDuration},
				}
			}

			batch, err := engine.PlanMerge(cmd.Context(), prober, request)
			if err != nil {
				return err
			}
			return executeBatch(cmd, cctx, batch, flags)
		},
	}

	addRenderFlags(cmd, &flags)
	cmd.Flags().StringSliceVar(&secondaries, "secondary", nil, "Secondary clip candidates (repeatable)")
	cmd.Flags().StringSliceVar(&backgrounds, "background", nil, "Background image candidates (repeatable)")
	cmd.Flags().StringSliceVar(&covers, "cover", nil, "Cover image candidates (repeatable)")
	cmd.Flags().StringVar(&logo, "logo", "", "Logo image overlaid on every job")
	cmd.Flags().Float64Var(&coverSeconds, "cover-seconds", 3, "How long the cover occludes the primary")
	cmd.Flags().Float64Var(&trimStart, "trim-start", 0, "Trim the primary from this offset, in seconds")
	cmd.Flags().Float64Var(&trimDuration, "trim-duration", 0, "Trim the primary to this length, in seconds")

	return cmd
}

func newResizeCommand(cctx *commandContext) *cobra.Command {
	var flags renderFlags
	var width, height int

	cmd := &cobra.Command{
		Use:   "resize [clips...]",
		Short: "Reframe clips onto a target canvas with blurred padding",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			render, err := flags.renderOptions(cfg)
			if err != nil {
				return err
			}
			prober, err := cctx.newProber()
			if err != nil {
				return err
			}

			batch, err := engine.PlanResize(cmd.Context(), prober, engine.ResizeRequest{
				Inputs:       args,
				TargetWidth:  width,
				TargetHeight: height,
				OutputDir:    flags.resolveOutputDir(cfg),
				Render:       render,
			})
			if err != nil {
				return err
			}
			return executeBatch(cmd, cctx, batch, flags)
		},
	}

	addRenderFlags(cmd, &flags)
	cmd.Flags().IntVar(&width, "width", 1080, "Target canvas width")
	cmd.Flags().IntVar(&height, "height", 1920, "Target canvas height")

	return cmd
}

func newImagesCommand(cctx *commandContext) *cobra.Command {
	var flags renderFlags
	var (
		maxWidth  int
		maxHeight int
		pad       bool
		quality   int
	)

	cmd := &cobra.Command{
		Use:   "images [images...]",
		Short: "Compress and rescale still images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if quality <= 0 {
				quality = cfg.Output.ImageQuality
			}

			batch, err := engine.PlanImages(engine.ImagesRequest{
				Inputs:       args,
				MaxWidth:     maxWidth,
				MaxHeight:    maxHeight,
				PadToCanvas:  pad,
				ImageQuality: quality,
				OutputDir:    flags.resolveOutputDir(cfg),
			})
			if err != nil {
				return err
			}
			return executeBatch(cmd, cctx, batch, flags)
		},
	}

	addRenderFlags(cmd, &flags)
	cmd.Flags().IntVar(&maxWidth, "max-width", 1920, "Maximum output width")
	cmd.Flags().IntVar(&maxHeight, "max-height", 1920, "Maximum output height")
	cmd.Flags().BoolVar(&pad, "pad", false, "Pad the scaled image to the exact target rectangle")
	cmd.Flags().IntVar(&quality, "quality", 0, "JPEG quality 1-31, lower is better (defaults to config)")

	return cmd
}
