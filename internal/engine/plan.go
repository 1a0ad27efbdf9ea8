package engine

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"clipforge/internal/ffgraph"
	"clipforge/internal/ffprobe"
	"clipforge/internal/naming"
	"clipforge/internal/services"
)

// outputNameBudget bounds generated output names well below the filesystem
// limit, leaving room for the stager's disambiguation suffix.
const outputNameBudget = 120

// Job is one unit of transcode work. Request.OutputPath is left empty here;
// the engine fills it with the job's staged temp path at run time.
type Job struct {
	Index      int
	OutputName string
	Request    ffgraph.Request
}

// Batch is a planned run: the jobs plus the shared output directory their
// results commit into.
type Batch struct {
	Mode      ffgraph.Mode
	OutputDir string
	Jobs      []Job
}

// RenderOptions carries the settings shared by every video planner.
type RenderOptions struct {
	Orientation  ffgraph.Orientation
	Quality      ffgraph.Quality
	Preview      bool
	PreviewScale int
}

// StitchRequest pairs front and back clips index-wise, one job per pair.
type StitchRequest struct {
	Fronts    []string
	Backs     []string
	OutputDir string
	Render    RenderOptions
}

// PlanStitch probes every paired clip and produces one stitch job per pair.
// Unpaired leftovers in the longer list are skipped.
func PlanStitch(ctx context.Context, prober ffprobe.Prober, req StitchRequest) (Batch, error) {
	if len(req.Fronts) == 0 || len(req.Backs) == 0 {
		return Batch{}, services.Wrap(services.ErrValidation, "plan", "stitch",
			"stitching needs at least one front and one back clip", nil)
	}

	count := len(req.Fronts)
	if len(req.Backs) < count {
		count = len(req.Backs)
	}

	batch := Batch{Mode: ffgraph.ModeStitch, OutputDir: req.OutputDir}
	for i := 0; i < count; i++ {
		front, err := probeVideo(ctx, prober, req.Fronts[i], ffgraph.RoleFront, nil)
		if err != nil {
			return Batch{}, err
		}
		back, err := probeVideo(ctx, prober, req.Backs[i], ffgraph.RoleBack, nil)
		if err != nil {
			return Batch{}, err
		}

		name := naming.Combine(stem(req.Fronts[i]), stem(req.Backs[i]), naming.CombineOptions{
			Separator: "_",
			Suffix:    previewSuffix(req.Render.Preview) + ".mp4",
			MaxBytes:  outputNameBudget,
		})
		batch.Jobs = append(batch.Jobs, Job{
			Index:      i,
			OutputName: name,
			Request: ffgraph.Request{
				Mode:         ffgraph.ModeStitch,
				Orientation:  req.Render.Orientation,
				Inputs:       []ffgraph.Input{front, back},
				Preview:      req.Render.Preview,
				PreviewScale: req.Render.PreviewScale,
				Quality:      req.Render.Quality,
			},
		})
	}
	return batch, nil
}

// MergeRequest composites each primary clip with optional layers. Background
// and cover candidates are spread across jobs by pool deal; secondary and
// logo apply to every job when set.
type MergeRequest struct {
	Primaries   []string
	Secondaries []string
	Backgrounds []string
	Covers      []string
	Logo        string

	Positions    map[ffgraph.Role]ffgraph.Position
	Trims        map[ffgraph.Role]ffgraph.Trim
	CoverSeconds float64

	OutputDir string
	Render    RenderOptions

	// Rand seeds the candidate pools; nil uses the clock.
	Rand *rand.Rand
}

// PlanMerge produces one merge job per primary clip.
func PlanMerge(ctx context.Context, prober ffprobe.Prober, req MergeRequest) (Batch, error) {
	if len(req.Primaries) == 0 {
		return Batch{}, services.Wrap(services.ErrValidation, "plan", "merge",
			"merging needs at least one primary clip", nil)
	}

	backgrounds := NewPool(req.Backgrounds, req.Rand)
	covers := NewPool(req.Covers, req.Rand)
	secondaries := NewPool(req.Secondaries, req.Rand)

	batch := Batch{Mode: ffgraph.ModeMerge, OutputDir: req.OutputDir}
	for i, path := range req.Primaries {
		primary, err := probeVideo(ctx, prober, path, ffgraph.RolePrimary, req.trimFor(ffgraph.RolePrimary))
		if err != nil {
			return Batch{}, err
		}
		inputs := []ffgraph.Input{primary}

		if background, ok := backgrounds.Next(); ok {
			inputs = append(inputs, stillInput(background, ffgraph.RoleBackground))
		}
		if secondary, ok := secondaries.Next(); ok {
			input, err := probeVideo(ctx, prober, secondary, ffgraph.RoleSecondary, req.trimFor(ffgraph.RoleSecondary))
			if err != nil {
				return Batch{}, err
			}
			inputs = append(inputs, input)
		}
		if cover, ok := covers.Next(); ok {
			inputs = append(inputs, stillInput(cover, ffgraph.RoleCover))
		}
		if logo := strings.TrimSpace(req.Logo); logo != "" {
			inputs = append(inputs, stillInput(logo, ffgraph.RoleLogo))
		}

		batch.Jobs = append(batch.Jobs, Job{
			Index:      i,
			OutputName: outputName(path, previewSuffix(req.Render.Preview), ".mp4"),
			Request: ffgraph.Request{
				Mode:         ffgraph.ModeMerge,
				Orientation:  req.Render.Orientation,
				Inputs:       inputs,
				Positions:    req.Positions,
				CoverSeconds: req.CoverSeconds,
				Preview:      req.Render.Preview,
				PreviewScale: req.Render.PreviewScale,
				Quality:      req.Render.Quality,
			},
		})
	}
	return batch, nil
}

func (r MergeRequest) trimFor(role ffgraph.Role) *ffgraph.Trim {
	trim, ok := r.Trims[role]
	if !ok {
		return nil
	}
	return &trim
}

// ResizeRequest reframes clips onto a target canvas with blurred padding.
type ResizeRequest struct {
	Inputs       []string
	TargetWidth  int
	TargetHeight int
	OutputDir    string
	Render       RenderOptions
}

// PlanResize produces one resize job per input clip.
func PlanResize(ctx context.Context, prober ffprobe.Prober, req ResizeRequest) (Batch, error) {
	if len(req.Inputs) == 0 {
		return Batch{}, services.Wrap(services.ErrValidation, "plan", "resize",
			"resizing needs at least one clip", nil)
	}
	if req.TargetWidth <= 0 || req.TargetHeight <= 0 {
		return Batch{}, services.Wrap(services.ErrValidation, "plan", "resize",
			fmt.Sprintf("invalid target dimensions %dx%d", req.TargetWidth, req.TargetHeight), nil)
	}

	batch := Batch{Mode: ffgraph.ModeResize, OutputDir: req.OutputDir}
	for i, path := range req.Inputs {
		primary, err := probeVideo(ctx, prober, path, ffgraph.RolePrimary, nil)
		if err != nil {
			return Batch{}, err
		}
		batch.Jobs = append(batch.Jobs, Job{
			Index:      i,
			OutputName: outputName(path, previewSuffix(req.Render.Preview), ".mp4"),
			Request: ffgraph.Request{
				Mode:         ffgraph.ModeResize,
				Orientation:  req.Render.Orientation,
				Inputs:       []ffgraph.Input{primary},
				TargetWidth:  req.TargetWidth,
				TargetHeight: req.TargetHeight,
				Preview:      req.Render.Preview,
				PreviewScale: req.Render.PreviewScale,
				Quality:      req.Render.Quality,
			},
		})
	}
	return batch, nil
}

// ImagesRequest compresses/rescales still images through single-frame jobs.
type ImagesRequest struct {
	Inputs       []string
	MaxWidth     int
	MaxHeight    int
	PadToCanvas  bool
	ImageQuality int
	OutputDir    string
}

// PlanImages produces one image job per input. Images are not probed; the
// generated filter clamps dimensions without needing the source size.
func PlanImages(req ImagesRequest) (Batch, error) {
	if len(req.Inputs) == 0 {
		return Batch{}, services.Wrap(services.ErrValidation, "plan", "images",
			"image compression needs at least one input", nil)
	}

	batch := Batch{Mode: ffgraph.ModeImage, OutputDir: req.OutputDir}
	for i, path := range req.Inputs {
		batch.Jobs = append(batch.Jobs, Job{
			Index:      i,
			OutputName: outputName(path, "", ".jpg"),
			Request: ffgraph.Request{
				Mode:         ffgraph.ModeImage,
				Inputs:       []ffgraph.Input{stillInput(path, ffgraph.RolePrimary)},
				TargetWidth:  req.MaxWidth,
				TargetHeight: req.MaxHeight,
				PadToCanvas:  req.PadToCanvas,
				Quality:      ffgraph.Quality{ImageQuality: req.ImageQuality},
			},
		})
	}
	return batch, nil
}

func probeVideo(ctx context.Context, prober ffprobe.Prober, path string, role ffgraph.Role, trim *ffgraph.Trim) (ffgraph.Input, error) {
	result, err := prober.Inspect(ctx, path)
	if err != nil {
		return ffgraph.Input{}, services.Wrap(services.ErrExternalTool, "plan", "probe", path, err)
	}
	width, height := result.Dimensions()
	return ffgraph.Input{
		Path:     path,
		Role:     role,
		Width:    width,
		Height:   height,
		Duration: result.DurationSeconds(),
		HasAudio: result.HasAudio(),
		Trim:     trim,
	}, nil
}

func stillInput(path string, role ffgraph.Role) ffgraph.Input {
	return ffgraph.Input{Path: path, Role: role, Still: true}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func previewSuffix(preview bool) string {
	if preview {
		return "_preview"
	}
	return ""
}

// outputName derives a committed filename from a source path, keeping the
// whole name inside the byte budget with the extension reserved up front.
func outputName(path, suffix, ext string) string {
	name := naming.Sanitize(stem(path))
	name = naming.TruncateToByteBudget(name, outputNameBudget, len(suffix)+len(ext))
	return name + suffix + ext
}
