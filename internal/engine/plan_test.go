package engine

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"clipforge/internal/ffgraph"
	"clipforge/internal/ffprobe"
	"clipforge/internal/services"
)

// fakeProber serves canned probe results keyed by path.
type fakeProber struct {
	results map[string]ffprobe.Result
	err     error
}

func (f *fakeProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	if f.err != nil {
		return ffprobe.Result{}, f.err
	}
	if result, ok := f.results[path]; ok {
		return result, nil
	}
	return videoResult(1920, 1080, "12.5", true), nil
}

func videoResult(width, height int, duration string, audio bool) ffprobe.Result {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: width, Height: height}},
		Format:  ffprobe.Format{Duration: duration},
	}
	if audio {
		result.Streams = append(result.Streams, ffprobe.Stream{CodecType: "audio", Channels: 2})
	}
	return result
}

func TestPlanStitchPairsIndexWise(t *testing.T) {
	batch, err := PlanStitch(context.Background(), &fakeProber{}, StitchRequest{
		Fronts:    []string{"/clips/front-a.mp4", "/clips/front-b.mp4", "/clips/front-c.mp4"},
		Backs:     []string{"/clips/back-a.mp4", "/clips/back-b.mp4"},
		OutputDir: "/out",
		Render:    RenderOptions{Orientation: ffgraph.Horizontal},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(batch.Jobs) != 2 {
		t.Fatalf("jobs = %d, want 2 (shorter list bounds the pairing)", len(batch.Jobs))
	}
	job := batch.Jobs[0]
	if job.Request.Mode != ffgraph.ModeStitch {
		t.Fatalf("mode = %s", job.Request.Mode)
	}
	if len(job.Request.Inputs) != 2 {
		t.Fatalf("inputs = %d, want 2", len(job.Request.Inputs))
	}
	if job.Request.Inputs[0].Role != ffgraph.RoleFront || job.Request.Inputs[1].Role != ffgraph.RoleBack {
		t.Fatalf("roles = %s, %s", job.Request.Inputs[0].Role, job.Request.Inputs[1].Role)
	}
	if job.OutputName != "front-a_back-a.mp4" {
		t.Fatalf("output name = %q", job.OutputName)
	}
}

func TestPlanStitchCarriesProbeData(t *testing.T) {
	prober := &fakeProber{results: map[string]ffprobe.Result{
		"/clips/front.mp4": videoResult(1280, 720, "8.0", false),
	}}
	batch, err := PlanStitch(context.Background(), prober, StitchRequest{
		Fronts:    []string{"/clips/front.mp4"},
		Backs:     []string{"/clips/back.mp4"},
		OutputDir: "/out",
	})
	if err != nil {
		t.Fatal(err)
	}

	front := batch.Jobs[0].Request.Inputs[0]
	if front.Width != 1280 || front.Height != 720 {
		t.Fatalf("dimensions = %dx%d", front.Width, front.Height)
	}
	if front.HasAudio {
		t.Fatal("front should be silent")
	}
	if front.Duration != 8.0 {
		t.Fatalf("duration = %v", front.Duration)
	}
}

func TestPlanStitchRejectsEmptySides(t *testing.T) {
	_, err := PlanStitch(context.Background(), &fakeProber{}, StitchRequest{Backs: []string{"/b.mp4"}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPlanStitchProbeFailure(t *testing.T) {
	prober := &fakeProber{err: errors.New("no such file")}
	_, err := PlanStitch(context.Background(), prober, StitchRequest{
		Fronts: []string{"/a.mp4"},
		Backs:  []string{"/b.mp4"},
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestPlanMergeAssignsCandidatesFromPools(t *testing.T) {
	primaries := []string{"/p/one.mp4", "/p/two.mp4", "/p/three.mp4", "/p/four.mp4"}
	batch, err := PlanMerge(context.Background(), &fakeProber{}, MergeRequest{
		Primaries:   primaries,
		Backgrounds: []string{"/bg/a.jpg", "/bg/b.jpg"},
		Covers:      []string{"/cover/x.png"},
		Logo:        "/brand/logo.png",
		OutputDir:   "/out",
		Rand:        rand.New(rand.NewSource(11)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Jobs) != len(primaries) {
		t.Fatalf("jobs = %d, want %d", len(batch.Jobs), len(primaries))
	}

	backgroundUse := make(map[string]int)
	for _, job := range batch.Jobs {
		roles := make(map[ffgraph.Role]string)
		for _, input := range job.Request.Inputs {
			roles[input.Role] = input.Path
		}
		if roles[ffgraph.RolePrimary] == "" {
			t.Fatal("job missing primary input")
		}
		if roles[ffgraph.RoleCover] != "/cover/x.png" {
			t.Fatalf("cover = %q", roles[ffgraph.RoleCover])
		}
		if roles[ffgraph.RoleLogo] != "/brand/logo.png" {
			t.Fatalf("logo = %q", roles[ffgraph.RoleLogo])
		}
		backgroundUse[roles[ffgraph.RoleBackground]]++
	}

	// 4 jobs over 2 backgrounds: each dealt exactly twice.
	for bg, n := range backgroundUse {
		if n != 2 {
			t.Fatalf("background %q used %d times, want 2", bg, n)
		}
	}
}

func TestPlanMergeTrimAndStillFlags(t *testing.T) {
	batch, err := PlanMerge(context.Background(), &fakeProber{}, MergeRequest{
		Primaries:   []string{"/p/one.mp4"},
		Backgrounds: []string{"/bg/a.jpg"},
		Trims: map[ffgraph.Role]ffgraph.Trim{
			ffgraph.RolePrimary: {Start: 1.5, Duration: 4},
		},
		OutputDir: "/out",
		Rand:      rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, input := range batch.Jobs[0].Request.Inputs {
		switch input.Role {
		case ffgraph.RolePrimary:
			if input.Trim == nil || input.Trim.Start != 1.5 {
				t.Fatalf("primary trim = %+v", input.Trim)
			}
			if input.Still {
				t.Fatal("primary flagged as still")
			}
		case ffgraph.RoleBackground:
			if !input.Still {
				t.Fatal("background not flagged as still")
			}
		}
	}
}

func TestPlanResizeValidatesDimensions(t *testing.T) {
	_, err := PlanResize(context.Background(), &fakeProber{}, ResizeRequest{
		Inputs:      []string{"/a.mp4"},
		TargetWidth: 1280,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPlanResizeBuildsJobs(t *testing.T) {
	batch, err := PlanResize(context.Background(), &fakeProber{}, ResizeRequest{
		Inputs:       []string{"/clips/wide.mp4"},
		TargetWidth:  1080,
		TargetHeight: 1920,
		OutputDir:    "/out",
	})
	if err != nil {
		t.Fatal(err)
	}
	job := batch.Jobs[0]
	if job.Request.Mode != ffgraph.ModeResize {
		t.Fatalf("mode = %s", job.Request.Mode)
	}
	if job.Request.TargetWidth != 1080 || job.Request.TargetHeight != 1920 {
		t.Fatalf("target = %dx%d", job.Request.TargetWidth, job.Request.TargetHeight)
	}
	if job.OutputName != "wide.mp4" {
		t.Fatalf("output name = %q", job.OutputName)
	}
}

func TestPlanImagesSkipsProbe(t *testing.T) {
	batch, err := PlanImages(ImagesRequest{
		Inputs:       []string{"/pics/photo one.png"},
		MaxWidth:     1600,
		MaxHeight:    1600,
		ImageQuality: 4,
		OutputDir:    "/out",
	})
	if err != nil {
		t.Fatal(err)
	}
	job := batch.Jobs[0]
	if job.Request.Mode != ffgraph.ModeImage {
		t.Fatalf("mode = %s", job.Request.Mode)
	}
	if !job.Request.Inputs[0].Still {
		t.Fatal("image input not flagged as still")
	}
	if job.OutputName != "photo one.jpg" {
		t.Fatalf("output name = %q", job.OutputName)
	}
}

func TestPreviewNamesCarrySuffix(t *testing.T) {
	batch, err := PlanResize(context.Background(), &fakeProber{}, ResizeRequest{
		Inputs:       []string{"/clips/wide.mp4"},
		TargetWidth:  1080,
		TargetHeight: 1920,
		OutputDir:    "/out",
		Render:       RenderOptions{Preview: true, PreviewScale: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(batch.Jobs[0].OutputName, "_preview.mp4") {
		t.Fatalf("output name = %q", batch.Jobs[0].OutputName)
	}
}
