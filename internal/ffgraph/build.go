package ffgraph

import (
	"errors"
	"fmt"
)

// Build turns a composition request into an ffmpeg argument list. It is a
// pure function: no I/O, no hidden state, and identical requests always
// produce identical output.
func Build(req Request) ([]string, error) {
	if req.OutputPath == "" {
		return nil, errors.New("ffgraph: output path required")
	}
	switch req.Mode {
	case ModeStitch:
		return buildStitch(req)
	case ModeMerge:
		return buildMerge(req)
	case ModeResize:
		return buildResize(req)
	case ModeImage:
		return buildImage(req)
	default:
		return nil, fmt.Errorf("ffgraph: unsupported mode %q", req.Mode)
	}
}

// inputArgs emits the per-input options. A trim is applied at the input
// stage so the asset is time-clipped before it ever enters the graph.
func inputArgs(input Input) []string {
	var args []string
	if input.Trim != nil {
		args = append(args, "-ss", seconds(input.Trim.Start))
		if input.Trim.Duration > 0 {
			args = append(args, "-t", seconds(input.Trim.Duration))
		}
	}
	if input.Still {
		args = append(args, "-loop", "1")
	}
	return append(args, "-i", input.Path)
}

func videoCodecArgs(q Quality) []string {
	return []string{
		"-c:v", "libx264",
		"-preset", q.Preset,
		"-crf", itoa(q.CRF),
		"-pix_fmt", "yuv420p",
	}
}

func audioCodecArgs(q Quality) []string {
	return []string{"-c:a", "aac", "-b:a", q.AudioBitrate}
}

// scaleToFit scales a stream to fit inside the box preserving aspect ratio;
// the result never exceeds either dimension and is never stretched.
func scaleToFit(g *Graph, in Stream, w, h int) Stream {
	return g.Filter("scale", []Param{
		P("w", itoa(w)),
		P("h", itoa(h)),
		P("force_original_aspect_ratio", "decrease"),
	}, in)
}

// scaleToFill covers the box preserving aspect ratio, then crops the excess.
func scaleToFill(g *Graph, in Stream, w, h int) Stream {
	scaled := g.Filter("scale", []Param{
		P("w", itoa(w)),
		P("h", itoa(h)),
		P("force_original_aspect_ratio", "increase"),
	}, in)
	return g.Filter("crop", []Param{PV(itoa(w)), PV(itoa(h))}, scaled)
}

// padTo centers a fitted stream on a solid canvas of the box size.
func padTo(g *Graph, in Stream, w, h int) Stream {
	return g.Filter("pad", []Param{
		PV(itoa(w)),
		PV(itoa(h)),
		PV("(ow-iw)/2"),
		PV("(oh-ih)/2"),
	}, in)
}

// overlayAt composites layer onto base, centered inside the position
// rectangle. enable, when non-empty, is a timeline expression gating the
// overlay.
func overlayAt(g *Graph, base, layer Stream, pos Position, enable string) Stream {
	params := []Param{
		P("x", fmt.Sprintf("%d+(%d-w)/2", pos.X, pos.Width)),
		P("y", fmt.Sprintf("%d+(%d-h)/2", pos.Y, pos.Height)),
	}
	if enable != "" {
		params = append(params, P("enable", enable))
	}
	return g.Filter("overlay", params, base, layer)
}
