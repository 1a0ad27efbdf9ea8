package ffgraph

import (
	"errors"
	"fmt"
)

// mergeGraph builds the layered composite. Layers stack bottom-up in
// layerOrder, so each later layer occludes everything beneath it at its
// declared position.
func mergeGraph(req Request) (*Graph, Stream, error) {
	primary, _, ok := req.inputByRole(RolePrimary)
	if !ok {
		return nil, "", errors.New("ffgraph: merge requires a primary input")
	}

	w, h := req.canvas()
	g := NewGraph()
	duration := EffectiveDuration(primary.Duration, primary.Trim)

	var base Stream
	if _, bgIdx, ok := req.inputByRole(RoleBackground); ok {
		filled := scaleToFill(g, InputVideo(bgIdx), w, h)
		base = g.Filter("setsar", []Param{PV("1")}, filled)
	} else {
		base = g.Filter("color", []Param{
			P("c", "black"),
			P("s", size(w, h)),
			P("r", "30"),
			P("d", seconds(duration)),
		})
	}

	for _, role := range layerOrder {
		if role == RoleBackground {
			continue
		}
		_, idx, ok := req.inputByRole(role)
		if !ok {
			continue
		}
		pos := req.positionFor(role)
		layer := scaleToFit(g, InputVideo(idx), pos.Width, pos.Height)

		enable := ""
		if role == RoleCover && req.CoverSeconds > 0 {
			enable = fmt.Sprintf("between(t,0,%s)", seconds(req.CoverSeconds))
		}
		base = overlayAt(g, base, layer, pos, enable)
	}

	return g, base, nil
}

func buildMerge(req Request) ([]string, error) {
	g, vout, err := mergeGraph(req)
	if err != nil {
		return nil, err
	}
	primary, primaryIdx, _ := req.inputByRole(RolePrimary)
	duration := EffectiveDuration(primary.Duration, primary.Trim)

	var args []string
	for _, input := range req.Inputs {
		args = append(args, inputArgs(input)...)
	}
	args = append(args, "-filter_complex", g.String())
	args = append(args, "-map", "["+string(vout)+"]")
	if primary.HasAudio {
		args = append(args, "-map", fmt.Sprintf("%d:a", primaryIdx))
		args = append(args, audioCodecArgs(req.Quality)...)
	} else {
		args = append(args, "-an")
	}
	args = append(args, videoCodecArgs(req.Quality)...)
	args = append(args, "-t", seconds(duration))
	args = append(args, "-movflags", "+faststart", "-y", req.OutputPath)
	return args, nil
}
