package ffgraph

import "errors"

// stitchGraph builds the two-side concatenation graph. Both sides are fitted
// onto the shared canvas, padded, and normalized to a common frame and
// sample rate before concat.
func stitchGraph(req Request) (*Graph, Stream, Stream, error) {
	front, frontIdx, ok := req.inputByRole(RoleFront)
	if !ok {
		return nil, "", "", errors.New("ffgraph: stitch requires a front input")
	}
	back, backIdx, ok := req.inputByRole(RoleBack)
	if !ok {
		return nil, "", "", errors.New("ffgraph: stitch requires a back input")
	}

	w, h := req.canvas()
	g := NewGraph()

	prepare := func(idx int, input Input) (Stream, Stream) {
		v := scaleToFit(g, InputVideo(idx), w, h)
		v = padTo(g, v, w, h)
		v = g.Filter("setsar", []Param{PV("1")}, v)
		v = g.Filter("fps", []Param{PV("30")}, v)

		var a Stream
		if input.HasAudio {
			a = g.Filter("aresample", []Param{PV("48000")}, InputAudio(idx))
		} else {
			// Silent side: synthesize audio so concat stream counts match.
			a = g.Filter("anullsrc", []Param{
				P("channel_layout", "stereo"),
				P("sample_rate", "48000"),
				P("d", seconds(EffectiveDuration(input.Duration, input.Trim))),
			})
		}
		return v, a
	}

	frontV, frontA := prepare(frontIdx, front)
	backV, backA := prepare(backIdx, back)

	out := g.FilterN("concat", []Param{
		P("n", "2"),
		P("v", "1"),
		P("a", "1"),
	}, 2, frontV, frontA, backV, backA)

	return g, out[0], out[1], nil
}

func buildStitch(req Request) ([]string, error) {
	g, vout, aout, err := stitchGraph(req)
	if err != nil {
		return nil, err
	}

	var args []string
	for _, input := range req.Inputs {
		args = append(args, inputArgs(input)...)
	}
	args = append(args, "-filter_complex", g.String())
	args = append(args, "-map", "["+string(vout)+"]", "-map", "["+string(aout)+"]")
	args = append(args, videoCodecArgs(req.Quality)...)
	args = append(args, audioCodecArgs(req.Quality)...)
	args = append(args, "-movflags", "+faststart", "-y", req.OutputPath)
	return args, nil
}
