package ffgraph

import "errors"

// resizeGraph reframes a clip onto the target canvas: the clip is fitted
// inside the canvas, and a blurred, cropped copy of the same clip fills the
// remaining space. Nothing is ever stretched non-uniformly.
func resizeGraph(req Request) (*Graph, Stream, error) {
	primary, primaryIdx, ok := req.inputByRole(RolePrimary)
	if !ok {
		return nil, "", errors.New("ffgraph: resize requires a primary input")
	}
	_ = primary

	w, h := req.canvas()
	g := NewGraph()

	split := g.FilterN("split", nil, 2, InputVideo(primaryIdx))

	backdrop := scaleToFill(g, split[0], w, h)
	backdrop = g.Filter("boxblur", []Param{PV("20"), PV("2")}, backdrop)

	fitted := scaleToFit(g, split[1], w, h)

	out := g.Filter("overlay", []Param{
		P("x", "(W-w)/2"),
		P("y", "(H-h)/2"),
	}, backdrop, fitted)

	return g, out, nil
}

func buildResize(req Request) ([]string, error) {
	g, vout, err := resizeGraph(req)
	if err != nil {
		return nil, err
	}
	primary, primaryIdx, _ := req.inputByRole(RolePrimary)

	var args []string
	for _, input := range req.Inputs {
		args = append(args, inputArgs(input)...)
	}
	args = append(args, "-filter_complex", g.String())
	args = append(args, "-map", "["+string(vout)+"]")
	if primary.HasAudio {
		args = append(args, "-map", itoa(primaryIdx)+":a")
		args = append(args, audioCodecArgs(req.Quality)...)
	} else {
		args = append(args, "-an")
	}
	args = append(args, videoCodecArgs(req.Quality)...)
	args = append(args, "-movflags", "+faststart", "-y", req.OutputPath)
	return args, nil
}
