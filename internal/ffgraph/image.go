package ffgraph

import (
	"errors"
	"fmt"
	"strings"
)

// buildImage produces a still-image rescale/compress command. When target
// dimensions are set the image is fitted inside them; PadToCanvas
// additionally pads the result to the exact rectangle.
func buildImage(req Request) ([]string, error) {
	primary, _, ok := req.inputByRole(RolePrimary)
	if !ok {
		return nil, errors.New("ffgraph: image requires a primary input")
	}

	args := []string{"-i", primary.Path}

	if req.TargetWidth > 0 && req.TargetHeight > 0 {
		w, h := req.canvas()
		filters := []string{
			fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease", w, h),
		}
		if req.PadToCanvas {
			filters = append(filters, fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", w, h))
		}
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	args = append(args,
		"-frames:v", "1",
		"-q:v", itoa(req.Quality.ImageQuality),
		"-y", req.OutputPath,
	)
	return args, nil
}
