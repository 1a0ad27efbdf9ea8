package ffgraph

import (
	"fmt"
	"strconv"
)

// Mode selects one composition variant.
type Mode string

const (
	// ModeStitch concatenates a front and a back clip onto a shared canvas.
	ModeStitch Mode = "stitch"
	// ModeMerge composites layered assets (background, primary, secondary,
	// cover, logo) onto the canvas.
	ModeMerge Mode = "merge"
	// ModeResize reframes a clip onto a target canvas with a blurred copy of
	// itself as padding.
	ModeResize Mode = "resize"
	// ModeImage rescales/compresses a single still image.
	ModeImage Mode = "image"
)

// Role tags the compositional function an asset plays.
type Role string

const (
	RoleFront      Role = "front"
	RoleBack       Role = "back"
	RolePrimary    Role = "primary"
	RoleSecondary  Role = "secondary"
	RoleBackground Role = "background"
	RoleCover      Role = "cover"
	RoleLogo       Role = "logo"
)

// layerOrder defines bottom-up compositing for merge mode: later roles
// occlude earlier ones.
var layerOrder = []Role{RoleBackground, RolePrimary, RoleSecondary, RoleCover, RoleLogo}

// Orientation selects canvas dimensions and default positions.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Canvas returns the full-quality output dimensions for the orientation.
func (o Orientation) Canvas() (int, int) {
	if o == Vertical {
		return 1080, 1920
	}
	return 1920, 1080
}

// Position is an axis-aligned rectangle in output-canvas pixels. The builder
// trusts its bounds; callers clamp before handing it over.
type Position struct {
	X      int
	Y      int
	Width  int
	Height int
}

// scaled divides every coordinate by factor, keeping dimensions even so the
// encoder accepts them.
func (p Position) scaled(factor int) Position {
	if factor <= 1 {
		return p
	}
	return Position{
		X:      p.X / factor,
		Y:      p.Y / factor,
		Width:  even(p.Width / factor),
		Height: even(p.Height / factor),
	}
}

// Trim clips an asset to a window of its own timeline, in seconds.
type Trim struct {
	Start    float64
	Duration float64
}

// EffectiveDuration returns the asset duration after an optional trim.
func EffectiveDuration(duration float64, trim *Trim) float64 {
	if trim == nil {
		return duration
	}
	remaining := duration - trim.Start
	if remaining < 0 {
		remaining = 0
	}
	if trim.Duration > 0 && trim.Duration < remaining {
		return trim.Duration
	}
	return remaining
}

// Input is one asset fed into the graph, with probe data supplied by the
// caller so the builder itself never touches the filesystem.
type Input struct {
	Path     string
	Role     Role
	Width    int
	Height   int
	Duration float64
	HasAudio bool
	Still    bool
	Trim     *Trim
}

// Quality carries the encoder parameters for one render.
type Quality struct {
	CRF          int
	Preset       string
	AudioBitrate string
	ImageQuality int
}

// Request is a declarative composition the builder turns into an argument
// list. Identical requests always yield identical argument lists.
type Request struct {
	Mode        Mode
	Orientation Orientation
	Inputs      []Input
	// Positions overrides per-role placement; missing roles use the
	// orientation defaults.
	Positions map[Role]Position
	// CoverSeconds is how long a cover layer occludes the primary.
	CoverSeconds float64
	// TargetWidth/TargetHeight override the canvas for resize/image modes.
	TargetWidth  int
	TargetHeight int
	// PadToCanvas pads a scaled image to the exact target rectangle.
	PadToCanvas bool
	Preview     bool
	// PreviewScale divides canvas dimensions in preview renders; minimum 1.
	PreviewScale int
	Quality      Quality
	OutputPath   string
}

// canvas resolves the output dimensions for the request, applying the
// preview divisor. Dimensions stay even.
func (r Request) canvas() (int, int) {
	w, h := r.Orientation.Canvas()
	if r.TargetWidth > 0 && r.TargetHeight > 0 {
		w, h = r.TargetWidth, r.TargetHeight
	}
	if r.Preview {
		scale := r.PreviewScale
		if scale < 1 {
			scale = 1
		}
		w, h = even(w/scale), even(h/scale)
	}
	return w, h
}

// positionFor resolves the placement rectangle for a role, scaled down in
// preview renders so layout is proportional to the smaller canvas.
func (r Request) positionFor(role Role) Position {
	pos, ok := r.Positions[role]
	if !ok {
		pos = defaultPosition(role, r.Orientation)
	}
	if r.Preview {
		scale := r.PreviewScale
		if scale < 1 {
			scale = 1
		}
		pos = pos.scaled(scale)
	}
	return pos
}

// defaultPosition derives role placement from the orientation's canvas; both
// orientations share the same formulas.
func defaultPosition(role Role, orientation Orientation) Position {
	w, h := orientation.Canvas()
	const margin = 40
	switch role {
	case RoleSecondary:
		sw, sh := w/3, h/3
		return Position{X: w - sw - margin, Y: h - sh - margin, Width: sw, Height: sh}
	case RoleLogo:
		lw, lh := w/8, h/8
		return Position{X: w - lw - margin, Y: margin, Width: lw, Height: lh}
	default:
		// Primary, cover, and background fill the canvas.
		return Position{X: 0, Y: 0, Width: w, Height: h}
	}
}

// inputByRole returns the first input carrying the role.
func (r Request) inputByRole(role Role) (Input, int, bool) {
	for i, input := range r.Inputs {
		if input.Role == role {
			return input, i, true
		}
	}
	return Input{}, 0, false
}

func even(v int) int {
	if v < 2 {
		return 2
	}
	return v &^ 1
}

func itoa(v int) string { return strconv.Itoa(v) }

// seconds formats a duration with fixed millisecond precision so identical
// requests serialize identically.
func seconds(v float64) string {
	if v < 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func size(w, h int) string { return fmt.Sprintf("%dx%d", w, h) }
