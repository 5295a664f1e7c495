// Package layout computes the 3x3 grid of answer boxes laid over the video.
package layout

// Grid constants.
const (
	Cols = 3
	Rows = 3
	// NumBoxes is the number of answer boxes in the grid.
	NumBoxes = Cols * Rows
	// Padding separates boxes from each other and from the grid perimeter.
	Padding = 12.0
	// NarrowMaxWidth is the widest viewport still treated as narrow.
	NarrowMaxWidth = 768.0
	// NarrowTopMargin leaves room for the question bar on narrow viewports.
	NarrowTopMargin = 80.0
	// WideTopMargin leaves room for the question bar on wide viewports.
	WideTopMargin = 120.0
)

// Viewport is the drawable area in logical pixels.
// DPR is the number of device pixels per logical pixel.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
}

// FromDevice builds a viewport from a device pixel size.
func FromDevice(cols, rows int, dpr float64) Viewport {
	if dpr <= 0 {
		dpr = 1
	}
	return Viewport{
		Width:  float64(cols) / dpr,
		Height: float64(rows) / dpr,
		DPR:    dpr,
	}
}

// Narrow reports whether the viewport uses the compact layout.
func (v Viewport) Narrow() bool {
	return v.Width <= NarrowMaxWidth
}

// TopMargin returns the space reserved above the grid.
func (v Viewport) TopMargin() float64 {
	if v.Narrow() {
		return NarrowTopMargin
	}
	return WideTopMargin
}

// Scale returns the device pixel ratio, defaulting to 1.
func (v Viewport) Scale() float64 {
	if v.DPR <= 0 {
		return 1
	}
	return v.DPR
}

// Box is one answer cell in viewport pixels.
type Box struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"w"`
	H         float64 `json:"h"`
	Label     string  `json:"label"`
	IsCorrect bool    `json:"-"`
}

// Contains reports whether (x, y) lies inside the box, edges included.
func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.W &&
		y >= b.Y && y <= b.Y+b.H
}

// Center returns the midpoint of the box.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Compute lays out NumBoxes equal boxes below the top margin in row-major order.
// Degenerate viewports produce degenerate boxes rather than an error.
func Compute(vp Viewport) []Box {
	top := vp.TopMargin()

	boxW := (vp.Width - Padding*(Cols+1)) / Cols
	boxH := (vp.Height - top - Padding*(Rows+1)) / Rows

	boxes := make([]Box, 0, NumBoxes)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			boxes = append(boxes, Box{
				X: Padding + float64(c)*(boxW+Padding),
				Y: top + Padding + float64(r)*(boxH+Padding),
				W: boxW,
				H: boxH,
			})
		}
	}

	return boxes
}

// HitTest returns the index of the first box containing (x, y), or -1.
func HitTest(boxes []Box, x, y float64) int {
	for i, b := range boxes {
		if b.Contains(x, y) {
			return i
		}
	}
	return -1
}

// CorrectIndex returns the index of the first box flagged correct, or -1.
func CorrectIndex(boxes []Box) int {
	for i, b := range boxes {
		if b.IsCorrect {
			return i
		}
	}
	return -1
}
