// Package render draws the quiz overlay: answer grid, labels, pointer,
// reading countdown and the reveal of the correct answer.
package render

import (
	"image/color"
	"math"
	"strconv"
	"time"

	"github.com/ayusman/fingerquiz/internal/layout"
	"github.com/ayusman/fingerquiz/internal/pointer"
)

const (
	cornerRadius = 10.0
	// PulsePeriod scales elapsed reveal time into the pulse sine.
	PulsePeriod = 150 * time.Millisecond
)

// Surface is a drawing target in logical pixels.
// Text is drawn centered on (x, y).
type Surface interface {
	Measurer
	Clear()
	FillRect(x, y, w, h float64, c color.NRGBA)
	FillRoundRect(x, y, w, h, r float64, c color.NRGBA)
	StrokeRoundRect(x, y, w, h, r, lineWidth float64, c color.NRGBA)
	FillCircle(x, y, r float64, c color.NRGBA)
	StrokeCircle(x, y, r, lineWidth float64, c color.NRGBA)
	FillText(text string, x, y, size float64, c color.NRGBA)
	StrokeText(text string, x, y, size, lineWidth float64, c color.NRGBA)
}

// View is everything needed to draw one overlay frame.
type View struct {
	Viewport  layout.Viewport
	Boxes     []layout.Box
	Pointer   *pointer.Sample
	Reading   bool
	Countdown int
	Active    bool
	Revealing bool
}

// Renderer draws views onto surfaces.
type Renderer struct {
	Palette Palette
}

// NewRenderer creates a renderer with the default palette.
func NewRenderer() *Renderer {
	return &Renderer{Palette: DefaultPalette()}
}

// Draw renders the overlay for the current frame.
// It leaves the surface untouched while the reveal animation is running.
func (r *Renderer) Draw(s Surface, v View) {
	if v.Revealing {
		return
	}

	r.background(s, v.Viewport)

	if v.Reading {
		r.drawCountdown(s, v)
		return
	}

	if v.Active {
		for i, b := range v.Boxes {
			hovered := v.Pointer != nil && b.Contains(v.Pointer.X, v.Pointer.Y)
			r.drawBox(s, v.Viewport, i, b, hovered)
		}

		if v.Pointer != nil {
			p := v.Pointer
			s.FillCircle(p.X, p.Y, p.Radius(), r.Palette.Pointer)
			s.StrokeCircle(p.X, p.Y, p.Radius(), 2, r.Palette.PointerRing)
		}
	}
}

// DrawReveal renders one frame of the correct-answer animation.
func (r *Renderer) DrawReveal(s Surface, v View, correct int, elapsed time.Duration) {
	r.background(s, v.Viewport)

	start := WideLabelSize
	revealStart := WideRevealSize
	if v.Viewport.Narrow() {
		start = NarrowLabelSize
		revealStart = NarrowRevealSize
	}

	for i, b := range v.Boxes {
		s.FillRoundRect(b.X, b.Y, b.W, b.H, cornerRadius, r.Palette.fill(i))
		drawLabel(s, b, start, r.Palette.Label)
	}

	if correct < 0 || correct >= len(v.Boxes) {
		return
	}

	b := v.Boxes[correct]
	green := r.Palette.Correct
	green.A = uint8(math.Round(PulseAlpha(elapsed) * 255))
	s.FillRoundRect(b.X, b.Y, b.W, b.H, cornerRadius, green)
	s.StrokeRoundRect(b.X+2, b.Y+2, b.W-4, b.H-4, cornerRadius, 5, r.Palette.Correct)

	drawLabel(s, b, revealStart, r.Palette.Label)
}

// PulseAlpha returns the opacity of the correct box at a point of the reveal.
func PulseAlpha(elapsed time.Duration) float64 {
	return 0.7 + math.Sin(float64(elapsed)/float64(PulsePeriod))*0.2
}

func (r *Renderer) background(s Surface, vp layout.Viewport) {
	s.Clear()
	s.FillRect(0, 0, vp.Width, vp.Height, r.Palette.Dim)
}

func (r *Renderer) drawCountdown(s Surface, v View) {
	text := "GO!"
	if v.Countdown > 0 {
		text = strconv.Itoa(v.Countdown)
	}

	x, y := v.Viewport.Width/2, v.Viewport.Height/2
	s.StrokeText(text, x, y, CountdownSize, 8, r.Palette.Outline)
	s.FillText(text, x, y, CountdownSize, r.Palette.Countdown)
}

func (r *Renderer) drawBox(s Surface, vp layout.Viewport, i int, b layout.Box, hovered bool) {
	s.FillRoundRect(b.X, b.Y, b.W, b.H, cornerRadius, r.Palette.fill(i))
	s.StrokeRoundRect(b.X+1, b.Y+1, b.W-2, b.H-2, cornerRadius, 2, r.Palette.border(i))

	labelColor := r.Palette.Label
	if hovered {
		s.FillRoundRect(b.X, b.Y, b.W, b.H, cornerRadius, r.Palette.HoverFill)
		s.StrokeRoundRect(b.X+1, b.Y+1, b.W-2, b.H-2, cornerRadius, 4, r.Palette.HoverStroke)
		labelColor = r.Palette.HoverLabel
	}

	start := WideLabelSize
	if vp.Narrow() {
		start = NarrowLabelSize
	}

	drawLabel(s, b, start, labelColor)
}

// drawLabel fits the box label and draws it centered on one or two lines.
func drawLabel(s Surface, b layout.Box, start float64, c color.NRGBA) {
	fit := FitLabel(s, b.Label, b.W-LabelInset, start, MinLabelSize)
	cx, cy := b.Center()
	switch len(fit.Lines) {
	case 1:
		s.FillText(fit.Lines[0], cx, cy, fit.Size, c)
	case 2:
		s.FillText(fit.Lines[0], cx, cy-fit.Size*0.6, fit.Size, c)
		s.FillText(fit.Lines[1], cx, cy+fit.Size*0.6, fit.Size, c)
	}
}
