package render

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

const (
	font = gocv.FontHersheySimplex
	// hersheyEm is the pixel size of the Hershey font at scale 1.
	hersheyEm = 30.0
)

// MatSurface draws onto a gocv.Mat holding a camera frame.
// Logical coordinates are multiplied by Scale to get device pixels.
type MatSurface struct {
	base  gocv.Mat
	dst   *gocv.Mat
	Scale float64
}

// NewMatSurface returns a surface that draws into dst.
// Clear restores dst to the contents of base.
func NewMatSurface(base gocv.Mat, dst *gocv.Mat, scale float64) *MatSurface {
	if scale <= 0 {
		scale = 1
	}
	return &MatSurface{base: base, dst: dst, Scale: scale}
}

func (s *MatSurface) px(v float64) int {
	return int(math.Round(v * s.Scale))
}

func (s *MatSurface) pt(x, y float64) image.Point {
	return image.Pt(s.px(x), s.px(y))
}

func (s *MatSurface) textParams(size float64) (float64, int) {
	scale := size * s.Scale / hersheyEm
	thickness := int(math.Max(1, math.Round(size*s.Scale/12)))
	return scale, thickness
}

func opaque(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// blend draws onto a copy of the region covered by bounds and mixes it back
// with the color's alpha. draw receives the region origin in device pixels.
func (s *MatSurface) blend(bounds image.Rectangle, c color.NRGBA, draw func(m *gocv.Mat, origin image.Point)) {
	if c.A == 0 {
		return
	}
	bounds = bounds.Intersect(image.Rect(0, 0, s.dst.Cols(), s.dst.Rows()))
	if bounds.Empty() {
		return
	}
	if c.A == 255 {
		draw(s.dst, image.Point{})
		return
	}

	roi := s.dst.Region(bounds)
	defer roi.Close()
	overlay := roi.Clone()
	defer overlay.Close()

	draw(&overlay, bounds.Min)
	a := float64(c.A) / 255
	gocv.AddWeighted(overlay, a, roi, 1-a, 0, &roi)
}

// Clear restores the unannotated frame.
func (s *MatSurface) Clear() {
	if s.base.Empty() {
		return
	}
	s.base.CopyTo(s.dst)
}

// FillRect fills an axis-aligned rectangle.
func (s *MatSurface) FillRect(x, y, w, h float64, c color.NRGBA) {
	r := image.Rectangle{Min: s.pt(x, y), Max: s.pt(x+w, y+h)}
	s.blend(r, c, func(m *gocv.Mat, o image.Point) {
		gocv.Rectangle(m, r.Sub(o), opaque(c), -1)
	})
}

// FillRoundRect fills a rectangle with rounded corners.
func (s *MatSurface) FillRoundRect(x, y, w, h, r float64, c color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	r = math.Min(r, math.Min(w, h)/2)
	outer := image.Rectangle{Min: s.pt(x, y), Max: s.pt(x+w, y+h)}
	rad := s.px(r)

	s.blend(outer, c, func(m *gocv.Mat, o image.Point) {
		b := outer.Sub(o)
		col := opaque(c)
		gocv.Rectangle(m, image.Rect(b.Min.X+rad, b.Min.Y, b.Max.X-rad, b.Max.Y), col, -1)
		gocv.Rectangle(m, image.Rect(b.Min.X, b.Min.Y+rad, b.Max.X, b.Max.Y-rad), col, -1)
		for _, p := range corners(b, rad) {
			gocv.Circle(m, p, rad, col, -1)
		}
	})
}

// StrokeRoundRect outlines a rectangle with rounded corners.
func (s *MatSurface) StrokeRoundRect(x, y, w, h, r, lineWidth float64, c color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	r = math.Min(r, math.Min(w, h)/2)
	outer := image.Rectangle{Min: s.pt(x, y), Max: s.pt(x+w, y+h)}
	rad := s.px(r)
	thickness := int(math.Max(1, math.Round(lineWidth*s.Scale)))

	s.blend(outer.Inset(-thickness), c, func(m *gocv.Mat, o image.Point) {
		b := outer.Sub(o)
		col := opaque(c)
		gocv.Line(m, image.Pt(b.Min.X+rad, b.Min.Y), image.Pt(b.Max.X-rad, b.Min.Y), col, thickness)
		gocv.Line(m, image.Pt(b.Max.X, b.Min.Y+rad), image.Pt(b.Max.X, b.Max.Y-rad), col, thickness)
		gocv.Line(m, image.Pt(b.Max.X-rad, b.Max.Y), image.Pt(b.Min.X+rad, b.Max.Y), col, thickness)
		gocv.Line(m, image.Pt(b.Min.X, b.Max.Y-rad), image.Pt(b.Min.X, b.Min.Y+rad), col, thickness)

		axes := image.Pt(rad, rad)
		cs := corners(b, rad)
		gocv.Ellipse(m, cs[0], axes, 0, 180, 270, col, thickness)
		gocv.Ellipse(m, cs[1], axes, 0, 270, 360, col, thickness)
		gocv.Ellipse(m, cs[2], axes, 0, 0, 90, col, thickness)
		gocv.Ellipse(m, cs[3], axes, 0, 90, 180, col, thickness)
	})
}

// corners returns the arc centers of a rounded rectangle clockwise from top-left.
func corners(b image.Rectangle, rad int) [4]image.Point {
	return [4]image.Point{
		image.Pt(b.Min.X+rad, b.Min.Y+rad),
		image.Pt(b.Max.X-rad, b.Min.Y+rad),
		image.Pt(b.Max.X-rad, b.Max.Y-rad),
		image.Pt(b.Min.X+rad, b.Max.Y-rad),
	}
}

// FillCircle fills a disc.
func (s *MatSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	center, rad := s.pt(x, y), s.px(r)
	bounds := image.Rect(center.X-rad, center.Y-rad, center.X+rad+1, center.Y+rad+1)
	s.blend(bounds, c, func(m *gocv.Mat, o image.Point) {
		gocv.Circle(m, center.Sub(o), rad, opaque(c), -1)
	})
}

// StrokeCircle outlines a circle.
func (s *MatSurface) StrokeCircle(x, y, r, lineWidth float64, c color.NRGBA) {
	center, rad := s.pt(x, y), s.px(r)
	thickness := int(math.Max(1, math.Round(lineWidth*s.Scale)))
	ext := rad + thickness
	bounds := image.Rect(center.X-ext, center.Y-ext, center.X+ext+1, center.Y+ext+1)
	s.blend(bounds, c, func(m *gocv.Mat, o image.Point) {
		gocv.Circle(m, center.Sub(o), rad, opaque(c), thickness)
	})
}

// MeasureText returns the rendered width of text in logical pixels.
func (s *MatSurface) MeasureText(text string, size float64) float64 {
	scale, thickness := s.textParams(size)
	return float64(gocv.GetTextSize(text, font, scale, thickness).X) / s.Scale
}

// FillText draws text centered on (x, y).
func (s *MatSurface) FillText(text string, x, y, size float64, c color.NRGBA) {
	s.drawText(text, x, y, size, 0, c)
}

// StrokeText draws a thick outline behind text centered on (x, y).
func (s *MatSurface) StrokeText(text string, x, y, size, lineWidth float64, c color.NRGBA) {
	s.drawText(text, x, y, size, int(math.Round(lineWidth*s.Scale)), c)
}

func (s *MatSurface) drawText(text string, x, y, size float64, extra int, c color.NRGBA) {
	if text == "" {
		return
	}
	scale, thickness := s.textParams(size)
	thickness += extra
	sz := gocv.GetTextSize(text, font, scale, thickness)
	org := image.Pt(s.px(x)-sz.X/2, s.px(y)+sz.Y/2)
	bounds := image.Rect(org.X-thickness, org.Y-sz.Y-thickness, org.X+sz.X+thickness, org.Y+sz.Y/2+thickness)

	s.blend(bounds, c, func(m *gocv.Mat, o image.Point) {
		gocv.PutText(m, text, org.Sub(o), font, scale, opaque(c), thickness)
	})
}
