package render

import (
	"image/color"
	"math"
)

func rgba(r, g, b uint8, a float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}

// Palette holds every color the overlay uses.
type Palette struct {
	Dim         color.NRGBA
	BoxFill     []color.NRGBA
	BoxBorder   []color.NRGBA
	HoverFill   color.NRGBA
	HoverStroke color.NRGBA
	Label       color.NRGBA
	HoverLabel  color.NRGBA
	Pointer     color.NRGBA
	PointerRing color.NRGBA
	Countdown   color.NRGBA
	Outline     color.NRGBA
	Correct     color.NRGBA
}

// DefaultPalette gives every answer box its own bright color.
func DefaultPalette() Palette {
	hues := [][3]uint8{
		{255, 107, 107}, // red
		{255, 195, 113}, // orange
		{255, 234, 167}, // yellow
		{106, 176, 76},  // green
		{34, 166, 179},  // teal
		{72, 219, 251},  // cyan
		{162, 155, 254}, // purple
		{255, 159, 243}, // pink
		{255, 127, 80},  // coral
	}

	p := Palette{
		Dim:         rgba(0, 0, 0, 0.12),
		HoverFill:   rgba(0, 210, 255, 0.35),
		HoverStroke: rgba(0, 210, 255, 1),
		Label:       rgba(255, 255, 255, 1),
		HoverLabel:  rgba(255, 255, 0, 1),
		Pointer:     rgba(0, 210, 255, 0.95),
		PointerRing: rgba(255, 255, 255, 0.6),
		Countdown:   rgba(0, 210, 255, 1),
		Outline:     rgba(0, 0, 0, 0.5),
		Correct:     rgba(46, 224, 110, 1),
	}
	for _, h := range hues {
		p.BoxFill = append(p.BoxFill, rgba(h[0], h[1], h[2], 0.15))
		p.BoxBorder = append(p.BoxBorder, rgba(h[0], h[1], h[2], 0.4))
	}
	return p
}

func (p Palette) fill(i int) color.NRGBA {
	if len(p.BoxFill) == 0 {
		return rgba(255, 255, 255, 0.06)
	}
	return p.BoxFill[i%len(p.BoxFill)]
}

func (p Palette) border(i int) color.NRGBA {
	if len(p.BoxBorder) == 0 {
		return rgba(255, 255, 255, 0.12)
	}
	return p.BoxBorder[i%len(p.BoxBorder)]
}
