package render

import "strings"

// Font sizes in logical pixels.
const (
	NarrowLabelSize  = 18.0
	WideLabelSize    = 28.0
	NarrowRevealSize = 22.0
	WideRevealSize   = 32.0
	MinLabelSize     = 10.0
	CountdownSize    = 120.0
	// LabelInset is the horizontal space a label leaves inside its box.
	LabelInset = 20.0
)

const ellipsis = "..."

// Measurer reports the width of text rendered at a pixel size.
type Measurer interface {
	MeasureText(text string, size float64) float64
}

// Fit is the result of fitting a label into a box.
// Lines is empty when nothing should be drawn.
type Fit struct {
	Size      float64
	Lines     []string
	Truncated bool
}

// shrink lowers size one pixel at a time until text fits or minSize is reached.
func shrink(m Measurer, text string, maxWidth, size, minSize float64) float64 {
	for m.MeasureText(text, size) > maxWidth && size > minSize {
		size--
	}
	return size
}

// FitLabel shrinks, wraps onto two lines, or truncates label so it fits maxWidth.
func FitLabel(m Measurer, label string, maxWidth, startSize, minSize float64) Fit {
	if label == "" {
		return Fit{Size: startSize}
	}

	size := shrink(m, label, maxWidth, startSize, minSize)
	fits := func(s string) bool { return m.MeasureText(s, size) <= maxWidth }

	if fits(label) {
		return Fit{Size: size, Lines: []string{label}}
	}

	if words := strings.Fields(label); len(words) > 1 {
		mid := (len(words) + 1) / 2
		line1 := strings.Join(words[:mid], " ")
		line2 := strings.Join(words[mid:], " ")
		if fits(line1) && fits(line2) {
			return Fit{Size: size, Lines: []string{line1, line2}}
		}
	}

	runes := []rune(label)
	for len(runes) > 0 && !fits(string(runes)+ellipsis) {
		runes = runes[:len(runes)-1]
	}

	text := string(runes) + ellipsis
	if !fits(text) {
		return Fit{Size: size, Truncated: true}
	}
	return Fit{Size: size, Lines: []string{text}, Truncated: true}
}
