// Package pointer tracks the index fingertip as the quiz cursor.
package pointer

import (
	"sync"

	"github.com/ayusman/fingerquiz/internal/detector"
	"github.com/ayusman/fingerquiz/internal/layout"
)

// Sample is a fingertip position in viewport pixels.
type Sample struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Radius returns the pointer radius drawn for this sample.
func (s Sample) Radius() float64 {
	r := 18 * s.Confidence
	if r < 8 {
		return 8
	}
	return r
}

// Tracker keeps the most recent fingertip observation.
// Positions are kept normalized and mapped to pixels when read, so a
// viewport change between detection and lock is honoured.
type Tracker struct {
	mu       sync.RWMutex
	viewport func() layout.Viewport
	nx, ny   float64
	conf     float64
	present  bool
}

// NewTracker creates a tracker that maps samples through the given viewport source.
func NewTracker(viewport func() layout.Viewport) *Tracker {
	return &Tracker{viewport: viewport}
}

// Observe replaces the current sample with the result of one detection.
// A result without hands clears the pointer.
func (t *Tracker) Observe(hands []detector.HandLandmarks) {
	tip, conf, ok := detector.Fingertip(hands)

	t.mu.Lock()
	defer t.mu.Unlock()

	if !ok {
		t.present = false
		return
	}
	t.nx, t.ny, t.conf = tip.X, tip.Y, conf
	t.present = true
}

// Latest returns the current pointer in viewport pixels.
func (t *Tracker) Latest() (Sample, bool) {
	t.mu.RLock()
	nx, ny, conf, present := t.nx, t.ny, t.conf, t.present
	t.mu.RUnlock()

	if !present {
		return Sample{}, false
	}

	vp := t.viewport()
	return Sample{
		X:          nx * vp.Width,
		Y:          ny * vp.Height,
		Confidence: conf,
	}, true
}

// Clear forgets the current sample.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.present = false
}
