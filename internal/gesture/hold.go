package gesture

import (
	"sync"

	"github.com/ayusman/fingerquiz/internal/detector"
)

// DefaultHoldFrames is how many consecutive detections a pose must be held.
const DefaultHoldFrames = 5

// HoldDetector fires once when a pose is held for a number of consecutive
// frames. The pose has to be released before it can fire again.
type HoldDetector struct {
	matcher *StaticMatcher
	frames  int

	mu    sync.Mutex
	count int
	fired bool
}

// NewHoldDetector watches for any of the matcher's templates.
func NewHoldDetector(matcher *StaticMatcher, frames int) *HoldDetector {
	if frames < 1 {
		frames = 1
	}
	return &HoldDetector{matcher: matcher, frames: frames}
}

// Observe feeds one detection result and reports whether the hold completed
// on this frame.
func (h *HoldDetector) Observe(hands []detector.HandLandmarks) bool {
	held := len(hands) > 0 && len(h.matcher.Match(&hands[0])) > 0

	h.mu.Lock()
	defer h.mu.Unlock()

	if !held {
		h.count = 0
		h.fired = false
		return false
	}

	h.count++
	if h.fired || h.count < h.frames {
		return false
	}
	h.fired = true
	return true
}

// Reset forgets any partial hold.
func (h *HoldDetector) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count = 0
	h.fired = false
}
