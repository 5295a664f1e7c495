package pointer

import (
	"math"
	"testing"

	"github.com/ayusman/fingerquiz/internal/detector"
	"github.com/ayusman/fingerquiz/internal/layout"
)

func fixedViewport(w, h float64) func() layout.Viewport {
	return func() layout.Viewport {
		return layout.Viewport{Width: w, Height: h, DPR: 1}
	}
}

func TestTracker_Observe(t *testing.T) {
	tracker := NewTracker(fixedViewport(1000, 800))

	if _, ok := tracker.Latest(); ok {
		t.Fatal("expected no pointer before any observation")
	}

	tracker.Observe([]detector.HandLandmarks{detector.PointingLandmarks(0.25, 0.5)})

	s, ok := tracker.Latest()
	if !ok {
		t.Fatal("expected pointer after observation")
	}
	if math.Abs(s.X-250) > 1e-9 || math.Abs(s.Y-400) > 1e-9 {
		t.Errorf("Latest() = (%f, %f), want (250, 400)", s.X, s.Y)
	}
	if s.Confidence != detector.DefaultVisibility {
		t.Errorf("Confidence = %f, want %f", s.Confidence, detector.DefaultVisibility)
	}
}

func TestTracker_ReplacesAndClears(t *testing.T) {
	tracker := NewTracker(fixedViewport(100, 100))

	tracker.Observe([]detector.HandLandmarks{detector.PointingLandmarks(0.1, 0.1)})
	tracker.Observe([]detector.HandLandmarks{detector.PointingLandmarks(0.9, 0.8)})

	s, _ := tracker.Latest()
	if math.Abs(s.X-90) > 1e-9 || math.Abs(s.Y-80) > 1e-9 {
		t.Errorf("Latest() = (%f, %f), want (90, 80)", s.X, s.Y)
	}

	tracker.Observe(nil)
	if _, ok := tracker.Latest(); ok {
		t.Error("expected pointer cleared when no hand is detected")
	}

	tracker.Observe([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.5)})
	tracker.Clear()
	if _, ok := tracker.Latest(); ok {
		t.Error("expected pointer cleared after Clear")
	}
}

func TestTracker_UsesViewportAtReadTime(t *testing.T) {
	vp := layout.Viewport{Width: 100, Height: 100}
	tracker := NewTracker(func() layout.Viewport { return vp })

	tracker.Observe([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.5)})
	vp = layout.Viewport{Width: 400, Height: 200}

	s, _ := tracker.Latest()
	if s.X != 200 || s.Y != 100 {
		t.Errorf("Latest() = (%f, %f), want (200, 100)", s.X, s.Y)
	}
}

func TestSample_Radius(t *testing.T) {
	tests := []struct {
		conf float64
		want float64
	}{
		{conf: 1, want: 18},
		{conf: 0.8, want: 14.4},
		{conf: 0.2, want: 8},
		{conf: 0, want: 8},
	}

	for _, tt := range tests {
		got := Sample{Confidence: tt.conf}.Radius()
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Radius(%f) = %f, want %f", tt.conf, got, tt.want)
		}
	}
}
