package app

import (
	"bytes"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/layout"
	"github.com/ayusman/fingerquiz/internal/render"
	"github.com/ayusman/fingerquiz/internal/round"
)

// run is the frame loop. It reads frames at the idle rate until motion is
// seen, then at the active rate until the scene has been still for the idle
// timeout. Hand detection only runs at the active rate; a still hand keeps
// its last position.
func (a *App) run(cam capture.Camera, mirrored bool, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := IdleFPS
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			frame, err := cam.ReadFrame()
			if err != nil {
				a.logger.Debugw("failed to read frame", "error", err)
				continue
			}

			next := a.processFrame(frame, mirrored, now)
			frame.Close()

			if next != fps {
				fps = next
				cam.SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				a.logger.Debugw("frame rate changed", "fps", fps)
			}
		}
	}
}

// processFrame runs one frame through detection and rendering, publishes
// the annotated JPEG and returns the frame rate to use next.
func (a *App) processFrame(frame *gocv.Mat, mirrored bool, now time.Time) int {
	if mirrored {
		gocv.Flip(*frame, frame, 1)
	}

	a.retainFrame(frame)

	moved, _ := a.motion.Detect(frame)
	active, changed := a.activity.Update(moved, now)
	if changed {
		a.logger.Debugw("motion state changed", "active", active)
	}

	if active && a.detector != nil {
		hands, err := a.detector.Detect(frame)
		if err != nil {
			a.logger.Warnw("hand detection failed", "error", err)
		} else {
			a.tracker.Observe(hands)
			if a.hold != nil && a.hold.Observe(hands) {
				if locked, _ := a.quiz.Lock(); locked {
					a.logger.Info("answer locked by gesture")
				}
			}
		}
	}

	a.updateViewport(frame.Cols(), frame.Rows())

	if jpeg := a.renderFrame(frame); jpeg != nil {
		a.frames.Publish(jpeg)
	}

	if active {
		return ActiveFPS
	}
	return IdleFPS
}

// retainFrame keeps a copy of the latest camera frame for redraws between
// camera ticks.
func (a *App) retainFrame(frame *gocv.Mat) {
	c := frame.Clone()

	a.lastMu.Lock()
	old := a.last
	a.last = &c
	a.lastMu.Unlock()

	if old != nil {
		old.Close()
	}
}

func (a *App) releaseFrame() {
	a.lastMu.Lock()
	old := a.last
	a.last = nil
	a.lastMu.Unlock()

	if old != nil {
		old.Close()
	}
}

// redraw renders the overlay on the retained frame and publishes it. Round
// events call it so phase changes and the reveal animation do not wait for
// the next camera frame.
func (a *App) redraw() {
	a.lastMu.Lock()
	if a.last == nil {
		a.lastMu.Unlock()
		return
	}
	frame := a.last.Clone()
	a.lastMu.Unlock()
	defer frame.Close()

	if jpeg := a.renderFrame(&frame); jpeg != nil {
		a.frames.Publish(jpeg)
	}
}

// updateViewport lays the grid out again when the frame size changes.
func (a *App) updateViewport(cols, rows int) {
	vp := layout.FromDevice(cols, rows, a.cfg.DPR)

	a.vpMu.Lock()
	changed := vp != a.viewport
	a.viewport = vp
	a.vpMu.Unlock()

	if changed {
		a.quiz.SetViewport(vp)
	}
}

// renderFrame draws the quiz overlay on a copy of frame and encodes it.
func (a *App) renderFrame(frame *gocv.Mat) []byte {
	st := a.quiz.Round()

	view := render.View{
		Viewport:  st.Viewport,
		Boxes:     st.Boxes,
		Reading:   st.Phase == round.Reading,
		Countdown: st.Countdown,
		Active:    st.Phase == round.Answering || st.Phase == round.Locked,
		Revealing: st.Revealing,
	}
	if p, ok := a.tracker.Latest(); ok {
		view.Pointer = &p
	}

	out := frame.Clone()
	defer out.Close()

	surface := render.NewMatSurface(*frame, &out, st.Viewport.Scale())
	if st.Revealing && st.Outcome != nil {
		a.renderer.DrawReveal(surface, view, st.Outcome.CorrectIndex, st.Elapsed)
	} else {
		a.renderer.Draw(surface, view)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, out)
	if err != nil {
		a.logger.Warnw("failed to encode frame", "error", err)
		return nil
	}
	defer buf.Close()

	return bytes.Clone(buf.GetBytes())
}
