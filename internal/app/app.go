// Package app runs the quiz game: it owns the camera and the frame loop,
// feeds fingertips into the quiz and publishes rendered frames and events.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/detector"
	"github.com/ayusman/fingerquiz/internal/gesture"
	"github.com/ayusman/fingerquiz/internal/layout"
	"github.com/ayusman/fingerquiz/internal/logging"
	"github.com/ayusman/fingerquiz/internal/pointer"
	"github.com/ayusman/fingerquiz/internal/quiz"
	"github.com/ayusman/fingerquiz/internal/render"
	"github.com/ayusman/fingerquiz/internal/round"
	"github.com/ayusman/fingerquiz/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while the scene is moving.
	ActiveFPS = 15
	// DefaultMotionThreshold is the percentage of changed pixels counted as motion.
	DefaultMotionThreshold = 1.0
)

// Message types published on the event hub.
const (
	MessageQuiz   = "quiz"
	MessageCamera = "camera"
	MessageNotice = "notice"
)

var (
	// ErrCameraClosed is returned when a session is started without a running camera.
	ErrCameraClosed = errors.New("camera is not running")
	// ErrCameraBusy is returned when the camera is switched during a session.
	ErrCameraBusy = errors.New("camera cannot be switched during a session")
)

// Config holds configuration options for the application.
type Config struct {
	Devices      capture.Devices
	Facing       capture.Facing
	DPR          float64
	MotionThresh float64
	LockGesture  bool
	HoldFrames   int
	Quiz         quiz.Config
}

// History records finished sessions.
type History interface {
	Create(ctx context.Context, sess *store.Session) error
}

// Deps are the collaborators of an App. Nil fields get production defaults.
type Deps struct {
	Supplier  quiz.Supplier
	Recorder  quiz.Recorder
	History   History
	Detector  detector.Detector
	Scheduler round.Scheduler
	NewCamera func(deviceID int) capture.Camera
	Logger    *zap.SugaredLogger
}

// CameraState describes the camera for clients.
type CameraState struct {
	Open     bool           `json:"open"`
	Facing   capture.Facing `json:"facing"`
	Mirrored bool           `json:"mirrored"`
	Device   int            `json:"device"`
}

// Message is the envelope of everything sent on the event hub.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// App is the running game.
type App struct {
	cfg    Config
	logger *zap.SugaredLogger

	mu        sync.Mutex
	newCamera func(int) capture.Camera
	camera    capture.Camera
	facing    capture.Facing
	stopCh    chan struct{}
	done      chan struct{}

	detector    detector.Detector
	detectorErr error
	motion      *capture.MotionDetector
	activity    *capture.Activity
	tracker     *pointer.Tracker
	hold        *gesture.HoldDetector
	renderer    *render.Renderer
	quiz        *quiz.Controller
	history     History

	vpMu     sync.RWMutex
	viewport layout.Viewport

	lastMu sync.Mutex
	last   *gocv.Mat

	frames *Hub
	events *Hub

	hookMu sync.Mutex
	onEnd  []func(quiz.Summary)
}

// New creates an App. The camera stays closed until OpenCamera.
func New(cfg Config, deps Deps) *App {
	if cfg.MotionThresh <= 0 {
		cfg.MotionThresh = DefaultMotionThreshold
	}
	if cfg.Facing == "" {
		cfg.Facing = capture.FacingUser
	}
	if cfg.HoldFrames <= 0 {
		cfg.HoldFrames = gesture.DefaultHoldFrames
	}
	if cfg.Quiz.Round == (round.Config{}) {
		cfg.Quiz.Round = round.DefaultConfig()
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.DefaultLogger().Named("app")
	}
	sched := deps.Scheduler
	if sched == nil {
		sched = round.Clock{}
	}
	newCamera := deps.NewCamera
	if newCamera == nil {
		newCamera = capture.NewCamera
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		newCamera: newCamera,
		facing:    cfg.Facing,
		detector:  deps.Detector,
		motion:    capture.NewMotionDetector(cfg.MotionThresh),
		activity:  capture.NewActivity(capture.DefaultIdleTimeout),
		renderer:  render.NewRenderer(),
		history:   deps.History,
		viewport:  layout.FromDevice(capture.DefaultWidth, capture.DefaultHeight, cfg.DPR),
		frames:    NewHub(1, true),
		events:    NewHub(64, false),
	}

	if a.detector == nil {
		mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
		if err != nil {
			logger.Warnw("hand detection unavailable", "error", err)
			a.detectorErr = err
		} else {
			logger.Info("using MediaPipe hand detection")
			a.detector = mp
		}
	}

	if cfg.LockGesture {
		a.hold = gesture.NewHoldDetector(gesture.NewStaticMatcher(gesture.OpenPalm()), cfg.HoldFrames)
	}

	a.tracker = pointer.NewTracker(a.Viewport)
	a.quiz = quiz.NewController(cfg.Quiz, sched, a.tracker, deps.Supplier, deps.Recorder, a.onQuizEvent, logger.Named("quiz"))
	a.quiz.SetViewport(a.viewport)
	a.quiz.OnSessionEnd(a.sessionEnded)

	return a
}

// OpenCamera starts the camera for the current facing mode and the frame loop.
func (a *App) OpenCamera() error {
	a.mu.Lock()
	err := a.openLocked()
	a.mu.Unlock()

	a.reportCamera(err)
	return err
}

func (a *App) openLocked() error {
	if a.stopCh != nil {
		return nil
	}
	if a.detectorErr != nil {
		return fmt.Errorf("%w: %v", capture.ErrDetectorNotReady, a.detectorErr)
	}

	device := a.cfg.Devices.DeviceFor(a.facing)
	cam := a.newCamera(device)
	if err := cam.Open(); err != nil {
		return err
	}
	cam.SetFPS(IdleFPS)

	a.camera = cam
	a.motion.Reset()
	a.activity.Reset()
	a.tracker.Clear()
	if a.hold != nil {
		a.hold.Reset()
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(cam, a.facing.Mirrored(), a.stopCh, a.done)

	a.logger.Infow("camera opened", "facing", a.facing, "device", device)
	return nil
}

// CloseCamera stops the frame loop and releases the camera.
func (a *App) CloseCamera() error {
	a.mu.Lock()
	err := a.closeLocked()
	a.mu.Unlock()

	a.reportCamera(nil)
	return err
}

func (a *App) closeLocked() error {
	if a.stopCh == nil {
		return nil
	}

	close(a.stopCh)
	<-a.done
	a.stopCh = nil
	a.done = nil

	err := a.camera.Close()
	a.camera = nil
	a.tracker.Clear()
	a.releaseFrame()

	a.logger.Infow("camera closed", "facing", a.facing)
	return err
}

// SwitchCamera toggles between the front and back camera. When the other
// camera cannot be opened the previous one is restored and the error returned.
func (a *App) SwitchCamera() (capture.Facing, error) {
	if a.quiz.Active() {
		return a.Facing(), ErrCameraBusy
	}

	a.mu.Lock()
	prev := a.facing
	a.facing = prev.Toggle()

	var err error
	if a.stopCh != nil {
		if cerr := a.closeLocked(); cerr != nil {
			a.logger.Warnw("failed to close camera", "error", cerr)
		}
		if err = a.openLocked(); err != nil {
			a.logger.Warnw("camera switch failed, reverting", "facing", a.facing, "error", err)
			a.facing = prev
			if rerr := a.openLocked(); rerr != nil {
				a.logger.Errorw("failed to reopen previous camera", "facing", prev, "error", rerr)
			}
		}
	}
	facing := a.facing
	a.mu.Unlock()

	a.reportCamera(err)
	return facing, err
}

// Facing returns the selected camera.
func (a *App) Facing() capture.Facing {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.facing
}

// CameraState returns the camera state.
func (a *App) CameraState() CameraState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return CameraState{
		Open:     a.stopCh != nil,
		Facing:   a.facing,
		Mirrored: a.facing.Mirrored(),
		Device:   a.cfg.Devices.DeviceFor(a.facing),
	}
}

func (a *App) reportCamera(err error) {
	if err != nil {
		a.logger.Warnw("camera error", "error", err)
		a.publish(MessageNotice, capture.Describe(err))
	}
	a.publish(MessageCamera, a.CameraState())
}

// BeginSession starts a quiz for username. The camera must be running.
func (a *App) BeginSession(ctx context.Context, username string) (quiz.State, error) {
	if !a.CameraState().Open {
		return quiz.State{}, ErrCameraClosed
	}
	return a.quiz.Begin(ctx, username)
}

// Lock locks the answer under the pointer.
func (a *App) Lock() (bool, error) {
	return a.quiz.Lock()
}

// Restart abandons the session without saving it and turns the camera off.
func (a *App) Restart() error {
	a.quiz.Abort()
	return a.CloseCamera()
}

// State returns the quiz state.
func (a *App) State() quiz.State {
	return a.quiz.Snapshot()
}

// Viewport returns the layout viewport of the current frames.
func (a *App) Viewport() layout.Viewport {
	a.vpMu.RLock()
	defer a.vpMu.RUnlock()
	return a.viewport
}

// Frames returns the hub of JPEG-encoded rendered frames.
func (a *App) Frames() *Hub {
	return a.frames
}

// Events returns the hub of JSON-encoded Messages.
func (a *App) Events() *Hub {
	return a.events
}

// OnSessionEnd registers a callback for finished sessions.
func (a *App) OnSessionEnd(f func(quiz.Summary)) {
	a.hookMu.Lock()
	defer a.hookMu.Unlock()
	a.onEnd = append(a.onEnd, f)
}

// Close stops everything and releases the detector.
func (a *App) Close() error {
	a.quiz.Abort()
	err := a.CloseCamera()
	a.motion.Close()
	a.releaseFrame()
	if a.detector != nil {
		if derr := a.detector.Close(); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}

func (a *App) onQuizEvent(e quiz.Event) {
	if e.Kind == quiz.EventRound && e.Round != nil {
		a.redraw()
		// reveal frames are drawn into the video; clients only need the outcome
		if e.Round.Kind == round.EventRevealFrame {
			return
		}
	}
	a.publish(MessageQuiz, e)
}

func (a *App) sessionEnded(s quiz.Summary) {
	if err := a.CloseCamera(); err != nil {
		a.logger.Warnw("failed to close camera", "error", err)
	}

	if a.history != nil {
		err := a.history.Create(context.Background(), &store.Session{
			ID:         s.SessionID,
			Username:   s.Username,
			Score:      s.Score,
			Total:      s.Total,
			StartedAt:  s.StartedAt,
			FinishedAt: s.FinishedAt,
		})
		if err != nil {
			a.logger.Errorw("failed to record session", "session", s.SessionID, "error", err)
		}
	}

	a.hookMu.Lock()
	hooks := append([]func(quiz.Summary){}, a.onEnd...)
	a.hookMu.Unlock()
	for _, h := range hooks {
		h(s)
	}
}

func (a *App) publish(kind string, data interface{}) {
	msg, err := json.Marshal(Message{Type: kind, Data: data})
	if err != nil {
		a.logger.Errorw("failed to encode event", "type", kind, "error", err)
		return
	}
	a.events.Publish(msg)
}
