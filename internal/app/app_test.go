package app

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/detector"
	"github.com/ayusman/fingerquiz/internal/question"
	"github.com/ayusman/fingerquiz/internal/quiz"
	"github.com/ayusman/fingerquiz/internal/round"
	"github.com/ayusman/fingerquiz/internal/store"
)

type fakeRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *fakeRecorder) Append(ctx context.Context, name string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, name+":"+strconv.Itoa(score))
	return nil
}

func (r *fakeRecorder) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

type fakeHistory struct {
	mu       sync.Mutex
	sessions []*store.Session
}

func (h *fakeHistory) Create(ctx context.Context, sess *store.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = append(h.sessions, sess)
	return nil
}

func (h *fakeHistory) Sessions() []*store.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*store.Session(nil), h.sessions...)
}

// cameraFactory hands out mock cameras and remembers the devices requested.
type cameraFactory struct {
	mu   sync.Mutex
	ids  []int
	errs map[int]error
}

func (f *cameraFactory) New(id int) capture.Camera {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	cam := capture.NewMockCamera(nil, true)
	if err := f.errs[id]; err != nil {
		cam.SetOpenError(err)
	}
	return cam
}

func (f *cameraFactory) Devices() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.ids...)
}

func bank(n int) []question.Record {
	records := make([]question.Record, n)
	for i := range records {
		records[i] = question.Record{
			Question:      "Q" + strconv.Itoa(i),
			CorrectAnswer: "right",
			WrongAnswers:  []string{"wrong 1", "wrong 2"},
		}
	}
	return records
}

type testApp struct {
	*App
	sched    *round.ManualScheduler
	recorder *fakeRecorder
	history  *fakeHistory
	cameras  *cameraFactory
	detector *detector.MockDetector
}

func newTestApp(t *testing.T, cfg Config) *testApp {
	t.Helper()

	ta := &testApp{
		sched:    round.NewManualScheduler(time.Unix(0, 0)),
		recorder: &fakeRecorder{},
		history:  &fakeHistory{},
		cameras:  &cameraFactory{errs: map[int]error{}},
		detector: detector.NewMockDetector(),
	}

	cfg.Quiz = quiz.DefaultConfig()
	cfg.Quiz.Shuffle = func(n int, swap func(i, j int)) {}

	ta.App = New(cfg, Deps{
		Supplier:  func() ([]question.Record, error) { return bank(10), nil },
		Recorder:  ta.recorder,
		History:   ta.history,
		Detector:  ta.detector,
		Scheduler: ta.sched,
		NewCamera: ta.cameras.New,
		Logger:    zap.NewNop().Sugar(),
	})
	t.Cleanup(func() { ta.Close() })
	return ta
}

func TestApp_BeginRequiresCamera(t *testing.T) {
	a := newTestApp(t, Config{})

	if _, err := a.BeginSession(context.Background(), "ana"); !errors.Is(err, ErrCameraClosed) {
		t.Fatalf("BeginSession() error = %v, want ErrCameraClosed", err)
	}

	if err := a.OpenCamera(); err != nil {
		t.Fatalf("OpenCamera() error = %v", err)
	}
	st, err := a.BeginSession(context.Background(), "ana")
	if err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}
	if !st.Active || st.Username != "ana" {
		t.Errorf("state = %+v, want active session for ana", st)
	}
}

func TestApp_OpenCamera_ErrorPublishesNotice(t *testing.T) {
	a := newTestApp(t, Config{})
	a.cameras.errs[0] = capture.ErrPermissionDenied

	events, cancel := a.Events().Subscribe()
	defer cancel()

	if err := a.OpenCamera(); !errors.Is(err, capture.ErrPermissionDenied) {
		t.Fatalf("OpenCamera() error = %v, want ErrPermissionDenied", err)
	}
	if a.CameraState().Open {
		t.Error("camera should stay closed")
	}

	var notice capture.Notice
	for len(events) > 0 {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(<-events, &msg); err != nil {
			t.Fatalf("bad event: %v", err)
		}
		if msg.Type == MessageNotice {
			json.Unmarshal(msg.Data, &notice)
		}
	}
	if notice.Message != "Camera access failed. Please allow camera permissions." || !notice.Retry {
		t.Errorf("notice = %+v", notice)
	}
}

func TestApp_OpenCamera_DetectorNotReady(t *testing.T) {
	a := newTestApp(t, Config{})
	a.detectorErr = detector.ErrNotReady

	if err := a.OpenCamera(); !errors.Is(err, capture.ErrDetectorNotReady) {
		t.Fatalf("OpenCamera() error = %v, want ErrDetectorNotReady", err)
	}
	if len(a.cameras.Devices()) != 0 {
		t.Error("no camera should be opened without a detector")
	}
}

func TestApp_SwitchCamera(t *testing.T) {
	a := newTestApp(t, Config{Devices: capture.Devices{User: 0, Environment: 2}})

	facing, err := a.SwitchCamera()
	if err != nil || facing != capture.FacingEnvironment {
		t.Fatalf("SwitchCamera() while closed = %q, %v", facing, err)
	}
	if len(a.cameras.Devices()) != 0 {
		t.Error("switching a closed camera should not open one")
	}

	if err := a.OpenCamera(); err != nil {
		t.Fatalf("OpenCamera() error = %v", err)
	}
	facing, err = a.SwitchCamera()
	if err != nil || facing != capture.FacingUser {
		t.Fatalf("SwitchCamera() = %q, %v", facing, err)
	}

	want := []int{2, 0}
	got := a.cameras.Devices()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("devices opened = %v, want %v", got, want)
	}
	st := a.CameraState()
	if !st.Open || !st.Mirrored {
		t.Errorf("camera state = %+v, want open and mirrored", st)
	}
}

func TestApp_SwitchCamera_FailureReverts(t *testing.T) {
	a := newTestApp(t, Config{Devices: capture.Devices{User: 0, Environment: 2}})
	a.cameras.errs[2] = capture.ErrDeviceNotFound

	if err := a.OpenCamera(); err != nil {
		t.Fatalf("OpenCamera() error = %v", err)
	}

	facing, err := a.SwitchCamera()
	if !errors.Is(err, capture.ErrDeviceNotFound) {
		t.Fatalf("SwitchCamera() error = %v, want ErrDeviceNotFound", err)
	}
	if facing != capture.FacingUser {
		t.Errorf("facing = %q, want reverted to user", facing)
	}
	if !a.CameraState().Open {
		t.Error("previous camera should be reopened")
	}
	if got := a.cameras.Devices(); len(got) != 3 || got[2] != 0 {
		t.Errorf("devices opened = %v, want [0 2 0]", got)
	}
}

func TestApp_SwitchCamera_DuringSession(t *testing.T) {
	a := newTestApp(t, Config{})
	a.OpenCamera()
	if _, err := a.BeginSession(context.Background(), "ana"); err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}

	if _, err := a.SwitchCamera(); !errors.Is(err, ErrCameraBusy) {
		t.Errorf("SwitchCamera() error = %v, want ErrCameraBusy", err)
	}
	if a.Facing() != capture.FacingUser {
		t.Error("facing should not change")
	}
}

func TestApp_SessionEnd(t *testing.T) {
	a := newTestApp(t, Config{})

	var ended []quiz.Summary
	a.OnSessionEnd(func(s quiz.Summary) { ended = append(ended, s) })

	a.OpenCamera()
	if _, err := a.BeginSession(context.Background(), "  ana "); err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}

	// ten rounds of reading, answering until timeout and feedback
	a.sched.Advance(5 * time.Minute)

	if a.State().Active {
		t.Fatal("session should have ended")
	}
	if a.CameraState().Open {
		t.Error("camera should be stopped when the session ends")
	}
	if got := a.recorder.Entries(); len(got) != 1 || got[0] != "ana:0" {
		t.Errorf("leaderboard entries = %v, want [ana:0]", got)
	}

	sessions := a.history.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("history = %d sessions, want 1", len(sessions))
	}
	if s := sessions[0]; s.Username != "ana" || s.Total != 10 || s.Score != 0 {
		t.Errorf("history session = %+v", s)
	}
	if len(ended) != 1 || ended[0].Total != 10 {
		t.Errorf("session end hooks = %+v", ended)
	}
}

func TestApp_Restart(t *testing.T) {
	a := newTestApp(t, Config{})
	a.OpenCamera()
	a.BeginSession(context.Background(), "ana")
	a.sched.Advance(5 * time.Second)

	if err := a.Restart(); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if a.State().Active {
		t.Error("session should be aborted")
	}
	if a.CameraState().Open {
		t.Error("camera should be closed")
	}
	if len(a.recorder.Entries()) != 0 || len(a.history.Sessions()) != 0 {
		t.Error("aborted session must not be saved")
	}
	if a.State().Round.Phase != round.Idle {
		t.Errorf("phase = %v, want idle", a.State().Round.Phase)
	}
}

func TestApp_LockWithoutSession(t *testing.T) {
	a := newTestApp(t, Config{})
	if _, err := a.Lock(); !errors.Is(err, quiz.ErrNoSession) {
		t.Errorf("Lock() error = %v, want ErrNoSession", err)
	}
}
