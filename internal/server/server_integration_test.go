package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/detector"
	"github.com/ayusman/fingerquiz/internal/leaderboard"
	"github.com/ayusman/fingerquiz/internal/question"
	"github.com/ayusman/fingerquiz/internal/quiz"
	"github.com/ayusman/fingerquiz/internal/round"
	"github.com/ayusman/fingerquiz/internal/store"
)

func bank(n int) []question.Record {
	records := make([]question.Record, n)
	for i := range records {
		records[i] = question.Record{
			Question:      "Q" + strconv.Itoa(i),
			CorrectAnswer: "right",
			WrongAnswers:  []string{"wrong"},
		}
	}
	return records
}

type testServer struct {
	*httptest.Server
	app   *app.App
	sched *round.ManualScheduler
	board *leaderboard.Board
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	board := leaderboard.New(s.Settings(), nil)
	sched := round.NewManualScheduler(time.Unix(0, 0))

	a := app.New(app.Config{}, app.Deps{
		Supplier:  func() ([]question.Record, error) { return bank(10), nil },
		Recorder:  board,
		History:   s.Sessions(),
		Detector:  detector.NewMockDetector(),
		Scheduler: sched,
		NewCamera: func(id int) capture.Camera { return capture.NewMockCamera(nil, true) },
		Logger:    zap.NewNop().Sugar(),
	})
	t.Cleanup(func() { a.Close() })

	srv := New(Config{
		Game:   a,
		Board:  board,
		Frames: a.Frames(),
		Events: a.Events(),
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, app: a, sched: sched, board: board}
}

func (ts *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	return resp
}

func TestAPI_QuizWorkflow(t *testing.T) {
	ts := newTestServer(t)

	// 1. Starting before the camera is refused
	resp := ts.post(t, "/api/session", `{"username": "ana"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("POST /api/session without camera = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	// 2. Open the camera from loopback
	resp = ts.post(t, "/api/camera", `{"action": "open"}`)
	var cam app.CameraState
	json.NewDecoder(resp.Body).Decode(&cam)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !cam.Open {
		t.Fatalf("POST /api/camera = %d %+v", resp.StatusCode, cam)
	}

	// 3. Start the quiz
	resp = ts.post(t, "/api/session", `{"username": "  ana "}`)
	var st quiz.State
	json.NewDecoder(resp.Body).Decode(&st)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || st.Username != "ana" || st.Total != 10 {
		t.Fatalf("POST /api/session = %d %+v", resp.StatusCode, st)
	}

	// 4. Locking during the countdown does nothing
	resp = ts.post(t, "/api/session/lock", ``)
	var lock struct {
		Locked bool `json:"locked"`
	}
	json.NewDecoder(resp.Body).Decode(&lock)
	resp.Body.Close()
	if lock.Locked {
		t.Error("lock during reading should be ignored")
	}

	// 5. Play every round out to the timeout
	ts.sched.Advance(5 * time.Minute)

	resp, _ = ts.Client().Get(ts.URL + "/api/session")
	json.NewDecoder(resp.Body).Decode(&st)
	resp.Body.Close()
	if st.Active || st.Last == nil || st.Last.Username != "ana" {
		t.Fatalf("GET /api/session after quiz = %+v", st)
	}

	// 6. The score is on the leaderboard
	resp, _ = ts.Client().Get(ts.URL + "/api/leaderboard")
	var lb struct {
		Entries []leaderboard.Row `json:"entries"`
	}
	json.NewDecoder(resp.Body).Decode(&lb)
	resp.Body.Close()
	if len(lb.Entries) != 1 || lb.Entries[0].Name != "ana" || lb.Entries[0].Display != "0/10" {
		t.Fatalf("GET /api/leaderboard = %+v", lb.Entries)
	}

	// 7. Reset it
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/leaderboard", nil)
	resp, _ = ts.Client().Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE /api/leaderboard = %d", resp.StatusCode)
	}
	entries, _ := ts.board.List(context.Background())
	if len(entries) != 0 {
		t.Errorf("leaderboard not cleared: %v", entries)
	}
}

func TestAPI_EventsWebsocket(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// the subscription is registered once the handler runs
	deadline := time.Now().Add(2 * time.Second)
	for ts.app.Events().Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp := ts.post(t, "/api/camera", `{"action": "switch"}`)
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var msg struct {
		Type string          `json:"type"`
		Data app.CameraState `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad event %s: %v", data, err)
	}
	if msg.Type != app.MessageCamera || msg.Data.Facing != capture.FacingEnvironment {
		t.Errorf("event = %+v", msg)
	}
}

func TestAPI_Stream(t *testing.T) {
	ts := newTestServer(t)

	frame := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	ts.app.Frames().Publish(frame)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	var headers []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading part headers: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		headers = append(headers, line)
	}

	want := []string{"--frame", "Content-Type: image/jpeg", "Content-Length: 6"}
	if strings.Join(headers, "|") != strings.Join(want, "|") {
		t.Errorf("part headers = %q, want %q", headers, want)
	}

	body := make([]byte, len(frame))
	if _, err := io.ReadFull(r, body); err != nil || !bytes.Equal(body, frame) {
		t.Errorf("frame = %v, %v", body, err)
	}
}
