package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/config"
	"github.com/ayusman/fingerquiz/internal/detector"
	"github.com/ayusman/fingerquiz/internal/question"
)

func writeBank(t *testing.T, dir string, n int) string {
	t.Helper()

	records := make([]question.Record, n)
	for i := range records {
		records[i] = question.Record{
			Question:      "Q" + strconv.Itoa(i),
			CorrectAnswer: "right",
			WrongAnswers:  []string{"wrong"},
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "questions.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with a fresh data directory per test.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuestionsCheck(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FINGERQUIZ_DATA_DIR", dir)

	path := writeBank(t, dir, 12)
	out, err := run(t, "questions", "check", path)
	if err != nil {
		t.Fatalf("questions check error = %v", err)
	}
	if !strings.Contains(out, "12 questions") {
		t.Errorf("output = %q", out)
	}
}

func TestQuestionsCheck_Insufficient(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FINGERQUIZ_DATA_DIR", dir)

	path := writeBank(t, dir, 3)
	if _, err := run(t, "questions", "check", path); !errors.Is(err, question.ErrInsufficient) {
		t.Errorf("error = %v, want ErrInsufficient", err)
	}
}

func TestLoadQuestions_MissingFile(t *testing.T) {
	_, err := loadQuestions(filepath.Join(t.TempDir(), "missing.json"), 10)
	if !errors.Is(err, question.ErrInsufficient) {
		t.Errorf("error = %v, want ErrInsufficient", err)
	}
}

func TestLeaderboardCommands(t *testing.T) {
	for _, backend := range []string{config.StoreSQLite, config.StoreBolt} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("FINGERQUIZ_DATA_DIR", dir)
			t.Setenv("FINGERQUIZ_STORE", backend)

			out, err := run(t, "leaderboard", "list")
			if err != nil {
				t.Fatalf("list error = %v", err)
			}
			if !strings.Contains(out, "No scores yet") {
				t.Errorf("empty list output = %q", out)
			}

			cfg, err := config.Load("", "")
			if err != nil {
				t.Fatal(err)
			}
			board, _, closeStore, err := openBoard(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if err := board.Append(context.Background(), "ana", 7); err != nil {
				t.Fatal(err)
			}
			closeStore()

			out, err = run(t, "leaderboard", "list")
			if err != nil {
				t.Fatalf("list error = %v", err)
			}
			if !strings.Contains(out, "🥇 ana 7/10") {
				t.Errorf("list output = %q", out)
			}

			if _, err := run(t, "leaderboard", "clear"); err != nil {
				t.Fatalf("clear error = %v", err)
			}
			out, _ = run(t, "leaderboard", "list")
			if !strings.Contains(out, "No scores yet") {
				t.Errorf("list after clear = %q", out)
			}
		})
	}
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("FINGERQUIZ_DATA_DIR", t.TempDir())
	t.Setenv("FINGERQUIZ_STORE", "redis")

	if _, err := run(t, "leaderboard", "list"); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FINGERQUIZ_DATA_DIR", dir)
	t.Setenv("FINGERQUIZ_QUESTIONS", writeBank(t, dir, 10))

	cfg, err := config.Load("", "")
	if err != nil {
		t.Fatal(err)
	}

	rt, err := Build(cfg, app.Deps{
		Detector:  detector.NewMockDetector(),
		NewCamera: func(int) capture.Camera { return capture.NewMockCamera(nil, false) },
		Logger:    zap.NewNop().Sugar(),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer rt.Close()

	ts := httptest.NewServer(rt.Server)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/session", "application/json", strings.NewReader(`{"username":"ana"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("session without camera status = %d, want 409", resp.StatusCode)
	}

	if _, err := os.Stat(cfg.DBPath()); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{name: "port only", cfg: config.Config{Addr: ":8080"}, want: "http://localhost:8080/"},
		{name: "host", cfg: config.Config{Addr: "10.0.0.2:9000"}, want: "http://10.0.0.2:9000/"},
		{name: "tls", cfg: config.Config{Addr: ":8443", TLSCert: "c", TLSKey: "k"}, want: "https://localhost:8443/"},
		{name: "public", cfg: config.Config{Addr: ":8080", PublicURL: "https://quiz.local/"}, want: "https://quiz.local/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageURL(tt.cfg); got != tt.want {
				t.Errorf("pageURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCameraOpen(t *testing.T) {
	open, ok := cameraOpen([]byte(`{"type":"camera","data":{"open":true,"facing":"user"}}`))
	if !ok || !open {
		t.Errorf("cameraOpen() = %v, %v", open, ok)
	}

	if _, ok := cameraOpen([]byte(`{"type":"quiz","data":{}}`)); ok {
		t.Error("quiz message should be ignored")
	}
	if _, ok := cameraOpen([]byte(`not json`)); ok {
		t.Error("invalid message should be ignored")
	}
}
