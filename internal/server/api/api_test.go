package api

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/leaderboard"
	"github.com/ayusman/fingerquiz/internal/quiz"
	"github.com/ayusman/fingerquiz/internal/store"
)

// fakeGame records calls and returns canned errors.
type fakeGame struct {
	camera   app.CameraState
	state    quiz.State
	openErr  error
	beginErr error
	lockErr  error
	locked   bool
	switches int
	restarts int
	username string
}

func (g *fakeGame) OpenCamera() error {
	if g.openErr != nil {
		return g.openErr
	}
	g.camera.Open = true
	return nil
}

func (g *fakeGame) CloseCamera() error {
	g.camera.Open = false
	return nil
}

func (g *fakeGame) SwitchCamera() (capture.Facing, error) {
	g.switches++
	g.camera.Facing = g.camera.Facing.Toggle()
	return g.camera.Facing, nil
}

func (g *fakeGame) CameraState() app.CameraState { return g.camera }

func (g *fakeGame) BeginSession(ctx context.Context, username string) (quiz.State, error) {
	if g.beginErr != nil {
		return quiz.State{}, g.beginErr
	}
	g.username = username
	g.state = quiz.State{Active: true, Username: username, Total: quiz.DefaultSessionSize}
	return g.state, nil
}

func (g *fakeGame) Lock() (bool, error) { return g.locked, g.lockErr }

func (g *fakeGame) Restart() error {
	g.restarts++
	g.state = quiz.State{}
	g.camera.Open = false
	return nil
}

func (g *fakeGame) State() quiz.State { return g.state }

func newTestBoard(t *testing.T) *leaderboard.Board {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return leaderboard.New(s.Settings(), nil)
}

func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
