package api

import (
	"context"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/leaderboard"
	"github.com/ayusman/fingerquiz/internal/quiz"
)

// Game is the running quiz as seen by the handlers.
type Game interface {
	OpenCamera() error
	CloseCamera() error
	SwitchCamera() (capture.Facing, error)
	CameraState() app.CameraState
	BeginSession(ctx context.Context, username string) (quiz.State, error)
	Lock() (bool, error)
	Restart() error
	State() quiz.State
}

// Board is the leaderboard store.
type Board interface {
	List(ctx context.Context) ([]leaderboard.Entry, error)
	Clear(ctx context.Context) error
}
