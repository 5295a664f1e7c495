package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/leaderboard"
)

// LeaderboardHandler handles /api/leaderboard.
type LeaderboardHandler struct {
	board  Board
	total  int
	logger *zap.SugaredLogger
}

// NewLeaderboardHandler creates a LeaderboardHandler. Scores are displayed out of total.
func NewLeaderboardHandler(board Board, total int, logger *zap.SugaredLogger) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, total: total, logger: logger}
}

type leaderboardResponse struct {
	Title   string            `json:"title"`
	Entries []leaderboard.Row `json:"entries"`
	Empty   string            `json:"empty,omitempty"`
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// list handles GET /api/leaderboard.
func (h *LeaderboardHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.board.List(r.Context())
	if err != nil && !errors.Is(err, leaderboard.ErrCorrupt) {
		h.logger.Errorw("failed to read leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	if err != nil {
		h.logger.Warnw("leaderboard unreadable, showing it empty", "error", err)
	}

	resp := leaderboardResponse{
		Title:   leaderboard.Title(),
		Entries: leaderboard.Rank(entries, h.total),
	}
	if len(resp.Entries) == 0 {
		resp.Empty = leaderboard.EmptyMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

// clear handles DELETE /api/leaderboard.
func (h *LeaderboardHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Clear(r.Context()); err != nil {
		h.logger.Errorw("failed to clear leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear leaderboard")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
