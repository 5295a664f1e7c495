package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/logging"
	"github.com/ayusman/fingerquiz/internal/question"
	"github.com/ayusman/fingerquiz/internal/quiz"
)

// SessionHandler handles /api/session and /api/session/lock.
type SessionHandler struct {
	game   Game
	logger *zap.SugaredLogger
}

// NewSessionHandler creates a SessionHandler for game.
func NewSessionHandler(game Game, logger *zap.SugaredLogger) *SessionHandler {
	return &SessionHandler{game: game, logger: logger}
}

type beginRequest struct {
	Username string `json:"username"`
}

type lockResponse struct {
	Locked bool `json:"locked"`
}

// ServeHTTP routes session requests.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.Trim(path, "/")

	switch {
	case path == "lock" && r.Method == http.MethodPost:
		h.lock(w, r)
	case path == "lock":
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	case path != "":
		writeError(w, http.StatusNotFound, "Not found")
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.game.State())
	case r.Method == http.MethodPost:
		h.begin(w, r)
	case r.Method == http.MethodDelete:
		h.restart(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// begin handles POST /api/session and starts a quiz.
func (h *SessionHandler) begin(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	logger := logging.FromContext(r.Context())
	st, err := h.game.BeginSession(r.Context(), req.Username)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, st)
	case errors.Is(err, quiz.ErrEmptyUsername):
		writeError(w, http.StatusBadRequest, "Please enter your name")
	case errors.Is(err, quiz.ErrSessionInProgress):
		writeError(w, http.StatusConflict, "A quiz is already running")
	case errors.Is(err, app.ErrCameraClosed):
		writeError(w, http.StatusConflict, "Start the camera first")
	case errors.Is(err, question.ErrInsufficient), errors.Is(err, question.ErrMalformed):
		logger.Errorw("question bank unusable", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Errorw("failed to start session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start quiz")
	}
}

// restart handles DELETE /api/session.
func (h *SessionHandler) restart(w http.ResponseWriter, r *http.Request) {
	if err := h.game.Restart(); err != nil {
		h.logger.Warnw("restart left camera in error", "error", err)
	}
	writeJSON(w, http.StatusOK, h.game.State())
}

// lock handles POST /api/session/lock.
func (h *SessionHandler) lock(w http.ResponseWriter, r *http.Request) {
	locked, err := h.game.Lock()
	if errors.Is(err, quiz.ErrNoSession) {
		writeError(w, http.StatusConflict, "No quiz is running")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to lock answer")
		return
	}
	writeJSON(w, http.StatusOK, lockResponse{Locked: locked})
}
