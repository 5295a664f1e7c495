package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/capture"
)

// Camera actions accepted by POST /api/camera.
const (
	ActionOpen   = "open"
	ActionSwitch = "switch"
	ActionClose  = "close"
)

// CameraHandler handles /api/camera.
type CameraHandler struct {
	game   Game
	logger *zap.SugaredLogger
}

// NewCameraHandler creates a CameraHandler for game.
func NewCameraHandler(game Game, logger *zap.SugaredLogger) *CameraHandler {
	return &CameraHandler{game: game, logger: logger}
}

type cameraRequest struct {
	Action string `json:"action"`
}

func (h *CameraHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.game.CameraState())
	case http.MethodPost:
		h.control(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *CameraHandler) control(w http.ResponseWriter, r *http.Request) {
	if !trusted(r) {
		h.fail(w, capture.ErrInsecureContext)
		return
	}

	var req cameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var err error
	switch req.Action {
	case ActionOpen:
		err = h.game.OpenCamera()
	case ActionSwitch:
		_, err = h.game.SwitchCamera()
	case ActionClose:
		err = h.game.CloseCamera()
	default:
		writeError(w, http.StatusBadRequest, "Unknown camera action")
		return
	}

	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.game.CameraState())
}

// fail reports a camera error with the message shown to the player.
func (h *CameraHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Warnw("camera request failed", "error", err)

	if errors.Is(err, app.ErrCameraBusy) {
		writeError(w, http.StatusConflict, "Finish the quiz before switching cameras")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, capture.ErrInsecureContext), errors.Is(err, capture.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, capture.ErrDeviceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, capture.ErrDetectorNotReady):
		status = http.StatusServiceUnavailable
	}

	n := capture.Describe(err)
	writeJSON(w, status, errorResponse{Error: n.Message, Retry: n.Retry})
}
