package api

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/capture"
)

func cameraRequestFrom(remote, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/camera", bytes.NewBufferString(body))
	req.RemoteAddr = remote
	return req
}

func TestCameraHandler_Actions(t *testing.T) {
	game := &fakeGame{camera: app.CameraState{Facing: capture.FacingUser}}
	handler := NewCameraHandler(game, nopLogger())

	steps := []struct {
		action   string
		wantOpen bool
		facing   capture.Facing
	}{
		{action: ActionOpen, wantOpen: true, facing: capture.FacingUser},
		{action: ActionSwitch, wantOpen: true, facing: capture.FacingEnvironment},
		{action: ActionClose, wantOpen: false, facing: capture.FacingEnvironment},
	}

	for _, s := range steps {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, cameraRequestFrom("127.0.0.1:5000", `{"action": "`+s.action+`"}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body %s", s.action, rec.Code, rec.Body.String())
		}
		var st app.CameraState
		json.NewDecoder(rec.Body).Decode(&st)
		if st.Open != s.wantOpen || st.Facing != s.facing {
			t.Errorf("%s: state = %+v", s.action, st)
		}
	}
}

func TestCameraHandler_RefusesUntrustedOrigin(t *testing.T) {
	game := &fakeGame{}
	handler := NewCameraHandler(game, nopLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, cameraRequestFrom("192.168.1.20:5000", `{"action": "open"}`))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var resp errorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "Camera access failed. Please use HTTPS or localhost." || !resp.Retry {
		t.Errorf("response = %+v", resp)
	}
	if game.camera.Open {
		t.Error("camera must not open for an untrusted request")
	}

	req := cameraRequestFrom("192.168.1.20:5000", `{"action": "open"}`)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("TLS request status = %d, want 200", rec.Code)
	}
}

func TestCameraHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		openErr    error
		wantStatus int
		wantError  string
	}{
		{name: "permission", body: `{"action": "open"}`, openErr: capture.ErrPermissionDenied, wantStatus: http.StatusForbidden, wantError: "Camera access failed. Please allow camera permissions."},
		{name: "missing device", body: `{"action": "open"}`, openErr: capture.ErrDeviceNotFound, wantStatus: http.StatusNotFound, wantError: "Camera access failed. No camera found on your device."},
		{name: "detector", body: `{"action": "open"}`, openErr: capture.ErrDetectorNotReady, wantStatus: http.StatusServiceUnavailable, wantError: "Camera access failed. Please refresh the page and try again."},
		{name: "busy", body: `{"action": "open"}`, openErr: app.ErrCameraBusy, wantStatus: http.StatusConflict, wantError: "Finish the quiz before switching cameras"},
		{name: "unknown action", body: `{"action": "zoom"}`, wantStatus: http.StatusBadRequest, wantError: "Unknown camera action"},
		{name: "bad json", body: `nope`, wantStatus: http.StatusBadRequest, wantError: "Invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCameraHandler(&fakeGame{openErr: tt.openErr}, nopLogger())

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, cameraRequestFrom("[::1]:5000", tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp errorResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestCameraHandler_Get(t *testing.T) {
	game := &fakeGame{camera: app.CameraState{Open: true, Facing: capture.FacingEnvironment, Device: 2}}
	handler := NewCameraHandler(game, nopLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/camera", nil))

	var st app.CameraState
	json.NewDecoder(rec.Body).Decode(&st)
	if rec.Code != http.StatusOK || st != game.camera {
		t.Errorf("GET = %d %+v", rec.Code, st)
	}
}
