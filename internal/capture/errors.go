package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrReadFailed is returned when the device yields no frame.
	ErrReadFailed = errors.New("failed to read frame from camera")
	// ErrPermissionDenied is returned when the OS refuses camera access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrDeviceNotFound is returned when no camera matches the request.
	ErrDeviceNotFound = errors.New("camera not found")
	// ErrInsecureContext is returned when camera control is requested from an untrusted origin.
	ErrInsecureContext = errors.New("camera requires HTTPS or localhost")
	// ErrDetectorNotReady is returned when the hand detector failed to load.
	ErrDetectorNotReady = errors.New("hand detector not loaded")
	// ErrUnsupported is returned for camera features the device lacks.
	ErrUnsupported = errors.New("camera feature not supported")
)

// Notice is a user-facing description of a capture failure.
type Notice struct {
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// Describe turns a capture error into a message for the user.
func Describe(err error) Notice {
	const prefix = "Camera access failed. "

	switch {
	case errors.Is(err, ErrPermissionDenied):
		return Notice{Message: prefix + "Please allow camera permissions.", Retry: true}
	case errors.Is(err, ErrDeviceNotFound):
		return Notice{Message: prefix + "No camera found on your device.", Retry: true}
	case errors.Is(err, ErrInsecureContext):
		return Notice{Message: prefix + "Please use HTTPS or localhost.", Retry: true}
	case errors.Is(err, ErrDetectorNotReady):
		return Notice{Message: prefix + "Please refresh the page and try again.", Retry: true}
	case err == nil:
		return Notice{}
	default:
		return Notice{Message: prefix + err.Error(), Retry: true}
	}
}

// classify maps an OpenCV open failure onto the capture error categories.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, fs.ErrPermission), strings.Contains(msg, "permission"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist), strings.Contains(msg, "not found"), strings.Contains(msg, "no such"):
		return fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
	default:
		return err
	}
}

// probeDevice checks the V4L2 node on Linux so permission problems are
// reported as such instead of a generic open failure.
func probeDevice(id int) error {
	if runtime.GOOS != "linux" {
		return nil
	}

	path := fmt.Sprintf("/dev/video%d", id)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
		}
		return nil
	}
	return f.Close()
}
