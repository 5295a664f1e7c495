package capture

import (
	"fmt"
	"strings"
)

// Facing selects the front or back camera.
type Facing string

const (
	FacingUser        Facing = "user"
	FacingEnvironment Facing = "environment"
)

// ParseFacing accepts "user"/"front" and "environment"/"back".
func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "front", "":
		return FacingUser, nil
	case "environment", "back", "rear":
		return FacingEnvironment, nil
	default:
		return "", fmt.Errorf("%w: facing mode %q", ErrUnsupported, s)
	}
}

// Toggle returns the other facing mode.
func (f Facing) Toggle() Facing {
	if f == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

// Mirrored reports whether frames should be flipped horizontally,
// which is how a front camera is expected to look.
func (f Facing) Mirrored() bool {
	return f != FacingEnvironment
}

// Devices maps facing modes to camera device IDs.
type Devices struct {
	User        int
	Environment int
}

// DeviceFor returns the device ID for a facing mode.
func (d Devices) DeviceFor(f Facing) int {
	if f == FacingEnvironment {
		return d.Environment
	}
	return d.User
}
