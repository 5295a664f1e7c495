// Package tray provides a system tray menu for the quiz.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/fingerquiz/internal/quiz"
)

// Tray represents the system tray menu.
type Tray struct {
	onToggle func(on bool) error
	onOpen   func()
	onQuit   func()
	cameraOn bool
	last     string
	mu       sync.RWMutex

	menuCamera *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a Tray with the camera off.
func New() *Tray {
	return &Tray{last: lastTitle(nil)}
}

// OnToggle sets the callback that turns the camera on or off.
// When it fails the menu keeps the previous state.
func (t *Tray) OnToggle(fn func(on bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback for the open page menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback called before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("FingerQuiz")
	systray.SetTooltip("FingerQuiz")

	t.mu.Lock()
	t.menuCamera = systray.AddMenuItem(cameraTitle(t.cameraOn), "Turn the camera on or off")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(t.last, "Last finished session")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Quiz...", "Open the quiz in the browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit FingerQuiz")

	go func() {
		for {
			select {
			case <-t.menuCamera.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.RLock()
	want := !t.cameraOn
	callback := t.onToggle
	t.mu.RUnlock()

	if callback != nil {
		if err := callback(want); err != nil {
			return
		}
	}
	t.SetCamera(want)
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetCamera updates the camera item, for changes made outside the tray.
func (t *Tray) SetCamera(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cameraOn = on
	if t.menuCamera != nil {
		t.menuCamera.SetTitle(cameraTitle(on))
	}
}

// SetLastSession shows the result of a finished session.
func (t *Tray) SetLastSession(s quiz.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = lastTitle(&s)
	if t.menuLast != nil {
		t.menuLast.SetTitle(t.last)
	}
}

// CameraOn returns the camera state shown in the menu.
func (t *Tray) CameraOn() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cameraOn
}

// LastSession returns the text of the last session item.
func (t *Tray) LastSession() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func cameraTitle(on bool) string {
	if on {
		return "● Camera on"
	}
	return "○ Camera off"
}

func lastTitle(s *quiz.Summary) string {
	if s == nil {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %s %d/%d", s.Username, s.Score, s.Total)
}
