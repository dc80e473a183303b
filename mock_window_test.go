package main

import (
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/adrg/xdg"
)

// fakeWindow implements Window and records the order of calls.
type fakeWindow struct {
	mu        sync.Mutex
	width     int
	x, y      int
	visible   bool
	minimised bool
	onTop     bool
	fronts    int
	calls     []string
}

func (w *fakeWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *fakeWindow) SetPosition(x, y int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.x, w.y = x, y
	w.calls = append(w.calls, "position")
}

func (w *fakeWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *fakeWindow) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = true
	w.calls = append(w.calls, "show")
}

func (w *fakeWindow) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = false
	w.calls = append(w.calls, "hide")
}

func (w *fakeWindow) IsMinimised() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimised
}

func (w *fakeWindow) Restore() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimised = false
	w.calls = append(w.calls, "restore")
}

func (w *fakeWindow) BringToFront() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTop = true
	w.fronts++
	w.calls = append(w.calls, "front")
}

func (w *fakeWindow) Position() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

func (w *fakeWindow) FrontCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fronts
}

func (w *fakeWindow) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

// SetState simulates the user hiding or minimising the window.
func (w *fakeWindow) SetState(visible, minimised bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = visible
	w.minimised = minimised
}

type fakeScreens struct {
	area Rect
	err  error
}

func (s fakeScreens) WorkArea() (Rect, error) { return s.area, s.err }

func inlineDispatch(fn func()) { fn() }

// recordingRequester implements RaiseRequester by counting requests.
type recordingRequester struct {
	mu     sync.Mutex
	raises []string
	hides  []string
}

func (r *recordingRequester) RequestRaise(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raises = append(r.raises, source)
}

func (r *recordingRequester) RequestHide(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides = append(r.hides, source)
}

func (r *recordingRequester) Raises() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.raises)
}

func (r *recordingRequester) Hides() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hides)
}

// isolateUserDirs points config, data and state directories at a temp dir
// and restores the default logger afterwards.
func isolateUserDirs(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	xdg.Reload()

	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })
	return base
}

// sampleWorkArea is a 1920x1080 display with a 40px taskbar at the bottom.
func sampleWorkArea() Rect {
	return Rect{X: 0, Y: 0, Width: 1920, Height: 1040}
}
