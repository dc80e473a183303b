package main

import (
	"errors"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"
)

type wailsWindow struct {
	w *application.WebviewWindow
}

func (w wailsWindow) Width() int           { return w.w.Width() }
func (w wailsWindow) SetPosition(x, y int) { w.w.SetPosition(x, y) }
func (w wailsWindow) IsVisible() bool      { return w.w.IsVisible() }
func (w wailsWindow) Show()                { w.w.Show() }
func (w wailsWindow) Hide()                { w.w.Hide() }
func (w wailsWindow) IsMinimised() bool    { return w.w.IsMinimised() }
func (w wailsWindow) Restore()             { w.w.Restore() }

// BringToFront clears and sets always-on-top before focusing. Some window
// managers only restack on an actual change of the attribute.
func (w wailsWindow) BringToFront() {
	w.w.SetAlwaysOnTop(false)
	w.w.SetAlwaysOnTop(true)
	w.w.Focus()
}

// wailsScreens resolves the work area of the configured display, falling
// back to the primary display.
type wailsScreens struct {
	app     *application.App
	display string
}

func (s wailsScreens) WorkArea() (Rect, error) {
	screen := s.pick()
	if screen == nil {
		return Rect{}, errors.New("no display available")
	}
	wa := screen.WorkArea
	return Rect{X: wa.X, Y: wa.Y, Width: wa.Width, Height: wa.Height}, nil
}

func (s wailsScreens) pick() *application.Screen {
	if s.display != "" {
		for _, screen := range s.app.Screen.GetAll() {
			if screen.Name == s.display || screen.ID == s.display {
				return screen
			}
		}
		slog.Warn("configured display not found, using primary", "display", s.display)
	}
	return s.app.Screen.GetPrimary()
}

func uiDispatcher() Dispatcher {
	return application.InvokeAsync
}
