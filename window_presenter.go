package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"
)

const (
	defaultShowDelay = 280 * time.Millisecond
	defaultMargin    = 16
)

// Rect is an area in desktop coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Window is the main window. Every method is called on the UI thread.
type Window interface {
	Width() int
	SetPosition(x, y int)
	IsVisible() bool
	Show()
	Hide()
	IsMinimised() bool
	Restore()
	// BringToFront puts the window on top of the stacking order and focuses it.
	BringToFront()
}

// WorkAreaSource reports the usable area of the display the window belongs on.
type WorkAreaSource interface {
	WorkArea() (Rect, error)
}

// Dispatcher schedules fn on the UI thread and returns immediately.
type Dispatcher func(fn func())

type RaiseEvent struct {
	Action string    `json:"action"`
	Source string    `json:"source"`
	X      int       `json:"x"`
	Y      int       `json:"y"`
	At     time.Time `json:"at"`
}

type PresenterOptions struct {
	Delay  time.Duration
	Margin int
}

// WindowPresenter coalesces raise and hide requests from any goroutine into
// a single delayed action that runs on the UI thread. A new request resets
// the pending deadline and replaces the pending action.
type WindowPresenter struct {
	window    Window
	screens   WorkAreaSource
	dispatch  Dispatcher
	margin    int
	debounced func(f func())

	mu        sync.Mutex
	observers []func(RaiseEvent)
}

func NewWindowPresenter(window Window, screens WorkAreaSource, dispatch Dispatcher, opts PresenterOptions) *WindowPresenter {
	if opts.Delay <= 0 {
		opts.Delay = defaultShowDelay
	}
	if opts.Margin < 0 {
		opts.Margin = defaultMargin
	}
	return &WindowPresenter{
		window:    window,
		screens:   screens,
		dispatch:  dispatch,
		margin:    opts.Margin,
		debounced: debounce.New(opts.Delay),
	}
}

// OnRaised registers fn to run on the UI thread after each executed action.
func (p *WindowPresenter) OnRaised(fn func(RaiseEvent)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

func (p *WindowPresenter) RequestRaise(source string) {
	p.debounced(func() {
		p.dispatch(func() { p.raise(source) })
	})
}

func (p *WindowPresenter) RequestHide(source string) {
	p.debounced(func() {
		p.dispatch(func() { p.hide(source) })
	})
}

func (p *WindowPresenter) raise(source string) {
	ev := RaiseEvent{Action: "raise", Source: source, At: time.Now()}

	wa, err := p.screens.WorkArea()
	if err != nil {
		slog.Warn("failed to resolve work area, raising in place", "error", err)
	} else {
		ev.X, ev.Y = topRight(wa, p.window.Width(), p.margin)
		p.window.SetPosition(ev.X, ev.Y)
	}

	if !p.window.IsVisible() {
		p.window.Show()
	}
	if p.window.IsMinimised() {
		p.window.Restore()
	}
	p.window.BringToFront()

	slog.Info("window raised", "source", source, "x", ev.X, "y", ev.Y)
	p.notify(ev)
}

func (p *WindowPresenter) hide(source string) {
	if !p.window.IsVisible() {
		return
	}
	p.window.Hide()
	slog.Info("window hidden", "source", source)
	p.notify(RaiseEvent{Action: "hide", Source: source, At: time.Now()})
}

func (p *WindowPresenter) notify(ev RaiseEvent) {
	p.mu.Lock()
	observers := append([]func(RaiseEvent){}, p.observers...)
	p.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}

// topRight places a window of the given width in the top-right corner of
// wa, inset by margin. A window wider than the work area is pinned to its
// left edge.
func topRight(wa Rect, width, margin int) (int, int) {
	x := wa.X + wa.Width - width - margin
	if x < wa.X {
		x = wa.X
	}
	return x, wa.Y + margin
}
