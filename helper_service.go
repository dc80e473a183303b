package main

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"
)

type HelperStatus struct {
	Instance   string      `json:"instance"`
	Endpoint   string      `json:"endpoint"`
	Version    string      `json:"version"`
	RaiseCount int         `json:"raiseCount"`
	LastRaise  *RaiseEvent `json:"lastRaise,omitempty"`
	Journaled  int         `json:"journaled"`
	Uptime     float64     `json:"uptime"`
}

// HelperService is bound to the frontend. It records executed window actions
// and exposes them alongside manual show/hide controls.
type HelperService struct {
	journal   *RaiseJournal
	presenter RaiseRequester
	app       *application.App
	instance  string
	endpoint  string
	started   time.Time

	mu         sync.Mutex
	raiseCount int
	lastRaise  *RaiseEvent
	records    sync.WaitGroup
}

func NewHelperService(journal *RaiseJournal, instance, endpoint string) *HelperService {
	return &HelperService{
		journal:  journal,
		instance: instance,
		endpoint: endpoint,
		started:  time.Now(),
	}
}

func (h *HelperService) setApp(app *application.App) {
	h.app = app
}

func (h *HelperService) setPresenter(p RaiseRequester) {
	h.presenter = p
}

func (h *HelperService) GetStatus() HelperStatus {
	var journaled int
	if h.journal != nil {
		n, err := h.journal.Count()
		if err != nil {
			slog.Warn("failed to count journal entries", "error", err)
		}
		journaled = n
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return HelperStatus{
		Instance:   h.instance,
		Endpoint:   h.endpoint,
		Version:    Version,
		RaiseCount: h.raiseCount,
		LastRaise:  h.lastRaise,
		Journaled:  journaled,
		Uptime:     time.Since(h.started).Seconds(),
	}
}

func (h *HelperService) GetRecentRaises(limit int) ([]JournalEntry, error) {
	if h.journal == nil {
		return nil, fmt.Errorf("journal unavailable")
	}
	if limit <= 0 {
		limit = 20
	}
	return h.journal.Recent(limit)
}

func (h *HelperService) ShowWindow() {
	if h.presenter != nil {
		h.presenter.RequestRaise("frontend")
	}
}

func (h *HelperService) HideWindow() {
	if h.presenter != nil {
		h.presenter.RequestHide("frontend")
	}
}

// onRaised runs on the UI thread, so storage and event delivery happen elsewhere.
func (h *HelperService) onRaised(ev RaiseEvent) {
	h.mu.Lock()
	if ev.Action == "raise" {
		h.raiseCount++
		last := ev
		h.lastRaise = &last
	}
	h.mu.Unlock()

	h.records.Add(1)
	go func() {
		defer h.records.Done()
		h.record(ev)
	}()
}

func (h *HelperService) record(ev RaiseEvent) {
	if h.journal != nil {
		if err := h.journal.Record(ev); err != nil {
			slog.Error("failed to record window action", "error", err)
		}
	}
	if h.app != nil {
		h.app.Event.Emit("window-raised", ev)
	}
}

// flush waits for pending journal writes.
func (h *HelperService) flush() {
	h.records.Wait()
}
