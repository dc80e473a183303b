package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	msgFileDialogOpening = "FILE_DIALOG_OPENING"
	msgFileDialogClosed  = "FILE_DIALOG_CLOSED"
	msgAck               = "ACK"
	msgAppReady          = "APP_READY"
)

// HostMessage is one decoded frame from the native-messaging host. Type and
// URL are empty when the payload has no string field of that name.
type HostMessage struct {
	Type string
	URL  string
}

func decodeHostMessage(payload []byte) (HostMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return HostMessage{}, fmt.Errorf("decode host message: %w", err)
	}
	var msg HostMessage
	msg.Type, _ = fields["type"].(string)
	msg.URL, _ = fields["url"].(string)
	return msg, nil
}

type StreamListenerOptions struct {
	// Replies receives ACK and APP_READY frames. Nil disables replies.
	Replies            *FrameWriter
	HideOnDialogClosed bool
}

// StreamListener turns framed host messages into window requests.
type StreamListener struct {
	presenter   RaiseRequester
	replies     *FrameWriter
	hideOnClose bool
	now         func() time.Time
}

func NewStreamListener(presenter RaiseRequester, opts StreamListenerOptions) *StreamListener {
	return &StreamListener{
		presenter:   presenter,
		replies:     opts.Replies,
		hideOnClose: opts.HideOnDialogClosed,
		now:         time.Now,
	}
}

// Listen consumes frames until r is exhausted. The end of input at a frame
// boundary returns nil; a frame cut short returns an error wrapping
// ErrTruncatedFrame. Malformed payloads are discarded.
func (l *StreamListener) Listen(r io.Reader) error {
	for {
		payload, err := ReadFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("host stream closed")
				return nil
			}
			return fmt.Errorf("read host frame: %w", err)
		}
		if payload == nil {
			slog.Debug("skipping empty host frame")
			continue
		}
		l.handle(payload)
	}
}

// SendReady tells the host that the listener is running.
func (l *StreamListener) SendReady() error {
	if l.replies == nil {
		return nil
	}
	return l.replies.WriteJSON(map[string]any{
		"type": msgAppReady,
		"ts":   l.now().UnixMilli(),
	})
}

func (l *StreamListener) handle(payload []byte) {
	msg, err := decodeHostMessage(payload)
	if err != nil {
		slog.Warn("discarding malformed host message", "error", err, "bytes", len(payload))
		return
	}

	slog.Debug("host message", "type", msg.Type)
	l.ack(msg.Type)

	switch msg.Type {
	case msgFileDialogOpening:
		slog.Info("file dialog opening", "url", msg.URL)
		l.presenter.RequestRaise("host")
	case msgFileDialogClosed:
		if l.hideOnClose {
			l.presenter.RequestHide("host")
		}
	default:
		slog.Debug("ignoring host message type", "type", msg.Type)
	}
}

func (l *StreamListener) ack(got string) {
	if l.replies == nil {
		return
	}
	err := l.replies.WriteJSON(map[string]any{
		"type": msgAck,
		"got":  got,
		"ts":   l.now().UnixMilli(),
	})
	if err != nil {
		slog.Warn("failed to send ack", "error", err)
	}
}
