package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/wailsapp/wails/v3/pkg/application"
)

// hostDrainTimeout bounds how long shutdown waits for the host listener to
// finish the frame it is handling.
const hostDrainTimeout = 250 * time.Millisecond

// TriggerService runs the command and host listeners of the primary
// instance for the lifetime of the application.
type TriggerService struct {
	listener net.Listener
	input    io.Reader
	opts     StreamListenerOptions

	presenter RaiseRequester
	server    *CommandServer
	stream    *StreamListener
	done      chan struct{}
}

// NewTriggerService serves commands on listener and host frames from input.
// A nil input disables the host listener.
func NewTriggerService(listener net.Listener, input io.Reader, opts StreamListenerOptions) *TriggerService {
	return &TriggerService{
		listener: listener,
		input:    input,
		opts:     opts,
		done:     make(chan struct{}),
	}
}

func (t *TriggerService) setPresenter(p RaiseRequester) {
	t.presenter = p
	t.server = NewCommandServer(p)
	t.stream = NewStreamListener(p, t.opts)
}

func (t *TriggerService) ServiceStartup(ctx context.Context, _ application.ServiceOptions) error {
	t.start()
	return nil
}

func (t *TriggerService) ServiceShutdown() error {
	if t.server == nil {
		return nil
	}
	err := t.server.Close()

	select {
	case <-t.done:
	case <-time.After(hostDrainTimeout):
		slog.Debug("host listener still attached at shutdown")
	}
	return err
}

func (t *TriggerService) start() {
	if t.presenter == nil {
		slog.Error("trigger service started without a presenter")
		close(t.done)
		return
	}

	go func() {
		if err := t.server.Serve(t.listener); err != nil {
			slog.Error("command server stopped", "error", err)
		}
	}()

	if t.input != nil {
		go func() {
			defer close(t.done)
			if err := t.stream.SendReady(); err != nil {
				slog.Warn("failed to send ready signal", "error", err)
			}
			if err := t.stream.Listen(t.input); err != nil {
				slog.Error("host listener stopped, native messages will be ignored", "error", err)
			}
		}()
	} else {
		close(t.done)
	}
}

// hostInput returns stdin when it is a pipe from a native-messaging host.
// Terminals and redirected files are ignored.
func hostInput() io.Reader {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return nil
	}
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeNamedPipe == 0 {
		return nil
	}
	return os.Stdin
}
