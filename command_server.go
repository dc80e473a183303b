package main

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

const maxCommandLen = 256

// RaiseRequester accepts window requests from any goroutine without blocking.
type RaiseRequester interface {
	RequestRaise(source string)
	RequestHide(source string)
}

// CommandServer reads one command line per loopback connection.
type CommandServer struct {
	presenter   RaiseRequester
	readTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
}

func NewCommandServer(presenter RaiseRequester) *CommandServer {
	return &CommandServer{
		presenter:   presenter,
		readTimeout: 2 * time.Second,
	}
}

// Serve accepts connections until ln is closed. A failed accept or read is
// logged and the loop keeps going.
func (s *CommandServer) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	slog.Info("command server listening", "addr", ln.Addr().String())

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				slog.Info("command server stopped")
				return nil
			}
			backoff = acceptBackoff(backoff)
			slog.Warn("failed to accept command connection", "error", err, "retryIn", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.handle(conn)
	}
}

func (s *CommandServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *CommandServer) handle(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
		slog.Warn("failed to set command read deadline", "error", err)
		return
	}

	line, err := bufio.NewReader(io.LimitReader(conn, maxCommandLen)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("failed to read command", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	cmd := strings.TrimSpace(line)
	switch cmd {
	case commandShowWindow:
		slog.Info("received command", "command", cmd)
		s.presenter.RequestRaise("command")
	case "":
		slog.Debug("command connection closed without a command")
	default:
		slog.Debug("ignoring unknown command", "command", cmd)
	}
}

func acceptBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return 5 * time.Millisecond
	}
	if next := prev * 2; next < time.Second {
		return next
	}
	return time.Second
}
