package main

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
)

const defaultPort = 9876

type InstanceRole int

const (
	RolePrimary InstanceRole = iota + 1
	RoleSecondary
)

func (r InstanceRole) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

func loopbackEndpoint(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

// SingletonGuard claims the loopback endpoint that marks the running instance.
// The bound listener doubles as the command channel for CommandServer.
type SingletonGuard struct {
	endpoint string

	mu       sync.Mutex
	role     InstanceRole
	listener net.Listener
}

func NewSingletonGuard(endpoint string) *SingletonGuard {
	return &SingletonGuard{endpoint: endpoint}
}

// Acquire binds the endpoint. It is attempted once; later calls return the
// role decided by the first call. An endpoint already in use means another
// instance owns it and is reported as RoleSecondary with a nil error.
func (g *SingletonGuard) Acquire() (InstanceRole, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.role != 0 {
		return g.role, nil
	}

	listener, err := net.Listen("tcp", g.endpoint)
	if err != nil {
		if isAddrInUse(err) {
			slog.Info("endpoint already owned by another instance", "endpoint", g.endpoint)
			g.role = RoleSecondary
			return g.role, nil
		}
		return 0, fmt.Errorf("bind %s: %w", g.endpoint, err)
	}

	g.listener = listener
	g.role = RolePrimary
	slog.Info("acquired instance endpoint", "endpoint", listener.Addr().String())
	return g.role, nil
}

// Listener returns the bound listener, or nil unless the guard is primary.
func (g *SingletonGuard) Listener() net.Listener {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listener
}

// Addr is the address actually bound, which differs from the endpoint when it uses port 0.
func (g *SingletonGuard) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return g.endpoint
	}
	return g.listener.Addr().String()
}

func (g *SingletonGuard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return nil
	}
	err := g.listener.Close()
	g.listener = nil
	return err
}
