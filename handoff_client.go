package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

const commandShowWindow = "SHOW_WINDOW"

// HandoffClient wakes the instance that already owns the endpoint.
type HandoffClient struct {
	endpoint string
	timeout  time.Duration
}

func NewHandoffClient(endpoint string) *HandoffClient {
	return &HandoffClient{
		endpoint: endpoint,
		timeout:  2 * time.Second,
	}
}

// NotifyPrimary sends a single SHOW_WINDOW line and closes the connection.
func (c *HandoffClient) NotifyPrimary(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.endpoint)
	if err != nil {
		return fmt.Errorf("dial primary: %w", err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := io.WriteString(conn, commandShowWindow+"\n"); err != nil {
		return fmt.Errorf("send %s: %w", commandShowWindow, err)
	}
	return nil
}
