//go:build windows

package main

import (
	"errors"

	"golang.org/x/sys/windows"
)

// Winsock reports a taken port as WSAEADDRINUSE, or WSAEACCES when the
// owner bound it with SO_EXCLUSIVEADDRUSE.
func isAddrInUse(err error) bool {
	return errors.Is(err, windows.WSAEADDRINUSE) || errors.Is(err, windows.WSAEACCES)
}
