//go:build windows

package rpc

import (
	"context"
	"fmt"
	"net"

	"github.com/tailscale/go-winio"
)

// DefaultEndpoint returns the named pipe path for pipe number n.
func DefaultEndpoint(n int) string {
	return fmt.Sprintf(`\\.\pipe\%s-ipc-%d`, AppName, n)
}

// DialEndpoint connects to a named pipe.
func DialEndpoint(ctx context.Context, path string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}
