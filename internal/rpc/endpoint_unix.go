//go:build !windows

package rpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// pipeName is the socket file name for pipe number n.
func pipeName(n int) string {
	return fmt.Sprintf("%s-ipc-%d", AppName, n)
}

// candidatePaths lists where the chat client may have created socket n, in
// search order. Sandboxed installs nest the socket one level below the
// runtime dir.
func candidatePaths(n int) []string {
	name := pipeName(n)
	var paths []string

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir != "" {
		paths = append(paths,
			filepath.Join(runtimeDir, name),
			filepath.Join(runtimeDir, "app", "com.discordapp.Discord", name),
			filepath.Join(runtimeDir, "snap.discord", name),
		)
	}
	paths = append(paths, filepath.Join("/run/user", fmt.Sprint(os.Getuid()), name))
	if tmp := os.Getenv("TMPDIR"); tmp != "" {
		paths = append(paths, filepath.Join(tmp, name))
	}
	paths = append(paths, filepath.Join("/tmp", name))
	return paths
}

// DefaultEndpoint returns the socket path for pipe number n: the first
// candidate that exists, otherwise the runtime-dir (or /tmp) location.
func DefaultEndpoint(n int) string {
	for _, p := range candidatePaths(n) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, pipeName(n))
	}
	return filepath.Join("/tmp", pipeName(n))
}

// DialEndpoint connects to a Unix domain socket.
func DialEndpoint(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
