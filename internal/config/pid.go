package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/drawrpc/drawrpc/internal/models"
)

// Role identifies which of the cooperating processes owns a PID file.
type Role string

// Process roles.
const (
	RoleDaemon Role = "daemon"
	RoleGUI    Role = "gui"
	RoleTray   Role = "tray"
)

// ProcessName returns the substring expected in the command line of a
// process playing this role. It's how a PID reused by an unrelated program
// is told apart from ours. Windows only exposes the image path, so the tray
// can't be told apart from other drawrpc invocations there.
func (r Role) ProcessName() string {
	switch r {
	case RoleDaemon:
		return "drawrpcd"
	case RoleGUI:
		return "drawrpc-gui"
	default:
		if runtime.GOOS == "windows" {
			return "drawrpc"
		}
		return "drawrpc tray"
	}
}

// WritePIDFile writes pid as a plain decimal integer, truncating any
// previous content.
func WritePIDFile(path string, pid int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file %s: %w", path, err)
	}
	return nil
}

// ReadPIDFile reads the process ID from the specified file.
func ReadPIDFile(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		// Returned unwrapped so callers can use os.IsNotExist.
		return 0, err
	}

	pidStr := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s: %q", path, pidStr)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file. A missing file is not an error.
func RemovePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsProcessRunning reports whether a process with the given PID exists.
// It has no side effects.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	return isProcessRunning(pid)
}

// IsProcessRunningAs reports whether pid is alive and its command line
// contains nameHint (case-insensitive).
func IsProcessRunningAs(pid int, nameHint string) bool {
	if !IsProcessRunning(pid) {
		return false
	}
	cmdline, err := processCommandLine(pid)
	if err != nil {
		// Process exited meanwhile or we can't inspect it.
		return false
	}
	return matchesProcessName(cmdline, nameHint)
}

func matchesProcessName(cmdline, nameHint string) bool {
	return strings.Contains(strings.ToLower(cmdline), strings.ToLower(nameHint))
}

// CheckPIDFile reads the PID file at path and reports whether it points at a
// live process whose command line contains nameHint. A stale file (dead
// process, identity mismatch or garbage content) is removed.
func CheckPIDFile(path, nameHint string) (bool, int) {
	pid, err := ReadPIDFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			_ = RemovePIDFile(path)
		}
		return false, 0
	}

	if !IsProcessRunningAs(pid, nameHint) {
		_ = RemovePIDFile(path)
		return false, pid
	}
	return true, pid
}

// TerminateFromPIDFile asks the process named in the PID file to terminate
// and removes the file regardless of the outcome.
func TerminateFromPIDFile(path string) error {
	defer func() { _ = RemovePIDFile(path) }()

	pid, err := ReadPIDFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !IsProcessRunning(pid) {
		return nil
	}
	if err := terminateProcess(pid); err != nil {
		return fmt.Errorf("failed to terminate PID %d: %w", pid, err)
	}
	return nil
}

// WriteRolePID records the current process as the owner of role.
func (p Paths) WriteRolePID(role Role) error {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return err
	}
	return WritePIDFile(p.PIDFile(role), os.Getpid())
}

// RemoveRolePID removes the PID file for role.
func (p Paths) RemoveRolePID(role Role) error {
	return RemovePIDFile(p.PIDFile(role))
}

// IsRoleRunning checks the PID file for role, cleaning it up when stale.
func (p Paths) IsRoleRunning(role Role) (bool, int) {
	return CheckPIDFile(p.PIDFile(role), role.ProcessName())
}

// ProcessInfo reports the liveness of role for status displays.
func (p Paths) ProcessInfo(role Role) models.ProcessInfo {
	running, pid := p.IsRoleRunning(role)
	if !running {
		pid = 0
	}
	return models.ProcessInfo{Role: string(role), PID: pid, Running: running}
}

// TerminateRole terminates the process recorded for role.
func (p Paths) TerminateRole(role Role) error {
	return TerminateFromPIDFile(p.PIDFile(role))
}
