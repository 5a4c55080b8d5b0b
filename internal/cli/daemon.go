package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/drawrpc/drawrpc/internal/config"
)

// daemonBinary is the daemon executable name without extension.
const daemonBinary = "drawrpcd"

// Poll budget for start/stop: 50 × 100ms.
const (
	pollAttempts = 50
	pollInterval = 100 * time.Millisecond
)

// startDaemon resets a leftover quit command and launches the daemon in the
// background, waiting until its PID file names a live process.
func startDaemon(paths config.Paths) (int, error) {
	if running, pid := paths.IsRoleRunning(config.RoleDaemon); running {
		return pid, nil
	}

	if err := paths.Ensure(); err != nil {
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}
	// A quit left in the file would stop the new daemon on its first read.
	if err := paths.CommandStore().SetUpdate(); err != nil {
		return 0, fmt.Errorf("failed to reset command: %w", err)
	}

	daemonPath, err := findDaemonBinary()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(daemonPath, "-config-dir", paths.ConfigDir, "-data-dir", paths.DataDir)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	// Reap the child if it exits while we are still around.
	go func() { _ = cmd.Wait() }()

	for i := 0; i < pollAttempts; i++ {
		time.Sleep(pollInterval)
		if running, pid := paths.IsRoleRunning(config.RoleDaemon); running {
			return pid, nil
		}
	}
	return 0, fmt.Errorf("daemon failed to start within timeout; see %s", paths.LogFile())
}

// stopDaemon asks the daemon to quit through the command file, falling back
// to terminating it from its PID file.
func stopDaemon(paths config.Paths) error {
	running, _ := paths.IsRoleRunning(config.RoleDaemon)
	if !running {
		return nil
	}

	if err := paths.CommandStore().SendQuit(); err != nil {
		return fmt.Errorf("failed to send quit command: %w", err)
	}
	if waitForDaemonExit(paths) {
		return nil
	}

	if err := paths.TerminateRole(config.RoleDaemon); err != nil {
		return err
	}
	if waitForDaemonExit(paths) {
		return nil
	}
	return fmt.Errorf("daemon did not stop within timeout")
}

func waitForDaemonExit(paths config.Paths) bool {
	for i := 0; i < pollAttempts; i++ {
		time.Sleep(pollInterval)
		pid, err := config.ReadPIDFile(paths.PIDFile(config.RoleDaemon))
		if err != nil || !config.IsProcessRunning(pid) {
			return true
		}
	}
	return false
}

// findDaemonBinary locates drawrpcd.
func findDaemonBinary() (string, error) {
	name := daemonBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	// Same directory as this executable first, so paired builds stay paired.
	if execPath, err := os.Executable(); err == nil {
		daemonPath := filepath.Join(filepath.Dir(execPath), name)
		if _, err := os.Stat(daemonPath); err == nil {
			return daemonPath, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	buildPath := filepath.Join(".", "build", name)
	if _, err := os.Stat(buildPath); err == nil {
		return buildPath, nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", daemonBinary)
}
