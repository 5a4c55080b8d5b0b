package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/drawrpc/drawrpc/internal/models"
)

// DaemonFileName holds the daemon's runtime status.
const DaemonFileName = "daemon.yaml"

// DaemonFile returns the path to daemon.yaml.
func (p Paths) DaemonFile() string {
	return filepath.Join(p.DataDir, DaemonFileName)
}

// LoadDaemonInfo loads the daemon runtime status.
// Returns nil if the file doesn't exist.
func (p Paths) LoadDaemonInfo() (*models.DaemonInfo, error) {
	path := p.DaemonFile()
	if !FileExists(path) {
		return nil, nil
	}

	var info models.DaemonInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveDaemonInfo replaces daemon.yaml.
func (p Paths) SaveDaemonInfo(info *models.DaemonInfo) error {
	return SaveYAML(p.DaemonFile(), info)
}

// RemoveDaemonInfo removes daemon.yaml. A missing file is not an error.
func (p Paths) RemoveDaemonInfo() error {
	if err := os.Remove(p.DaemonFile()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SetDaemonConnected records a connection change in daemon.yaml.
func (p Paths) SetDaemonConnected(info *models.DaemonInfo, connected bool) error {
	info.Connected = connected
	info.ChangedAt = time.Now().UTC()
	return p.SaveDaemonInfo(info)
}

// RunningDaemonInfo returns the runtime status of a live daemon. It returns
// nil when no daemon is running or its status file is missing, unreadable or
// left behind by another process.
func (p Paths) RunningDaemonInfo() *models.DaemonInfo {
	running, pid := p.IsRoleRunning(RoleDaemon)
	if !running {
		return nil
	}
	info, err := p.LoadDaemonInfo()
	if err != nil || info == nil || info.PID != pid {
		return nil
	}
	return info
}
