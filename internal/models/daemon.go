package models

import "time"

// ProcessInfo describes the liveness of one role's process as recorded in its
// PID file.
type ProcessInfo struct {
	Role    string
	PID     int
	Running bool
}

// DaemonInfo is the daemon's runtime status, rewritten whenever the Discord
// connection changes. This corresponds to <data>/daemon.yaml.
type DaemonInfo struct {
	Version    int       `yaml:"version"`
	PID        int       `yaml:"pid"`
	StartedAt  time.Time `yaml:"started_at"`
	Connected  bool      `yaml:"connected"`
	ChangedAt  time.Time `yaml:"changed_at"`
	AppVersion string    `yaml:"app_version"`
	StateFile  string    `yaml:"state_file"`
}

// NewDaemonInfo creates daemon info for the current process.
func NewDaemonInfo(pid int, appVersion, stateFile string) *DaemonInfo {
	now := time.Now().UTC()
	return &DaemonInfo{
		Version:    1,
		PID:        pid,
		StartedAt:  now,
		ChangedAt:  now,
		AppVersion: appVersion,
		StateFile:  stateFile,
	}
}
