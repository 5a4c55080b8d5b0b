// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the per-user directory name used under the platform config
// and data locations.
const AppDirName = "drawrpc"

// Environment overrides for the directories.
const (
	EnvConfigDir = "DRAWRPC_CONFIG_DIR"
	EnvDataDir   = "DRAWRPC_DATA_DIR"
)

// File names
const (
	SettingsFileName = "config.yaml"
	StateFileName    = "state.json"
	LogFileName      = "daemon.log"
)

// Paths locates every file shared between the daemon and its collaborators.
// It is built once at startup and handed to each component.
type Paths struct {
	ConfigDir string
	DataDir   string
}

// DefaultPaths resolves the platform directories, honoring the environment
// overrides.
func DefaultPaths() (Paths, error) {
	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, err
		}
		configDir = filepath.Join(base, AppDirName)
	}

	dataDir := os.Getenv(EnvDataDir)
	if dataDir == "" {
		base, err := userDataDir()
		if err != nil {
			return Paths{}, err
		}
		dataDir = filepath.Join(base, AppDirName)
	}

	return Paths{ConfigDir: configDir, DataDir: dataDir}, nil
}

// userDataDir mirrors os.UserConfigDir for per-user application data.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return os.UserConfigDir()
	case "darwin", "ios":
		return os.UserConfigDir()
	}

	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// SettingsFile returns the path to config.yaml.
func (p Paths) SettingsFile() string {
	return filepath.Join(p.ConfigDir, SettingsFileName)
}

// StateFile returns the path to the command document.
func (p Paths) StateFile() string {
	return filepath.Join(p.DataDir, StateFileName)
}

// LogFile returns the path to the daemon log.
func (p Paths) LogFile() string {
	return filepath.Join(p.DataDir, LogFileName)
}

// PIDFile returns the PID file path for a role (e.g., "daemon.pid").
func (p Paths) PIDFile(role Role) string {
	return filepath.Join(p.DataDir, string(role)+".pid")
}

// Ensure creates the config and data directories if they don't exist.
func (p Paths) Ensure() error {
	if err := os.MkdirAll(p.ConfigDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(p.DataDir, 0o755)
}
