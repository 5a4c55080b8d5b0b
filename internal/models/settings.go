package models

// Settings represents user configuration shared by the daemon and collaborators.
// This corresponds to <config>/config.yaml.
type Settings struct {
	Version                  int    `yaml:"version"`
	DiscordClientID          string `yaml:"discord_client_id"`
	EnableTrayIcon           bool   `yaml:"enable_tray_icon"`
	LogLevel                 string `yaml:"log_level"` // "debug" | "info" | "warning" | "error"
	ReconnectIntervalSeconds int    `yaml:"reconnect_interval_seconds"`
	ReapplyOnReconnect       bool   `yaml:"reapply_on_reconnect"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:                  1,
		DiscordClientID:          "",
		EnableTrayIcon:           true,
		LogLevel:                 "info",
		ReconnectIntervalSeconds: 5,
		ReapplyOnReconnect:       true,
	}
}
