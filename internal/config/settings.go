package config

import (
	"errors"
	"strings"

	"github.com/drawrpc/drawrpc/internal/models"
)

// ErrMissingClientID is returned when the settings have no Discord
// application ID; the daemon cannot handshake without one.
var ErrMissingClientID = errors.New("discord_client_id is empty in config file")

// LoadSettings loads settings from <config>/config.yaml.
// If the file doesn't exist, returns default settings.
func (p Paths) LoadSettings() (*models.Settings, error) {
	return LoadYAMLOrDefault(p.SettingsFile(), models.NewSettings)
}

// SaveSettings saves settings to <config>/config.yaml.
func (p Paths) SaveSettings(settings *models.Settings) error {
	return SaveYAML(p.SettingsFile(), settings)
}

// EnsureSettings writes the default settings file if none exists yet, so
// users have something to edit.
func (p Paths) EnsureSettings() error {
	if FileExists(p.SettingsFile()) {
		return nil
	}
	return p.SaveSettings(models.NewSettings())
}

// ValidateDaemonSettings checks the settings the daemon needs at startup.
func ValidateDaemonSettings(s *models.Settings) error {
	if strings.TrimSpace(s.DiscordClientID) == "" {
		return ErrMissingClientID
	}
	return nil
}
