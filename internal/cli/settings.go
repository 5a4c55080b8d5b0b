package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drawrpc/drawrpc/internal/config"
	"github.com/drawrpc/drawrpc/internal/logging"
	"github.com/drawrpc/drawrpc/internal/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change the settings in config.yaml.

Keys:
  discord_client_id           Discord application ID (required by the daemon)
  enable_tray_icon            Show the tray icon (true/false)
  log_level                   debug, info, warning or error
  reconnect_interval_seconds  Seconds between reconnect attempts
  reapply_on_reconnect        Re-send the last presence after reconnecting

The daemon reads settings at startup; restart it to apply changes.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings and data locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := resolvePaths()
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", styleLabel.Render("Settings:"), paths.SettingsFile())
		fmt.Printf("%s %s\n", styleLabel.Render("Data:    "), paths.DataDir)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}

// settingFields maps each key to a getter and a setter.
var settingFields = map[string]struct {
	get func(*models.Settings) string
	set func(*models.Settings, string) error
}{
	"discord_client_id": {
		get: func(s *models.Settings) string { return s.DiscordClientID },
		set: func(s *models.Settings, v string) error {
			v = strings.TrimSpace(v)
			if _, err := strconv.ParseUint(v, 10, 64); err != nil {
				return fmt.Errorf("discord_client_id must be a numeric application ID")
			}
			s.DiscordClientID = v
			return nil
		},
	},
	"enable_tray_icon": {
		get: func(s *models.Settings) string { return strconv.FormatBool(s.EnableTrayIcon) },
		set: func(s *models.Settings, v string) (err error) {
			s.EnableTrayIcon, err = parseBool(v)
			return err
		},
	},
	"log_level": {
		get: func(s *models.Settings) string { return s.LogLevel },
		set: func(s *models.Settings, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			switch v {
			case "debug", "info", "warning", "error":
			default:
				return fmt.Errorf("log_level must be one of debug, info, warning, error")
			}
			s.LogLevel = v
			return nil
		},
	},
	"reconnect_interval_seconds": {
		get: func(s *models.Settings) string { return strconv.Itoa(s.ReconnectIntervalSeconds) },
		set: func(s *models.Settings, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 1 {
				return fmt.Errorf("reconnect_interval_seconds must be a positive integer")
			}
			s.ReconnectIntervalSeconds = n
			return nil
		},
	},
	"reapply_on_reconnect": {
		get: func(s *models.Settings) string { return strconv.FormatBool(s.ReapplyOnReconnect) },
		set: func(s *models.Settings, v string) (err error) {
			s.ReapplyOnReconnect, err = parseBool(v)
			return err
		},
	},
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %q", v)
}

// setSetting validates and applies one key.
func setSetting(s *models.Settings, key, value string) error {
	field, ok := settingFields[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	return field.set(s, value)
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingFields))
	for k := range settingFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	settings, err := paths.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, key := range settingKeys() {
		value := settingFields[key].get(settings)
		if key == "discord_client_id" {
			value = logging.MaskIdentifier(value)
			if value == "" {
				value = styleWarning.Render("(not set)")
			}
		}
		fmt.Printf("%s %s\n", styleLabel.Render(fmt.Sprintf("%-27s", key)), value)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	settings, err := paths.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if err := setSetting(settings, args[0], args[1]); err != nil {
		return err
	}
	if err := paths.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Saved"), args[0])
	if running, _ := paths.IsRoleRunning(config.RoleDaemon); running {
		fmt.Println(styleHint.Render("Restart the daemon to apply: ") + styleCommand.Render("drawrpc daemon stop && drawrpc daemon start"))
	}
	return nil
}
