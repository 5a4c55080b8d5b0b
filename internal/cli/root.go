// Package cli implements the drawrpc CLI commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/drawrpc/drawrpc/internal/config"
	"github.com/drawrpc/drawrpc/internal/logging"
)

var (
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "drawrpc",
	Short: "Publish a Discord Rich Presence through the drawrpcd daemon",
	Long: `drawrpc writes presence commands for the drawrpcd daemon, which holds the
connection to the local Discord client. It also starts and stops the daemon,
edits settings, shows the daemon log and runs a system tray icon.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Drop the standard logger's own timestamp so lines keep the
		// "[timestamp] [LEVEL] message" format.
		_, err := logging.Setup("")
		return err
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Override the config directory")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Override the data directory")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(quitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolvePaths applies the directory flags on top of the defaults.
func resolvePaths() (config.Paths, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return config.Paths{}, err
	}
	if flagConfigDir != "" {
		paths.ConfigDir = flagConfigDir
	}
	if flagDataDir != "" {
		paths.DataDir = flagDataDir
	}
	return paths, nil
}
