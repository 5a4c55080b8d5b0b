package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drawrpc/drawrpc/internal/config"
	"github.com/drawrpc/drawrpc/internal/logging"
	"github.com/drawrpc/drawrpc/internal/models"
	"github.com/drawrpc/drawrpc/internal/tray"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the system tray icon",
	Long: `Run a system tray icon showing whether the presence daemon is running and
what it shows. The menu starts and stops the daemon and clears the status.
Exiting the tray also stops the daemon.`,
	Args: cobra.NoArgs,
	RunE: runTray,
}

func runTray(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	settings, err := paths.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.EnableTrayIcon {
		return fmt.Errorf("tray icon is disabled (drawrpc config set enable_tray_icon true)")
	}
	logging.SetLevel(logging.ParseLevel(settings.LogLevel))

	if running, pid := paths.IsRoleRunning(config.RoleTray); running && pid != os.Getpid() {
		fmt.Printf("Tray is already running (PID %d).\n", pid)
		return nil
	}
	if err := paths.WriteRolePID(config.RoleTray); err != nil {
		return err
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logging.Infof("Received signal %v, closing tray", sig)
		tray.Quit()
	}()

	// Blocks until the tray exits.
	tray.Run(&trayController{paths: paths})
	return nil
}

// trayController backs the tray menu with the PID and command files.
type trayController struct {
	paths config.Paths
}

func (c *trayController) Daemon() models.ProcessInfo {
	return c.paths.ProcessInfo(config.RoleDaemon)
}

func (c *trayController) Presence() models.CommandDocument {
	return c.paths.CommandStore().Read()
}

func (c *trayController) StartDaemon() error {
	_, err := startDaemon(c.paths)
	return err
}

func (c *trayController) StopDaemon() error {
	return stopDaemon(c.paths)
}

func (c *trayController) ClearPresence() error {
	return c.paths.CommandStore().SendClear()
}

func (c *trayController) Shutdown() {
	if running, _ := c.paths.IsRoleRunning(config.RoleDaemon); running {
		if err := c.paths.TerminateRole(config.RoleDaemon); err != nil {
			logging.Warnf("Failed to stop daemon: %v", err)
		}
	}
	if running, _ := c.paths.IsRoleRunning(config.RoleGUI); running {
		if err := c.paths.TerminateRole(config.RoleGUI); err != nil {
			logging.Warnf("Failed to stop GUI: %v", err)
		}
	}
	if err := c.paths.RemoveRolePID(config.RoleTray); err != nil {
		logging.Warnf("Failed to remove tray PID file: %v", err)
	}
}
