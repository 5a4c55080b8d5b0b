package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drawrpc/drawrpc/internal/config"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the drawrpcd daemon",
	Long:  `Manage the drawrpcd daemon process.`,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	if running, pid := paths.IsRoleRunning(config.RoleDaemon); running {
		fmt.Printf("Daemon is already running (PID %d).\n", pid)
		return nil
	}

	fmt.Print("Starting daemon...")
	pid, err := startDaemon(paths)
	if err != nil {
		fmt.Println()
		return err
	}
	fmt.Printf(" %s (PID %d).\n", styleSuccess.Render("started"), pid)
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	info := paths.ProcessInfo(config.RoleDaemon)
	if !info.Running {
		fmt.Println("Daemon is not running.")
		fmt.Println(styleHint.Render("  Start it with: ") + styleCommand.Render("drawrpc daemon start"))
		return nil
	}

	fmt.Println("Daemon is running.")
	fmt.Printf("  %s %d\n", styleLabel.Render("PID:       "), info.PID)
	fmt.Printf("  %s %s\n", styleLabel.Render("State file:"), paths.StateFile())
	fmt.Printf("  %s %s\n", styleLabel.Render("Log file:  "), paths.LogFile())
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	if running, _ := paths.IsRoleRunning(config.RoleDaemon); !running {
		fmt.Println("Daemon is not running.")
		return nil
	}

	fmt.Print("Stopping daemon...")
	if err := stopDaemon(paths); err != nil {
		fmt.Println()
		return err
	}
	fmt.Println(" stopped.")
	return nil
}
