package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/drawrpc/drawrpc/internal/logging"
	"github.com/drawrpc/drawrpc/internal/tui"
)

var logsFlags struct {
	lines int
	level string
	plain bool
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the daemon log",
	Long: `Open the daemon log in an interactive viewer that follows new lines.

When stdout is not a terminal, or with --plain, the last lines are printed
instead.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsFlags.lines, "lines", "n", 100, "Lines to print in plain mode (0 for all)")
	logsCmd.Flags().StringVar(&logsFlags.level, "level", "debug", "Minimum level to print in plain mode")
	logsCmd.Flags().BoolVar(&logsFlags.plain, "plain", false, "Print instead of opening the viewer")
}

func runLogs(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	if logsFlags.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.Print(os.Stdout, paths.LogFile(), logsFlags.lines, logging.ParseLevel(logsFlags.level))
	}
	return tui.Run(paths.LogFile())
}
