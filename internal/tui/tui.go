// Package tui implements the terminal log viewer for the daemon log.
package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawrpc/drawrpc/internal/logging"
)

// Run opens the interactive viewer on the log at path.
func Run(path string) error {
	p := tea.NewProgram(
		NewLogViewer(path),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

// Print writes the last n lines at or above minLevel to w without any
// styling. n <= 0 prints everything.
func Print(w io.Writer, path string, n int, minLevel logging.Level) error {
	lines, _, err := NewTail(path).Read()
	if err != nil {
		return err
	}

	v := &LogViewer{minLevel: minLevel}
	v.entries = make([]entry, 0, len(lines))
	v.appendEntries(lines)

	visible := v.Visible()
	if n > 0 && len(visible) > n {
		visible = visible[len(visible)-n:]
	}
	for _, line := range visible {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
