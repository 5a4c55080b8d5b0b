// Package tray implements the system tray icon and menu for controlling the
// presence daemon.
package tray

import "github.com/drawrpc/drawrpc/internal/models"

// Controller gives the tray read access to daemon state and the actions its
// menu triggers. Implementations must be safe to call from any goroutine.
type Controller interface {
	Daemon() models.ProcessInfo
	Presence() models.CommandDocument
	StartDaemon() error
	StopDaemon() error
	ClearPresence() error
	// Shutdown runs when the tray exits (menu Quit or signal).
	Shutdown()
}
