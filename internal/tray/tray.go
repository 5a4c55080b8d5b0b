package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/drawrpc/drawrpc/internal/logging"
	"github.com/drawrpc/drawrpc/internal/models"
)

// RefreshInterval is how often the tooltip and status items are refreshed.
const RefreshInterval = 5 * time.Second

var log = logging.New("tray")

var (
	ctrl Controller
	done chan struct{}
	once sync.Once

	statusItem  *systray.MenuItem
	detailsItem *systray.MenuItem
	startItem   *systray.MenuItem
	stopItem    *systray.MenuItem
	clearItem   *systray.MenuItem
	quitItem    *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
func Run(c Controller) {
	ctrl = c
	done = make(chan struct{})
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData(), iconData())
	systray.SetTitle("")
	systray.SetTooltip(formatTooltip(models.ProcessInfo{}, models.CommandDocument{}))

	header := systray.AddMenuItem("Discord Draw RPC", "")
	header.Disable()

	statusItem = systray.AddMenuItem("Checking...", "")
	statusItem.Disable()
	detailsItem = systray.AddMenuItem("", "")
	detailsItem.Disable()
	detailsItem.Hide()

	systray.AddSeparator()

	presence := systray.AddMenuItem("Presence", "")
	startItem = presence.AddSubMenuItem("Start Presence", "Launch the presence daemon")
	stopItem = presence.AddSubMenuItem("Stop Presence", "Stop the presence daemon")

	systray.AddSeparator()

	clearItem = systray.AddMenuItem("Clear Discord Status", "Remove the current presence")

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Exit", "Stop the presence and close the tray")

	refresh()
	go handleClicks()
	go refreshLoop()
}

func onQuit() {
	once.Do(func() { close(done) })
	if ctrl != nil {
		ctrl.Shutdown()
	}
}

func handleClicks() {
	for {
		select {
		case <-done:
			return

		case <-startItem.ClickedCh:
			if err := ctrl.StartDaemon(); err != nil {
				log.Errorf("Failed to start presence: %v", err)
			} else {
				log.Infof("Presence started")
			}
			refresh()

		case <-stopItem.ClickedCh:
			if err := ctrl.StopDaemon(); err != nil {
				log.Errorf("Failed to stop presence: %v", err)
			} else {
				log.Infof("Presence stopped")
			}
			refresh()

		case <-clearItem.ClickedCh:
			if err := ctrl.ClearPresence(); err != nil {
				log.Errorf("Failed to clear status: %v", err)
			} else {
				log.Infof("Status cleared")
			}
			refresh()

		case <-quitItem.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func refreshLoop() {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// refresh re-reads daemon liveness and the command document.
func refresh() {
	info := ctrl.Daemon()
	doc := ctrl.Presence()

	systray.SetTooltip(formatTooltip(info, doc))
	statusItem.SetTitle(formatStatus(info))

	if details := currentDetails(doc); details != "" {
		detailsItem.SetTitle(details)
		detailsItem.Show()
	} else {
		detailsItem.Hide()
	}

	if info.Running {
		startItem.Disable()
		stopItem.Enable()
	} else {
		startItem.Enable()
		stopItem.Disable()
	}
}

func formatStatus(info models.ProcessInfo) string {
	if info.Running {
		return fmt.Sprintf("Presence running (PID %d)", info.PID)
	}
	return "Presence stopped"
}

func formatTooltip(info models.ProcessInfo, doc models.CommandDocument) string {
	tooltip := "Discord RPC - Presence Stopped ⏸"
	if info.Running {
		tooltip = "Discord RPC - Presence Running ✅"
	}
	if details := currentDetails(doc); details != "" {
		tooltip += "\n" + details
	}
	return tooltip
}

// currentDetails is the details line of an active update, if any.
func currentDetails(doc models.CommandDocument) string {
	if doc.Command != models.CommandUpdate {
		return ""
	}
	return doc.Details
}
