package tui

import "github.com/charmbracelet/bubbles/key"

// viewerKeys are the log viewer bindings. Scrolling keys are handled by the
// viewport's own keymap.
type viewerKeys struct {
	Quit   key.Binding
	Follow key.Binding
	Top    key.Binding
	Bottom key.Binding
	Level  key.Binding
}

var keys = viewerKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Follow: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "follow"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Level: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "min level"),
	),
}
