package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/drawrpc/drawrpc/internal/logging"
)

const (
	pollInterval = 500 * time.Millisecond
	// maxLines bounds memory for long-running daemons; the oldest lines go.
	maxLines = 5000
)

type tailMsg struct {
	lines []string
	reset bool
	err   error
}

type pollMsg struct{}

// entry is one log line with its level; continuation lines inherit the level
// of the line before them.
type entry struct {
	text  string
	level logging.Level
}

// LogViewer shows the daemon log and follows appended lines.
type LogViewer struct {
	tail     *Tail
	path     string
	entries  []entry
	minLevel logging.Level
	follow   bool
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	err      error
}

// NewLogViewer creates a viewer for the log at path.
func NewLogViewer(path string) *LogViewer {
	return &LogViewer{
		tail:     NewTail(path),
		path:     path,
		minLevel: logging.LevelDebug,
		follow:   true,
		viewport: viewport.New(80, 20),
	}
}

// Init starts the first read.
func (l *LogViewer) Init() tea.Cmd {
	return l.read
}

func (l *LogViewer) read() tea.Msg {
	lines, reset, err := l.tail.Read()
	return tailMsg{lines: lines, reset: reset, err: err}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// Update handles messages.
func (l *LogViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.SetSize(msg.Width, msg.Height)
		return l, nil

	case tailMsg:
		l.err = msg.err
		if msg.reset {
			l.entries = nil
		}
		l.Append(msg.lines)
		l.ready = true
		return l, poll()

	case pollMsg:
		return l, l.read

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return l, tea.Quit
		case key.Matches(msg, keys.Follow):
			l.follow = !l.follow
			if l.follow {
				l.viewport.GotoBottom()
			}
			return l, nil
		case key.Matches(msg, keys.Top):
			l.follow = false
			l.viewport.GotoTop()
			return l, nil
		case key.Matches(msg, keys.Bottom):
			l.viewport.GotoBottom()
			return l, nil
		case key.Matches(msg, keys.Level):
			l.minLevel = (l.minLevel + 1) % (logging.LevelError + 1)
			l.render()
			return l, nil
		}
	}

	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	if !l.viewport.AtBottom() {
		l.follow = false
	}
	return l, cmd
}

// SetSize updates dimensions. Two rows go to the header and status bar.
func (l *LogViewer) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.viewport.Width = width
	l.viewport.Height = max(1, height-2)
	l.render()
}

// Append adds lines, keeping at most maxLines.
func (l *LogViewer) Append(lines []string) {
	if len(lines) == 0 {
		return
	}
	l.appendEntries(lines)
	if over := len(l.entries) - maxLines; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
	l.render()
}

func (l *LogViewer) appendEntries(lines []string) {
	prev := logging.LevelInfo
	if n := len(l.entries); n > 0 {
		prev = l.entries[n-1].level
	}
	for _, line := range lines {
		level, ok := lineLevel(line)
		if !ok {
			level = prev
		}
		l.entries = append(l.entries, entry{text: line, level: level})
		prev = level
	}
}

// Visible returns the lines passing the level filter.
func (l *LogViewer) Visible() []string {
	var out []string
	for _, e := range l.entries {
		if e.level >= l.minLevel {
			out = append(out, e.text)
		}
	}
	return out
}

func (l *LogViewer) render() {
	var b strings.Builder
	for _, e := range l.entries {
		if e.level < l.minLevel {
			continue
		}
		text := e.text
		if l.width > 0 {
			text = ansi.Truncate(text, l.width, "…")
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(levelStyle(e.level).Render(text))
	}
	l.viewport.SetContent(b.String())
	if l.follow {
		l.viewport.GotoBottom()
	}
}

func levelStyle(level logging.Level) lipgloss.Style {
	switch level {
	case logging.LevelDebug:
		return levelDebugStyle
	case logging.LevelWarning:
		return levelWarningStyle
	case logging.LevelError:
		return levelErrorStyle
	default:
		return levelInfoStyle
	}
}

// View renders the viewer.
func (l *LogViewer) View() string {
	header := headerStyle.Render(ansi.Truncate(l.path, max(l.width, 1), "…"))

	if !l.ready {
		return header + "\n" + hintStyle.Render("Loading log...")
	}

	var body string
	if len(l.entries) == 0 {
		body = hintStyle.Render("No log output yet.")
		if l.height > 3 {
			body += strings.Repeat("\n", l.height-3)
		}
	} else {
		body = l.viewport.View()
	}

	return header + "\n" + body + "\n" + l.statusBar()
}

func (l *LogViewer) statusBar() string {
	follow := hintStyle.Render("follow off")
	if l.follow {
		follow = followOnStyle.Render("following")
	}

	left := fmt.Sprintf(" %s · level ≥ %s · %d lines", follow, l.minLevel, len(l.entries))
	if l.err != nil {
		left += " · " + levelErrorStyle.Render(l.err.Error())
	}
	right := hintStyle.Render("q quit · f follow · l level · g/G top/bottom ")

	gap := l.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return statusBarStyle.Width(max(l.width, 1)).Render(ansi.Truncate(left, max(l.width, 1), "…"))
	}
	return statusBarStyle.Width(l.width).Render(left + strings.Repeat(" ", gap) + right)
}
