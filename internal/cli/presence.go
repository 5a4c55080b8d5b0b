package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/drawrpc/drawrpc/internal/config"
	"github.com/drawrpc/drawrpc/internal/models"
)

var updateFlags struct {
	details    string
	state      string
	largeImage string
	largeText  string
	smallImage string
	smallText  string
	start      int64
	elapsed    bool
	buttons    []string
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Set the presence shown in Discord",
	Long: `Write an update command to the state file. The running daemon picks it up
and publishes the presence. The document replaces the previous one entirely.

Buttons are given as Label=URL; Discord shows at most two.`,
	Example: `  drawrpc update --details "Sketching" --large-image https://example.com/a.png --elapsed
  drawrpc update --details "Live" --button "Watch=https://example.com/live"`,
	RunE: runUpdate,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the presence",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCommand(func(s *config.CommandStore) error { return s.SendClear() }, "Presence cleared.")
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Ask the daemon to exit, keeping the current presence fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCommand(func(s *config.CommandStore) error { return s.SendQuit() }, "Quit command sent.")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show process status and the current command document",
	RunE:  runStatus,
}

func init() {
	f := updateCmd.Flags()
	f.StringVarP(&updateFlags.details, "details", "d", "", "First line of the presence")
	f.StringVarP(&updateFlags.state, "state", "s", "", "Second line of the presence")
	f.StringVar(&updateFlags.largeImage, "large-image", "", "Large image URL or asset key")
	f.StringVar(&updateFlags.largeText, "large-text", "", "Hover text for the large image")
	f.StringVar(&updateFlags.smallImage, "small-image", "", "Small image URL or asset key")
	f.StringVar(&updateFlags.smallText, "small-text", "", "Hover text for the small image")
	f.Int64Var(&updateFlags.start, "start", 0, "Unix timestamp the elapsed timer counts from (0 disables)")
	f.BoolVar(&updateFlags.elapsed, "elapsed", false, "Start the elapsed timer now")
	f.StringArrayVar(&updateFlags.buttons, "button", nil, "Button as Label=URL (repeatable)")
	updateCmd.MarkFlagsMutuallyExclusive("start", "elapsed")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	doc := models.CommandDocument{
		Details:    updateFlags.details,
		State:      updateFlags.state,
		LargeImage: updateFlags.largeImage,
		LargeText:  updateFlags.largeText,
		SmallImage: updateFlags.smallImage,
		SmallText:  updateFlags.smallText,
		Start:      models.UnixTime(updateFlags.start),
	}
	if updateFlags.elapsed {
		doc.Start = models.UnixTime(time.Now().Unix())
	}
	for _, raw := range updateFlags.buttons {
		b, err := parseButton(raw)
		if err != nil {
			return err
		}
		doc.Buttons = append(doc.Buttons, b)
	}

	return writeCommand(func(s *config.CommandStore) error { return s.SendUpdate(doc) }, "Presence updated.")
}

// parseButton parses "Label=URL".
func parseButton(raw string) (models.Button, error) {
	label, url, ok := strings.Cut(raw, "=")
	label, url = strings.TrimSpace(label), strings.TrimSpace(url)
	if !ok || label == "" || url == "" {
		return models.Button{}, fmt.Errorf("invalid button %q: expected Label=URL", raw)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return models.Button{}, fmt.Errorf("invalid button %q: URL must start with http:// or https://", raw)
	}
	return models.Button{Label: label, URL: url}, nil
}

// writeCommand applies fn to the command store and reports the outcome,
// hinting when no daemon is there to act on it.
func writeCommand(fn func(*config.CommandStore) error, done string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	if err := paths.Ensure(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := fn(paths.CommandStore()); err != nil {
		return err
	}

	fmt.Println(styleSuccess.Render(done))
	if running, _ := paths.IsRoleRunning(config.RoleDaemon); !running {
		fmt.Println(styleWarning.Render("Daemon is not running.") + " " +
			styleHint.Render("Start it with: ") + styleCommand.Render("drawrpc daemon start"))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	var infos []models.ProcessInfo
	for _, role := range []config.Role{config.RoleDaemon, config.RoleTray, config.RoleGUI} {
		infos = append(infos, paths.ProcessInfo(role))
	}

	snap, loadErr := paths.CommandStore().Load()

	width := 0
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}

	renderStatus(os.Stdout, infos, paths.RunningDaemonInfo(), snap.Doc, loadErr, width)
	return nil
}

// renderStatus writes the status report. daemon is nil when no daemon status
// is available. Values are truncated to width when width is positive.
func renderStatus(w io.Writer, infos []models.ProcessInfo, daemon *models.DaemonInfo, doc models.CommandDocument, loadErr error, width int) {
	const labelWidth = 14
	line := func(label, value string) {
		if width > labelWidth+4 {
			value = ansi.Truncate(value, width-labelWidth-4, "…")
		}
		fmt.Fprintf(w, "  %s %s\n", styleLabel.Render(fmt.Sprintf("%-*s", labelWidth-1, label+":")), styleValue.Render(value))
	}

	fmt.Fprintln(w, styleBrand.Render("Processes"))
	for _, info := range infos {
		value := runningBadge(info.Running)
		if info.Running {
			value += fmt.Sprintf(" (PID %d)", info.PID)
		}
		line(info.Role, value)
	}
	if daemon != nil {
		since := daemon.ChangedAt.Local().Format(time.DateTime)
		if daemon.Connected {
			line("discord", styleSuccess.Render("connected")+" since "+since)
		} else {
			line("discord", styleWarning.Render("not connected")+" since "+since)
		}
		line("version", daemon.AppVersion)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styleBrand.Render("Presence"))
	if loadErr != nil {
		fmt.Fprintf(w, "  %s\n", styleError.Render(loadErr.Error()))
		return
	}
	if doc.IsEmpty() {
		fmt.Fprintf(w, "  %s\n", styleHint.Render("No command written yet."))
		return
	}

	line("command", string(doc.Command))
	optional := []struct{ label, value string }{
		{"details", doc.Details},
		{"state", doc.State},
		{"large image", doc.LargeImage},
		{"large text", doc.LargeText},
		{"small image", doc.SmallImage},
		{"small text", doc.SmallText},
	}
	for _, o := range optional {
		if o.value != "" {
			line(o.label, o.value)
		}
	}
	if doc.Start > 0 {
		line("started", time.Unix(int64(doc.Start), 0).Format(time.DateTime))
	}
	for i, b := range doc.Buttons {
		line(fmt.Sprintf("button %d", i+1), b.Label+" → "+b.URL)
	}
}
