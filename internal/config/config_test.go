package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/drawrpc/drawrpc/internal/models"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	root := t.TempDir()
	p := Paths{ConfigDir: filepath.Join(root, "config"), DataDir: filepath.Join(root, "data")}
	if err := p.Ensure(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultPathsEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/drawrpc-config")
	t.Setenv(EnvDataDir, "/tmp/drawrpc-data")

	p, err := DefaultPaths()
	if err != nil {
		t.Fatal(err)
	}
	if p.ConfigDir != "/tmp/drawrpc-config" || p.DataDir != "/tmp/drawrpc-data" {
		t.Errorf("DefaultPaths() = %+v", p)
	}
	if got := p.PIDFile(RoleDaemon); got != filepath.Join("/tmp/drawrpc-data", "daemon.pid") {
		t.Errorf("PIDFile(daemon) = %s", got)
	}
}

func TestLoadSettings(t *testing.T) {
	p := testPaths(t)

	s, err := p.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if *s != *models.NewSettings() {
		t.Errorf("missing file should give defaults, got %+v", s)
	}

	// Keys absent from the file keep their defaults.
	if err := os.WriteFile(p.SettingsFile(), []byte("discord_client_id: \"123\"\nlog_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = p.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.DiscordClientID != "123" || s.LogLevel != "debug" || s.ReconnectIntervalSeconds != 5 || !s.EnableTrayIcon {
		t.Errorf("LoadSettings() = %+v", s)
	}

	if err := os.WriteFile(p.SettingsFile(), []byte("log_level: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.LoadSettings(); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	p := testPaths(t)
	want := models.NewSettings()
	want.DiscordClientID = "987654321"
	want.ReapplyOnReconnect = false

	if err := p.SaveSettings(want); err != nil {
		t.Fatal(err)
	}
	got, err := p.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}

	// EnsureSettings leaves an existing file alone.
	if err := p.EnsureSettings(); err != nil {
		t.Fatal(err)
	}
	got, _ = p.LoadSettings()
	if got.DiscordClientID != "987654321" {
		t.Errorf("EnsureSettings overwrote the file: %+v", got)
	}
}

func TestValidateDaemonSettings(t *testing.T) {
	tests := []struct {
		id      string
		wantErr error
	}{
		{id: "", wantErr: ErrMissingClientID},
		{id: "   ", wantErr: ErrMissingClientID},
		{id: "1234567890"},
	}
	for _, tt := range tests {
		s := models.NewSettings()
		s.DiscordClientID = tt.id
		if err := ValidateDaemonSettings(s); !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateDaemonSettings(%q) = %v, want %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := WritePIDFile(path, 4242); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "4242" {
		t.Errorf("content = %q, want plain decimal", raw)
	}
	pid, err := ReadPIDFile(path)
	if err != nil || pid != 4242 {
		t.Errorf("ReadPIDFile() = %d, %v", pid, err)
	}

	if err := RemovePIDFile(path); err != nil {
		t.Fatal(err)
	}
	if err := RemovePIDFile(path); err != nil {
		t.Errorf("removing a missing PID file: %v", err)
	}
	if _, err := ReadPIDFile(path); !os.IsNotExist(err) {
		t.Errorf("ReadPIDFile() on missing file = %v, want not-exist", err)
	}
}

func TestCheckPIDFile(t *testing.T) {
	self := strconv.Itoa(os.Getpid())

	tests := []struct {
		name        string
		content     string
		hint        string
		wantRunning bool
		wantRemoved bool
	}{
		{name: "garbage", content: "not-a-pid", hint: "", wantRemoved: true},
		{name: "zero", content: "0", hint: "", wantRemoved: true},
		// An empty hint matches any command line, so the test binary counts.
		{name: "live process", content: self, hint: "", wantRunning: true},
		{name: "identity mismatch", content: self, hint: "no-such-program-drawrpcd", wantRemoved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "daemon.pid")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			running, _ := CheckPIDFile(path, tt.hint)
			if running != tt.wantRunning {
				t.Errorf("CheckPIDFile() running = %v, want %v", running, tt.wantRunning)
			}
			if removed := !FileExists(path); removed != tt.wantRemoved {
				t.Errorf("file removed = %v, want %v", removed, tt.wantRemoved)
			}
		})
	}
}

func TestCheckPIDFileMissing(t *testing.T) {
	running, pid := CheckPIDFile(filepath.Join(t.TempDir(), "tray.pid"), "drawrpc")
	if running || pid != 0 {
		t.Errorf("CheckPIDFile() = %v, %d", running, pid)
	}
}

func TestRoleProcessInfo(t *testing.T) {
	p := testPaths(t)
	if err := p.WriteRolePID(RoleDaemon); err != nil {
		t.Fatal(err)
	}
	// The test binary is not named like the daemon, so the file is stale.
	info := p.ProcessInfo(RoleDaemon)
	if info.Running || info.PID != 0 || info.Role != "daemon" {
		t.Errorf("ProcessInfo(daemon) = %+v", info)
	}
	if FileExists(p.PIDFile(RoleDaemon)) {
		t.Error("stale daemon PID file not removed")
	}

	if err := p.WriteRolePID(RoleTray); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveRolePID(RoleTray); err != nil {
		t.Fatal(err)
	}
	if FileExists(p.PIDFile(RoleTray)) {
		t.Error("tray PID file still present")
	}
}

func TestDaemonInfo(t *testing.T) {
	p := testPaths(t)

	info, err := p.LoadDaemonInfo()
	if err != nil || info != nil {
		t.Fatalf("LoadDaemonInfo() on missing file = %v, %v", info, err)
	}

	want := models.NewDaemonInfo(os.Getpid(), "1.2.3", p.StateFile())
	if err := p.SetDaemonConnected(want, true); err != nil {
		t.Fatal(err)
	}
	got, err := p.LoadDaemonInfo()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Connected || got.PID != os.Getpid() || got.AppVersion != "1.2.3" || !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("LoadDaemonInfo() = %+v, want %+v", got, want)
	}

	// No daemon PID file, so nothing is reported as running.
	if p.RunningDaemonInfo() != nil {
		t.Error("RunningDaemonInfo() without a live daemon should be nil")
	}

	if err := p.RemoveDaemonInfo(); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveDaemonInfo(); err != nil {
		t.Errorf("second RemoveDaemonInfo() = %v", err)
	}
}

func TestRotateLog(t *testing.T) {
	p := testPaths(t)

	if rotated, err := p.RotateLog(10); err != nil || rotated {
		t.Fatalf("RotateLog() on missing file = %v, %v", rotated, err)
	}

	if err := os.WriteFile(p.LogFile(), []byte("short\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if rotated, _ := p.RotateLog(10); rotated {
		t.Error("small log rotated")
	}

	if err := os.WriteFile(p.LogFile(), []byte("a much longer log line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rotated, err := p.RotateLog(10)
	if err != nil || !rotated {
		t.Fatalf("RotateLog() = %v, %v", rotated, err)
	}
	if FileExists(p.LogFile()) {
		t.Error("log file still present after rotation")
	}
	raw, _ := os.ReadFile(p.RotatedLogFile())
	if string(raw) != "a much longer log line\n" {
		t.Errorf("rotated content = %q", raw)
	}
}

func TestRoleIdentity(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("only the image path is visible on Windows")
	}

	tests := []struct {
		role    Role
		cmdline string
		want    bool
	}{
		{RoleDaemon, "/usr/local/bin/drawrpcd -data-dir /tmp/x", true},
		{RoleDaemon, "/usr/local/bin/drawrpc tray", false},
		{RoleTray, "/usr/local/bin/drawrpc tray", true},
		{RoleTray, "/usr/local/bin/drawrpcd", false},
		{RoleTray, "/usr/local/bin/drawrpc status", false},
		{RoleTray, "/usr/local/bin/drawrpc logs", false},
		{RoleGUI, "/opt/drawrpc/drawrpc-gui", true},
		{RoleGUI, "/usr/local/bin/drawrpc tray", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.cmdline, func(t *testing.T) {
			if got := matchesProcessName(tt.cmdline, tt.role.ProcessName()); got != tt.want {
				t.Errorf("match(%q, %q) = %v, want %v", tt.cmdline, tt.role.ProcessName(), got, tt.want)
			}
		})
	}
}
