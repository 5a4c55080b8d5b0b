// Package main is the entry point for the drawrpcd presence daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drawrpc/drawrpc/internal/buildinfo"
	"github.com/drawrpc/drawrpc/internal/config"
	"github.com/drawrpc/drawrpc/internal/daemon/reconcile"
	"github.com/drawrpc/drawrpc/internal/daemon/watcher"
	"github.com/drawrpc/drawrpc/internal/logging"
	"github.com/drawrpc/drawrpc/internal/models"
	"github.com/drawrpc/drawrpc/internal/rpc"
)

func main() {
	configDir := flag.String("config-dir", "", "Override the config directory")
	dataDir := flag.String("data-dir", "", "Override the data directory (state, PID and log files)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("drawrpcd %s\n", buildinfo.Resolve())
		return
	}

	paths, err := config.DefaultPaths()
	if err != nil {
		log.Fatalf("Failed to resolve directories: %v", err)
	}
	if *configDir != "" {
		paths.ConfigDir = *configDir
	}
	if *dataDir != "" {
		paths.DataDir = *dataDir
	}

	os.Exit(run(paths, *debug))
}

// run returns the process exit status.
func run(paths config.Paths, debug bool) int {
	if err := paths.Ensure(); err != nil {
		logging.Errorf("Failed to create directories: %v", err)
		return 1
	}

	rotated, rotateErr := paths.RotateLog(config.MaxLogSize)
	closer, err := logging.Setup(paths.LogFile())
	if err != nil {
		logging.Warnf("%v; logging to stderr only", err)
	}
	defer closer.Close()
	if rotateErr != nil {
		logging.Warnf("%v", rotateErr)
	} else if rotated {
		logging.Infof("Previous log moved to %s", paths.RotatedLogFile())
	}

	settings, err := paths.LoadSettings()
	if err != nil {
		logging.Errorf("Failed to load settings: %v", err)
		return 1
	}
	logging.SetLevel(logging.ParseLevel(settings.LogLevel))
	if debug {
		logging.EnableDebug()
	}

	if running, pid := paths.IsRoleRunning(config.RoleDaemon); running && pid != os.Getpid() {
		logging.Errorf("Daemon already running (PID %d)", pid)
		return 1
	}

	if err := config.ValidateDaemonSettings(settings); err != nil {
		logging.Errorf("Error: %v", err)
		logging.Errorf("Please set discord_client_id in %s", paths.SettingsFile())
		if err := paths.EnsureSettings(); err != nil {
			logging.Warnf("Failed to write default settings: %v", err)
		}
		return 1
	}

	if err := paths.WriteRolePID(config.RoleDaemon); err != nil {
		logging.Errorf("Failed to write PID file: %v", err)
		return 1
	}
	defer func() {
		if err := paths.RemoveRolePID(config.RoleDaemon); err != nil {
			logging.Warnf("Failed to remove PID file: %v", err)
		}
	}()

	store := paths.CommandStore()
	if err := store.EnsureExists(); err != nil {
		logging.Warnf("Failed to create state file: %v", err)
	}

	info := models.NewDaemonInfo(os.Getpid(), buildinfo.Resolve(), store.Path())
	if err := paths.SaveDaemonInfo(info); err != nil {
		logging.Warnf("Failed to write daemon status: %v", err)
	}
	defer func() {
		if err := paths.RemoveDaemonInfo(); err != nil {
			logging.Warnf("Failed to remove daemon status: %v", err)
		}
	}()

	logging.Infof("Discord RPC Daemon %s started", buildinfo.Resolve())
	logging.Infof("PID: %d", os.Getpid())
	logging.Infof("Client ID: %s", logging.MaskIdentifier(settings.DiscordClientID))
	logging.Infof("State file: %s", store.Path())

	w, err := watcher.New(store.Path())
	if err != nil {
		logging.Errorf("Failed to create file watcher: %v", err)
		return 1
	}
	if err := w.Start(); err != nil {
		logging.Errorf("Failed to start file watcher: %v", err)
		return 1
	}
	defer w.Stop()
	logging.Infof("File watcher started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := newLoop(settings, store, w, func(connected bool) {
		if err := paths.SetDaemonConnected(info, connected); err != nil {
			logging.Warnf("Failed to update daemon status: %v", err)
		}
	})
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Errorf("Loop error: %v", err)
		return 1
	}

	logging.Infof("Daemon stopped")
	return 0
}

func newLoop(settings *models.Settings, store *config.CommandStore, w *watcher.Watcher, onConn func(bool)) *reconcile.Loop {
	client := rpc.NewClient(settings.DiscordClientID)
	return reconcile.New(client, store, w.Events(),
		reconcile.WithReconnectInterval(time.Duration(settings.ReconnectIntervalSeconds)*time.Second),
		reconcile.WithReapplyOnReconnect(settings.ReapplyOnReconnect),
		reconcile.WithRearm(w.Rearm),
		reconcile.WithConnectionHook(onConn),
	)
}
