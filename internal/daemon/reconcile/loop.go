// Package reconcile drives the presence connection from the command document.
//
// Everything the loop owns (the last processed document, whether the current
// connection has the presence applied, the running flag) is touched only by
// the goroutine calling Run. Socket reads, file changes, client events and
// the reconnect ticker are all multiplexed there.
package reconcile

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/drawrpc/drawrpc/internal/config"
	"github.com/drawrpc/drawrpc/internal/daemon/watcher"
	"github.com/drawrpc/drawrpc/internal/logging"
	"github.com/drawrpc/drawrpc/internal/models"
	"github.com/drawrpc/drawrpc/internal/rpc"
)

// DefaultReconnectInterval is how often a disconnected loop retries.
const DefaultReconnectInterval = 5 * time.Second

// Presence is the part of rpc.Client the loop drives.
type Presence interface {
	Connect(ctx context.Context) error
	Disconnect()
	Connected() bool
	SetActivity(a *rpc.Activity) error
	ClearActivity() error
	Reads() <-chan rpc.ReadResult
	Process(r rpc.ReadResult)
	Events() <-chan rpc.Event
}

// Option configures a Loop.
type Option func(*Loop)

// WithReconnectInterval overrides DefaultReconnectInterval.
func WithReconnectInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithReapplyOnReconnect controls whether the last update is sent again
// after the connection comes back.
func WithReapplyOnReconnect(enabled bool) Option {
	return func(l *Loop) { l.reapply = enabled }
}

// WithRearm sets the hook called after every file change is processed.
func WithRearm(fn func()) Option {
	return func(l *Loop) { l.rearm = fn }
}

// WithConnectionHook sets a function called with the new state whenever the
// Discord connection comes up or goes down.
func WithConnectionHook(fn func(connected bool)) Option {
	return func(l *Loop) { l.onConn = fn }
}

// Loop reconciles the command document against the presence connection.
type Loop struct {
	client   Presence
	store    *config.CommandStore
	changes  <-chan watcher.Event
	interval time.Duration
	reapply  bool
	rearm    func()
	onConn   func(bool)
	log      *logging.Logger

	running    atomic.Bool
	last       []byte
	lastUpdate *models.CommandDocument
	applied    bool
}

// New creates a loop. changes delivers file-change notifications for the
// store's file.
func New(client Presence, store *config.CommandStore, changes <-chan watcher.Event, opts ...Option) *Loop {
	l := &Loop{
		client:   client,
		store:    store,
		changes:  changes,
		interval: DefaultReconnectInterval,
		reapply:  true,
		rearm:    func() {},
		onConn:   func(bool) {},
		log:      logging.New("loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Running reports whether Run is active and hasn't seen a quit command.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Run connects, applies the current document and then processes events until
// a quit command (returns nil) or ctx is cancelled (returns ctx.Err()).
func (l *Loop) Run(ctx context.Context) error {
	l.running.Store(true)
	defer l.running.Store(false)

	if err := l.client.Connect(ctx); err != nil {
		l.log.Warnf("Failed to connect to Discord initially, will retry: %v", err)
	} else {
		l.log.Infof("Connected to Discord RPC")
	}

	if l.reconcile(ctx) {
		l.log.Infof("Applied initial state from %s", l.store.Path())
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for l.running.Load() {
		select {
		case <-ctx.Done():
			l.client.Disconnect()
			return ctx.Err()

		case _, ok := <-l.changes:
			if !ok {
				l.log.Warnf("File watcher closed, no further commands will be seen")
				l.changes = nil
				continue
			}
			l.reconcile(ctx)
			l.rearm()

		case r := <-l.client.Reads():
			l.client.Process(r)

		case ev := <-l.client.Events():
			l.handleEvent(ev)

		case <-ticker.C:
			if !l.client.Connected() {
				l.log.Debugf("Attempting to reconnect to Discord...")
				if err := l.client.Connect(ctx); err != nil {
					l.log.Debugf("Reconnect failed: %v", err)
				}
			}
		}
	}

	l.client.Disconnect()
	l.log.Infof("Loop stopped")
	return nil
}

// reconcile re-reads the document and acts on it unless it is empty,
// unreadable or byte-identical to the last one processed. It reports
// whether a command was handled.
func (l *Loop) reconcile(ctx context.Context) bool {
	snap, err := l.store.Load()
	if err != nil {
		l.log.Warnf("Ignoring unreadable command document: %v", err)
		return false
	}
	if snap.Doc.IsEmpty() {
		return false
	}
	if l.last != nil && bytes.Equal(snap.Raw, l.last) {
		l.log.Debugf("Command document unchanged, skipping")
		return false
	}
	l.last = snap.Raw

	l.handleCommand(ctx, snap.Doc)
	return true
}

func (l *Loop) handleCommand(ctx context.Context, doc models.CommandDocument) {
	switch doc.Command {
	case models.CommandUpdate:
		l.log.Infof("Updating presence")
		l.lastUpdate = &doc
		l.applied = false

		if !l.client.Connected() {
			l.log.Warnf("Not connected to Discord, attempting to connect...")
			if err := l.client.Connect(ctx); err != nil {
				l.log.Warnf("Failed to connect to Discord: %v", err)
				return
			}
		}
		l.apply(doc)

	case models.CommandClear:
		l.log.Infof("Clearing presence")
		l.lastUpdate = nil
		l.applied = false
		if !l.client.Connected() {
			return
		}
		if err := l.client.ClearActivity(); err != nil {
			l.log.Warnf("Failed to clear presence: %v", err)
		}

	case models.CommandQuit:
		l.log.Infof("Received quit command")
		l.running.Store(false)

	default:
		l.log.Warnf("Ignoring unknown command %q", doc.Command)
	}
}

func (l *Loop) apply(doc models.CommandDocument) {
	activity := rpc.ActivityFromDocument(doc)
	if err := l.client.SetActivity(activity); err != nil {
		if errors.Is(err, rpc.ErrNotConnected) {
			l.log.Warnf("Connection lost before presence could be sent")
		} else {
			l.log.Warnf("Failed to update presence: %v", err)
		}
		return
	}
	l.applied = true
	l.log.Debugf("Presence sent: details=%q state=%q", activity.Details, activity.State)
}

func (l *Loop) handleEvent(ev rpc.Event) {
	switch ev.Type {
	case rpc.EventConnected:
		l.log.Infof("Discord connection ready")
		l.onConn(true)
		if l.reapply && l.lastUpdate != nil && !l.applied && l.client.Connected() {
			l.log.Infof("Re-applying last presence after reconnect")
			l.apply(*l.lastUpdate)
		}
	case rpc.EventDisconnected:
		l.applied = false
		l.onConn(false)
		l.log.Warnf("Discord connection lost, retrying every %s", l.interval)
	case rpc.EventError:
		l.log.Warnf("Discord error: %s", ev.Message)
	}
}
