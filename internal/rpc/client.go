package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/drawrpc/drawrpc/internal/logging"
)

// AppName prefixes the IPC endpoint names ("discord-ipc-0").
const AppName = "discord"

// MaxPipes is how many numbered endpoints are tried (0..MaxPipes-1).
const MaxPipes = 10

// Protocol defaults.
const (
	DefaultDialTimeout      = time.Second
	DefaultHandshakeTimeout = 5 * time.Second
	writeTimeout            = time.Second
	readBufferSize          = 4096
	eventBufferSize         = 16
	readQueueSize           = 16
)

var (
	// ErrNotConnected is returned by activity calls made before READY.
	ErrNotConnected = errors.New("rpc: not connected")

	// ErrNoEndpoint means none of the candidate endpoints accepted a
	// connection.
	ErrNoEndpoint = errors.New("rpc: no reachable endpoint")

	// ErrHandshakeTimeout means READY didn't arrive in time.
	ErrHandshakeTimeout = errors.New("rpc: handshake timed out")

	// ErrHandshakeFailed means the peer went away during the handshake.
	ErrHandshakeFailed = errors.New("rpc: connection closed during handshake")
)

// State is the connection state.
type State int

// Connection states.
const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// EventType classifies client notifications.
type EventType int

// Notification types.
const (
	EventConnected EventType = iota
	EventDisconnected
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "error"
	}
}

// Event is a connection notification.
type Event struct {
	Type    EventType
	Message string
}

// ReadResult carries bytes (or the terminal error) read from one connection.
type ReadResult struct {
	gen  uint64
	Data []byte
	Err  error
}

// Dialer opens a transport to an endpoint path.
type Dialer func(ctx context.Context, path string) (net.Conn, error)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides endpoint discovery.
func WithEndpoint(fn func(n int) string) Option {
	return func(c *Client) { c.endpoint = fn }
}

// WithDialer overrides how endpoints are dialed.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// WithDialTimeout sets the per-endpoint connect timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// WithHandshakeTimeout bounds the wait for READY.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) { c.handshakeTimeout = d }
}

// WithPID sets the process ID reported with activity updates.
func WithPID(pid int) Option {
	return func(c *Client) { c.pid = pid }
}

// Client speaks the chat client's IPC protocol.
//
// A Client is not safe for concurrent use. Every method, including Process
// for results received from Reads, must be called from one goroutine; the
// only other goroutine is the per-connection reader, which just forwards
// bytes to Reads.
type Client struct {
	clientID         string
	pid              int
	endpoint         func(n int) string
	dial             Dialer
	dialTimeout      time.Duration
	handshakeTimeout time.Duration
	log              *logging.Logger

	conn   net.Conn
	gen    uint64
	done   chan struct{}
	reads  chan ReadResult
	state  State
	buf    []byte
	events chan Event
}

// NewClient creates a disconnected client for the given application ID.
func NewClient(clientID string, opts ...Option) *Client {
	c := &Client{
		clientID:         clientID,
		pid:              os.Getpid(),
		endpoint:         DefaultEndpoint,
		dial:             DialEndpoint,
		dialTimeout:      DefaultDialTimeout,
		handshakeTimeout: DefaultHandshakeTimeout,
		log:              logging.New("rpc"),
		events:           make(chan Event, eventBufferSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the connection state.
func (c *Client) State() State {
	return c.state
}

// Connected reports whether the handshake has completed.
func (c *Client) Connected() bool {
	return c.state == Connected
}

// Events returns the notification channel.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Reads returns the channel fed by the current connection's reader, or nil
// when there is no connection. Pass every result to Process.
func (c *Client) Reads() <-chan ReadResult {
	return c.reads
}

// Connect dials the numbered endpoints in order and performs the handshake
// on the first one that answers. It is a no-op when already connected.
func (c *Client) Connect(ctx context.Context) error {
	if c.state == Connected {
		return nil
	}
	if c.conn != nil {
		c.teardown()
	}

	c.state = Connecting
	for i := 0; i < MaxPipes; i++ {
		path := c.endpoint(i)

		dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
		conn, err := c.dial(dialCtx, path)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				c.state = Disconnected
				return ctx.Err()
			}
			c.log.Debugf("endpoint %s unavailable: %v", path, err)
			continue
		}

		c.log.Infof("Connected to IPC endpoint %s", path)
		c.attach(conn)
		return c.handshake(ctx)
	}

	c.state = Disconnected
	c.emit(Event{Type: EventError, Message: "Failed to connect to Discord. Make sure Discord is running."})
	return ErrNoEndpoint
}

// Disconnect closes the transport and discards any partial frame.
func (c *Client) Disconnect() {
	c.teardown()
}

// SetActivity publishes a presence. It fails without I/O unless connected.
func (c *Client) SetActivity(a *Activity) error {
	if c.state != Connected {
		c.log.Warnf("Not connected, dropping activity update")
		return ErrNotConnected
	}
	return c.send(OpFrame, c.setActivity(a))
}

// ClearActivity removes the presence. It fails without I/O unless connected.
func (c *Client) ClearActivity() error {
	if c.state != Connected {
		return ErrNotConnected
	}
	return c.send(OpFrame, c.setActivity(nil))
}

// Process feeds one reader result into the receive buffer and dispatches
// every complete frame. Results from a previous connection are ignored.
func (c *Client) Process(r ReadResult) {
	if c.conn == nil || r.gen != c.gen {
		return
	}
	if r.Err != nil {
		c.log.Warnf("Connection lost: %v", r.Err)
		c.teardown()
		return
	}

	c.buf = append(c.buf, r.Data...)
	for c.conn != nil {
		frame, n, err := Decode(c.buf)
		if errors.Is(err, ErrNeedMoreData) {
			return
		}
		if err != nil {
			c.log.Errorf("Protocol error, dropping connection: %v", err)
			c.emit(Event{Type: EventError, Message: err.Error()})
			c.teardown()
			return
		}
		c.buf = c.buf[n:]
		c.dispatch(frame)
	}
}

type handshakeRequest struct {
	V        int    `json:"v"`
	ClientID string `json:"client_id"`
}

type activityArgs struct {
	PID      int       `json:"pid"`
	Activity *Activity `json:"activity,omitempty"`
}

type command struct {
	Cmd   string `json:"cmd"`
	Args  any    `json:"args"`
	Nonce string `json:"nonce"`
}

// message is the subset of inbound frames the client acts on.
type message struct {
	Cmd  string `json:"cmd"`
	Evt  string `json:"evt"`
	Data struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"data"`
}

type closeMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) setActivity(a *Activity) command {
	return command{
		Cmd:   "SET_ACTIVITY",
		Args:  activityArgs{PID: c.pid, Activity: a},
		Nonce: uuid.NewString(),
	}
}

// handshake sends the client ID and waits, bounded, for READY. Inbound
// frames are processed on the calling goroutine while waiting.
func (c *Client) handshake(ctx context.Context) error {
	if err := c.send(OpHandshake, handshakeRequest{V: 1, ClientID: c.clientID}); err != nil {
		return fmt.Errorf("rpc: send handshake: %w", err)
	}

	timer := time.NewTimer(c.handshakeTimeout)
	defer timer.Stop()

	for c.state == Connecting {
		select {
		case r := <-c.reads:
			c.Process(r)
		case <-timer.C:
			c.log.Warnf("No READY within %s", c.handshakeTimeout)
			c.teardown()
			return ErrHandshakeTimeout
		case <-ctx.Done():
			c.teardown()
			return ctx.Err()
		}
	}

	if c.state != Connected {
		return ErrHandshakeFailed
	}
	return nil
}

func (c *Client) dispatch(f Frame) {
	switch f.Opcode {
	case OpFrame:
		var msg message
		if err := f.Unmarshal(&msg); err != nil {
			c.log.Debugf("Ignoring unparseable frame: %v", err)
			return
		}
		c.log.Debugf("Received %s %s", msg.Cmd, msg.Evt)

		switch {
		case msg.Cmd == "DISPATCH" && msg.Evt == "READY":
			if c.state != Connected {
				c.state = Connected
				c.log.Infof("Handshake complete")
				c.emit(Event{Type: EventConnected})
			}
		case msg.Evt == "ERROR":
			c.log.Warnf("%s failed (%d): %s", msg.Cmd, msg.Data.Code, msg.Data.Message)
			c.emit(Event{Type: EventError, Message: msg.Data.Message})
		}

	case OpClose:
		var msg closeMessage
		_ = f.Unmarshal(&msg)
		c.log.Infof("Discord closed connection (%d): %s", msg.Code, msg.Message)
		c.teardown()

	case OpPing:
		_ = c.send(OpPong, nil)

	default:
		c.log.Debugf("Ignoring %s frame", f.Opcode)
	}
}

// send writes one frame. A failed or short write tears the connection down.
func (c *Client) send(op Opcode, v any) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	data, err := Encode(op, v)
	if err != nil {
		return err
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	n, err := c.conn.Write(data)
	if err == nil && n != len(data) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(data))
	}
	if err != nil {
		c.log.Warnf("Write failed: %v", err)
		c.teardown()
		return fmt.Errorf("rpc: write %s: %w", op, err)
	}
	return nil
}

func (c *Client) attach(conn net.Conn) {
	c.gen++
	c.conn = conn
	c.done = make(chan struct{})
	c.reads = make(chan ReadResult, readQueueSize)
	c.buf = nil
	go readLoop(conn, c.gen, c.reads, c.done)
}

// teardown closes the transport and resets all per-connection state,
// publishing EventDisconnected if the handshake had completed.
func (c *Client) teardown() {
	wasConnected := c.state == Connected
	if c.conn != nil {
		close(c.done)
		_ = c.conn.Close()
		c.conn = nil
	}
	c.reads = nil
	c.buf = nil
	c.state = Disconnected
	if wasConnected {
		c.log.Infof("Disconnected")
		c.emit(Event{Type: EventDisconnected})
	}
}

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Warnf("Event buffer full, dropping %s event", ev.Type)
	}
}

// readLoop forwards everything read from conn until it fails or done closes.
func readLoop(conn net.Conn, gen uint64, out chan<- ReadResult, done <-chan struct{}) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case out <- ReadResult{gen: gen, Data: data}:
			case <-done:
				return
			}
		}
		if err != nil {
			select {
			case out <- ReadResult{gen: gen, Err: err}:
			case <-done:
			}
			return
		}
	}
}
