package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

// fakeDiscord is the far end of an in-memory pipe that records every frame
// the client sends and optionally answers the handshake with READY.
type fakeDiscord struct {
	t      *testing.T
	conn   net.Conn
	frames chan Frame
}

func newFakeDiscord(t *testing.T, ready bool) (*fakeDiscord, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	f := &fakeDiscord{t: t, conn: server, frames: make(chan Frame, 32)}
	t.Cleanup(func() { _ = server.Close() })

	go func() {
		defer close(f.frames)
		var buf []byte
		chunk := make([]byte, 1024)
		for {
			n, err := server.Read(chunk)
			if err != nil {
				return
			}
			buf = append(buf, chunk[:n]...)
			for {
				frame, used, err := Decode(buf)
				if err != nil {
					break
				}
				frame.Payload = append([]byte(nil), frame.Payload...)
				buf = buf[used:]
				if ready && frame.Opcode == OpHandshake {
					_, _ = server.Write(EncodeRaw(OpFrame, []byte(`{"cmd":"DISPATCH","evt":"READY","data":{"v":1}}`)))
				}
				f.frames <- frame
			}
		}
	}()
	return f, client
}

func (f *fakeDiscord) write(data []byte) {
	f.t.Helper()
	if _, err := f.conn.Write(data); err != nil {
		f.t.Fatalf("fake write: %v", err)
	}
}

func (f *fakeDiscord) next(c *Client) Frame {
	f.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case r := <-c.Reads():
			c.Process(r)
		case frame, ok := <-f.frames:
			if !ok {
				f.t.Fatal("fake connection closed")
			}
			return frame
		case <-timeout:
			f.t.Fatal("timed out waiting for frame")
		}
	}
}

// pump processes reads until cond holds.
func pump(t *testing.T, c *Client, cond func() bool) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for !cond() {
		select {
		case r := <-c.Reads():
			c.Process(r)
		case <-timeout:
			t.Fatal("timed out waiting for condition")
		}
	}
}

func singleConnDialer(conn net.Conn) (Dialer, *int) {
	calls := 0
	return func(ctx context.Context, path string) (net.Conn, error) {
		calls++
		if path != "fake-0" || conn == nil {
			return nil, fmt.Errorf("no listener at %s", path)
		}
		c := conn
		conn = nil
		return c, nil
	}, &calls
}

func newTestClient(dial Dialer, opts ...Option) *Client {
	base := []Option{
		WithEndpoint(func(n int) string { return fmt.Sprintf("fake-%d", n) }),
		WithDialer(dial),
		WithPID(4242),
	}
	return NewClient("123456", append(base, opts...)...)
}

func connectedClient(t *testing.T) (*Client, *fakeDiscord) {
	t.Helper()
	fake, conn := newFakeDiscord(t, true)
	dial, _ := singleConnDialer(conn)
	c := newTestClient(dial)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	hs := fake.next(c)
	if hs.Opcode != OpHandshake {
		t.Fatalf("first frame = %s, want HANDSHAKE", hs.Opcode)
	}
	return c, fake
}

func drainEvents(c *Client) []EventType {
	var out []EventType
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev.Type)
		default:
			return out
		}
	}
}

func TestConnectHandshake(t *testing.T) {
	fake, conn := newFakeDiscord(t, true)
	dial, _ := singleConnDialer(conn)
	c := newTestClient(dial)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if c.State() != Connected {
		t.Errorf("State() = %s, want connected", c.State())
	}

	hs := fake.next(c)
	var req map[string]any
	if err := hs.Unmarshal(&req); err != nil {
		t.Fatalf("handshake payload: %v", err)
	}
	if req["v"] != float64(1) || req["client_id"] != "123456" {
		t.Errorf("handshake = %v", req)
	}

	events := drainEvents(c)
	if len(events) != 1 || events[0] != EventConnected {
		t.Errorf("events = %v, want [connected]", events)
	}

	// Already connected: no second dial.
	if err := c.Connect(context.Background()); err != nil {
		t.Errorf("second Connect() error = %v", err)
	}
}

func TestConnectNoEndpoint(t *testing.T) {
	dial, calls := singleConnDialer(nil)
	c := newTestClient(dial)

	err := c.Connect(context.Background())
	if !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("Connect() error = %v, want ErrNoEndpoint", err)
	}
	if c.State() != Disconnected {
		t.Errorf("State() = %s, want disconnected", c.State())
	}
	if *calls != MaxPipes {
		t.Errorf("dialed %d endpoints, want %d", *calls, MaxPipes)
	}
	if events := drainEvents(c); len(events) != 1 || events[0] != EventError {
		t.Errorf("events = %v, want [error]", events)
	}
}

func TestConnectHandshakeTimeout(t *testing.T) {
	_, conn := newFakeDiscord(t, false)
	dial, _ := singleConnDialer(conn)
	c := newTestClient(dial, WithHandshakeTimeout(50*time.Millisecond))

	err := c.Connect(context.Background())
	if !errors.Is(err, ErrHandshakeTimeout) {
		t.Fatalf("Connect() error = %v, want ErrHandshakeTimeout", err)
	}
	if c.State() != Disconnected {
		t.Errorf("State() = %s, want disconnected", c.State())
	}
	if c.Reads() != nil {
		t.Error("Reads() should be nil after teardown")
	}
}

func TestActivityRequiresConnection(t *testing.T) {
	dial, calls := singleConnDialer(nil)
	c := newTestClient(dial)

	if err := c.SetActivity(&Activity{Details: "x"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetActivity() error = %v, want ErrNotConnected", err)
	}
	if err := c.ClearActivity(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ClearActivity() error = %v, want ErrNotConnected", err)
	}
	if *calls != 0 {
		t.Errorf("dialer called %d times", *calls)
	}
}

func TestSetAndClearActivity(t *testing.T) {
	c, fake := connectedClient(t)

	if err := c.SetActivity(&Activity{Details: "Coding"}); err != nil {
		t.Fatalf("SetActivity() error = %v", err)
	}
	if err := c.ClearActivity(); err != nil {
		t.Fatalf("ClearActivity() error = %v", err)
	}

	type sent struct {
		Cmd  string `json:"cmd"`
		Args struct {
			PID      int             `json:"pid"`
			Activity json.RawMessage `json:"activity"`
		} `json:"args"`
		Nonce string `json:"nonce"`
	}

	var set, clear sent
	if err := fake.next(c).Unmarshal(&set); err != nil {
		t.Fatal(err)
	}
	if err := fake.next(c).Unmarshal(&clear); err != nil {
		t.Fatal(err)
	}

	if set.Cmd != "SET_ACTIVITY" || set.Args.PID != 4242 {
		t.Errorf("set = %+v", set)
	}
	if string(set.Args.Activity) != `{"details":"Coding"}` {
		t.Errorf("set activity = %s", set.Args.Activity)
	}
	if clear.Args.Activity != nil {
		t.Errorf("clear carried activity %s", clear.Args.Activity)
	}
	if set.Nonce == "" || set.Nonce == clear.Nonce {
		t.Errorf("nonces = %q, %q", set.Nonce, clear.Nonce)
	}
}

func TestPingGetsPong(t *testing.T) {
	c, fake := connectedClient(t)

	// Two pings in a single write must produce two pongs.
	two := append(EncodeRaw(OpPing, []byte(`{"n":1}`)), EncodeRaw(OpPing, []byte(`{"n":2}`))...)
	fake.write(two)

	for i := 0; i < 2; i++ {
		f := fake.next(c)
		if f.Opcode != OpPong {
			t.Fatalf("frame %d = %s, want PONG", i, f.Opcode)
		}
		if string(f.Payload) != "{}" {
			t.Errorf("pong payload = %s, want {}", f.Payload)
		}
	}
	if !c.Connected() {
		t.Error("client should stay connected")
	}
}

func TestSplitFrameIsBuffered(t *testing.T) {
	c, fake := connectedClient(t)

	ping := EncodeRaw(OpPing, []byte(`{}`))
	fake.write(ping[:3])
	fake.write(ping[3:])

	if f := fake.next(c); f.Opcode != OpPong {
		t.Errorf("frame = %s, want PONG", f.Opcode)
	}
}

func TestCloseFrameDisconnects(t *testing.T) {
	c, fake := connectedClient(t)
	drainEvents(c)

	fake.write(EncodeRaw(OpClose, []byte(`{"code":4000,"message":"Invalid Client ID"}`)))
	pump(t, c, func() bool { return c.State() == Disconnected })

	if events := drainEvents(c); len(events) != 1 || events[0] != EventDisconnected {
		t.Errorf("events = %v, want [disconnected]", events)
	}
	if err := c.SetActivity(&Activity{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetActivity() error = %v, want ErrNotConnected", err)
	}
}

func TestPeerHangupDisconnects(t *testing.T) {
	c, fake := connectedClient(t)
	drainEvents(c)

	_ = fake.conn.Close()
	pump(t, c, func() bool { return c.State() == Disconnected })

	if events := drainEvents(c); len(events) != 1 || events[0] != EventDisconnected {
		t.Errorf("events = %v, want [disconnected]", events)
	}
}

func TestMalformedPayloadIgnored(t *testing.T) {
	c, fake := connectedClient(t)

	fake.write(EncodeRaw(OpFrame, []byte(`not json`)))
	fake.write(EncodeRaw(OpPing, []byte(`{}`)))

	if f := fake.next(c); f.Opcode != OpPong {
		t.Errorf("frame = %s, want PONG", f.Opcode)
	}
	if !c.Connected() {
		t.Error("malformed payload should not drop the connection")
	}
}

func TestErrorEventSurfaces(t *testing.T) {
	c, fake := connectedClient(t)
	drainEvents(c)

	fake.write(EncodeRaw(OpFrame, []byte(`{"cmd":"SET_ACTIVITY","evt":"ERROR","data":{"code":4000,"message":"bad"}}`)))
	fake.write(EncodeRaw(OpPing, []byte(`{}`)))
	fake.next(c)

	select {
	case ev := <-c.Events():
		if ev.Type != EventError || ev.Message != "bad" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Error("no error event")
	}
}
