// Package rpc implements the chat client's local IPC protocol: the binary
// frame codec, endpoint discovery and the presence client.
package rpc

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// Opcode identifies the kind of frame on the wire.
type Opcode int32

// Frame opcodes.
const (
	OpHandshake Opcode = 0
	OpFrame     Opcode = 1
	OpClose     Opcode = 2
	OpPing      Opcode = 3
	OpPong      Opcode = 4
)

func (o Opcode) String() string {
	switch o {
	case OpHandshake:
		return "HANDSHAKE"
	case OpFrame:
		return "FRAME"
	case OpClose:
		return "CLOSE"
	case OpPing:
		return "PING"
	case OpPong:
		return "PONG"
	default:
		return fmt.Sprintf("OPCODE(%d)", int32(o))
	}
}

const (
	// HeaderSize is the opcode plus the payload length, both int32 LE.
	HeaderSize = 8

	// MaxPayloadSize caps a single inbound payload. The chat client's
	// messages are small JSON objects; anything larger is a broken peer.
	MaxPayloadSize = 64 * 1024
)

var (
	// ErrNeedMoreData means the buffer holds less than one full frame.
	// Nothing was consumed; keep the buffer and read more.
	ErrNeedMoreData = errors.New("rpc: need more data")

	// ErrFrameTooLarge means the header announced a payload length that is
	// negative or above MaxPayloadSize. The stream can't be resynchronised.
	ErrFrameTooLarge = errors.New("rpc: frame too large")
)

// Frame is one decoded message.
type Frame struct {
	Opcode  Opcode
	Payload []byte
}

// Unmarshal decodes the JSON payload into v.
func (f Frame) Unmarshal(v any) error {
	return json.Unmarshal(f.Payload, v)
}

// Encode marshals v as JSON and frames it. A nil v encodes as "{}".
func Encode(op Opcode, v any) ([]byte, error) {
	payload := []byte("{}")
	if v != nil {
		var err error
		payload, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("rpc: marshal %s payload: %w", op, err)
		}
	}
	return EncodeRaw(op, payload), nil
}

// EncodeRaw frames an already encoded payload.
func EncodeRaw(op Opcode, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf
}

// Decode parses the first frame in buf and returns it with the number of
// bytes it occupied. The returned payload aliases buf.
func Decode(buf []byte) (Frame, int, error) {
	if len(buf) < HeaderSize {
		return Frame{}, 0, ErrNeedMoreData
	}

	op := Opcode(int32(binary.LittleEndian.Uint32(buf[0:4])))
	length := int32(binary.LittleEndian.Uint32(buf[4:8]))
	if length < 0 || length > MaxPayloadSize {
		return Frame{}, 0, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	total := HeaderSize + int(length)
	if len(buf) < total {
		return Frame{}, 0, ErrNeedMoreData
	}
	return Frame{Opcode: op, Payload: buf[HeaderSize:total]}, total, nil
}
