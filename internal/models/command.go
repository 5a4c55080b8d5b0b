// Package models contains shared data structures used across the application.
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Command is the action a command document asks the daemon to take.
type Command string

// Commands understood by the daemon.
const (
	CommandUpdate Command = "update"
	CommandClear  Command = "clear"
	CommandQuit   Command = "quit"
)

// Button is a clickable link shown under the presence.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CommandDocument is the shared state file written by collaborators and
// consumed by the daemon. It describes the full desired presence, not a delta.
// This corresponds to <data>/state.json.
type CommandDocument struct {
	Command    Command  `json:"command,omitempty"`
	LargeImage string   `json:"large_image,omitempty"`
	LargeText  string   `json:"large_text,omitempty"`
	Details    string   `json:"details,omitempty"`
	State      string   `json:"state,omitempty"`
	Start      UnixTime `json:"start,omitempty"` // 0 = no timer
	SmallImage string   `json:"small_image,omitempty"`
	SmallText  string   `json:"small_text,omitempty"`
	Buttons    []Button `json:"buttons,omitempty"`
}

// IsEmpty reports whether the document carries no command and no fields,
// which is how a freshly created "{}" state file decodes.
func (d CommandDocument) IsEmpty() bool {
	return d.Command == "" &&
		d.LargeImage == "" && d.LargeText == "" &&
		d.Details == "" && d.State == "" && d.Start == 0 &&
		d.SmallImage == "" && d.SmallText == "" &&
		len(d.Buttons) == 0
}

// UnixTime is a timestamp in unix seconds. Writers are not strict about its
// type: a float is truncated, a numeric string is parsed, and anything else
// decodes as 0 instead of rejecting the document.
type UnixTime int64

// UnmarshalJSON implements json.Unmarshaler.
func (t *UnixTime) UnmarshalJSON(data []byte) error {
	*t = 0
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(strings.TrimSpace(s))
	}
	text := string(data)

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*t = UnixTime(n)
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return nil
	}
	*t = UnixTime(math.Trunc(f))
	return nil
}
