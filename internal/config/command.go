package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/drawrpc/drawrpc/internal/models"
)

// ErrMalformedDocument is returned when the state file exists but does not
// hold a JSON object.
var ErrMalformedDocument = errors.New("malformed command document")

// Snapshot is one read of the command document: the bytes as found on disk
// and their decoded form.
type Snapshot struct {
	Raw []byte
	Doc models.CommandDocument
}

// CommandStore reads and writes the command document shared between the
// daemon and its collaborators. Writers replace the whole file; the last
// writer wins.
type CommandStore struct {
	path string
}

// NewCommandStore creates a store backed by the file at path.
func NewCommandStore(path string) *CommandStore {
	return &CommandStore{path: path}
}

// CommandStore returns the store for <data>/state.json.
func (p Paths) CommandStore() *CommandStore {
	return NewCommandStore(p.StateFile())
}

// Path returns the backing file path.
func (s *CommandStore) Path() string {
	return s.path
}

// EnsureExists creates the file with an empty object if it's missing, so
// there is something to watch.
func (s *CommandStore) EnsureExists() error {
	if FileExists(s.path) {
		return nil
	}
	return writeFileAtomic(s.path, []byte("{}"), 0o644)
}

// Load reads and decodes the document. A missing file yields an empty
// snapshot and no error; unreadable or malformed content is returned as an
// error which callers treat as "no command".
func (s *CommandStore) Load() (Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	snap := Snapshot{Raw: raw}
	if len(bytes.TrimSpace(raw)) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(raw, &snap.Doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w in %s: %v", ErrMalformedDocument, s.path, err)
	}
	return snap, nil
}

// Read returns the decoded document, or an empty one when the file is
// missing or unreadable.
func (s *CommandStore) Read() models.CommandDocument {
	snap, err := s.Load()
	if err != nil {
		return models.CommandDocument{}
	}
	return snap.Doc
}

// Write replaces the document.
func (s *CommandStore) Write(doc models.CommandDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal command document: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'), 0o644)
}

// SendUpdate writes a complete update document.
func (s *CommandStore) SendUpdate(doc models.CommandDocument) error {
	doc.Command = models.CommandUpdate
	return s.Write(doc)
}

// SendClear writes a bare clear command.
func (s *CommandStore) SendClear() error {
	return s.Write(models.CommandDocument{Command: models.CommandClear})
}

// SendQuit asks a running daemon to exit, keeping every other field so the
// presence can be resumed with SetUpdate.
func (s *CommandStore) SendQuit() error {
	return s.setCommand(models.CommandQuit)
}

// SetUpdate flips the command back to "update" while preserving all other
// fields. Call it before launching the daemon so a leftover quit doesn't stop
// it immediately.
func (s *CommandStore) SetUpdate() error {
	return s.setCommand(models.CommandUpdate)
}

func (s *CommandStore) setCommand(cmd models.Command) error {
	fields := map[string]json.RawMessage{}
	if raw, err := os.ReadFile(s.path); err == nil {
		// Malformed content is dropped; the command alone is still valid.
		_ = json.Unmarshal(raw, &fields)
		if fields == nil {
			fields = map[string]json.RawMessage{}
		}
	}

	encoded, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	fields["command"] = encoded

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal command document: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'), 0o644)
}
