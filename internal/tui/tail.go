package tui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/drawrpc/drawrpc/internal/logging"
)

// Tail reads complete lines appended to a file since the last call.
type Tail struct {
	path    string
	offset  int64
	partial []byte
}

// NewTail starts reading path from the beginning.
func NewTail(path string) *Tail {
	return &Tail{path: path}
}

// Read returns the complete lines written since the previous call. A file
// that shrank (truncated or rotated) is read again from the start and
// reset is true. A missing file yields no lines and no error.
func (t *Tail) Read() (lines []string, reset bool, err error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, err
	}
	if info.Size() < t.offset {
		t.offset = 0
		t.partial = nil
		reset = true
	}
	if info.Size() == t.offset {
		return nil, reset, nil
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, reset, fmt.Errorf("failed to seek %s: %w", t.path, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, reset, fmt.Errorf("failed to read %s: %w", t.path, err)
	}
	t.offset += int64(len(data))

	data = append(t.partial, data...)
	last := bytes.LastIndexByte(data, '\n')
	if last < 0 {
		t.partial = data
		return nil, reset, nil
	}
	t.partial = append([]byte(nil), data[last+1:]...)

	for _, line := range strings.Split(string(data[:last]), "\n") {
		lines = append(lines, strings.TrimRight(line, "\r"))
	}
	return lines, reset, nil
}

var linePattern = regexp.MustCompile(`^\[[^\]]+\] \[(DEBUG|INFO|WARNING|ERROR)\] `)

// lineLevel extracts the level of a "[timestamp] [LEVEL] message" line.
// Lines without one (continuations, foreign output) report ok=false.
func lineLevel(line string) (level logging.Level, ok bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return logging.LevelInfo, false
	}
	return logging.ParseLevel(m[1]), true
}
