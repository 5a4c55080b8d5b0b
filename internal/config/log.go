package config

import (
	"fmt"
	"os"
)

// MaxLogSize is the size at which the daemon log is rotated on startup.
const MaxLogSize = 5 << 20

// RotatedLogFile returns the path the previous daemon log is moved to.
func (p Paths) RotatedLogFile() string {
	return p.LogFile() + ".1"
}

// RotateLog moves the daemon log aside when it has grown past maxSize,
// replacing any earlier rotated copy. It reports whether it rotated.
func (p Paths) RotateLog(maxSize int64) (bool, error) {
	info, err := os.Stat(p.LogFile())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() < maxSize {
		return false, nil
	}
	if err := os.Rename(p.LogFile(), p.RotatedLogFile()); err != nil {
		return false, fmt.Errorf("failed to rotate log file: %w", err)
	}
	return true, nil
}
