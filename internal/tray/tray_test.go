package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"strings"
	"testing"

	"github.com/drawrpc/drawrpc/internal/models"
)

func TestFormatTooltip(t *testing.T) {
	tests := []struct {
		name string
		info models.ProcessInfo
		doc  models.CommandDocument
		want string
	}{
		{
			name: "stopped, no document",
			want: "Discord RPC - Presence Stopped ⏸",
		},
		{
			name: "running with details",
			info: models.ProcessInfo{Running: true, PID: 42},
			doc:  models.CommandDocument{Command: models.CommandUpdate, Details: "Sketching"},
			want: "Discord RPC - Presence Running ✅\nSketching",
		},
		{
			name: "details ignored after clear",
			info: models.ProcessInfo{Running: true, PID: 42},
			doc:  models.CommandDocument{Command: models.CommandClear, Details: "stale"},
			want: "Discord RPC - Presence Running ✅",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTooltip(tt.info, tt.doc); got != tt.want {
				t.Errorf("formatTooltip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	if got := formatStatus(models.ProcessInfo{Running: true, PID: 7}); !strings.Contains(got, "PID 7") {
		t.Errorf("formatStatus(running) = %q", got)
	}
	if got := formatStatus(models.ProcessInfo{}); got != "Presence stopped" {
		t.Errorf("formatStatus(stopped) = %q", got)
	}
}

func TestRenderIcon(t *testing.T) {
	data := renderIcon(iconSize)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("bounds = %v", b)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want transparent", a)
	}
	if _, _, _, a := img.At(iconSize/2, 3).RGBA(); a == 0 {
		t.Error("disc edge should be opaque")
	}
}

func TestWrapICO(t *testing.T) {
	pngData := renderIcon(iconSize)
	ico := wrapICO(pngData, iconSize)

	if got := binary.LittleEndian.Uint16(ico[2:4]); got != 1 {
		t.Errorf("type = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint16(ico[4:6]); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(ico[14:18]); int(got) != len(pngData) {
		t.Errorf("size = %d, want %d", got, len(pngData))
	}
	if got := binary.LittleEndian.Uint32(ico[18:22]); got != 22 {
		t.Errorf("offset = %d, want 22", got)
	}
	if !bytes.Equal(ico[22:], pngData) {
		t.Error("embedded PNG differs")
	}
}
