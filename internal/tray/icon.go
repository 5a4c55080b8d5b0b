package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"runtime"
	"sync"
)

const iconSize = 32

var (
	iconOnce  sync.Once
	iconBytes []byte
)

// iconData returns the tray icon: PNG everywhere except Windows, which wants
// an ICO container (the PNG is embedded as the single image).
func iconData() []byte {
	iconOnce.Do(func() {
		pngData := renderIcon(iconSize)
		if runtime.GOOS == "windows" {
			iconBytes = wrapICO(pngData, iconSize)
		} else {
			iconBytes = pngData
		}
	})
	return iconBytes
}

// renderIcon draws a blurple disc with a white ring, anti-aliased at the
// edges.
func renderIcon(size int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	fill := color.NRGBA{R: 0x58, G: 0x65, B: 0xF2, A: 0xFF}
	ring := color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	c := float64(size) / 2
	outer := c - 1
	ringOuter := outer * 0.55
	ringInner := outer * 0.35

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			alpha := clamp01(outer + 0.5 - d)
			if alpha == 0 {
				continue
			}
			px := fill
			if d >= ringInner && d <= ringOuter {
				px = ring
			}
			px.A = uint8(alpha * 255)
			img.SetNRGBA(x, y, px)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// wrapICO builds a one-entry ICO file around PNG data.
func wrapICO(pngData []byte, size int) []byte {
	const headerSize, entrySize = 6, 16

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16
	}{0, 1, 1})
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{
		Width:    uint8(size % 256),
		Height:   uint8(size % 256),
		Planes:   1,
		BitCount: 32,
		Size:     uint32(len(pngData)),
		Offset:   headerSize + entrySize,
	})
	buf.Write(pngData)
	return buf.Bytes()
}
