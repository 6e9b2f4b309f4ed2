package imaging

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for compressed or unknown pixel formats.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")

	// ErrNotImplemented is returned for recognized formats whose decoding is not covered.
	ErrNotImplemented = errors.New("not implemented")

	// ErrShortBuffer is returned when the pixel buffer is smaller than width*height pixels.
	ErrShortBuffer = errors.New("pixel buffer too short")
)

// Format is a packed pixel format tag.
type Format string

const (
	Alpha8   Format = "Alpha8"
	R8       Format = "R8"
	ARGB4444 Format = "ARGB4444"
	RGB565   Format = "RGB565"
	RG16     Format = "RG16"
	RGBA4444 Format = "RGBA4444"
	RG32     Format = "RG32"
	RGB24    Format = "RGB24"
	RGBA32   Format = "RGBA32"
	ARGB32   Format = "ARGB32"
	BGRA32   Format = "BGRA32"

	// RG32Wide reads two 16-bit channels from 4 bytes. RG32 keeps the stored layout, which
	// packs only 2 bytes per pixel, so its green channel always reads 0.
	RG32Wide Format = "RG32_WIDE"
	// ARGB4444Full reads blue from bits 12..15. ARGB4444 keeps the stored layout, which
	// reads blue past the 16-bit code and so always yields 0.
	ARGB4444Full Format = "ARGB4444_FULL"

	// Recognized, not decoded.
	R16       Format = "R16"
	DXT1      Format = "DXT1"
	DXT5      Format = "DXT5"
	ETC2RGBA8 Format = "ETC2_RGBA8"
	ASTC4x4   Format = "ASTC_4x4"
)

// channel is a bit field inside a packed code. bits == 0 means the channel is absent.
type channel struct {
	shift, bits uint
}

func (c channel) read(code uint32, absent float64) float64 {
	if c.bits == 0 {
		return absent
	}
	full := uint32(1)<<c.bits - 1
	return float64((code>>c.shift)&full) / float64(full)
}

type layout struct {
	bpp        int
	r, g, b, a channel
}

var layouts = map[Format]layout{
	Alpha8:   {bpp: 1, a: channel{0, 8}},
	R8:       {bpp: 1, r: channel{0, 8}},
	ARGB4444: {bpp: 2, a: channel{0, 4}, r: channel{4, 4}, g: channel{8, 4}, b: channel{16, 4}},
	RGB565:   {bpp: 2, r: channel{0, 5}, g: channel{5, 6}, b: channel{11, 5}},
	RG16:     {bpp: 2, r: channel{0, 8}, g: channel{8, 8}},
	RGBA4444: {bpp: 2, r: channel{0, 4}, g: channel{4, 4}, b: channel{8, 4}, a: channel{12, 4}},
	RG32:     {bpp: 2, r: channel{0, 16}, g: channel{16, 16}},
	RGB24:    {bpp: 3, r: channel{0, 8}, g: channel{8, 8}, b: channel{16, 8}},
	RGBA32:   {bpp: 4, r: channel{0, 8}, g: channel{8, 8}, b: channel{16, 8}, a: channel{24, 8}},
	ARGB32:   {bpp: 4, a: channel{0, 8}, r: channel{8, 8}, g: channel{16, 8}, b: channel{24, 8}},
	BGRA32:   {bpp: 4, b: channel{0, 8}, g: channel{8, 8}, r: channel{16, 8}, a: channel{24, 8}},

	RG32Wide:     {bpp: 4, r: channel{0, 16}, g: channel{16, 16}},
	ARGB4444Full: {bpp: 2, a: channel{0, 4}, r: channel{4, 4}, g: channel{8, 4}, b: channel{12, 4}},
}

var recognized = map[Format]int{
	R16:       2,
	DXT1:      0,
	DXT5:      0,
	ETC2RGBA8: 0,
	ASTC4x4:   0,
}

// Formats returns the standard decodable formats in table order. RG32Wide and
// ARGB4444Full are decodable too but not listed.
func Formats() []Format {
	return []Format{Alpha8, R8, ARGB4444, RGB565, RG16, RGBA4444, RG32, RGB24, RGBA32, ARGB32, BGRA32}
}

// Supported reports nil when f can be decoded.
func Supported(f Format) error {
	if _, ok := layouts[f]; ok {
		return nil
	}
	if bpp, ok := recognized[f]; ok && bpp > 0 {
		return fmt.Errorf("%w: %s decode: %w", ErrUnsupportedFormat, f, ErrNotImplemented)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// BytesPerPixel returns the fixed byte width of f.
func BytesPerPixel(f Format) (int, error) {
	if l, ok := layouts[f]; ok {
		return l.bpp, nil
	}
	if bpp, ok := recognized[f]; ok && bpp > 0 {
		return bpp, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// Encode packs the bpp bytes of pixel i little-endian: byte 0 in bits 0..7, byte 1 in
// bits 8..15, and so on. raw must hold at least (i+1)*bpp bytes.
func Encode(raw []byte, i, bpp int) uint32 {
	base := i * bpp
	var code uint32
	for b := 0; b < bpp; b++ {
		code |= uint32(raw[base+b]) << (8 * b)
	}
	return code
}

// Decode converts a packed code into normalized RGBA. Missing color channels read 0 and
// a missing alpha channel reads 1.
func Decode(code uint32, f Format) (Color, error) {
	l, ok := layouts[f]
	if !ok {
		return Color{}, Supported(f)
	}
	return Color{
		R: l.r.read(code, 0),
		G: l.g.read(code, 0),
		B: l.b.read(code, 0),
		A: l.a.read(code, 1),
	}, nil
}
