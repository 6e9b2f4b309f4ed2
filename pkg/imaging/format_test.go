package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesPerPixel(t *testing.T) {
	want := map[Format]int{
		Alpha8: 1, R8: 1,
		ARGB4444: 2, RGB565: 2, RG16: 2, RGBA4444: 2, R16: 2,
		RGB24:  3,
		RGBA32: 4, ARGB32: 4, BGRA32: 4,
		RG32: 2, ARGB4444Full: 2, RG32Wide: 4,
	}
	for f, n := range want {
		got, err := BytesPerPixel(f)
		require.NoError(t, err, f)
		assert.Equal(t, n, got, f)
	}

	_, err := BytesPerPixel(DXT1)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = BytesPerPixel("PVRTC")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Len(t, Formats(), 11)
}

func TestEncodeLittleEndian(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0xAA, 0xBB, 0xCC, 0xDD}
	assert.Equal(t, uint32(0x04030201), Encode(raw, 0, 4))
	assert.Equal(t, uint32(0xDDCCBBAA), Encode(raw, 1, 4))
	assert.Equal(t, uint32(0x0403), Encode(raw, 1, 2))
	assert.Equal(t, uint32(0x030201), Encode(raw, 0, 3))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		f    Format
		want Color
	}{
		{"alpha8", 0xFF, Alpha8, Color{A: 1}},
		{"r8", 0xFF, R8, Color{R: 1, A: 1}},
		{"rgb565 red bits", 0x001F, RGB565, Color{R: 1, A: 1}},
		{"rgb565 green bits", 0x07E0, RGB565, Color{G: 1, A: 1}},
		{"rgb565 blue bits", 0xF800, RGB565, Color{B: 1, A: 1}},
		{"argb4444 alpha low nibble", 0x000F, ARGB4444, Color{A: 1}},
		{"argb4444 top nibble is not blue", 0xF00F, ARGB4444, Color{A: 1}},
		{"argb4444 blue never set", 0xF000, ARGB4444, Color{}},
		{"argb4444 full blue top nibble", 0xF00F, ARGB4444Full, Color{B: 1, A: 1}},
		{"rgba4444", 0xF0F0, RGBA4444, Color{G: 1, A: 1}},
		{"rg16", 0xFF00, RG16, Color{G: 1, A: 1}},
		{"rg32 red fills the code", 0xFFFF, RG32, Color{R: 1, A: 1}},
		{"rg32 wide green", 0xFFFF0000, RG32Wide, Color{G: 1, A: 1}},
		{"rgb24", 0xFF0000, RGB24, Color{B: 1, A: 1}},
		{"rgba32", 0xFF0000FF, RGBA32, Color{R: 1, A: 1}},
		{"argb32", 0x0000FFFF, ARGB32, Color{R: 1, A: 1}},
		{"bgra32", 0xFF0000FF, BGRA32, Color{B: 1, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.code, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	c, err := Decode(0x80, Alpha8)
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255.0, c.A, 1e-12)
	assert.False(t, c.Opaque())

	_, err = Decode(0, R16)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Decode(0, ASTC4x4)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRG32_TwoBytesPerPixel(t *testing.T) {
	// Two pixels of 2 bytes each; with 4-byte pixels the buffer would hold one.
	img := &Image{Width: 2, Height: 1, Format: RG32, Pix: []byte{0xFF, 0xFF, 0x00, 0x00}}
	hist, err := Histogram(img)
	require.NoError(t, err)
	assert.Equal(t, map[uint32]int{0xFFFF: 1, 0x0000: 1}, hist)

	_, err = Histogram(&Image{Width: 2, Height: 1, Format: RG32Wide, Pix: img.Pix})
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ff0000", Color{R: 1, A: 1}.Hex())
	c, err := ParseHex("#00ff00")
	require.NoError(t, err)
	assert.Equal(t, Color{G: 1, A: 1}, c)
	_, err = ParseHex("green")
	assert.Error(t, err)
}
