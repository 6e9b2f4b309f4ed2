package imaging

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a normalized RGBA color, each channel in [0,1].
type Color struct {
	R float64 `json:"r" yaml:"r" mapstructure:"r"`
	G float64 `json:"g" yaml:"g" mapstructure:"g"`
	B float64 `json:"b" yaml:"b" mapstructure:"b"`
	A float64 `json:"a" yaml:"a" mapstructure:"a"`
}

// OpaqueAlpha is the alpha a color must exceed to count as opaque.
const OpaqueAlpha = 0.9

// Opaque reports whether the color counts toward the palette.
func (c Color) Opaque() bool { return c.A > OpaqueAlpha }

// Colorful returns the color without alpha.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// Hex returns "#rrggbb".
func (c Color) Hex() string { return c.Colorful().Clamped().Hex() }

// ParseHex parses "#rrggbb" into an opaque color.
func ParseHex(s string) (Color, error) {
	cc, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: cc.R, G: cc.G, B: cc.B, A: 1}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("%s a=%.2f", c.Hex(), c.A)
}
