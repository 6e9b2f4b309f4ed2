package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"slices"
)

// Image is a raw pixel buffer. Pix may carry trailing padding; only the first
// Width*Height pixels are read.
type Image struct {
	Width  int    `json:"width" yaml:"width" mapstructure:"width"`
	Height int    `json:"height" yaml:"height" mapstructure:"height"`
	Format Format `json:"format" yaml:"format" mapstructure:"format"`
	Pix    []byte `json:"pix" yaml:"pix" mapstructure:"pix"`

	// Source is an optional path or URL the pixels were loaded from.
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
}

// Clone returns a copy that shares no memory with img.
func (img *Image) Clone() *Image {
	c := *img
	c.Pix = slices.Clone(img.Pix)
	return &c
}

// Pixels returns Width*Height.
func (img *Image) Pixels() int { return img.Width * img.Height }

// Check verifies the format is decodable and the buffer covers every pixel.
func (img *Image) Check() error {
	if err := Supported(img.Format); err != nil {
		return err
	}
	if img.Width < 0 || img.Height < 0 {
		return fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	bpp, _ := BytesPerPixel(img.Format)
	if need := img.Pixels() * bpp; len(img.Pix) < need {
		return fmt.Errorf("%w: %d bytes, %dx%d %s needs %d", ErrShortBuffer, len(img.Pix), img.Width, img.Height, img.Format, need)
	}
	return nil
}

// Equal reports whether both images hold the same pixels in the same format.
func (img *Image) Equal(other *Image) bool {
	if img == nil || other == nil {
		return img == other
	}
	return img.Width == other.Width && img.Height == other.Height &&
		img.Format == other.Format && string(img.Pix) == string(other.Pix)
}

// FromImage converts a decoded image into an RGBA32 buffer of non-premultiplied pixels.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := &Image{Width: b.Dx(), Height: b.Dy(), Format: RGBA32, Pix: make([]byte, 0, b.Dx()*b.Dy()*4)}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Pix = append(out.Pix, c.R, c.G, c.B, c.A)
		}
	}
	return out
}

// Load decodes a PNG, JPEG or GIF stream.
func Load(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(src), nil
}
