package variants

import (
	"encoding/base64"
	"fmt"
	"image"
	"slices"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/imaging"
	"github.com/aretw0/datamodel/pkg/weighted"
)

// Image holds a raw pixel buffer.
type Image struct {
	img *imaging.Image
}

func NewImage() *Image { return &Image{} }

func (i *Image) Kind() string { return KindImage }

// Image returns the held buffer or nil.
func (i *Image) Image() *imaging.Image { return i.img }

// TrySet accepts *imaging.Image, imaging.Image, any image.Image (converted to RGBA32)
// and the exported map form.
func (i *Image) TrySet(input any, _ *domain.Record) bool {
	img, ok := imageOf(input)
	if !ok {
		return false
	}
	i.img = img
	return true
}

// imageOf returns a buffer the caller owns; later changes to input do not reach it.
func imageOf(input any) (*imaging.Image, bool) {
	switch v := input.(type) {
	case *Image:
		if v == nil || v.img == nil {
			return nil, false
		}
		return v.img.Clone(), true
	case *imaging.Image:
		if v == nil {
			return nil, false
		}
		return v.Clone(), true
	case imaging.Image:
		return v.Clone(), true
	case image.Image:
		if v == nil {
			return nil, false
		}
		return imaging.FromImage(v), true
	}
	var img imaging.Image
	if decodeMap(input, &img) && img.Format != "" {
		return &img, true
	}
	return nil, false
}

func (i *Image) Export() any {
	if i.img == nil {
		return nil
	}
	return map[string]any{
		"width":  i.img.Width,
		"height": i.img.Height,
		"format": string(i.img.Format),
		"pix":    base64.StdEncoding.EncodeToString(i.img.Pix),
		"source": i.img.Source,
	}
}

func (i *Image) String() string {
	if i.img == nil {
		return "<no image>"
	}
	return fmt.Sprintf("%dx%d %s", i.img.Width, i.img.Height, i.img.Format)
}

// Palette is the weighted list of dominant colors of an image field. It is derived from
// an Image through Feed and computed once until cleared.
type Palette struct {
	cut    float64
	colors []weighted.Weighted[imaging.Color]
	last   *imaging.Extraction
}

func NewPalette() *Palette { return &Palette{cut: imaging.DefaultCut} }

func (p *Palette) Kind() string       { return KindPalette }
func (p *Palette) SourceKind() string { return KindImage }

// Colors returns the palette, heaviest first.
func (p *Palette) Colors() []weighted.Weighted[imaging.Color] { return slices.Clone(p.colors) }

// Cut returns the fraction of the image a color must exceed to be kept.
func (p *Palette) Cut() float64 { return p.cut }

// Extraction returns the details of the last extraction, or nil.
func (p *Palette) Extraction() *imaging.Extraction { return p.last }

// Clear empties the palette so the next Feed recomputes it.
func (p *Palette) Clear() {
	p.colors = nil
	p.last = nil
}

// Feed extracts the palette from an Image value. It does nothing while the palette holds
// colors. A nil image clears the palette; an unsupported format leaves it untouched and
// returns the error.
func (p *Palette) Feed(source domain.Value) (bool, error) {
	if len(p.colors) > 0 {
		return false, nil
	}
	src, ok := source.(*Image)
	if !ok {
		return false, nil
	}
	if src.img == nil {
		p.Clear()
		return false, nil
	}
	return p.extract(src.img)
}

func (p *Palette) extract(img *imaging.Image) (bool, error) {
	ex, err := imaging.Extract(img, p.cut)
	if err != nil {
		return false, fmt.Errorf("extract palette: %w", err)
	}
	p.last = ex
	p.colors = append(p.colors, ex.Valid...)
	return len(ex.Valid) > 0, nil
}

// TrySet accepts an image handle (extracted immediately, replacing the palette), a cut
// fraction, a color list or the exported map with both.
func (p *Palette) TrySet(input any, _ *domain.Record) bool {
	if img, ok := imageOf(input); ok {
		prev, prevLast := p.colors, p.last
		p.colors = nil
		if _, err := p.extract(img); err != nil {
			p.colors, p.last = prev, prevLast
			return false
		}
		return true
	}
	if cut, ok := toFloat64(input); ok {
		if cut < 0 || cut > 1 {
			return false
		}
		p.cut = cut
		return true
	}
	if colors, ok := colorsOf(input); ok {
		p.colors = colors
		return true
	}
	var doc struct {
		Cut    float64 `mapstructure:"cut"`
		Colors []any   `mapstructure:"colors"`
	}
	if !decodeMap(input, &doc) || doc.Cut < 0 || doc.Cut > 1 {
		return false
	}
	colors, ok := colorsOf(doc.Colors)
	if !ok {
		return false
	}
	if doc.Cut > 0 {
		p.cut = doc.Cut
	}
	p.colors = colors
	return true
}

func colorsOf(input any) ([]weighted.Weighted[imaging.Color], bool) {
	if v, ok := input.([]weighted.Weighted[imaging.Color]); ok {
		return slices.Clone(v), true
	}
	items, ok := toSlice(input)
	if !ok {
		return nil, false
	}
	out := make([]weighted.Weighted[imaging.Color], 0, len(items))
	for _, it := range items {
		var w weighted.Weighted[imaging.Color]
		switch v := it.(type) {
		case weighted.Weighted[imaging.Color]:
			w = v
		default:
			if !decodeMap(it, &w) {
				return nil, false
			}
		}
		out = append(out, w)
	}
	return out, true
}

func (p *Palette) Export() any {
	colors := make([]any, len(p.colors))
	for i, c := range p.colors {
		colors[i] = map[string]any{
			"value":  map[string]any{"r": c.Value.R, "g": c.Value.G, "b": c.Value.B, "a": c.Value.A},
			"weight": c.Weight,
		}
	}
	return map[string]any{"cut": p.cut, "colors": colors}
}

func (p *Palette) String() string {
	s := fmt.Sprintf("%d colors", len(p.colors))
	for i, c := range p.colors {
		if i == 3 {
			s += " ..."
			break
		}
		s += fmt.Sprintf(" %s(%.0f%%)", c.Value.Hex(), c.Weight*100)
	}
	return s
}
