package imaging

import (
	"cmp"
	"slices"

	"github.com/aretw0/datamodel/pkg/weighted"
)

// DefaultCut is the default fraction of the image a color must exceed to be kept.
const DefaultCut = 0.015

// Histogram counts each packed code over exactly Width*Height pixels.
func Histogram(img *Image) (map[uint32]int, error) {
	if err := img.Check(); err != nil {
		return nil, err
	}
	bpp, _ := BytesPerPixel(img.Format)
	counts := make(map[uint32]int)
	for i := range img.Pixels() {
		counts[Encode(img.Pix, i, bpp)]++
	}
	return counts, nil
}

// Extraction is the result of a palette extraction. Valid is the palette; Invalid holds
// opaque colors at or under the cut and Transparent the rest, both kept for diagnostics.
type Extraction struct {
	Format            Format
	Pixels            int
	MinPixels         float64
	OpaquePixels      int
	TransparentPixels int

	Valid       []weighted.Weighted[Color]
	Invalid     []weighted.Weighted[Color]
	Transparent []weighted.Weighted[Color]
}

type bin struct {
	code  uint32
	count int
	color Color
}

// Extract decodes img and buckets its colors. An opaque color is valid iff it covers more
// than cut*Width*Height pixels. Opaque weights are relative to the opaque pixel total and
// transparent weights to the transparent total. Lists are sorted by weight descending,
// ties by packed code ascending.
func Extract(img *Image, cut float64) (*Extraction, error) {
	counts, err := Histogram(img)
	if err != nil {
		return nil, err
	}

	ex := &Extraction{
		Format:    img.Format,
		Pixels:    img.Pixels(),
		MinPixels: cut * float64(img.Pixels()),
	}

	var opaque, transparent []bin
	total := 0
	for code, n := range counts {
		c, err := Decode(code, img.Format)
		if err != nil {
			return nil, err
		}
		total += n
		if c.Opaque() {
			ex.OpaquePixels += n
			opaque = append(opaque, bin{code, n, c})
		} else {
			transparent = append(transparent, bin{code, n, c})
		}
	}
	ex.TransparentPixels = total - ex.OpaquePixels

	sortBins(opaque)
	sortBins(transparent)

	if ex.OpaquePixels > 0 {
		for _, b := range opaque {
			w := weighted.New(b.color, float64(b.count)/float64(ex.OpaquePixels))
			if float64(b.count) > ex.MinPixels {
				ex.Valid = append(ex.Valid, w)
			} else {
				ex.Invalid = append(ex.Invalid, w)
			}
		}
	}
	for _, b := range transparent {
		ex.Transparent = append(ex.Transparent, weighted.New(b.color, float64(b.count)/float64(ex.TransparentPixels)))
	}
	return ex, nil
}

func sortBins(bins []bin) {
	slices.SortFunc(bins, func(a, b bin) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.code, b.code)
	})
}

// PixelCount converts a weight of one of the lists back into a pixel count.
func (ex *Extraction) PixelCount(w weighted.Weighted[Color]) int {
	total := ex.OpaquePixels
	if !w.Value.Opaque() {
		total = ex.TransparentPixels
	}
	return int(w.Weight*float64(total) + 0.5)
}
