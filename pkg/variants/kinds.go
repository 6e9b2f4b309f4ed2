package variants

import (
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/imaging"
)

// Kind tags. These are the names schemas use to declare field kinds.
const (
	KindInt          = "int"
	KindLong         = "long"
	KindUInt         = "uint"
	KindULong        = "ulong"
	KindFloat        = "float"
	KindString       = "string"
	KindToggle       = "toggle"
	KindStrings      = "strings"
	KindRef          = "ref"
	KindRefs         = "refs"
	KindWeightedRefs = "weighted_refs"
	KindImage        = "image"
	KindPalette      = "palette"

	// FamilySeries groups the series kinds. Asking for it alone is ambiguous.
	FamilySeries     = "series"
	KindIntSeries    = "series.int"
	KindLongSeries   = "series.long"
	KindFloatSeries  = "series.float"
	KindStringSeries = "series.string"
)

type entry struct {
	name, family string
	ctor         domain.Constructor
}

var catalog = []entry{
	{KindInt, "", func() domain.Value { return NewInt() }},
	{KindLong, "", func() domain.Value { return NewLong() }},
	{KindUInt, "", func() domain.Value { return NewUInt() }},
	{KindULong, "", func() domain.Value { return NewULong() }},
	{KindFloat, "", func() domain.Value { return NewFloat() }},
	{KindString, "", func() domain.Value { return NewString() }},
	{KindToggle, "", func() domain.Value { return NewStringToggle() }},
	{KindStrings, "", func() domain.Value { return NewStringList() }},
	{KindRef, "", func() domain.Value { return NewRecordRef() }},
	{KindRefs, "", func() domain.Value { return NewRecordRefs() }},
	{KindWeightedRefs, "", func() domain.Value { return NewWeightedRecordRefs() }},
	{KindImage, "", func() domain.Value { return NewImage() }},
	{KindPalette, "", func() domain.Value { return NewPalette() }},
	{KindIntSeries, FamilySeries, func() domain.Value { return NewIntSeries() }},
	{KindLongSeries, FamilySeries, func() domain.Value { return NewLongSeries() }},
	{KindFloatSeries, FamilySeries, func() domain.Value { return NewFloatSeries() }},
	{KindStringSeries, FamilySeries, func() domain.Value { return NewStringSeries() }},
}

// Option tunes the constructors installed by Register.
type Option func(*options)

type options struct {
	cut float64
}

// WithPaletteCut sets the cut given to new palettes. Values outside (0, 1) are ignored.
func WithPaletteCut(cut float64) Option {
	return func(o *options) {
		if cut > 0 && cut < 1 {
			o.cut = cut
		}
	}
}

// Register adds every kind of this package to reg.
func Register(reg *domain.Registry, opts ...Option) error {
	o := options{cut: imaging.DefaultCut}
	for _, opt := range opts {
		opt(&o)
	}
	for _, e := range catalog {
		ctor := e.ctor
		if e.name == KindPalette && o.cut != imaging.DefaultCut {
			cut := o.cut
			ctor = func() domain.Value { return &Palette{cut: cut} }
		}
		if _, err := reg.Register(e.name, e.family, ctor); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every kind of this package.
func NewRegistry(opts ...Option) *domain.Registry {
	reg := domain.NewRegistry()
	if err := Register(reg, opts...); err != nil {
		panic(err)
	}
	return reg
}
