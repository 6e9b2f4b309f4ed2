package variants

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/datamodel/pkg/domain"
)

// Entry is one value of a time series.
type Entry[T cmp.Ordered] struct {
	Year  int `json:"year" yaml:"year" mapstructure:"year"`
	Value T   `json:"value" yaml:"value" mapstructure:"value"`
}

// Series keeps one value per year, sorted by year descending.
type Series[T cmp.Ordered] struct {
	kind    string
	entries []Entry[T]
	conv    func(any) (T, bool)
}

type (
	IntSeries    = Series[int32]
	LongSeries   = Series[int64]
	FloatSeries  = Series[float64]
	StringSeries = Series[string]
)

func NewIntSeries() *IntSeries       { return &IntSeries{kind: KindIntSeries, conv: toInt32} }
func NewLongSeries() *LongSeries     { return &LongSeries{kind: KindLongSeries, conv: toInt64} }
func NewFloatSeries() *FloatSeries   { return &FloatSeries{kind: KindFloatSeries, conv: toFloat64} }
func NewStringSeries() *StringSeries { return &StringSeries{kind: KindStringSeries, conv: toString} }

func (s *Series[T]) Kind() string { return s.kind }

// Len returns the number of distinct years.
func (s *Series[T]) Len() int { return len(s.entries) }

// Entries returns the entries, most recent first.
func (s *Series[T]) Entries() []Entry[T] { return slices.Clone(s.entries) }

// Set stores value for year, replacing the value of a year already present.
func (s *Series[T]) Set(year int, value T) {
	i := 0
	for ; i < len(s.entries); i++ {
		if s.entries[i].Year <= year {
			break
		}
	}
	if i < len(s.entries) && s.entries[i].Year == year {
		s.entries[i].Value = value
		return
	}
	s.entries = slices.Insert(s.entries, i, Entry[T]{Year: year, Value: value})
}

// MostRecent returns the entry with the highest year.
func (s *Series[T]) MostRecent() (Entry[T], bool) {
	if len(s.entries) == 0 {
		return Entry[T]{}, false
	}
	return s.entries[0], true
}

// Get returns the value stored for exactly year.
func (s *Series[T]) Get(year int) (T, bool) {
	for _, e := range s.entries {
		if e.Year == year {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}

// TrySet accepts one entry (an Entry, a (value, year) pair or a {year, value} map) or a
// sequence of entries applied in order. A sequence with any unreadable element is rejected
// as a whole.
func (s *Series[T]) TrySet(input any, _ *domain.Record) bool {
	if e, ok := s.entryOf(input); ok {
		s.Set(e.Year, e.Value)
		return true
	}
	if typed, ok := input.([]Entry[T]); ok {
		for _, e := range typed {
			s.Set(e.Year, e.Value)
		}
		return len(typed) > 0
	}
	items, ok := toSlice(input)
	if !ok || len(items) == 0 {
		return false
	}
	parsed := make([]Entry[T], 0, len(items))
	for _, it := range items {
		e, ok := s.entryOf(it)
		if !ok {
			return false
		}
		parsed = append(parsed, e)
	}
	for _, e := range parsed {
		s.Set(e.Year, e.Value)
	}
	return true
}

func (s *Series[T]) entryOf(input any) (Entry[T], bool) {
	switch v := input.(type) {
	case Entry[T]:
		return v, true
	case *Entry[T]:
		if v == nil {
			return Entry[T]{}, false
		}
		return *v, true
	}
	if a, b, ok := toPair(input); ok {
		value, okValue := s.conv(a)
		year, okYear := toInt32(b)
		if okValue && okYear {
			return Entry[T]{Year: int(year), Value: value}, true
		}
		return Entry[T]{}, false
	}
	m, ok := input.(map[string]any)
	if !ok || len(m) != 2 {
		return Entry[T]{}, false
	}
	year, okYear := toInt32(m["year"])
	value, okValue := s.conv(m["value"])
	if !okYear || !okValue {
		return Entry[T]{}, false
	}
	return Entry[T]{Year: int(year), Value: value}, true
}

func (s *Series[T]) Export() any {
	out := make([]any, len(s.entries))
	for i, e := range s.entries {
		out[i] = map[string]any{"year": e.Year, "value": e.Value}
	}
	return out
}

func (s *Series[T]) String() string {
	parts := make([]string, len(s.entries))
	for i, e := range s.entries {
		parts[i] = fmt.Sprintf("%d: %v", e.Year, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
