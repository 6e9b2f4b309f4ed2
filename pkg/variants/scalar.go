package variants

import (
	"fmt"
	"slices"

	"github.com/aretw0/datamodel/pkg/domain"
)

// Scalar holds one primitive value. The converter decides which inputs are accepted:
// the exact native type first, then numeric kinds and text through cast.
type Scalar[T comparable] struct {
	kind string
	v    T
	conv func(any) (T, bool)
}

type (
	Int    = Scalar[int32]
	Long   = Scalar[int64]
	UInt   = Scalar[uint32]
	ULong  = Scalar[uint64]
	Float  = Scalar[float64]
	String = Scalar[string]
)

func NewInt() *Int       { return &Int{kind: KindInt, conv: toInt32} }
func NewLong() *Long     { return &Long{kind: KindLong, conv: toInt64} }
func NewUInt() *UInt     { return &UInt{kind: KindUInt, conv: toUint32} }
func NewULong() *ULong   { return &ULong{kind: KindULong, conv: toUint64} }
func NewFloat() *Float   { return &Float{kind: KindFloat, conv: toFloat64} }
func NewString() *String { return &String{kind: KindString, conv: toString} }

func (s *Scalar[T]) Kind() string { return s.kind }

// Get returns the current value.
func (s *Scalar[T]) Get() T { return s.v }

func (s *Scalar[T]) TrySet(input any, _ *domain.Record) bool {
	v, ok := s.conv(input)
	if !ok {
		return false
	}
	s.v = v
	return true
}

func (s *Scalar[T]) Export() any { return s.v }

func (s *Scalar[T]) String() string { return fmt.Sprint(s.v) }

// Toggle is the exported form of StringToggle.
type Toggle struct {
	Text string `json:"text" yaml:"text" mapstructure:"text"`
	On   bool   `json:"on" yaml:"on" mapstructure:"on"`
}

// StringToggle is a string with an on/off flag.
type StringToggle struct {
	t Toggle
}

func NewStringToggle() *StringToggle { return &StringToggle{} }

func (s *StringToggle) Kind() string { return KindToggle }

func (s *StringToggle) Get() Toggle { return s.t }

// TrySet accepts a Toggle, a (string, bool) pair, its exported map, or a plain string
// which keeps the current flag.
func (s *StringToggle) TrySet(input any, _ *domain.Record) bool {
	switch v := input.(type) {
	case Toggle:
		s.t = v
		return true
	case *Toggle:
		if v == nil {
			return false
		}
		s.t = *v
		return true
	case string:
		s.t.Text = v
		return true
	}
	if a, b, ok := toPair(input); ok {
		text, okText := a.(string)
		on, okOn := b.(bool)
		if okText && okOn {
			s.t = Toggle{Text: text, On: on}
			return true
		}
		return false
	}
	var t Toggle
	if decodeMap(input, &t) {
		s.t = t
		return true
	}
	return false
}

func (s *StringToggle) Export() any {
	return map[string]any{"text": s.t.Text, "on": s.t.On}
}

func (s *StringToggle) String() string {
	mark := " "
	if s.t.On {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s", mark, s.t.Text)
}

// StringList is an ordered list of strings, replaced as a whole.
type StringList struct {
	items []string
}

func NewStringList() *StringList { return &StringList{} }

func (s *StringList) Kind() string { return KindStrings }

func (s *StringList) Items() []string { return slices.Clone(s.items) }

func (s *StringList) TrySet(input any, _ *domain.Record) bool {
	if v, ok := input.([]string); ok {
		s.items = slices.Clone(v)
		return true
	}
	items, ok := toSlice(input)
	if !ok {
		return false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		str, ok := it.(string)
		if !ok {
			return false
		}
		out = append(out, str)
	}
	s.items = out
	return true
}

func (s *StringList) Export() any { return s.Items() }

func (s *StringList) String() string { return fmt.Sprint(s.items) }
