package domain

import (
	"errors"
	"strings"
)

// text is a minimal scalar value.
type text struct{ s string }

func (t *text) Kind() string { return "text" }

func (t *text) TrySet(input any, _ *Record) bool {
	s, ok := input.(string)
	if !ok {
		return false
	}
	t.s = s
	return true
}

var errShout = errors.New("cannot measure shouting")

// length is derived from a text field.
type length struct {
	n     int
	ready bool
	feeds int
}

func (l *length) Kind() string       { return "length" }
func (l *length) SourceKind() string { return "text" }

func (l *length) TrySet(input any, _ *Record) bool {
	n, ok := input.(int)
	if !ok {
		return false
	}
	l.n, l.ready = n, true
	return true
}

func (l *length) Feed(source Value) (bool, error) {
	if l.ready {
		return false, nil
	}
	src, ok := source.(*text)
	if !ok {
		return false, nil
	}
	if src.s != "" && src.s == strings.ToUpper(src.s) {
		return false, errShout
	}
	l.feeds++
	l.n, l.ready = len(src.s), true
	return true, nil
}

// link references another record.
type link struct{ to Ref }

func (l *link) Kind() string      { return "link" }
func (l *link) References() []Ref { return []Ref{l.to} }

func (l *link) TrySet(input any, _ *Record) bool {
	ref, ok := input.(Ref)
	if !ok {
		return false
	}
	l.to = ref
	return true
}

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister("text", "", func() Value { return &text{} })
	reg.MustRegister("length", "", func() Value { return &length{} })
	reg.MustRegister("link", "", func() Value { return &link{} })
	return reg
}

// testSchema returns a schema "word" with fields title (text), size (length, derived from
// title) and note (text).
func testSchema(reg *Registry) (*Schema, *Variable, *Variable, *Variable) {
	textKind, _ := reg.Lookup("text")
	lengthKind, _ := reg.Lookup("length")

	title := NewVariable("title", textKind)
	size := NewVariable("size", lengthKind)
	if err := size.DependOn(title); err != nil {
		panic(err)
	}
	note := NewVariable("note", textKind)

	s, err := NewSchema("word", title, size, note)
	if err != nil {
		panic(err)
	}
	return s, title, size, note
}
