package variants

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestInt_Coercion(t *testing.T) {
	accepted := []struct {
		in   any
		want int32
	}{
		{int32(7), 7},
		{42, 42},
		{int64(-3), -3},
		{uint8(9), 9},
		{12.0, 12},
		{json.Number("15"), 15},
		{" 21 ", 21},
	}
	for _, tt := range accepted {
		v := NewInt()
		assert.True(t, v.TrySet(tt.in, nil), "%#v", tt.in)
		assert.Equal(t, tt.want, v.Get())
	}

	v := NewInt()
	assert.True(t, v.TrySet(5, nil))
	for _, in := range []any{12.5, true, "abc", "", int64(math.MaxInt32) + 1, nil, []int{1}} {
		assert.False(t, v.TrySet(in, nil), "%#v", in)
		assert.Equal(t, int32(5), v.Get(), "rejected input leaves the value unchanged")
	}
}

func TestUnsignedAndFloat(t *testing.T) {
	u := NewUInt()
	assert.False(t, u.TrySet(-1, nil))
	assert.False(t, u.TrySet("-1", nil))
	assert.True(t, u.TrySet("4000000000", nil))
	assert.Equal(t, uint32(4000000000), u.Get())
	assert.False(t, NewUInt().TrySet(uint64(math.MaxUint32)+1, nil))

	ul := NewULong()
	assert.True(t, ul.TrySet(uint64(math.MaxUint64), nil))
	assert.Equal(t, uint64(math.MaxUint64), ul.Get())

	l := NewLong()
	assert.True(t, l.TrySet(json.Number("9007199254740993"), nil))
	assert.Equal(t, int64(9007199254740993), l.Get())
	assert.False(t, l.TrySet(uint64(math.MaxUint64), nil))

	f := NewFloat()
	assert.True(t, f.TrySet(1e19, nil))
	assert.Equal(t, 1e19, f.Get())

	assert.True(t, f.TrySet("2.5", nil))
	assert.Equal(t, 2.5, f.Get())
	assert.True(t, f.TrySet(3, nil))
	assert.Equal(t, 3.0, f.Get())
	assert.False(t, f.TrySet(false, nil))
	assert.Equal(t, 3.0, f.Export())
}

func TestWideIntegers_FloatRange(t *testing.T) {
	tests := []struct {
		name string
		v    interface {
			TrySet(any, *domain.Record) bool
		}
		in   any
		want bool
	}{
		{"long max float", NewLong(), 0x1p62, true},
		{"long min", NewLong(), -0x1p63, true},
		{"long overflow", NewLong(), 1e19, false},
		{"long at 2^63", NewLong(), 0x1p63, false},
		{"long underflow", NewLong(), -1e19, false},
		{"long float32 overflow", NewLong(), float32(1e19), false},
		{"ulong fits", NewULong(), 1e19, true},
		{"ulong overflow", NewULong(), 1e20, false},
		{"ulong at 2^64", NewULong(), 0x1p64, false},
		{"ulong negative", NewULong(), -1.0, false},
		{"int overflow", NewInt(), -1e19, false},
		{"uint overflow", NewUInt(), 1e20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.TrySet(tt.in, nil))
		})
	}

	l := NewLong()
	assert.True(t, l.TrySet(-0x1p63, nil))
	assert.Equal(t, int64(math.MinInt64), l.Get())
	assert.False(t, l.TrySet(1e19, nil))
	assert.Equal(t, int64(math.MinInt64), l.Get(), "rejected input leaves the value unchanged")

	ul := NewULong()
	assert.True(t, ul.TrySet(1e19, nil))
	assert.Equal(t, uint64(10000000000000000000), ul.Get())
}

func TestString(t *testing.T) {
	s := NewString()
	assert.True(t, s.TrySet("hello", nil))
	assert.True(t, s.TrySet("hello", nil), "the same value is accepted again")
	assert.False(t, s.TrySet(5, nil))
	assert.Equal(t, "hello", s.Get())
	assert.Equal(t, KindString, s.Kind())
}

func TestStringToggle(t *testing.T) {
	s := NewStringToggle()
	assert.True(t, s.TrySet([2]any{"ripe", true}, nil))
	assert.Equal(t, Toggle{Text: "ripe", On: true}, s.Get())

	assert.True(t, s.TrySet("sweet", nil), "text alone keeps the flag")
	assert.Equal(t, Toggle{Text: "sweet", On: true}, s.Get())

	assert.True(t, s.TrySet(map[string]any{"text": "sour", "on": false}, nil))
	assert.Equal(t, Toggle{Text: "sour"}, s.Get())

	assert.False(t, s.TrySet([]any{true, "x"}, nil))
	assert.False(t, s.TrySet(map[string]any{"colour": "red"}, nil))
	assert.False(t, s.TrySet(3, nil))
	assert.Equal(t, Toggle{Text: "sour"}, s.Get())

	again := NewStringToggle()
	assert.True(t, again.TrySet(s.Export(), nil))
	assert.Equal(t, s.Get(), again.Get())
	assert.Equal(t, "[ ] sour", again.String())
}

func TestStringList(t *testing.T) {
	s := NewStringList()
	assert.True(t, s.TrySet([]string{"a", "b"}, nil))
	assert.True(t, s.TrySet([]any{"c", "d", "e"}, nil))
	assert.True(t, s.TrySet([]string{"c", "d", "e"}, nil), "an unchanged list is accepted")
	assert.Equal(t, []string{"c", "d", "e"}, s.Items())
	assert.False(t, s.TrySet([]any{"f", 1}, nil))
	assert.False(t, s.TrySet("g", nil))
	assert.Equal(t, []string{"c", "d", "e"}, s.Items())
}
