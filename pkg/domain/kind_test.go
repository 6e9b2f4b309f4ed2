package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seriesA struct{ text }

func (seriesA) Kind() string { return "series.a" }

type seriesB struct{ text }

func (seriesB) Kind() string { return "series.b" }

func TestRegistry_CapabilitiesDecidedAtRegistration(t *testing.T) {
	reg := testRegistry()

	k, err := reg.Lookup("length")
	require.NoError(t, err)
	assert.True(t, k.Dependent)
	assert.Equal(t, "text", k.Source)
	assert.False(t, k.References)

	k, err = reg.Lookup("link")
	require.NoError(t, err)
	assert.False(t, k.Dependent)
	assert.True(t, k.References)

	v := k.New()
	require.NotNil(t, v)
	assert.True(t, k.Owns(v))
}

func TestRegistry_RegisterRejects(t *testing.T) {
	reg := testRegistry()

	_, err := reg.Register("text", "", func() Value { return &text{} })
	assert.Error(t, err, "duplicate")

	_, err = reg.Register("word", "", func() Value { return &text{} })
	assert.Error(t, err, "constructor builds another kind")

	_, err = reg.Register("nothing", "", func() Value { return nil })
	assert.Error(t, err)

	_, err = reg.Register("", "", func() Value { return &text{} })
	assert.Error(t, err)

	assert.Panics(t, func() { reg.MustRegister("text", "", func() Value { return &text{} }) })
}

func TestRegistry_ResolveFamily(t *testing.T) {
	reg := testRegistry()
	reg.MustRegister("series.a", "series", func() Value { return &seriesA{} })

	k, err := reg.Resolve("series")
	require.NoError(t, err, "single member family resolves")
	assert.Equal(t, "series.a", k.Name)

	reg.MustRegister("series.b", "series", func() Value { return &seriesB{} })

	_, err = reg.Resolve("series")
	var amb *AmbiguousKindError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "series", amb.Tag)
	assert.Equal(t, []string{"series.a", "series.b"}, amb.Candidates)

	k, err = reg.ResolveWith("series", "series.b")
	require.NoError(t, err)
	assert.Equal(t, "series.b", k.Name)

	_, err = reg.ResolveWith("series", "text")
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = reg.Resolve("missing")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRegistry_DependentsOf(t *testing.T) {
	reg := testRegistry()
	deps := reg.DependentsOf("text")
	require.Len(t, deps, 1)
	assert.Equal(t, "length", deps[0].Name)

	names := []string{}
	for _, k := range reg.Kinds() {
		names = append(names, k.Name)
	}
	assert.Equal(t, []string{"length", "link", "text"}, names)
}
