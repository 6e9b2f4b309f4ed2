package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/imaging"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var countryDoc = codec.SchemaDocument{
	Name: "country",
	Fields: []codec.FieldDocument{
		{Name: "population", Kind: variants.KindLong},
		{Name: "flag", Kind: variants.KindImage},
		{Name: "colors", Kind: variants.KindPalette, DependsOn: "flag"},
		{Name: "gdp", Kind: variants.FamilySeries, Choice: variants.KindFloatSeries},
		{Name: "neighbours", Kind: variants.KindRefs, Target: "country"},
	},
}

func TestDecodeSchema(t *testing.T) {
	reg := variants.NewRegistry()
	s, err := codec.DecodeSchema(countryDoc, reg)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Same(t, s.Field("flag"), s.Field("colors").DependsOn)
	assert.Equal(t, variants.KindFloatSeries, s.Field("gdp").Kind.Name)

	roundTrip := codec.EncodeSchema(s)
	roundTrip.Fields[3].Choice = variants.KindFloatSeries
	roundTrip.Fields[3].Kind = variants.FamilySeries
	assert.Equal(t, countryDoc, roundTrip)
}

func TestDecodeSchema_Errors(t *testing.T) {
	reg := variants.NewRegistry()

	_, err := codec.DecodeSchema(codec.SchemaDocument{Name: "x", Fields: []codec.FieldDocument{
		{Name: "history", Kind: variants.FamilySeries},
	}}, reg)
	var amb *domain.AmbiguousKindError
	require.ErrorAs(t, err, &amb, "a family tag without a choice is not guessed")

	_, err = codec.DecodeSchema(codec.SchemaDocument{Name: "x", Fields: []codec.FieldDocument{
		{Name: "a", Kind: "quaternion"},
		{Name: "b", Kind: variants.KindPalette, DependsOn: "a"},
		{Name: "c", Kind: variants.KindPalette, DependsOn: "missing"},
		{Name: "d", Kind: variants.KindString},
		{Name: "e", Kind: variants.KindPalette, DependsOn: "d"},
	}}, reg)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
	assert.ErrorIs(t, err, domain.ErrFieldNotFound)
	assert.ErrorIs(t, err, domain.ErrInvalidDependency)
	assert.Len(t, domain.ValidationErrors(err), 4)
}

func TestRecordRoundTrip_JSON(t *testing.T) {
	reg := variants.NewRegistry()
	s, err := codec.DecodeSchema(countryDoc, reg)
	require.NoError(t, err)

	rc := domain.NewRecord("brazil", s)
	rc.Path = "countries/brazil"
	require.True(t, rc.Set("population", 203_000_000))
	require.True(t, rc.Set("flag", &imaging.Image{Width: 2, Height: 1, Format: imaging.RGB24, Pix: []byte{0, 155, 58, 0, 155, 58}}))
	require.True(t, rc.Set("gdp", []any{[]any{2.17, 2023}, []any{1.92, 2022}}))
	require.True(t, rc.Set("neighbours", []string{"argentina:country", "peru:country"}))
	require.True(t, rc.RunDependencyPropagation(domain.Hooks{}))

	raw, err := json.Marshal(codec.EncodeRecord(rc))
	require.NoError(t, err)

	var doc codec.RecordDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	back, err := codec.DecodeRecord(doc, s, reg)
	require.NoError(t, err)

	assert.Equal(t, "countries/brazil", back.Path)
	assertSameValues(t, rc, back)
}

func TestRecordRoundTrip_YAMLMap(t *testing.T) {
	reg := variants.NewRegistry()
	s, err := codec.DecodeSchema(countryDoc, reg)
	require.NoError(t, err)

	rc := domain.NewRecord("chile", s)
	require.True(t, rc.Set("population", 19_600_000))
	require.True(t, rc.Set("neighbours", "peru:country"))

	raw, err := yaml.Marshal(codec.RecordToMap(codec.EncodeRecord(rc)))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &m))
	doc, err := codec.RecordFromMap(m)
	require.NoError(t, err)
	back, err := codec.DecodeRecord(doc, s, reg)
	require.NoError(t, err)
	assertSameValues(t, rc, back)
}

func TestDecodeRecord_SelfHeals(t *testing.T) {
	reg := variants.NewRegistry()
	s, err := codec.DecodeSchema(countryDoc, reg)
	require.NoError(t, err)

	doc := codec.RecordDocument{Name: "atlantis", Model: "country", Slots: []codec.SlotDocument{
		{Name: "neighbours", Kind: variants.KindRefs, Value: []any{}},
		{Name: "population", Kind: variants.KindString, Value: "lots"},
		{Name: "motto", Kind: variants.KindString, Value: "glub"},
		{Name: "gdp", Kind: variants.KindFloatSeries, Value: "not a series"},
	}}
	rc, err := codec.DecodeRecord(doc, s, reg)
	require.NoError(t, err)

	assert.Equal(t, 3, rc.Len(), "unknown field dropped")
	assert.Equal(t, "population", rc.Slot(0).Field.Name, "slots sorted to schema order")
	assert.Nil(t, rc.Value(s.Field("population")), "kind mismatch leaves the slot empty")
	assert.Nil(t, rc.Value(s.Field("gdp")), "rejected value leaves the slot empty")

	_, err = codec.DecodeRecord(codec.RecordDocument{Name: "x", Model: "city"}, s, reg)
	assert.ErrorIs(t, err, codec.ErrModelMismatch)
}

func TestDecodeRecord_Unbound(t *testing.T) {
	reg := variants.NewRegistry()
	doc := codec.RecordDocument{Name: "loose", Slots: []codec.SlotDocument{
		{Name: "flag", Kind: variants.KindImage, Value: map[string]any{
			"width": 1, "height": 1, "format": "R8", "pix": "/w==", "source": "",
		}},
		{Name: "colors", Kind: variants.KindPalette, DependsOn: "flag"},
	}}
	rc, err := codec.DecodeRecord(doc, nil, reg)
	require.NoError(t, err)
	require.Equal(t, 2, rc.Len())
	assert.Same(t, rc.Slot(0).Field, rc.Slot(1).Field.DependsOn)
	assert.True(t, rc.RunDependencyPropagation(domain.Hooks{}))

	doc.Slots[0].Kind = "hologram"
	_, err = codec.DecodeRecord(doc, nil, reg)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestDecodeRecord_UnboundBadDependency(t *testing.T) {
	reg := variants.NewRegistry()
	tests := []struct {
		name      string
		dependsOn string
		want      error
	}{
		{"self", "colors", domain.ErrDependencyCycle},
		{"wrong source kind", "motto", domain.ErrInvalidDependency},
		{"unknown field", "anthem", domain.ErrFieldNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := codec.RecordDocument{Name: "loose", Slots: []codec.SlotDocument{
				{Name: "motto", Kind: variants.KindString, Value: "glub"},
				{Name: "colors", Kind: variants.KindPalette, DependsOn: tt.dependsOn},
			}}
			rc, err := codec.DecodeRecord(doc, nil, reg)
			assert.Nil(t, rc)
			assert.ErrorIs(t, err, tt.want)
			var agg *domain.AggregateError
			assert.ErrorAs(t, err, &agg)
		})
	}
}

func TestDecodeRecord_DuplicateSlots(t *testing.T) {
	reg := variants.NewRegistry()
	s, err := codec.DecodeSchema(countryDoc, reg)
	require.NoError(t, err)

	doc := codec.RecordDocument{Name: "peru", Model: "country", Slots: []codec.SlotDocument{
		{Name: "population", Value: 5},
		{Name: "population", Value: 7},
	}}
	rc, err := codec.DecodeRecord(doc, s, reg)
	require.NoError(t, err)
	require.Equal(t, 1, rc.Len(), "a field listed twice keeps one slot")
	assert.Equal(t, int64(5), rc.Value(s.Field("population")).(*variants.Long).Get(), "first slot wins")
	assert.Zero(t, rc.SortVariables())

	doc.Model = ""
	doc.Slots[0].Kind, doc.Slots[1].Kind = variants.KindLong, variants.KindLong
	loose, err := codec.DecodeRecord(doc, nil, reg)
	require.NoError(t, err)
	assert.Equal(t, 1, loose.Len())
}

func assertSameValues(t *testing.T, want, got *domain.Record) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := range want.Len() {
		ws, gs := want.Slot(i), got.Slot(i)
		assert.Equal(t, ws.Field.Name, gs.Field.Name)
		assert.Equal(t, ws.Value.(domain.Exporter).Export(), gs.Value.(domain.Exporter).Export(), ws.Field.Name)
	}
}
