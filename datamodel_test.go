package datamodel_test

import (
	"context"
	"testing"

	"github.com/aretw0/datamodel"
	"github.com/aretw0/datamodel/internal/testutils"
	"github.com/aretw0/datamodel/pkg/adapters/memory"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/imaging"
	"github.com/aretw0/datamodel/pkg/observability"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	peru    = domain.Ref{Name: "peru", Model: "country"}
	country = codec.SchemaDocument{
		Name: "country",
		Fields: []codec.FieldDocument{
			{Name: "population", Kind: variants.KindInt},
			{Name: "flag", Kind: variants.KindImage},
			{Name: "colors", Kind: variants.KindPalette, DependsOn: "flag"},
		},
	}
)

func red() *imaging.Image {
	return &imaging.Image{Width: 1, Height: 1, Format: imaging.RGB24, Pix: []byte{255, 0, 0}}
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SaveSchema(ctx, country))
	require.NoError(t, store.Save(ctx, codec.RecordDocument{
		Name:  "peru",
		Model: "country",
		Slots: []codec.SlotDocument{{Name: "population", Kind: variants.KindInt, Value: 33}},
	}))
	return store
}

func TestWorkspace_Load(t *testing.T) {
	store := seededStore(t)
	ws := datamodel.New(datamodel.WithStore(store), datamodel.WithSchemaStore(store))
	require.NoError(t, ws.Load(context.Background()))

	require.Len(t, ws.Schemas(), 1)
	rc, err := ws.Record(peru)
	require.NoError(t, err)
	v, _ := rc.ValueByName("population")
	require.NotNil(t, v)
	assert.Equal(t, int32(33), v.(*variants.Int).Get())
	assert.Same(t, ws.Catalog(), rc.Lookup())
}

func TestWorkspace_LoadKeepsGoodDocuments(t *testing.T) {
	store := seededStore(t)
	require.NoError(t, store.Save(context.Background(), codec.RecordDocument{Name: "rome", Model: "city"}))

	ws := datamodel.New(datamodel.WithStore(store), datamodel.WithSchemaStore(store))
	err := ws.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	assert.Len(t, ws.Records(), 1)
}

func TestWorkspace_SetPropagateSave(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	ws := datamodel.New(
		datamodel.WithStore(store),
		datamodel.WithSchemaStore(store),
		datamodel.WithMetrics(m),
	)
	require.NoError(t, ws.Load(ctx))

	ok, err := ws.Set(ctx, peru, "flag", red())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ws.Set(ctx, peru, "population", "many")
	require.NoError(t, err)
	assert.False(t, ok, "rejected input is reported, not raised")

	_, err = ws.Set(ctx, peru, "anthem", "x")
	assert.ErrorIs(t, err, domain.ErrFieldNotFound)
	_, err = ws.Set(ctx, domain.Ref{Name: "chile", Model: "country"}, "flag", red())
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Coercions.WithLabelValues(variants.KindImage, "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Coercions.WithLabelValues(variants.KindInt, "rejected")))

	changed, err := ws.Propagate(ctx, peru)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = ws.Propagate(ctx, peru)
	require.NoError(t, err)
	assert.False(t, changed, "palettes are computed once")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Changes.WithLabelValues("country", "colors")))

	require.NoError(t, ws.Save(ctx, peru))
	doc, err := store.Load(ctx, peru)
	require.NoError(t, err)
	names := make([]string, 0, len(doc.Slots))
	for _, s := range doc.Slots {
		names = append(names, s.Name)
		if s.Name == "colors" {
			assert.NotNil(t, s.Value)
		}
	}
	assert.Equal(t, []string{"population", "flag", "colors"}, names)
}

func TestWorkspace_PropagateAll(t *testing.T) {
	ctx := context.Background()
	ws := datamodel.New()
	_, err := ws.AddSchema(country)
	require.NoError(t, err)
	for _, name := range []string{"peru", "chile"} {
		_, err := ws.AddRecord(codec.RecordDocument{Name: name, Model: "country"})
		require.NoError(t, err)
	}
	_, err = ws.Set(ctx, peru, "flag", red())
	require.NoError(t, err)

	n, err := ws.PropagateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWorkspace_NoSink(t *testing.T) {
	ws := datamodel.New()
	assert.ErrorIs(t, ws.Save(context.Background(), peru), datamodel.ErrNoSink)
	assert.ErrorIs(t, ws.SaveAll(context.Background()), datamodel.ErrNoSink)
	_, err := ws.Watch(context.Background())
	assert.Error(t, err)
}

func TestWorkspace_AddRecordUnknownModel(t *testing.T) {
	ws := datamodel.New()
	_, err := ws.AddRecord(codec.RecordDocument{Name: "rome", Model: "city"})
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestOpen_Loam(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ws, err := datamodel.Open(dir)
	require.NoError(t, err)
	_, err = ws.AddSchema(country)
	require.NoError(t, err)
	_, err = ws.AddRecord(codec.RecordDocument{Name: "peru", Model: "country"})
	require.NoError(t, err)
	_, err = ws.Set(ctx, peru, "population", 33)
	require.NoError(t, err)
	require.NoError(t, ws.SaveAll(ctx))

	reopened, err := datamodel.Open(dir)
	require.NoError(t, err)
	require.NoError(t, reopened.Load(ctx))
	rc, err := reopened.Record(peru)
	require.NoError(t, err)
	v, _ := rc.ValueByName("population")
	require.NotNil(t, v)
	assert.Equal(t, int32(33), v.(*variants.Int).Get())
}

func TestOpen_InjectedSource(t *testing.T) {
	ws, err := datamodel.Open("fixtures", datamodel.WithStore(memory.NewStore()))
	require.NoError(t, err)
	assert.Equal(t, "fixtures", ws.Name)

	_, err = datamodel.Open("")
	assert.Error(t, err)
}

func TestOpen_SeededDirectory(t *testing.T) {
	dir, _ := testutils.SetupTestRepo(t, []codec.SchemaDocument{country}, codec.RecordDocument{
		Name:  "chile",
		Model: "country",
		Slots: []codec.SlotDocument{{Name: "population", Kind: variants.KindInt, Value: 19}},
	})

	ws, err := datamodel.Open(dir)
	require.NoError(t, err)
	require.NoError(t, ws.Load(context.Background()))

	rc, err := ws.Record(domain.Ref{Name: "chile", Model: "country"})
	require.NoError(t, err)
	v, _ := rc.ValueByName("population")
	require.NotNil(t, v)
	assert.Equal(t, int32(19), v.(*variants.Int).Get())
}
