package file_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/datamodel/internal/adapters/file"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/ports"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_SchemaContract(t *testing.T) {
	ports.RunSchemaStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, codec.RecordDocument{Name: "apple", Model: "fruit"}))
	_, err := os.Stat(filepath.Join(dir, "records", "fruit", "apple.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "records", "fruit"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_InvalidNames(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, ref := range []domain.Ref{
		{Name: "", Model: "fruit"},
		{Name: "../escape", Model: "fruit"},
		{Name: "ok", Model: "a/b"},
	} {
		err := store.Save(ctx, codec.RecordDocument{Name: ref.Name, Model: ref.Model})
		assert.ErrorIs(t, err, file.ErrInvalidName, ref.String())
	}
}

func TestFileStore_EmptyDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	refs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)

	schemas, err := store.Schemas(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schemas)
}

func TestFileStore_WideIntegersRoundTrip(t *testing.T) {
	reg := variants.NewRegistry()
	schema, err := codec.DecodeSchema(codec.SchemaDocument{
		Name: "meter",
		Fields: []codec.FieldDocument{
			{Name: "reading", Kind: variants.KindLong},
			{Name: "total", Kind: variants.KindULong},
		},
	}, reg)
	require.NoError(t, err)

	rc := domain.NewRecord("north", schema)
	require.True(t, rc.Set("reading", int64(9007199254740993)))
	require.True(t, rc.Set("total", uint64(math.MaxUint64)))

	store := file.New(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, codec.EncodeRecord(rc)))
	doc, err := store.Load(ctx, rc.Ref())
	require.NoError(t, err)

	back, err := codec.DecodeRecord(doc, schema, reg)
	require.NoError(t, err)
	reading, _ := back.ValueByName("reading")
	total, _ := back.ValueByName("total")
	require.NotNil(t, reading)
	require.NotNil(t, total)
	assert.Equal(t, int64(9007199254740993), reading.(*variants.Long).Get())
	assert.Equal(t, uint64(math.MaxUint64), total.(*variants.ULong).Get())
}
