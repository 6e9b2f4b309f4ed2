package ports

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore implementation
// adheres to the defined interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	sample := func(name string) codec.RecordDocument {
		return codec.RecordDocument{
			Name:  name,
			Model: "fruit",
			Path:  "fruit/" + name,
			Slots: []codec.SlotDocument{
				{Name: "title", Kind: "string", Value: "Apple"},
				{Name: "tags", Kind: "strings", Value: []any{"red", "sweet"}},
				{Name: "size", Kind: "palette", DependsOn: "title"},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := sample("apple-" + suffix)
		require.NoError(t, store.Save(ctx, doc), "Save should not return error")

		loaded, err := store.Load(ctx, doc.Ref())
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Name, loaded.Name)
		assert.Equal(t, doc.Model, loaded.Model)
		require.Len(t, loaded.Slots, 3)
		assert.Equal(t, "title", loaded.Slots[0].Name)
		assert.Equal(t, "Apple", loaded.Slots[0].Value)
		assert.Equal(t, "title", loaded.Slots[2].DependsOn)
		// Stores that serialize may turn typed slices into []any; only the content matters.
		assert.ElementsMatch(t, []any{"red", "sweet"}, loaded.Slots[1].Value)
	})

	t.Run("Overwrite", func(t *testing.T) {
		doc := sample("pear-" + suffix)
		require.NoError(t, store.Save(ctx, doc))
		doc.Slots = doc.Slots[:1]
		doc.Slots[0].Value = "Pear"
		require.NoError(t, store.Save(ctx, doc))

		loaded, err := store.Load(ctx, doc.Ref())
		require.NoError(t, err)
		require.Len(t, loaded.Slots, 1)
		assert.Equal(t, "Pear", loaded.Slots[0].Value)
	})

	t.Run("Wide Integers", func(t *testing.T) {
		doc := codec.RecordDocument{
			Name:  "counter-" + suffix,
			Model: "meter",
			Slots: []codec.SlotDocument{
				{Name: "long", Kind: "long", Value: int64(9007199254740993)},
				{Name: "ulong", Kind: "ulong", Value: uint64(math.MaxUint64)},
			},
		}
		require.NoError(t, store.Save(ctx, doc))
		defer func() { _ = store.Delete(ctx, doc.Ref()) }()

		loaded, err := store.Load(ctx, doc.Ref())
		require.NoError(t, err)
		require.Len(t, loaded.Slots, 2)
		// Serializing stores may hand numbers back as json.Number; the digits must not change.
		assert.Equal(t, "9007199254740993", fmt.Sprint(loaded.Slots[0].Value))
		assert.Equal(t, "18446744073709551615", fmt.Sprint(loaded.Slots[1].Value))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, domain.Ref{Name: "non-existent-" + suffix, Model: "fruit"})
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		doc := sample("fig-" + suffix)
		require.NoError(t, store.Save(ctx, doc))
		require.NoError(t, store.Delete(ctx, doc.Ref()), "Delete should not return error")

		_, err := store.Load(ctx, doc.Ref())
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")
		assert.NoError(t, store.Delete(ctx, doc.Ref()), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		a, b := sample("kiwi-"+suffix), sample("lime-"+suffix)
		b.Model = "citrus"
		require.NoError(t, store.Save(ctx, a))
		require.NoError(t, store.Save(ctx, b))
		defer func() {
			_ = store.Delete(ctx, a.Ref())
			_ = store.Delete(ctx, b.Ref())
		}()

		refs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, refs, a.Ref())
		assert.Contains(t, refs, b.Ref())
	})
}

// RunSchemaStoreContract verifies a SchemaStore implementation.
func RunSchemaStoreContract(t *testing.T, store SchemaStore) {
	ctx := context.Background()

	doc := codec.SchemaDocument{Name: "fruit", Fields: []codec.FieldDocument{
		{Name: "title", Kind: "string"},
		{Name: "photo", Kind: "image"},
		{Name: "colors", Kind: "palette", DependsOn: "photo"},
	}}
	require.NoError(t, store.SaveSchema(ctx, doc))

	doc.Fields = doc.Fields[:2]
	require.NoError(t, store.SaveSchema(ctx, doc), "saving again replaces")

	all, err := store.Schemas(ctx)
	require.NoError(t, err)

	var found *codec.SchemaDocument
	for i := range all {
		if all[i].Name == "fruit" {
			require.Nil(t, found, "schema names are unique")
			found = &all[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, doc, *found)
}

// RunLockerContract verifies that a DistributedLocker grants exclusive access.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-a", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, "contract-a", 5*time.Second)
		require.NoError(t, err, "released locks can be taken again")
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-b", 5*time.Second)
		require.NoError(t, err)

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(short, "contract-b", 5*time.Second)
		assert.Error(t, err, "second holder must wait")

		require.NoError(t, unlock(ctx))
	})

	t.Run("Exclusive", func(t *testing.T) {
		var inside, maxInside atomic.Int32
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "contract-c", 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				n := inside.Add(1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				inside.Add(-1)
				assert.NoError(t, unlock(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside.Load())
	})
}
