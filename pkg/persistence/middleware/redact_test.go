package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/datamodel/pkg/adapters/memory"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.Chain(underlying, middleware.NewRedactMiddleware([]string{"password", "ssn"}))
	ctx := context.Background()

	details := map[string]any{"address": "123 St", "ssn_number": "999-99-9999"}
	doc := codec.RecordDocument{Name: "jdoe", Model: "user", Slots: []codec.SlotDocument{
		{Name: "username", Kind: "string", Value: "jdoe"},
		{Name: "user_password", Kind: "string", Value: "secret123"},
		{Name: "details", Kind: "map", Value: details},
		{Name: "password_hint", Kind: "string"},
	}}
	require.NoError(t, store.Save(ctx, doc))

	assert.Equal(t, "secret123", doc.Slots[1].Value, "caller's document is not modified")
	assert.Equal(t, "999-99-9999", details["ssn_number"])

	stored, err := underlying.Load(ctx, doc.Ref())
	require.NoError(t, err)
	assert.Equal(t, "jdoe", stored.Slots[0].Value)
	assert.Equal(t, middleware.Redacted, stored.Slots[1].Value)
	assert.Equal(t, middleware.Redacted, stored.Slots[2].Value.(map[string]any)["ssn_number"])
	assert.Equal(t, "123 St", stored.Slots[2].Value.(map[string]any)["address"])
	assert.Nil(t, stored.Slots[3].Value, "empty slots stay empty")
}
