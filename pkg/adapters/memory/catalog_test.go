package memory_test

import (
	"testing"

	"github.com/aretw0/datamodel/pkg/adapters/memory"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (*memory.Catalog, *domain.Schema) {
	t.Helper()
	reg := variants.NewRegistry()
	str, err := reg.Lookup(variants.KindString)
	require.NoError(t, err)
	refs, err := reg.Lookup(variants.KindRefs)
	require.NoError(t, err)

	friends := domain.NewVariable("friends", refs)
	friends.Target = "person"
	person, err := domain.NewSchema("person", domain.NewVariable("nick", str), friends)
	require.NoError(t, err)

	c := memory.NewCatalog()
	c.AddSchema(person)
	return c, person
}

func TestCatalog_FindRecord(t *testing.T) {
	c, person := newCatalog(t)
	ana := domain.NewRecord("Ana", person)
	c.Add(ana)

	got, err := c.FindRecord("Ana", "person")
	require.NoError(t, err)
	assert.Same(t, ana, got)

	got, err = c.FindRecord("ana", "")
	require.NoError(t, err, "names fall back to a case-insensitive match and any model")
	assert.Same(t, ana, got)

	_, err = c.FindRecord("Ana", "city")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	assert.Same(t, c, ana.Lookup(), "added records are bound to the catalog")
}

func TestCatalog_FindOrCreate(t *testing.T) {
	c, person := newCatalog(t)
	ana := domain.NewRecord("Ana", person)
	ana.Path = "data/person/Ana"
	c.Add(ana)

	bo, err := c.FindOrCreate(ana, "person", "Bo")
	require.NoError(t, err)
	assert.Equal(t, "data/person/person/Bo", bo.Path)
	assert.Equal(t, "person", bo.Model())
	assert.Equal(t, person.Len(), bo.Len(), "new records start with default slots")

	again, err := c.FindOrCreate(ana, "person", "Bo")
	require.NoError(t, err)
	assert.Same(t, bo, again)
	assert.Equal(t, []domain.Ref{{Name: "Bo", Model: "person"}}, c.Created())

	_, err = c.FindOrCreate(ana, "city", "Rome")
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestCatalog_FindOrCreateCommand(t *testing.T) {
	c, person := newCatalog(t)
	ana := domain.NewRecord("Ana", person)
	c.Add(ana)

	require.True(t, ana.Set("friends", "FOC:person:Bo,Cy"))

	v, _ := ana.ValueByName("friends")
	refs := v.(*variants.RecordRefs)
	assert.Equal(t, []domain.Ref{{Name: "Bo", Model: "person"}, {Name: "Cy", Model: "person"}}, refs.References())
	assert.Len(t, c.Records(), 3)
	assert.Equal(t, "person/Cy", c.Created()[1].Model+"/"+c.Created()[1].Name)
}

func TestCatalog_RecordsAndRemove(t *testing.T) {
	c, person := newCatalog(t)
	c.Add(domain.NewRecord("b", person))
	c.Add(domain.NewRecord("a", person))

	recs := c.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Name)

	assert.True(t, c.Remove(domain.Ref{Name: "a", Model: "person"}))
	assert.False(t, c.Remove(domain.Ref{Name: "a", Model: "person"}))
	_, err := c.Record(domain.Ref{Name: "a", Model: "person"})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	_, err = c.Schema("city")
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	assert.Len(t, c.Schemas(), 1)
}

func TestSiblingPath(t *testing.T) {
	assert.Equal(t, "person/Bo", memory.SiblingPath(nil, "person", "Bo"))
	assert.Equal(t, "a/b/city/Rome", memory.SiblingPath(&domain.Record{Path: "a/b/x"}, "city", "Rome"))
}
