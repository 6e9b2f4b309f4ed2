package variants

import (
	"path"

	"github.com/aretw0/datamodel/pkg/domain"
)

// catalogLookup is a tiny in-memory domain.Lookup.
type catalogLookup struct {
	records []*domain.Record
	created []string
}

func (c *catalogLookup) put(name, model string) *domain.Record {
	s, _ := domain.NewSchema(model)
	rec := domain.NewRecord(name, s)
	rec.Path = path.Join("assets", model, name)
	rec.Bind(c)
	c.records = append(c.records, rec)
	return rec
}

func (c *catalogLookup) FindRecord(name, model string) (*domain.Record, error) {
	for _, r := range c.records {
		if r.Name == name && (model == "" || r.Model() == model) {
			return r, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (c *catalogLookup) FindOrCreate(near *domain.Record, model, name string) (*domain.Record, error) {
	if r, err := c.FindRecord(name, model); err == nil {
		return r, nil
	}
	r := c.put(name, model)
	r.Path = path.Join(path.Dir(near.Path), model, name)
	c.created = append(c.created, r.Path)
	return r, nil
}
