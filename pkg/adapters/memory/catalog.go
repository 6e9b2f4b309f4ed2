package memory

import (
	"cmp"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/datamodel/pkg/domain"
)

func compareStrings(a, b string) int { return cmp.Compare(a, b) }

func compareRefs(a, b domain.Ref) int {
	if c := cmp.Compare(a.Model, b.Model); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// Catalog holds live schemas and records and resolves references between them.
// It implements domain.Lookup; every record added to it is bound to it.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]*domain.Schema
	records map[domain.Ref]*domain.Record
	logger  *slog.Logger
	created []domain.Ref
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLogger sets the logger used to report created records.
func WithLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		schemas: make(map[string]*domain.Schema),
		records: make(map[domain.Ref]*domain.Record),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddSchema registers s, replacing a schema with the same name.
func (c *Catalog) AddSchema(s *domain.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[s.Name] = s
}

// Schema returns the schema called name.
func (c *Catalog) Schema(name string) (*domain.Schema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrSchemaNotFound, name)
	}
	return s, nil
}

// Schemas returns all schemas ordered by name.
func (c *Catalog) Schemas() []*domain.Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.Schema, 0, len(c.schemas))
	for _, s := range c.schemas {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *domain.Schema) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Add stores rc under its identifier and binds it to the catalog.
func (c *Catalog) Add(rc *domain.Record) {
	rc.Bind(c)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[rc.Ref()] = rc
}

// Remove forgets the record identified by ref.
func (c *Catalog) Remove(ref domain.Ref) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[ref]
	delete(c.records, ref)
	return ok
}

// Record returns the record identified by ref.
func (c *Catalog) Record(ref domain.Ref) (*domain.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rc, ok := c.records[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, ref)
	}
	return rc, nil
}

// Records returns all records ordered by model and name.
func (c *Catalog) Records() []*domain.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sorted()
}

func (c *Catalog) sorted() []*domain.Record {
	out := make([]*domain.Record, 0, len(c.records))
	for _, rc := range c.records {
		out = append(out, rc)
	}
	slices.SortFunc(out, func(a, b *domain.Record) int { return compareRefs(a.Ref(), b.Ref()) })
	return out
}

// Created returns the identifiers of records made by FindOrCreate, oldest first.
func (c *Catalog) Created() []domain.Ref {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.created)
}

// FindRecord resolves a record by name. Names compare case-insensitively when no exact
// match exists; an empty model matches the first record with that name.
func (c *Catalog) FindRecord(name, model string) (*domain.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.find(name, model)
}

func (c *Catalog) find(name, model string) (*domain.Record, error) {
	if rc, ok := c.records[domain.Ref{Name: name, Model: model}]; ok {
		return rc, nil
	}
	for _, rc := range c.sorted() {
		if model != "" && rc.Model() != model {
			continue
		}
		if strings.EqualFold(rc.Name, name) {
			return rc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s:%s", domain.ErrRecordNotFound, name, model)
}

// FindOrCreate resolves a record, creating it when missing. The new record is bound to
// the schema called model and placed in a model directory next to near.
func (c *Catalog) FindOrCreate(near *domain.Record, model, name string) (*domain.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rc, err := c.find(name, model); err == nil {
		return rc, nil
	}
	schema, ok := c.schemas[model]
	if !ok {
		return nil, fmt.Errorf("create %s:%s: %w", name, model, domain.ErrSchemaNotFound)
	}

	rc := domain.NewRecord(name, schema)
	rc.Path = SiblingPath(near, model, name)
	rc.Restore()
	rc.Bind(c)
	c.records[rc.Ref()] = rc
	c.created = append(c.created, rc.Ref())

	c.logger.Info("record created", "record", rc.Ref().Code(), "path", rc.Path)
	return rc, nil
}

// SiblingPath places name under a model directory beside near.
func SiblingPath(near *domain.Record, model, name string) string {
	dir := "."
	if near != nil && near.Path != "" {
		dir = path.Dir(near.Path)
	}
	return path.Join(dir, model, name)
}
