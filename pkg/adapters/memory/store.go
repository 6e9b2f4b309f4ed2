package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
)

// Store implements ports.RecordStore and ports.SchemaStore in memory.
// Safe for concurrent use.
type Store struct {
	records map[domain.Ref]codec.RecordDocument
	schemas map[string]codec.SchemaDocument
	mu      sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[domain.Ref]codec.RecordDocument),
		schemas: make(map[string]codec.SchemaDocument),
	}
}

// copy on write and on read so callers never share slot slices with the store
func cloneRecord(doc codec.RecordDocument) codec.RecordDocument {
	doc.Slots = slices.Clone(doc.Slots)
	return doc
}

func cloneSchema(doc codec.SchemaDocument) codec.SchemaDocument {
	doc.Fields = slices.Clone(doc.Fields)
	return doc
}

// Save persists the document in memory.
func (s *Store) Save(ctx context.Context, doc codec.RecordDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[doc.Ref()] = cloneRecord(doc)
	return nil
}

// Load retrieves a document from memory.
func (s *Store) Load(ctx context.Context, ref domain.Ref) (codec.RecordDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.records[ref]
	if !ok {
		return codec.RecordDocument{}, domain.ErrRecordNotFound
	}
	return cloneRecord(doc), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, ref domain.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, ref)
	return nil
}

// List returns stored identifiers ordered by model and name.
func (s *Store) List(ctx context.Context) ([]domain.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]domain.Ref, 0, len(s.records))
	for ref := range s.records {
		refs = append(refs, ref)
	}
	slices.SortFunc(refs, compareRefs)
	return refs, nil
}

// Schemas returns stored schemas ordered by name.
func (s *Store) Schemas(ctx context.Context) ([]codec.SchemaDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]codec.SchemaDocument, 0, len(s.schemas))
	for _, doc := range s.schemas {
		out = append(out, cloneSchema(doc))
	}
	slices.SortFunc(out, func(a, b codec.SchemaDocument) int { return compareStrings(a.Name, b.Name) })
	return out, nil
}

// SaveSchema stores or replaces a schema.
func (s *Store) SaveSchema(ctx context.Context, doc codec.SchemaDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[doc.Name] = cloneSchema(doc)
	return nil
}
