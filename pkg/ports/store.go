package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
)

// RecordStore persists record documents.
type RecordStore interface {
	// Save creates or replaces the document stored under doc.Model and doc.Name.
	Save(ctx context.Context, doc codec.RecordDocument) error

	// Load retrieves a document.
	// Returns domain.ErrRecordNotFound if it does not exist.
	Load(ctx context.Context, ref domain.Ref) (codec.RecordDocument, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, ref domain.Ref) error

	// List returns the identifiers of every stored document.
	List(ctx context.Context) ([]domain.Ref, error)
}

// SchemaStore persists schema documents.
type SchemaStore interface {
	// Schemas returns every stored schema.
	Schemas(ctx context.Context) ([]codec.SchemaDocument, error)

	// SaveSchema creates or replaces a schema.
	SaveSchema(ctx context.Context, doc codec.SchemaDocument) error
}

// RecordSource enumerates stored records in bulk. Document repositories that cannot address
// single records implement it instead of RecordStore.
type RecordSource interface {
	Records(ctx context.Context) ([]codec.RecordDocument, error)
}

// RecordSink persists single records.
type RecordSink interface {
	Save(ctx context.Context, doc codec.RecordDocument) error
}

// SourceOf exposes a RecordStore as a RecordSource.
func SourceOf(store RecordStore) RecordSource { return storeSource{store} }

type storeSource struct{ store RecordStore }

func (s storeSource) Records(ctx context.Context) ([]codec.RecordDocument, error) {
	refs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]codec.RecordDocument, 0, len(refs))
	for _, ref := range refs {
		doc, err := s.store.Load(ctx, ref)
		if errors.Is(err, domain.ErrRecordNotFound) {
			// expired between List and Load
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ref, err)
		}
		out = append(out, doc)
	}
	return out, nil
}
