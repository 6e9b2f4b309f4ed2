package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/loam"
)

const (
	modelsDir  = "models"
	recordsDir = "records"
)

// Repository keeps schemas and records as front-matter documents in a Loam repository:
// schemas under models/<name>, records under records/<model>/<name>. The document body is a
// readable summary; the front-matter is authoritative.
type Repository struct {
	Repo *loam.TypedRepository[Metadata]
}

// New creates a Loam adapter.
func New(repo *loam.TypedRepository[Metadata]) *Repository {
	return &Repository{Repo: repo}
}

// Open initializes a Loam repository rooted at dir without versioning.
func Open(dir string) (*Repository, error) {
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repository at %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[Metadata](repo)), nil
}

// SchemaID returns the document ID of a schema.
func SchemaID(name string) string { return path.Join(modelsDir, name) }

// RecordID returns the document ID of a record.
func RecordID(doc codec.RecordDocument) string {
	model := doc.Model
	if model == "" {
		model = "_"
	}
	return path.Join(recordsDir, model, doc.Name)
}

// list splits every document by its front-matter type. Documents of another type are
// ignored.
func (r *Repository) list(ctx context.Context) ([]Metadata, []Metadata, error) {
	docs, err := r.Repo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loam list failed: %w", err)
	}

	var schemas, records []Metadata
	seen := make(map[string]string)
	for _, doc := range docs {
		meta := doc.Data
		var key string
		switch meta.Type {
		case TypeSchema:
			key = "schema " + meta.Name
			schemas = append(schemas, meta)
		case TypeRecord:
			key = "record " + meta.Name + ":" + meta.Model
			records = append(records, meta)
		default:
			continue
		}
		id := trimExtension(doc.ID)
		if prev, ok := seen[key]; ok {
			return nil, nil, fmt.Errorf("collision detected: %s is defined in both '%s' and '%s'", key, prev, id)
		}
		seen[key] = id
	}
	return schemas, records, nil
}

// Schemas returns every schema document.
func (r *Repository) Schemas(ctx context.Context) ([]codec.SchemaDocument, error) {
	schemas, _, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]codec.SchemaDocument, len(schemas))
	for i, m := range schemas {
		out[i] = m.schema()
	}
	return out, nil
}

// SaveSchema writes a schema document.
func (r *Repository) SaveSchema(ctx context.Context, doc codec.SchemaDocument) error {
	err := r.Repo.Save(ctx, &loam.DocumentModel[Metadata]{
		ID:      SchemaID(doc.Name),
		Content: schemaSummary(doc),
		Data:    schemaMetadata(doc),
	})
	if err != nil {
		return fmt.Errorf("loam save schema %s failed: %w", doc.Name, err)
	}
	return nil
}

// Records returns every record document.
func (r *Repository) Records(ctx context.Context) ([]codec.RecordDocument, error) {
	_, records, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]codec.RecordDocument, len(records))
	for i, m := range records {
		out[i] = m.record()
	}
	return out, nil
}

// Save writes a record document.
func (r *Repository) Save(ctx context.Context, doc codec.RecordDocument) error {
	err := r.Repo.Save(ctx, &loam.DocumentModel[Metadata]{
		ID:      RecordID(doc),
		Content: recordSummary(doc),
		Data:    recordMetadata(doc),
	})
	if err != nil {
		return fmt.Errorf("loam save record %s failed: %w", doc.Ref(), err)
	}
	return nil
}

// Watch reports the IDs of changed documents until ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan string, error) {
	events, err := r.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

func schemaSummary(doc codec.SchemaDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Name)
	for _, f := range doc.Fields {
		fmt.Fprintf(&b, "- **%s** `%s`", f.Name, f.Kind)
		if f.DependsOn != "" {
			fmt.Fprintf(&b, " from %s", f.DependsOn)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func recordSummary(doc codec.RecordDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Name)
	if doc.Model != "" {
		fmt.Fprintf(&b, "Model: %s\n\n", doc.Model)
	}
	for _, s := range doc.Slots {
		if s.Value == nil {
			fmt.Fprintf(&b, "- %s: (empty)\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %v\n", s.Name, s.Value)
	}
	return b.String()
}
