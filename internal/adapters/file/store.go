package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
)

// ErrInvalidName is returned for names that cannot be used as a file name.
var ErrInvalidName = errors.New("invalid file name")

// DefaultBasePath is used when New is given an empty path.
const DefaultBasePath = ".datamodel"

const (
	recordsDir = "records"
	schemasDir = "schemas"
	ext        = ".json"
)

// Store implements ports.RecordStore and ports.SchemaStore using the local filesystem.
// Records live in records/<model>/<name>.json and schemas in schemas/<name>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to DefaultBasePath.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &Store{BasePath: basePath}
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *Store) recordPath(ref domain.Ref) (string, error) {
	if err := checkName(ref.Name); err != nil {
		return "", err
	}
	model := ref.Model
	if model == "" {
		model = "_"
	} else if err := checkName(model); err != nil {
		return "", err
	}
	return filepath.Join(s.BasePath, recordsDir, model, ref.Name+ext), nil
}

// writeAtomic writes to a temp file in the destination directory, syncs it and renames it
// over dest.
func writeAtomic(dest string, v any) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// Save persists the record document atomically.
func (s *Store) Save(ctx context.Context, doc codec.RecordDocument) error {
	dest, err := s.recordPath(doc.Ref())
	if err != nil {
		return err
	}
	return writeAtomic(dest, doc)
}

// Load reads a record document.
func (s *Store) Load(ctx context.Context, ref domain.Ref) (codec.RecordDocument, error) {
	path, err := s.recordPath(ref)
	if err != nil {
		return codec.RecordDocument{}, err
	}
	var doc codec.RecordDocument
	if err := readJSON(path, &doc); err != nil {
		if os.IsNotExist(err) {
			return codec.RecordDocument{}, domain.ErrRecordNotFound
		}
		return codec.RecordDocument{}, fmt.Errorf("failed to read record file: %w", err)
	}
	return doc, nil
}

// Delete removes the record file.
func (s *Store) Delete(ctx context.Context, ref domain.Ref) error {
	path, err := s.recordPath(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// List walks the records directory.
func (s *Store) List(ctx context.Context) ([]domain.Ref, error) {
	root := filepath.Join(s.BasePath, recordsDir)
	models, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Ref{}, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var refs []domain.Ref
	for _, m := range models {
		if !m.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, m.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list model %s: %w", m.Name(), err)
		}
		model := m.Name()
		if model == "_" {
			model = ""
		}
		for _, name := range jsonNames(entries) {
			refs = append(refs, domain.Ref{Name: name, Model: model})
		}
	}
	return refs, nil
}

func jsonNames(entries []os.DirEntry) []string {
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ext))
	}
	slices.Sort(names)
	return names
}

// Schemas reads every schema document.
func (s *Store) Schemas(ctx context.Context) ([]codec.SchemaDocument, error) {
	dir := filepath.Join(s.BasePath, schemasDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []codec.SchemaDocument{}, nil
		}
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	var out []codec.SchemaDocument
	for _, name := range jsonNames(entries) {
		var doc codec.SchemaDocument
		if err := readJSON(filepath.Join(dir, name+ext), &doc); err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// SaveSchema writes a schema document atomically.
func (s *Store) SaveSchema(ctx context.Context, doc codec.SchemaDocument) error {
	if err := checkName(doc.Name); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.BasePath, schemasDir, doc.Name+ext), doc)
}
