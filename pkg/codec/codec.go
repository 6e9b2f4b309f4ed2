package codec

import (
	"errors"
	"fmt"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrModelMismatch is returned when a record document names another schema than the one
// supplied for decoding.
var ErrModelMismatch = errors.New("record model does not match schema")

// FieldDocument is the stored form of a field definition.
type FieldDocument struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Kind string `json:"kind" yaml:"kind" mapstructure:"kind"`
	// Choice picks a concrete kind when Kind names a family.
	Choice    string `json:"choice,omitempty" yaml:"choice,omitempty" mapstructure:"choice"`
	DependsOn string `json:"depends_on,omitempty" yaml:"depends_on,omitempty" mapstructure:"depends_on"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
}

// SchemaDocument is the stored form of a schema.
type SchemaDocument struct {
	Name   string          `json:"name" yaml:"name" mapstructure:"name"`
	Fields []FieldDocument `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// SlotDocument is the stored form of one slot. Kind and DependsOn make unbound records
// self-describing; for bound records the schema wins.
type SlotDocument struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	Kind      string `json:"kind" yaml:"kind" mapstructure:"kind"`
	DependsOn string `json:"depends_on,omitempty" yaml:"depends_on,omitempty" mapstructure:"depends_on"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// RecordDocument is the stored form of a record.
type RecordDocument struct {
	Name  string         `json:"name" yaml:"name" mapstructure:"name"`
	Model string         `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	Path  string         `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	Slots []SlotDocument `json:"slots" yaml:"slots" mapstructure:"slots"`
}

// Ref returns the identifier of the stored record.
func (d RecordDocument) Ref() domain.Ref { return domain.Ref{Name: d.Name, Model: d.Model} }

// EncodeSchema converts a schema to its document.
func EncodeSchema(s *domain.Schema) SchemaDocument {
	doc := SchemaDocument{Name: s.Name, Fields: make([]FieldDocument, 0, s.Len())}
	for _, f := range s.Fields() {
		fd := FieldDocument{Name: f.Name, Kind: f.Kind.String(), Target: f.Target}
		if f.DependsOn != nil {
			fd.DependsOn = f.DependsOn.Name
		}
		doc.Fields = append(doc.Fields, fd)
	}
	return doc
}

// DecodeSchema builds a schema from its document, resolving kind tags through reg. A tag
// naming a family with several kinds fails with *domain.AmbiguousKindError unless the
// field carries a Choice. The result is validated.
func DecodeSchema(doc SchemaDocument, reg *domain.Registry) (*domain.Schema, error) {
	s, err := domain.NewSchema(doc.Name)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, fd := range doc.Fields {
		kind, err := reg.ResolveWith(fd.Kind, fd.Choice)
		if err != nil {
			errs = append(errs, &domain.FieldError{Field: fd.Name, Reason: err.Error(), Err: err})
			continue
		}
		v := domain.NewVariable(fd.Name, kind)
		v.Target = fd.Target
		if err := s.Add(v); err != nil {
			errs = append(errs, &domain.FieldError{Field: fd.Name, Reason: err.Error(), Err: err})
		}
	}
	for _, fd := range doc.Fields {
		if fd.DependsOn == "" {
			continue
		}
		f, dep := s.Field(fd.Name), s.Field(fd.DependsOn)
		if f == nil {
			continue
		}
		if dep == nil {
			errs = append(errs, &domain.FieldError{
				Field:  fd.Name,
				Reason: fmt.Sprintf("depends on unknown field %q", fd.DependsOn),
				Err:    domain.ErrFieldNotFound,
			})
			continue
		}
		if err := f.DependOn(dep); err != nil {
			errs = append(errs, &domain.FieldError{Field: fd.Name, Reason: err.Error(), Err: err})
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("schema %q: %w", doc.Name, &domain.AggregateError{Errors: errs})
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("schema %q: %w", doc.Name, err)
	}
	return s, nil
}

// EncodeRecord converts a record to its document. Empty slots and values that do not
// implement domain.Exporter are stored without a value.
func EncodeRecord(rc *domain.Record) RecordDocument {
	doc := RecordDocument{Name: rc.Name, Model: rc.Model(), Path: rc.Path}
	for _, s := range rc.Slots() {
		sd := SlotDocument{Name: s.Field.Name, Kind: s.Field.Kind.String()}
		if s.Field.DependsOn != nil {
			sd.DependsOn = s.Field.DependsOn.Name
		}
		if ex, ok := s.Value.(domain.Exporter); ok {
			sd.Value = ex.Export()
		}
		doc.Slots = append(doc.Slots, sd)
	}
	return doc
}

// DecodeRecord rebuilds a record. With a schema, slots are matched to fields by name:
// slots for unknown fields are dropped, values of another kind or values the field
// rejects leave the slot empty. Without a schema, field definitions are rebuilt from the
// slot documents; an unknown kind or a dependency that cannot hold is an error. A field
// listed twice keeps its first slot.
func DecodeRecord(doc RecordDocument, schema *domain.Schema, reg *domain.Registry) (*domain.Record, error) {
	if schema != nil && doc.Model != "" && doc.Model != schema.Name {
		return nil, fmt.Errorf("%w: %q is %q, not %q", ErrModelMismatch, doc.Name, doc.Model, schema.Name)
	}
	rc := domain.NewRecord(doc.Name, schema)
	rc.Path = doc.Path
	seen := make(map[string]bool, len(doc.Slots))

	if schema != nil {
		for _, sd := range doc.Slots {
			f := schema.Field(sd.Name)
			if f == nil || seen[sd.Name] {
				continue
			}
			seen[sd.Name] = true
			rc.AppendSlot(f, nil)
			if sd.Value != nil && (sd.Kind == "" || sd.Kind == f.Kind.Name) {
				rc.SetVariableData(f, sd.Value)
			}
		}
		rc.SortVariables()
		return rc, nil
	}

	fields := make(map[string]*domain.Variable, len(doc.Slots))
	firsts := make([]SlotDocument, 0, len(doc.Slots))
	for _, sd := range doc.Slots {
		if seen[sd.Name] {
			continue
		}
		seen[sd.Name] = true
		firsts = append(firsts, sd)
		kind, err := reg.Lookup(sd.Kind)
		if err != nil {
			return nil, fmt.Errorf("record %q field %q: %w", doc.Name, sd.Name, err)
		}
		f := domain.NewVariable(sd.Name, kind)
		fields[sd.Name] = f
		rc.AppendSlot(f, nil)
		if sd.Value != nil {
			rc.SetVariableData(f, sd.Value)
		}
	}

	var errs []error
	for _, sd := range firsts {
		if sd.DependsOn == "" {
			continue
		}
		dep, ok := fields[sd.DependsOn]
		if !ok {
			errs = append(errs, &domain.FieldError{
				Field:  sd.Name,
				Reason: fmt.Sprintf("depends on unknown field %q", sd.DependsOn),
				Err:    domain.ErrFieldNotFound,
			})
			continue
		}
		if err := fields[sd.Name].DependOn(dep); err != nil {
			errs = append(errs, &domain.FieldError{Field: sd.Name, Reason: err.Error(), Err: err})
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("record %q: %w", doc.Name, &domain.AggregateError{Errors: errs})
	}
	return rc, nil
}

// SchemaFromMap decodes a loosely typed map (front-matter, a YAML node) into a document.
func SchemaFromMap(m map[string]any) (SchemaDocument, error) {
	var doc SchemaDocument
	if err := mapstructure.WeakDecode(m, &doc); err != nil {
		return SchemaDocument{}, fmt.Errorf("decode schema document: %w", err)
	}
	return doc, nil
}

// RecordFromMap decodes a loosely typed map into a record document. Slot values are kept
// as they are and interpreted later by each value's TrySet.
func RecordFromMap(m map[string]any) (RecordDocument, error) {
	var doc RecordDocument
	if err := mapstructure.WeakDecode(m, &doc); err != nil {
		return RecordDocument{}, fmt.Errorf("decode record document: %w", err)
	}
	return doc, nil
}

// RecordToMap is the inverse of RecordFromMap.
func RecordToMap(doc RecordDocument) map[string]any {
	slots := make([]any, len(doc.Slots))
	for i, s := range doc.Slots {
		m := map[string]any{"name": s.Name, "kind": s.Kind}
		if s.DependsOn != "" {
			m["depends_on"] = s.DependsOn
		}
		if s.Value != nil {
			m["value"] = s.Value
		}
		slots[i] = m
	}
	out := map[string]any{"name": doc.Name, "slots": slots}
	if doc.Model != "" {
		out["model"] = doc.Model
	}
	if doc.Path != "" {
		out["path"] = doc.Path
	}
	return out
}
