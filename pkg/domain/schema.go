package domain

import (
	"fmt"
	"slices"
)

// Schema is an ordered set of field definitions. Order is the canonical slot order of
// every record bound to it. Records only read a schema; edits go through Add, Remove and Move.
type Schema struct {
	Name   string
	fields []*Variable
}

// NewSchema builds a schema and adds fields in order.
func NewSchema(name string, fields ...*Variable) (*Schema, error) {
	s := &Schema{Name: name}
	for _, f := range fields {
		if err := s.Add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a field. Names are unique within a schema.
func (s *Schema) Add(v *Variable) error {
	if v == nil || v.Name == "" {
		return fmt.Errorf("add field to %q: empty field", s.Name)
	}
	if s.Field(v.Name) != nil {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateField, v.Name, s.Name)
	}
	s.fields = append(s.fields, v)
	return nil
}

// Remove deletes the named field. Fields depending on it lose their dependency.
func (s *Schema) Remove(name string) bool {
	i := slices.IndexFunc(s.fields, func(f *Variable) bool { return f.Name == name })
	if i < 0 {
		return false
	}
	removed := s.fields[i]
	s.fields = slices.Delete(s.fields, i, i+1)
	for _, f := range s.fields {
		if f.DependsOn == removed {
			f.DependsOn = nil
		}
	}
	return true
}

// Move reorders a field from one position to another.
func (s *Schema) Move(from, to int) error {
	if from < 0 || from >= len(s.fields) || to < 0 || to >= len(s.fields) {
		return fmt.Errorf("move field in %q: index out of range (%d -> %d of %d)", s.Name, from, to, len(s.fields))
	}
	if from == to {
		return nil
	}
	v := s.fields[from]
	s.fields = slices.Delete(s.fields, from, from+1)
	s.fields = slices.Insert(s.fields, to, v)
	return nil
}

// Field returns the named field or nil.
func (s *Schema) Field(name string) *Variable {
	if s == nil {
		return nil
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []*Variable {
	if s == nil {
		return nil
	}
	return slices.Clone(s.fields)
}

// At returns the field at position i.
func (s *Schema) At(i int) *Variable { return s.fields[i] }

// Index returns the position of v or -1.
func (s *Schema) Index(v *Variable) int {
	if s == nil {
		return -1
	}
	return slices.Index(s.fields, v)
}

// Contains reports whether v is one of the schema's fields.
func (s *Schema) Contains(v *Variable) bool { return s.Index(v) >= 0 }

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Validate checks the authoring invariants and returns every failure found.
func (s *Schema) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.fields))

	for _, f := range s.fields {
		if seen[f.Name] {
			errs = append(errs, &FieldError{Field: f.Name, Reason: "duplicate name", Err: ErrDuplicateField})
		}
		seen[f.Name] = true

		if f.Kind == nil {
			errs = append(errs, &FieldError{Field: f.Name, Reason: "missing kind", Err: ErrUnknownKind})
			continue
		}
		if f.RequiresTarget() && f.Target == "" {
			errs = append(errs, &FieldError{Field: f.Name, Reason: "missing target model"})
		}
		if f.DependsOn == nil {
			continue
		}
		if !s.Contains(f.DependsOn) {
			errs = append(errs, &FieldError{
				Field:  f.Name,
				Reason: fmt.Sprintf("depends on %q which is not in the schema", f.DependsOn.Name),
				Err:    ErrInvalidDependency,
			})
			continue
		}
		if err := ValidateDependency(f.DependsOn, f.Kind); err != nil {
			errs = append(errs, &FieldError{Field: f.Name, Reason: err.Error(), Err: ErrInvalidDependency})
		}
		if s.inCycle(f) {
			errs = append(errs, &FieldError{Field: f.Name, Reason: "dependency cycle", Err: ErrDependencyCycle})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// inCycle follows the single dependency chain from f. Each field has at most one
// dependency, so a chain longer than the schema means a loop.
func (s *Schema) inCycle(f *Variable) bool {
	cur := f.DependsOn
	for steps := 0; cur != nil; steps++ {
		if cur == f || steps > len(s.fields) {
			return true
		}
		cur = cur.DependsOn
	}
	return false
}
