package domain

import (
	"fmt"
	"slices"
)

// Slot pairs a field definition with its current value. Value is nil until the first
// write or explicit instantiation.
type Slot struct {
	Field *Variable
	Value Value
}

func (s Slot) String() string {
	if s.Value == nil {
		return fmt.Sprintf("%s = <empty>", s.Field)
	}
	return fmt.Sprintf("%s = %v", s.Field, s.Value)
}

// Record is an ordered set of slots, optionally bound to a schema. A record is owned by a
// single writer; callers sharing records across goroutines must serialize access.
type Record struct {
	Name string
	// Path locates the record in its store. Sibling records are created next to it.
	Path string

	schema *Schema
	slots  []Slot
	lookup Lookup
}

// NewRecord returns an empty record bound to schema, which may be nil.
func NewRecord(name string, schema *Schema) *Record {
	return &Record{Name: name, schema: schema}
}

// Schema returns the bound schema or nil.
func (r *Record) Schema() *Schema { return r.schema }

// SetSchema binds the record to a schema. Call Restore to bring slots in line with it.
func (r *Record) SetSchema(s *Schema) { r.schema = s }

// Model returns the bound schema's name or "".
func (r *Record) Model() string {
	if r.schema == nil {
		return ""
	}
	return r.schema.Name
}

// Ref returns the identifier other records use to reference this one.
func (r *Record) Ref() Ref { return Ref{Name: r.Name, Model: r.Model()} }

// Bind attaches the lookup used to resolve references from this record.
func (r *Record) Bind(l Lookup) { r.lookup = l }

// Lookup returns the bound lookup or nil.
func (r *Record) Lookup() Lookup { return r.lookup }

// Find resolves a reference through the bound lookup.
func (r *Record) Find(ref Ref) (*Record, error) {
	if r.lookup == nil {
		return nil, ErrNoLookup
	}
	return r.lookup.FindRecord(ref.Name, ref.Model)
}

// Len returns the number of slots.
func (r *Record) Len() int { return len(r.slots) }

// Slot returns the slot at position i, with mismatched values discarded.
func (r *Record) Slot(i int) Slot {
	r.heal(i)
	return r.slots[i]
}

// Slots returns a copy of the slots in order.
func (r *Record) Slots() []Slot {
	for i := range r.slots {
		r.heal(i)
	}
	return slices.Clone(r.slots)
}

// AppendSlot adds a slot without consulting the schema. Used when rebuilding records from
// storage; callers normally go through SetVariableData.
func (r *Record) AppendSlot(field *Variable, v Value) {
	r.slots = append(r.slots, Slot{Field: field, Value: v})
}

// heal discards the value at i when its kind disagrees with the field's declared kind.
func (r *Record) heal(i int) {
	if r.slots[i].mismatched() {
		r.slots[i].Value = nil
	}
}

func (s Slot) mismatched() bool {
	return s.Value != nil && (s.Field == nil || !s.Field.Kind.Owns(s.Value))
}

func (r *Record) indexOf(field *Variable) int {
	return slices.IndexFunc(r.slots, func(s Slot) bool { return s.Field == field })
}

func (r *Record) indexByName(name string) int {
	return slices.IndexFunc(r.slots, func(s Slot) bool { return s.Field != nil && s.Field.Name == name })
}

// Value returns the current value of field, or nil when the slot is absent, empty, or
// holds a value of the wrong kind.
func (r *Record) Value(field *Variable) Value {
	i := r.indexOf(field)
	if i < 0 {
		return nil
	}
	r.heal(i)
	return r.slots[i].Value
}

// ValueByName returns the value and definition of the named field.
func (r *Record) ValueByName(name string) (Value, *Variable) {
	i := r.indexByName(name)
	if i < 0 {
		return nil, nil
	}
	r.heal(i)
	return r.slots[i].Value, r.slots[i].Field
}

// ValueByNameKind is ValueByName restricted to fields of the given kind.
func (r *Record) ValueByNameKind(name string, kind *Kind) (Value, *Variable) {
	i := slices.IndexFunc(r.slots, func(s Slot) bool {
		return s.Field != nil && s.Field.Name == name && s.Field.Kind == kind
	})
	if i < 0 {
		return nil, nil
	}
	r.heal(i)
	return r.slots[i].Value, r.slots[i].Field
}

// Field resolves a field definition by name, looking at the slots first and then the schema.
func (r *Record) Field(name string) *Variable {
	if i := r.indexByName(name); i >= 0 {
		return r.slots[i].Field
	}
	return r.schema.Field(name)
}

// SetVariableData coerces input into the slot of field and reports whether the value
// accepted it. A missing slot is created when the schema declares the field; an empty or
// mismatched slot gets a fresh default value first. A default that rejects the input is
// not stored.
func (r *Record) SetVariableData(field *Variable, input any) bool {
	if field == nil || field.Kind == nil {
		return false
	}

	if i := r.indexOf(field); i >= 0 {
		r.heal(i)
		v := r.slots[i].Value
		if v == nil {
			if v = field.Kind.New(); v == nil {
				return false
			}
		}
		if !v.TrySet(input, r) {
			return false
		}
		r.slots[i].Value = v
		return true
	}

	if !r.schema.Contains(field) {
		return false
	}
	v := field.Kind.New()
	if v == nil || !v.TrySet(input, r) {
		return false
	}
	r.slots = append(r.slots, Slot{Field: field, Value: v})
	r.SortVariables()
	return true
}

// Set is SetVariableData addressed by field name.
func (r *Record) Set(name string, input any) bool {
	return r.SetVariableData(r.Field(name), input)
}

// SortVariables reorders slots to match schema order and returns the number of slots
// moved. Each move pulls one slot forward and shifts the ones it passes, so slots whose
// field is not in the schema end up last in their original order. Already sorted records
// cost a scan and report zero.
func (r *Record) SortVariables() int {
	if r.schema == nil {
		return 0
	}
	moves := 0
	it := 0
	for _, f := range r.schema.fields {
		for j := it; j < len(r.slots); j++ {
			if r.slots[j].Field != f {
				continue
			}
			if j != it {
				s := r.slots[j]
				copy(r.slots[it+1:j+1], r.slots[it:j])
				r.slots[it] = s
				moves++
			}
			it++
		}
	}
	return moves
}

// RestoreReport summarizes what Restore changed.
type RestoreReport struct {
	Added     int // slots created for schema fields
	Removed   int // slots whose field left the schema, or duplicates
	Discarded int // values whose kind disagreed with their field
	Moves     int // slots moved to reach schema order
}

// Changed reports whether Restore modified the record.
func (rr RestoreReport) Changed() bool {
	return rr.Added+rr.Removed+rr.Discarded+rr.Moves > 0
}

// Restore brings the record back in line with its schema: mismatched values are dropped,
// orphaned and duplicate slots removed, missing fields get a default value, and slots are
// sorted. Unbound records only get mismatches discarded.
func (r *Record) Restore() RestoreReport {
	var rep RestoreReport
	for i := range r.slots {
		if r.slots[i].mismatched() {
			r.slots[i].Value = nil
			rep.Discarded++
		}
	}
	if r.schema == nil {
		return rep
	}

	seen := make(map[*Variable]bool, len(r.slots))
	kept := r.slots[:0]
	for _, s := range r.slots {
		if !r.schema.Contains(s.Field) || seen[s.Field] {
			rep.Removed++
			continue
		}
		seen[s.Field] = true
		kept = append(kept, s)
	}
	r.slots = kept

	for _, f := range r.schema.fields {
		if seen[f] {
			continue
		}
		r.slots = append(r.slots, Slot{Field: f, Value: f.Kind.New()})
		rep.Added++
	}
	rep.Moves = r.SortVariables()
	return rep
}

func (r *Record) String() string {
	return r.Ref().Code()
}
