package codec

import "reflect"

// RecordDiff lists the slots whose exported value changed between two documents of the
// same record. It is serialized to JSON for partial updates on clients.
type RecordDiff struct {
	Record string `json:"record"`
	// Fields maps changed or added slots to their new value. Removed slots map to nil.
	Fields map[string]any `json:"fields,omitempty"`
}

// Diff calculates the difference between before and after. With a nil before, every slot
// of after is reported. It returns nil when nothing changed.
func Diff(before *RecordDocument, after RecordDocument) *RecordDiff {
	delta := make(map[string]any)
	old := make(map[string]any)
	if before != nil {
		for _, s := range before.Slots {
			old[s.Name] = s.Value
		}
	}

	seen := make(map[string]bool, len(after.Slots))
	for _, s := range after.Slots {
		seen[s.Name] = true
		prev, exists := old[s.Name]
		if !exists || !reflect.DeepEqual(prev, s.Value) {
			delta[s.Name] = s.Value
		}
	}
	for name := range old {
		if !seen[name] {
			delta[name] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return &RecordDiff{Record: after.Ref().Code(), Fields: delta}
}

// IsEmpty reports whether the diff carries no changes.
func (d *RecordDiff) IsEmpty() bool {
	return d == nil || len(d.Fields) == 0
}
