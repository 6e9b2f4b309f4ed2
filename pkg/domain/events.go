package domain

// EventType defines the category of a propagation event.
type EventType string

const (
	EventFieldChanged EventType = "field_changed"
	EventFieldSkipped EventType = "field_skipped"
	EventFieldFailed  EventType = "field_failed"
)

// Skip reasons reported with EventFieldSkipped.
const (
	SkipSourceEmpty  = "source empty"
	SkipNotDependent = "kind is not dependent"
	SkipNoDefault    = "no default value"
)

// FieldEvent describes what propagation did with one derived field.
type FieldEvent struct {
	Type   EventType
	Record *Record
	Field  *Variable
	Source *Variable
	Reason string // set for skips
	Err    error  // set for failures
}

// Hooks are callbacks invoked during propagation. Any of them may be nil.
type Hooks struct {
	OnFieldChanged func(*FieldEvent)
	OnFieldSkipped func(*FieldEvent)
	OnFieldError   func(*FieldEvent)
}

func (h Hooks) emit(ev *FieldEvent) {
	var fn func(*FieldEvent)
	switch ev.Type {
	case EventFieldChanged:
		fn = h.OnFieldChanged
	case EventFieldSkipped:
		fn = h.OnFieldSkipped
	case EventFieldFailed:
		fn = h.OnFieldError
	}
	if fn != nil {
		fn(ev)
	}
}

// Merge returns hooks that call h and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	chain := func(a, b func(*FieldEvent)) func(*FieldEvent) {
		switch {
		case a == nil:
			return b
		case b == nil:
			return a
		}
		return func(ev *FieldEvent) { a(ev); b(ev) }
	}
	return Hooks{
		OnFieldChanged: chain(h.OnFieldChanged, other.OnFieldChanged),
		OnFieldSkipped: chain(h.OnFieldSkipped, other.OnFieldSkipped),
		OnFieldError:   chain(h.OnFieldError, other.OnFieldError),
	}
}
