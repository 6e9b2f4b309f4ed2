package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRecordNotFound is returned when a lookup cannot resolve a record.
	ErrRecordNotFound = errors.New("record not found")

	// ErrSchemaNotFound is returned when a schema name is unknown to a catalog.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrFieldNotFound is returned when a field name is not part of a schema or record.
	ErrFieldNotFound = errors.New("field not found")

	// ErrDuplicateField is returned when a schema already has a field with the same name.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrUnknownKind is returned when a kind tag is not registered.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrInvalidDependency is returned when a field depends on a field it cannot be derived from.
	ErrInvalidDependency = errors.New("invalid dependency")

	// ErrDependencyCycle is returned when field dependencies form a loop.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrNoLookup is returned when a record needs to resolve references but none is bound.
	ErrNoLookup = errors.New("no lookup bound to record")
)

// AmbiguousKindError is returned when a tag names a family with several concrete kinds
// and no explicit choice was supplied. Callers must pick one of Candidates.
type AmbiguousKindError struct {
	Tag        string
	Candidates []string
}

func (e *AmbiguousKindError) Error() string {
	return fmt.Sprintf("kind %q is ambiguous: choose one of [%s]", e.Tag, strings.Join(e.Candidates, ", "))
}

// FieldError represents a single schema validation failure.
type FieldError struct {
	Field  string // Field name
	Reason string // Human-readable reason for failure
	Err    error  // Optional sentinel
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap lets errors.Is match any of the aggregated sentinels.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
