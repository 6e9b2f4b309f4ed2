package domain

// Value is the capability every field value implements.
//
// TrySet inspects the dynamic shape of input and accepts the first shape it recognizes,
// returning true when the input was accepted, even if the content ends up unchanged (the
// same scalar again, a code already in a list). Unrecognized input returns false and
// leaves the value untouched; it is never partially applied. rc is the record performing the set and
// is only consulted by values that must resolve other records through rc.Lookup().
type Value interface {
	Kind() string
	TrySet(input any, rc *Record) bool
}

// Dependent is a Value computed from the value of another field in the same record.
//
// Feed is memoized: once the value holds computed content it returns false without
// recomputing until the value is explicitly cleared. The error reports hard conditions
// (an unsupported source format, for example) for diagnostics; the value is left as it was.
type Dependent interface {
	Value
	SourceKind() string
	Feed(source Value) (bool, error)
}

// Referencing is implemented by values that hold identifiers of other records.
// Fields of these kinds name a target model.
type Referencing interface {
	Value
	References() []Ref
}

// Exporter is implemented by values that can be persisted as plain data. The exported
// form is accepted back by the same kind's TrySet.
type Exporter interface {
	Export() any
}
