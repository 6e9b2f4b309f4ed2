package domain

// Ref identifies another record by name and model. It never owns the record; resolution
// goes through a Lookup.
type Ref struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Model string `json:"model" yaml:"model" mapstructure:"model"`
}

// Code returns the textual "name:model" form.
func (r Ref) Code() string { return r.Name + ":" + r.Model }

func (r Ref) String() string { return r.Code() }

// IsZero reports whether the ref names nothing.
func (r Ref) IsZero() bool { return r.Name == "" && r.Model == "" }

// Lookup finds records on behalf of values that hold references.
type Lookup interface {
	// FindRecord resolves a record by name. An empty model matches any model.
	// Returns ErrRecordNotFound when nothing matches.
	FindRecord(name, model string) (*Record, error)

	// FindOrCreate resolves a record, creating it as a sibling of near when missing.
	FindOrCreate(near *Record, model, name string) (*Record, error)
}
