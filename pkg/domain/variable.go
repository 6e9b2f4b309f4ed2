package domain

import "fmt"

// Variable is one field definition of a schema. Records address slots by the Variable
// pointer itself, so a Variable must be shared, not copied, between a schema and its records.
type Variable struct {
	Name      string
	Kind      *Kind
	DependsOn *Variable

	// Target is the model name of referenced records, for kinds that reference records.
	Target string
}

// NewVariable returns a field definition of the given kind.
func NewVariable(name string, kind *Kind) *Variable {
	return &Variable{Name: name, Kind: kind}
}

// DependOn sets the field this one is derived from after checking the pair is valid.
// A nil dep clears the dependency.
func (v *Variable) DependOn(dep *Variable) error {
	if dep == nil {
		v.DependsOn = nil
		return nil
	}
	if dep == v {
		return fmt.Errorf("%w: %q depends on itself", ErrDependencyCycle, v.Name)
	}
	if err := ValidateDependency(dep, v.Kind); err != nil {
		return err
	}
	v.DependsOn = dep
	return nil
}

// RequiresTarget reports whether the field needs a target model name.
func (v *Variable) RequiresTarget() bool {
	return v.Kind != nil && v.Kind.References
}

func (v *Variable) String() string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s", v.Kind, v.Name)
}

// ValidateDependency checks that a field of the given kind can be derived from dep:
// the kind must be Dependent and its source kind must be dep's kind.
func ValidateDependency(dep *Variable, kind *Kind) error {
	if dep == nil {
		return nil
	}
	if kind == nil {
		return fmt.Errorf("%w: field has no kind", ErrInvalidDependency)
	}
	if !kind.Dependent {
		return fmt.Errorf("%w: %s cannot be derived from another field", ErrInvalidDependency, kind.Name)
	}
	if dep.Kind == nil || dep.Kind.Name != kind.Source {
		return fmt.Errorf("%w: %s is derived from %s, not %s", ErrInvalidDependency, kind.Name, kind.Source, dep.Kind)
	}
	return nil
}
