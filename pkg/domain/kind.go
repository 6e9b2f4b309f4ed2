package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Constructor builds a zero value of a kind.
type Constructor func() Value

// Kind describes a registered value kind. Capabilities are decided once, at registration,
// by instantiating the constructor.
type Kind struct {
	Name       string
	Family     string
	Dependent  bool
	Source     string
	References bool

	ctor Constructor
}

// New returns a fresh zero value of the kind.
func (k *Kind) New() Value {
	if k == nil || k.ctor == nil {
		return nil
	}
	return k.ctor()
}

// Owns reports whether v is an instance of this kind.
func (k *Kind) Owns(v Value) bool {
	return k != nil && v != nil && v.Kind() == k.Name
}

func (k *Kind) derivable() bool { return k != nil && k.Dependent }

func (k *Kind) String() string {
	if k == nil {
		return "<nil>"
	}
	return k.Name
}

// Registry maps kind tags to constructors. It is built once at startup and only read
// afterwards, so concurrent reads need no locking.
type Registry struct {
	kinds    map[string]*Kind
	families map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds:    make(map[string]*Kind),
		families: make(map[string][]string),
	}
}

// Register adds a kind. family may be empty; kinds sharing a family can be requested by
// the family tag, which is ambiguous when more than one kind belongs to it.
func (r *Registry) Register(name, family string, ctor Constructor) (*Kind, error) {
	if name == "" {
		return nil, fmt.Errorf("register kind: empty name")
	}
	if ctor == nil {
		return nil, fmt.Errorf("register kind %q: nil constructor", name)
	}
	if _, exists := r.kinds[name]; exists {
		return nil, fmt.Errorf("register kind %q: already registered", name)
	}
	if _, exists := r.families[name]; exists {
		return nil, fmt.Errorf("register kind %q: name is already a family", name)
	}

	sample := ctor()
	if sample == nil {
		return nil, fmt.Errorf("register kind %q: constructor returned nil", name)
	}
	if sample.Kind() != name {
		return nil, fmt.Errorf("register kind %q: constructor builds %q", name, sample.Kind())
	}

	k := &Kind{Name: name, Family: family, ctor: ctor}
	if dep, ok := sample.(Dependent); ok {
		k.Dependent = true
		k.Source = dep.SourceKind()
	}
	if _, ok := sample.(Referencing); ok {
		k.References = true
	}

	r.kinds[name] = k
	if family != "" && family != name {
		r.families[family] = append(r.families[family], name)
		slices.Sort(r.families[family])
	}
	return k, nil
}

// MustRegister is like Register but panics on error. Meant for static catalogs.
func (r *Registry) MustRegister(name, family string, ctor Constructor) *Kind {
	k, err := r.Register(name, family, ctor)
	if err != nil {
		panic(err)
	}
	return k
}

// Lookup returns the kind registered under exactly this tag.
func (r *Registry) Lookup(tag string) (*Kind, error) {
	if k, ok := r.kinds[tag]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
}

// Resolve accepts a concrete tag or a family tag. A family with a single member
// resolves to it; a family with several returns *AmbiguousKindError.
func (r *Registry) Resolve(tag string) (*Kind, error) {
	if k, ok := r.kinds[tag]; ok {
		return k, nil
	}
	members, ok := r.families[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}
	if len(members) == 1 {
		return r.kinds[members[0]], nil
	}
	return nil, &AmbiguousKindError{Tag: tag, Candidates: slices.Clone(members)}
}

// ResolveWith resolves tag using choice to pick among a family's members. An empty
// choice behaves like Resolve.
func (r *Registry) ResolveWith(tag, choice string) (*Kind, error) {
	if choice == "" {
		return r.Resolve(tag)
	}
	k, err := r.Lookup(choice)
	if err != nil {
		return nil, err
	}
	if k.Name != tag && k.Family != tag {
		return nil, fmt.Errorf("%w: %q is not a member of %q", ErrUnknownKind, choice, tag)
	}
	return k, nil
}

// Kinds returns all registered kinds sorted by name.
func (r *Registry) Kinds() []*Kind {
	out := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b *Kind) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// DependentsOf returns the kinds that can be derived from the source kind.
func (r *Registry) DependentsOf(source string) []*Kind {
	var out []*Kind
	for _, k := range r.Kinds() {
		if k.Dependent && k.Source == source {
			out = append(out, k)
		}
	}
	return out
}
