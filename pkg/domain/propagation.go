package domain

// RunDependencyPropagation feeds every derived field the current value of the field it
// depends on and reports whether any of them changed.
//
// With a bound schema the walk follows schema order and creates missing derived slots.
// Without one it walks the existing slots and only retrofits empty slots whose kind is
// Dependent. Propagation never fails: unresolvable fields are skipped and feed errors are
// reported through hooks.
func (r *Record) RunDependencyPropagation(hooks Hooks) bool {
	if r.schema != nil {
		return r.propagateSchema(hooks)
	}
	return r.propagateInstance(hooks)
}

func (r *Record) propagateSchema(hooks Hooks) bool {
	changed := false
	added := false
	for _, f := range r.schema.fields {
		if f.DependsOn == nil {
			continue
		}
		src := r.Value(f.DependsOn)
		if src == nil {
			hooks.emit(r.event(EventFieldSkipped, f, SkipSourceEmpty))
			continue
		}

		i := r.indexOf(f)
		if i < 0 {
			if !f.Kind.derivable() {
				hooks.emit(r.event(EventFieldSkipped, f, SkipNotDependent))
				continue
			}
			r.slots = append(r.slots, Slot{Field: f})
			i = len(r.slots) - 1
			added = true
		}
		dep, reason := r.dependentAt(i)
		if dep == nil {
			hooks.emit(r.event(EventFieldSkipped, f, reason))
			continue
		}
		changed = r.feed(dep, f, src, hooks) || changed
	}
	if added {
		r.SortVariables()
	}
	return changed
}

func (r *Record) propagateInstance(hooks Hooks) bool {
	changed := false
	for i := range r.slots {
		f := r.slots[i].Field
		if f == nil || f.DependsOn == nil {
			continue
		}
		src := r.Value(f.DependsOn)
		if src == nil {
			hooks.emit(r.event(EventFieldSkipped, f, SkipSourceEmpty))
			continue
		}
		dep, reason := r.dependentAt(i)
		if dep == nil {
			hooks.emit(r.event(EventFieldSkipped, f, reason))
			continue
		}
		changed = r.feed(dep, f, src, hooks) || changed
	}
	return changed
}

// dependentAt returns the Dependent held by slot i, instantiating a default into the
// slot when it is empty and the declared kind allows it.
func (r *Record) dependentAt(i int) (Dependent, string) {
	r.heal(i)
	s := &r.slots[i]
	if s.Value == nil {
		if !s.Field.Kind.derivable() {
			return nil, SkipNotDependent
		}
		v := s.Field.Kind.New()
		if v == nil {
			return nil, SkipNoDefault
		}
		s.Value = v
	}
	dep, ok := s.Value.(Dependent)
	if !ok {
		return nil, SkipNotDependent
	}
	return dep, ""
}

func (r *Record) feed(dep Dependent, f *Variable, src Value, hooks Hooks) bool {
	changed, err := dep.Feed(src)
	if err != nil {
		ev := r.event(EventFieldFailed, f, "")
		ev.Err = err
		hooks.emit(ev)
		return false
	}
	if changed {
		hooks.emit(r.event(EventFieldChanged, f, ""))
	}
	return changed
}

func (r *Record) event(t EventType, f *Variable, reason string) *FieldEvent {
	return &FieldEvent{Type: t, Record: r, Field: f, Source: f.DependsOn, Reason: reason}
}
