package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	changed []string
	skipped []string
	failed  []error
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnFieldChanged: func(ev *FieldEvent) { r.changed = append(r.changed, ev.Field.Name) },
		OnFieldSkipped: func(ev *FieldEvent) { r.skipped = append(r.skipped, ev.Field.Name+": "+ev.Reason) },
		OnFieldError:   func(ev *FieldEvent) { r.failed = append(r.failed, ev.Err) },
	}
}

func TestPropagation_SchemaDrivenCreatesSlotAndMemoizes(t *testing.T) {
	reg := testRegistry()
	s, title, size, note := testSchema(reg)
	rc := NewRecord("apple", s)
	require.True(t, rc.SetVariableData(note, "crunchy"))
	require.True(t, rc.SetVariableData(title, "apple"))

	rec := &recorder{}
	assert.True(t, rc.RunDependencyPropagation(rec.hooks()))
	assert.Equal(t, []string{"size"}, rec.changed)
	assert.Equal(t, []*Variable{title, size, note}, fieldsOf(rc), "created slot lands in schema order")

	derived := rc.Value(size).(*length)
	assert.Equal(t, 5, derived.n)

	assert.False(t, rc.RunDependencyPropagation(rec.hooks()), "second pass is a no-op")
	assert.Equal(t, 1, derived.feeds)
	assert.Equal(t, []string{"size"}, rec.changed)
}

func TestPropagation_SkipsEmptySource(t *testing.T) {
	reg := testRegistry()
	s, _, size, _ := testSchema(reg)
	rc := NewRecord("apple", s)

	rec := &recorder{}
	assert.False(t, rc.RunDependencyPropagation(rec.hooks()))
	assert.Equal(t, []string{"size: " + SkipSourceEmpty}, rec.skipped)
	assert.Nil(t, rc.Value(size))
	assert.Equal(t, 0, rc.Len())
}

func TestPropagation_FeedErrorIsReportedNotRaised(t *testing.T) {
	reg := testRegistry()
	s, title, size, _ := testSchema(reg)
	rc := NewRecord("apple", s)
	require.True(t, rc.SetVariableData(title, "APPLE"))

	rec := &recorder{}
	assert.False(t, rc.RunDependencyPropagation(rec.hooks()))
	require.Len(t, rec.failed, 1)
	assert.ErrorIs(t, rec.failed[0], errShout)
	assert.False(t, rc.Value(size).(*length).ready)

	assert.False(t, rc.RunDependencyPropagation(Hooks{}), "nil hooks are fine")
}

func TestPropagation_InstanceDriven(t *testing.T) {
	reg := testRegistry()
	_, title, size, note := testSchema(reg)
	rc := NewRecord("loose", nil)
	rc.AppendSlot(title, &text{s: "pear"})
	rc.AppendSlot(size, nil)
	rc.AppendSlot(note, &text{s: "soft"})

	rec := &recorder{}
	assert.True(t, rc.RunDependencyPropagation(rec.hooks()))
	assert.Equal(t, 4, rc.Value(size).(*length).n)
	assert.False(t, rc.RunDependencyPropagation(rec.hooks()))

	// A derived field with no slot is not created without a schema.
	lonely := NewRecord("lonely", nil)
	lonely.AppendSlot(title, &text{s: "fig"})
	assert.False(t, lonely.RunDependencyPropagation(Hooks{}))
	assert.Equal(t, 1, lonely.Len())
}

func TestHooks_Merge(t *testing.T) {
	var calls []string
	a := Hooks{OnFieldChanged: func(*FieldEvent) { calls = append(calls, "a") }}
	b := Hooks{
		OnFieldChanged: func(*FieldEvent) { calls = append(calls, "b") },
		OnFieldSkipped: func(*FieldEvent) { calls = append(calls, "skip") },
	}
	m := a.Merge(b)
	m.emit(&FieldEvent{Type: EventFieldChanged})
	m.emit(&FieldEvent{Type: EventFieldSkipped})
	m.emit(&FieldEvent{Type: EventFieldFailed})
	assert.Equal(t, []string{"a", "b", "skip"}, calls)
}
