package middleware

import (
	"context"
	"regexp"
	"slices"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/ports"
)

// Redacted replaces the value of masked slots.
const Redacted = "***"

type redactMiddleware struct {
	next     ports.RecordStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks, on save, the values of slots whose
// field name matches one of the patterns, and string keys of nested maps likewise. It is
// meant for stores that leave the process, such as exports for sharing.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RecordStore) ports.RecordStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, doc codec.RecordDocument) error {
	doc.Slots = slices.Clone(doc.Slots)
	for i, s := range doc.Slots {
		if s.Value == nil {
			continue
		}
		if m.matches(s.Name) {
			doc.Slots[i].Value = Redacted
			continue
		}
		if sub, ok := s.Value.(map[string]any); ok {
			doc.Slots[i].Value = m.mask(sub)
		}
	}
	return m.next.Save(ctx, doc)
}

func (m *redactMiddleware) Load(ctx context.Context, ref domain.Ref) (codec.RecordDocument, error) {
	return m.next.Load(ctx, ref)
}

func (m *redactMiddleware) Delete(ctx context.Context, ref domain.Ref) error {
	return m.next.Delete(ctx, ref)
}

func (m *redactMiddleware) List(ctx context.Context) ([]domain.Ref, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// mask returns a masked copy; the caller's map is never modified.
func (m *redactMiddleware) mask(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch {
		case m.matches(k):
			out[k] = Redacted
		default:
			if sub, ok := v.(map[string]any); ok {
				v = m.mask(sub)
			}
			out[k] = v
		}
	}
	return out
}
