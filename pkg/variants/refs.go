package variants

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/grammar"
	"github.com/aretw0/datamodel/pkg/weighted"
	"github.com/mitchellh/mapstructure"
)

// resolve confirms ref through the record's lookup when one is bound and returns the
// canonical identifier of the found record. Without a lookup the ref is taken as is.
func resolve(ref domain.Ref, rc *domain.Record) (domain.Ref, bool) {
	if ref.Name == "" {
		return domain.Ref{}, false
	}
	if rc == nil || rc.Lookup() == nil {
		return ref, true
	}
	found, err := rc.Lookup().FindRecord(ref.Name, ref.Model)
	if err != nil || found == nil {
		return domain.Ref{}, false
	}
	return found.Ref(), true
}

// refOf reads a single reference: a Ref, a record handle, an exported map, or a
// "name:model" code. Codes go through the lookup; direct identifiers do not.
func refOf(input any, rc *domain.Record) (domain.Ref, bool) {
	switch v := input.(type) {
	case domain.Ref:
		return v, v.Name != ""
	case *domain.Ref:
		if v == nil {
			return domain.Ref{}, false
		}
		return *v, v.Name != ""
	case *domain.Record:
		if v == nil {
			return domain.Ref{}, false
		}
		return v.Ref(), true
	case string:
		ref, err := grammar.ParseCode(v)
		if err != nil {
			return domain.Ref{}, false
		}
		return resolve(ref, rc)
	}
	var ref domain.Ref
	if decodeMap(input, &ref) && ref.Name != "" {
		return ref, true
	}
	return domain.Ref{}, false
}

// refsOf reads a sequence of references. One unreadable element rejects the whole sequence.
func refsOf(input any, rc *domain.Record) ([]domain.Ref, bool) {
	items, ok := toSlice(input)
	if !ok {
		return nil, false
	}
	out := make([]domain.Ref, 0, len(items))
	for _, it := range items {
		ref, ok := refOf(it, rc)
		if !ok {
			return nil, false
		}
		if !slices.Contains(out, ref) {
			out = append(out, ref)
		}
	}
	return out, true
}

func exportRef(ref domain.Ref) map[string]any {
	return map[string]any{"name": ref.Name, "model": ref.Model}
}

// RecordRef references a single record.
type RecordRef struct {
	ref domain.Ref
}

func NewRecordRef() *RecordRef { return &RecordRef{} }

func (r *RecordRef) Kind() string { return KindRef }

// Ref returns the referenced identifier; zero when unset.
func (r *RecordRef) Ref() domain.Ref { return r.ref }

func (r *RecordRef) References() []domain.Ref {
	if r.ref.IsZero() {
		return nil
	}
	return []domain.Ref{r.ref}
}

// Resolve finds the referenced record through rc's lookup.
func (r *RecordRef) Resolve(rc *domain.Record) (*domain.Record, error) {
	if r.ref.IsZero() {
		return nil, domain.ErrRecordNotFound
	}
	return rc.Find(r.ref)
}

func (r *RecordRef) TrySet(input any, rc *domain.Record) bool {
	ref, ok := refOf(input, rc)
	if !ok {
		return false
	}
	r.ref = ref
	return true
}

func (r *RecordRef) Export() any {
	if r.ref.IsZero() {
		return nil
	}
	return exportRef(r.ref)
}

func (r *RecordRef) String() string { return r.ref.Code() }

// RecordRefs references a set of records.
type RecordRefs struct {
	refs []domain.Ref
}

func NewRecordRefs() *RecordRefs { return &RecordRefs{} }

func (r *RecordRefs) Kind() string { return KindRefs }

func (r *RecordRefs) Len() int { return len(r.refs) }

func (r *RecordRefs) References() []domain.Ref { return slices.Clone(r.refs) }

// TrySet accepts, in order: the FindOrCreate command (creates missing records next to rc),
// a code (added when absent), a sequence of references (replaces the set) or a single
// reference (replaces the set with it).
func (r *RecordRefs) TrySet(input any, rc *domain.Record) bool {
	if s, ok := input.(string); ok {
		if cmd, isCmd, err := grammar.ParseFindOrCreate(s); isCmd {
			return err == nil && r.findOrCreate(cmd, rc)
		}
		ref, ok := refOf(s, rc)
		if !ok {
			return false
		}
		r.add(ref)
		return true
	}
	if refs, ok := refsOf(input, rc); ok {
		r.refs = refs
		return true
	}
	if ref, ok := refOf(input, rc); ok {
		r.refs = []domain.Ref{ref}
		return true
	}
	return false
}

// findOrCreate resolves each name, creating missing ones. Records the lookup fails to
// produce are skipped.
func (r *RecordRefs) findOrCreate(cmd grammar.FindOrCreate, rc *domain.Record) bool {
	if rc == nil || rc.Lookup() == nil {
		return false
	}
	added := false
	for _, name := range cmd.Names {
		rec, err := rc.Lookup().FindOrCreate(rc, cmd.Model, name)
		if err != nil || rec == nil {
			continue
		}
		added = r.add(rec.Ref()) || added
	}
	return added
}

func (r *RecordRefs) add(ref domain.Ref) bool {
	if slices.Contains(r.refs, ref) {
		return false
	}
	r.refs = append(r.refs, ref)
	return true
}

func (r *RecordRefs) Export() any {
	out := make([]any, len(r.refs))
	for i, ref := range r.refs {
		out[i] = exportRef(ref)
	}
	return out
}

func (r *RecordRefs) String() string {
	codes := make([]string, len(r.refs))
	for i, ref := range r.refs {
		codes[i] = ref.Code()
	}
	return "[" + strings.Join(codes, ", ") + "]"
}

// WeightedRecordRefs is a set of references with draw weights.
type WeightedRecordRefs struct {
	items []weighted.Weighted[domain.Ref]
}

func NewWeightedRecordRefs() *WeightedRecordRefs { return &WeightedRecordRefs{} }

func (w *WeightedRecordRefs) Kind() string { return KindWeightedRefs }

func (w *WeightedRecordRefs) Len() int { return len(w.items) }

func (w *WeightedRecordRefs) Items() []weighted.Weighted[domain.Ref] { return slices.Clone(w.items) }

func (w *WeightedRecordRefs) References() []domain.Ref {
	out := make([]domain.Ref, len(w.items))
	for i, it := range w.items {
		out[i] = it.Value
	}
	return out
}

// Random draws a reference with probability proportional to its weight.
func (w *WeightedRecordRefs) Random(r *rand.Rand) (domain.Ref, bool) {
	return weighted.Random(w.items, r)
}

// TrySet accepts a "<pct>% <code>" entry or a Weighted[Ref], updating the weight of a
// reference already present or appending it, and sequences of either (replace).
func (w *WeightedRecordRefs) TrySet(input any, rc *domain.Record) bool {
	if it, ok := weightedRefOf(input, rc); ok {
		w.upsert(it)
		return true
	}
	items, ok := toSlice(input)
	if !ok {
		return false
	}
	out := make([]weighted.Weighted[domain.Ref], 0, len(items))
	for _, raw := range items {
		it, ok := weightedRefOf(raw, rc)
		if !ok {
			return false
		}
		out = append(out, it)
	}
	w.items = out
	return true
}

func (w *WeightedRecordRefs) upsert(it weighted.Weighted[domain.Ref]) {
	for i := range w.items {
		if w.items[i].Value == it.Value {
			w.items[i].SetWeight(it.Weight)
			return
		}
	}
	w.items = append(w.items, it)
}

func weightedRefOf(input any, rc *domain.Record) (weighted.Weighted[domain.Ref], bool) {
	switch v := input.(type) {
	case string:
		wc, err := grammar.ParseWeighted(v)
		if err != nil {
			return weighted.Weighted[domain.Ref]{}, false
		}
		ref, ok := resolve(wc.Ref, rc)
		return weighted.New(ref, wc.Weight), ok
	case weighted.Weighted[domain.Ref]:
		return v, v.Value.Name != "" && v.Weight >= 0
	case map[string]any:
		var it weighted.Weighted[domain.Ref]
		if err := mapstructure.WeakDecode(v, &it); err != nil || it.Value.Name == "" || it.Weight < 0 {
			return weighted.Weighted[domain.Ref]{}, false
		}
		return it, true
	}
	return weighted.Weighted[domain.Ref]{}, false
}

func (w *WeightedRecordRefs) Export() any {
	out := make([]any, len(w.items))
	for i, it := range w.items {
		out[i] = map[string]any{"value": exportRef(it.Value), "weight": it.Weight}
	}
	return out
}

func (w *WeightedRecordRefs) String() string {
	parts := make([]string, len(w.items))
	for i, it := range w.items {
		parts[i] = fmt.Sprintf("%g%% %s", it.Weight*100, it.Value.Code())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
