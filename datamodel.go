package datamodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	loamadapter "github.com/aretw0/datamodel/pkg/adapters/loam"
	"github.com/aretw0/datamodel/pkg/adapters/memory"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/locking"
	"github.com/aretw0/datamodel/pkg/observability"
	"github.com/aretw0/datamodel/pkg/ports"
	"github.com/aretw0/datamodel/pkg/variants"
)

// ErrNoSink is returned by Save when the workspace has nowhere to write records.
var ErrNoSink = errors.New("workspace has no record sink")

// Watcher is implemented by sources that report changed document IDs.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Workspace is the high-level entry point: it loads schemas and records from the
// configured stores, keeps them live in a catalog, and runs coercion and propagation
// under per-record locks.
type Workspace struct {
	Name string

	registry *domain.Registry
	catalog  *memory.Catalog
	schemas  ports.SchemaStore
	source   ports.RecordSource
	sink     ports.RecordSink
	locker   ports.DistributedLocker
	locks    *locking.Manager
	metrics  *observability.Metrics
	extra    domain.Hooks
	hooks    domain.Hooks
	logger   *slog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithRegistry replaces the default kind registry.
func WithRegistry(reg *domain.Registry) Option {
	return func(w *Workspace) { w.registry = reg }
}

// WithStore reads and writes records through store.
func WithStore(store ports.RecordStore) Option {
	return func(w *Workspace) {
		w.source = ports.SourceOf(store)
		w.sink = store
	}
}

// WithSource reads records from src.
func WithSource(src ports.RecordSource) Option {
	return func(w *Workspace) { w.source = src }
}

// WithSink writes records to sink.
func WithSink(sink ports.RecordSink) Option {
	return func(w *Workspace) { w.sink = sink }
}

// WithSchemaStore reads and writes schemas through store.
func WithSchemaStore(store ports.SchemaStore) Option {
	return func(w *Workspace) { w.schemas = store }
}

// WithLocker coordinates record updates across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(w *Workspace) { w.locker = locker }
}

// WithMetrics counts coercions and propagation events into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Workspace) { w.metrics = m }
}

// WithHooks adds propagation hooks run after the built-in logging and metrics.
func WithHooks(h domain.Hooks) Option {
	return func(w *Workspace) { w.extra = h }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) { w.logger = logger }
}

func withName(name string) Option {
	return func(w *Workspace) { w.Name = name }
}

// New creates a workspace. Without store options it only holds what is added to it.
func New(opts ...Option) *Workspace {
	w := &Workspace{}
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	if w.Name != "" {
		w.logger = w.logger.With("workspace", w.Name)
	}
	if w.registry == nil {
		w.registry = variants.NewRegistry()
	}

	w.catalog = memory.NewCatalog(memory.WithLogger(w.logger))
	lockOpts := []locking.Option{locking.WithLogger(w.logger)}
	if w.locker != nil {
		lockOpts = append(lockOpts, locking.WithLocker(w.locker))
	}
	w.locks = locking.NewManager(lockOpts...)
	w.hooks = observability.Hooks(w.metrics, w.logger).Merge(w.extra)
	return w
}

// Open creates a workspace backed by the loam repository at dir, unless a source was
// injected through opts.
func Open(dir string, opts ...Option) (*Workspace, error) {
	probe := &Workspace{}
	for _, opt := range opts {
		opt(probe)
	}
	if probe.source != nil {
		if dir != "" {
			opts = append(opts, withName(filepath.Base(dir)))
		}
		return New(opts...), nil
	}

	if dir == "" {
		return nil, fmt.Errorf("dir is required when no record source is provided")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loamadapter.Open(abs)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithSource(repo), WithSink(repo), WithSchemaStore(repo)}, opts...)
	opts = append(opts, withName(filepath.Base(abs)))
	return New(opts...), nil
}

// Registry returns the kind registry.
func (w *Workspace) Registry() *domain.Registry { return w.registry }

// Catalog returns the live schemas and records.
func (w *Workspace) Catalog() *memory.Catalog { return w.catalog }

// Source returns the record source, or nil.
func (w *Workspace) Source() ports.RecordSource { return w.source }

// Metrics returns the metrics given with WithMetrics, or nil.
func (w *Workspace) Metrics() *observability.Metrics { return w.metrics }

// Logger returns the workspace logger.
func (w *Workspace) Logger() *slog.Logger { return w.logger }

// AddSchema decodes doc and makes it available to records.
func (w *Workspace) AddSchema(doc codec.SchemaDocument) (*domain.Schema, error) {
	s, err := codec.DecodeSchema(doc, w.registry)
	if err != nil {
		return nil, err
	}
	w.catalog.AddSchema(s)
	return s, nil
}

// AddRecord decodes doc against its schema and binds it to the catalog. Records without a
// model are decoded from their own slot descriptions.
func (w *Workspace) AddRecord(doc codec.RecordDocument) (*domain.Record, error) {
	var schema *domain.Schema
	if doc.Model != "" {
		s, err := w.catalog.Schema(doc.Model)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", doc.Name, err)
		}
		schema = s
	}
	rc, err := codec.DecodeRecord(doc, schema, w.registry)
	if err != nil {
		return nil, err
	}
	w.catalog.Add(rc)
	return rc, nil
}

// Load reads every schema and record from the configured stores. Documents that fail to
// decode are logged and reported together; the rest stay loaded.
func (w *Workspace) Load(ctx context.Context) error {
	var errs []error
	if w.schemas != nil {
		docs, err := w.schemas.Schemas(ctx)
		if err != nil {
			return fmt.Errorf("load schemas: %w", err)
		}
		for _, doc := range docs {
			if _, err := w.AddSchema(doc); err != nil {
				w.logger.Warn("schema rejected", "schema", doc.Name, "err", err)
				errs = append(errs, err)
			}
		}
	}
	if w.source != nil {
		docs, err := w.source.Records(ctx)
		if err != nil {
			return fmt.Errorf("load records: %w", err)
		}
		for _, doc := range docs {
			if _, err := w.AddRecord(doc); err != nil {
				w.logger.Warn("record rejected", "record", doc.Ref().Code(), "err", err)
				errs = append(errs, err)
			}
		}
	}
	w.logger.Info("workspace loaded", "schemas", len(w.catalog.Schemas()), "records", len(w.catalog.Records()))
	return errors.Join(errs...)
}

// Record returns the live record identified by ref.
func (w *Workspace) Record(ref domain.Ref) (*domain.Record, error) { return w.catalog.Record(ref) }

// Records returns every live record, ordered by model and name.
func (w *Workspace) Records() []*domain.Record { return w.catalog.Records() }

// Schemas returns every schema, ordered by name.
func (w *Workspace) Schemas() []*domain.Schema { return w.catalog.Schemas() }

// Set coerces input into the named field of the record and reports whether it was
// accepted. A rejected input leaves the record untouched.
func (w *Workspace) Set(ctx context.Context, ref domain.Ref, field string, input any) (bool, error) {
	var accepted bool
	err := w.locks.WithRecord(ctx, ref, func(context.Context) error {
		rc, err := w.catalog.Record(ref)
		if err != nil {
			return err
		}
		f := rc.Field(field)
		if f == nil {
			return &domain.FieldError{Field: field, Reason: "not part of " + ref.Code(), Err: domain.ErrFieldNotFound}
		}
		accepted = rc.SetVariableData(f, input)
		w.metrics.ObserveCoercion(f.Kind.Name, accepted)
		w.logger.Debug("field set", "record", ref.Code(), "field", field, "accepted", accepted)
		return nil
	})
	return accepted, err
}

// Propagate refreshes the derived fields of one record and reports whether any changed.
func (w *Workspace) Propagate(ctx context.Context, ref domain.Ref) (bool, error) {
	var changed bool
	err := w.locks.WithRecord(ctx, ref, func(context.Context) error {
		rc, err := w.catalog.Record(ref)
		if err != nil {
			return err
		}
		changed = rc.RunDependencyPropagation(w.hooks)
		return nil
	})
	return changed, err
}

// PropagateAll runs Propagate over every record and returns how many changed.
func (w *Workspace) PropagateAll(ctx context.Context) (int, error) {
	n := 0
	for _, rc := range w.catalog.Records() {
		changed, err := w.Propagate(ctx, rc.Ref())
		if err != nil {
			return n, err
		}
		if changed {
			n++
		}
	}
	return n, nil
}

// Save writes one record to the sink.
func (w *Workspace) Save(ctx context.Context, ref domain.Ref) error {
	if w.sink == nil {
		return ErrNoSink
	}
	return w.locks.WithRecord(ctx, ref, func(ctx context.Context) error {
		rc, err := w.catalog.Record(ref)
		if err != nil {
			return err
		}
		return w.sink.Save(ctx, codec.EncodeRecord(rc))
	})
}

// SaveAll writes every record, including those created while resolving references.
func (w *Workspace) SaveAll(ctx context.Context) error {
	if w.sink == nil {
		return ErrNoSink
	}
	for _, rc := range w.catalog.Records() {
		if err := w.Save(ctx, rc.Ref()); err != nil {
			return fmt.Errorf("save %s: %w", rc.Ref().Code(), err)
		}
	}
	if w.schemas != nil {
		for _, s := range w.catalog.Schemas() {
			if err := w.schemas.SaveSchema(ctx, codec.EncodeSchema(s)); err != nil {
				return fmt.Errorf("save schema %s: %w", s.Name, err)
			}
		}
	}
	return nil
}

// Watch reports changed document IDs when the source supports it.
func (w *Workspace) Watch(ctx context.Context) (<-chan string, error) {
	if wt, ok := w.source.(Watcher); ok {
		return wt.Watch(ctx)
	}
	return nil, fmt.Errorf("current source does not support watching")
}
