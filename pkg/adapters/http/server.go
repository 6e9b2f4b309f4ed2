package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/datamodel"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Workspace is the part of datamodel.Workspace served over HTTP.
type Workspace interface {
	Schemas() []*domain.Schema
	Records() []*domain.Record
	Record(ref domain.Ref) (*domain.Record, error)
	Set(ctx context.Context, ref domain.Ref, field string, input any) (bool, error)
	Propagate(ctx context.Context, ref domain.Ref) (bool, error)
	Save(ctx context.Context, ref domain.Ref) error
	Watch(ctx context.Context) (<-chan string, error)
}

var _ Workspace = (*datamodel.Workspace)(nil)

// Server serves a workspace as JSON.
type Server struct {
	Workspace Workspace
	Streams   *StreamManager
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithGatherer exposes the metrics of g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// SetFieldRequest is the body of PUT /records/{model}/{name}/fields/{field}.
type SetFieldRequest struct {
	Value any `json:"value"`
	// Save writes the record when the value was accepted.
	Save bool `json:"save,omitempty"`
}

// SetFieldResponse reports the outcome of a coercion.
type SetFieldResponse struct {
	Accepted bool                 `json:"accepted"`
	Record   codec.RecordDocument `json:"record"`
}

// PropagateResponse reports whether derived fields changed.
type PropagateResponse struct {
	Changed bool                 `json:"changed"`
	Record  codec.RecordDocument `json:"record"`
}

// Update is broadcast to subscribers of a record.
type Update struct {
	Record   string `json:"record"`
	Field    string `json:"field,omitempty"`
	Accepted bool   `json:"accepted,omitempty"`
	Changed  bool   `json:"changed,omitempty"`
	// Fields holds the values that changed, keyed by field name.
	Fields map[string]any `json:"fields,omitempty"`
}

// NewHandler creates the HTTP handler for ws.
func NewHandler(ws Workspace, opts ...Option) http.Handler {
	s := &Server{Workspace: ws, Streams: NewStreamManager()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/schemas", s.GetSchemas)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/records", func(r chi.Router) {
		r.Get("/", s.GetRecords)
		r.Route("/{model}/{name}", func(r chi.Router) {
			r.Get("/", s.GetRecord)
			r.Put("/fields/{field}", s.SetField)
			r.Post("/propagate", s.Propagate)
			r.Post("/save", s.Save)
		})
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func refOf(r *http.Request) domain.Ref {
	return domain.Ref{Name: chi.URLParam(r, "name"), Model: chi.URLParam(r, "model")}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// fail maps workspace errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrFieldNotFound),
		errors.Is(err, domain.ErrSchemaNotFound):
		status = http.StatusNotFound
	case errors.Is(err, datamodel.ErrNoSink):
		status = http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, fmt.Sprintf("%s: %v", op, err), status)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "datamodel-http",
		"version": strings.TrimSpace(datamodel.Version),
	})
}

// GetSchemas handles GET /schemas.
func (s *Server) GetSchemas(w http.ResponseWriter, _ *http.Request) {
	schemas := s.Workspace.Schemas()
	docs := make([]codec.SchemaDocument, 0, len(schemas))
	for _, sc := range schemas {
		docs = append(docs, codec.EncodeSchema(sc))
	}
	s.writeJSON(w, http.StatusOK, docs)
}

// GetRecords handles GET /records, optionally filtered with ?model=.
func (s *Server) GetRecords(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	docs := []codec.RecordDocument{}
	for _, rc := range s.Workspace.Records() {
		if model != "" && rc.Model() != model {
			continue
		}
		docs = append(docs, codec.EncodeRecord(rc))
	}
	s.writeJSON(w, http.StatusOK, docs)
}

// GetRecord handles GET /records/{model}/{name}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	rc, err := s.Workspace.Record(refOf(r))
	if err != nil {
		s.fail(w, "get record", err)
		return
	}
	s.writeJSON(w, http.StatusOK, codec.EncodeRecord(rc))
}

// SetField handles PUT /records/{model}/{name}/fields/{field}. Numbers in the body keep
// their literal form so integer kinds are not routed through float64.
func (s *Server) SetField(w http.ResponseWriter, r *http.Request) {
	var body SetFieldRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("set field: invalid request body", "err", err)
		return
	}

	ref, field := refOf(r), chi.URLParam(r, "field")
	before := s.snapshot(ref)
	accepted, err := s.Workspace.Set(r.Context(), ref, field, body.Value)
	if err != nil {
		s.fail(w, "set field", err)
		return
	}
	if accepted && body.Save {
		if err := s.Workspace.Save(r.Context(), ref); err != nil {
			s.fail(w, "save record", err)
			return
		}
	}
	rc, err := s.Workspace.Record(ref)
	if err != nil {
		s.fail(w, "get record", err)
		return
	}
	doc := codec.EncodeRecord(rc)
	s.broadcast(Update{Record: ref.Code(), Field: field, Accepted: accepted}, before, doc)

	status := http.StatusOK
	if !accepted {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, SetFieldResponse{Accepted: accepted, Record: doc})
}

// Propagate handles POST /records/{model}/{name}/propagate.
func (s *Server) Propagate(w http.ResponseWriter, r *http.Request) {
	ref := refOf(r)
	before := s.snapshot(ref)
	changed, err := s.Workspace.Propagate(r.Context(), ref)
	if err != nil {
		s.fail(w, "propagate", err)
		return
	}

	rc, err := s.Workspace.Record(ref)
	if err != nil {
		s.fail(w, "get record", err)
		return
	}
	doc := codec.EncodeRecord(rc)
	s.broadcast(Update{Record: ref.Code(), Changed: changed}, before, doc)
	s.writeJSON(w, http.StatusOK, PropagateResponse{Changed: changed, Record: doc})
}

// Save handles POST /records/{model}/{name}/save.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.Save(r.Context(), refOf(r)); err != nil {
		s.fail(w, "save record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// snapshot encodes the current state of ref, or returns nil when it does not exist.
func (s *Server) snapshot(ref domain.Ref) *codec.RecordDocument {
	rc, err := s.Workspace.Record(ref)
	if err != nil {
		return nil
	}
	doc := codec.EncodeRecord(rc)
	return &doc
}

func (s *Server) broadcast(u Update, before *codec.RecordDocument, after codec.RecordDocument) {
	if d := codec.Diff(before, after); d != nil {
		u.Fields = d.Fields
	}
	payload, err := json.Marshal(u)
	if err != nil {
		return
	}
	s.Streams.Broadcast(u.Record, string(payload))
}
