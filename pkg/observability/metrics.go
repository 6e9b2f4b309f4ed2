package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "datamodel"

// Metrics holds the collectors of a workspace.
type Metrics struct {
	Coercions     *prometheus.CounterVec
	Changes       *prometheus.CounterVec
	Skips         *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	Extractions   *prometheus.CounterVec
	PaletteColors prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them
// unregistered. Registering twice with the same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Coercions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coercions_total",
			Help:      "Values offered to fields, by kind and outcome.",
		}, []string{"kind", "result"}),
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "propagation_changes_total",
			Help:      "Derived fields changed by propagation.",
		}, []string{"model", "field"}),
		Skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "propagation_skips_total",
			Help:      "Derived fields left alone by propagation, by reason.",
		}, []string{"reason"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "propagation_failures_total",
			Help:      "Derived fields whose recomputation failed.",
		}, []string{"model", "field"}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "palette_extractions_total",
			Help:      "Palette extractions, by outcome.",
		}, []string{"result"}),
		PaletteColors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "palette_colors",
			Help:      "Number of valid colors in extracted palettes.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	for _, v := range []**prometheus.CounterVec{&m.Coercions, &m.Changes, &m.Skips, &m.Failures, &m.Extractions} {
		if *v, err = register(reg, *v); err != nil {
			return nil, err
		}
	}
	if m.PaletteColors, err = register(reg, m.PaletteColors); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the already registered equivalent of c when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	var zero T
	return zero, err
}

// ObserveCoercion counts one value offered to a field of kind.
func (m *Metrics) ObserveCoercion(kind string, accepted bool) {
	if m == nil {
		return
	}
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	m.Coercions.WithLabelValues(kind, result).Inc()
}
