package observability

import (
	"log/slog"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/variants"
)

// Hooks returns propagation hooks that log through logger and count into m. Either may be
// nil.
func Hooks(m *Metrics, logger *slog.Logger) domain.Hooks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return domain.Hooks{
		OnFieldChanged: func(ev *domain.FieldEvent) {
			logger.Info("field changed", attrs(ev)...)
			if m == nil {
				return
			}
			m.Changes.WithLabelValues(ev.Record.Model(), ev.Field.Name).Inc()
			if p, ok := ev.Record.Value(ev.Field).(*variants.Palette); ok {
				m.Extractions.WithLabelValues("ok").Inc()
				m.PaletteColors.Observe(float64(len(p.Colors())))
			}
		},
		OnFieldSkipped: func(ev *domain.FieldEvent) {
			logger.Debug("field skipped", append(attrs(ev), "reason", ev.Reason)...)
			if m != nil {
				m.Skips.WithLabelValues(ev.Reason).Inc()
			}
		},
		OnFieldError: func(ev *domain.FieldEvent) {
			logger.Warn("field update failed", append(attrs(ev), "err", ev.Err)...)
			if m == nil {
				return
			}
			m.Failures.WithLabelValues(ev.Record.Model(), ev.Field.Name).Inc()
			if ev.Field.Kind != nil && ev.Field.Kind.Name == variants.KindPalette {
				m.Extractions.WithLabelValues("error").Inc()
			}
		},
	}
}

func attrs(ev *domain.FieldEvent) []any {
	out := []any{"record", ev.Record.Ref().Code(), "field", ev.Field.Name}
	if ev.Source != nil {
		out = append(out, "source", ev.Source.Name)
	}
	return out
}
