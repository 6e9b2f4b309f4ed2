package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/imaging"
	"github.com/aretw0/datamodel/pkg/observability"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagSchema(t *testing.T) *domain.Schema {
	t.Helper()
	reg := variants.NewRegistry()
	img, err := reg.Lookup(variants.KindImage)
	require.NoError(t, err)
	pal, err := reg.Lookup(variants.KindPalette)
	require.NoError(t, err)

	flag := domain.NewVariable("flag", img)
	colors := domain.NewVariable("colors", pal)
	require.NoError(t, colors.DependOn(flag))
	s, err := domain.NewSchema("country", flag, colors)
	require.NoError(t, err)
	return s
}

func TestHooks_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.Hooks(m, logger)
	schema := flagSchema(t)

	red := &imaging.Image{Width: 1, Height: 1, Format: imaging.RGB24, Pix: []byte{255, 0, 0}}
	ok := domain.NewRecord("peru", schema)
	require.True(t, ok.Set("flag", red))
	assert.True(t, ok.RunDependencyPropagation(hooks))

	broken := domain.NewRecord("atlantis", schema)
	require.True(t, broken.Set("flag", &imaging.Image{Width: 1, Height: 1, Format: imaging.DXT1, Pix: []byte{0}}))
	assert.False(t, broken.RunDependencyPropagation(hooks))

	empty := domain.NewRecord("nowhere", schema)
	assert.False(t, empty.RunDependencyPropagation(hooks))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Changes.WithLabelValues("country", "colors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("country", "colors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Skips.WithLabelValues(domain.SkipSourceEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("error")))

	logs := buf.String()
	assert.Contains(t, logs, `msg="field changed" record=peru:country field=colors source=flag`)
	assert.Contains(t, logs, `msg="field update failed" record=atlantis:country`)
	assert.Contains(t, logs, `reason="source empty"`)
}

func TestHooks_NilMetrics(t *testing.T) {
	hooks := observability.Hooks(nil, nil)
	rc := domain.NewRecord("peru", flagSchema(t))
	require.True(t, rc.Set("flag", &imaging.Image{Width: 1, Height: 1, Format: imaging.RGB24, Pix: []byte{1, 2, 3}}))
	assert.NotPanics(t, func() { rc.RunDependencyPropagation(hooks) })
}

func TestNewMetrics_Reuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	b, err := observability.NewMetrics(reg)
	require.NoError(t, err, "registering twice reuses collectors")

	a.ObserveCoercion(variants.KindInt, true)
	b.ObserveCoercion(variants.KindInt, true)
	b.ObserveCoercion(variants.KindInt, false)
	assert.Equal(t, 2.0, testutil.ToFloat64(a.Coercions.WithLabelValues(variants.KindInt, "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Coercions.WithLabelValues(variants.KindInt, "rejected")))

	var nilMetrics *observability.Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveCoercion("int", true) })
}
