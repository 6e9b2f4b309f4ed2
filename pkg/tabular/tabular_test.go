package tabular_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/tabular"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		rowSep string
		colSep string
		want   tabular.Table
	}{
		{"escaped defaults", "a\t1\nb\t2\n", tabular.DefaultRowSep, tabular.DefaultColSep,
			tabular.Table{{"a", "1"}, {"b", "2"}}},
		{"skips empty rows", "a\t1\n\n\nb\t2", `\n`, `\t`,
			tabular.Table{{"a", "1"}, {"b", "2"}}},
		{"trailing space before newline", "a;1 \nb;2 \r\n", `\n`, ";",
			tabular.Table{{"a", "1"}, {"b", "2"}}},
		{"custom row separator", "a,1|b,2", "|", ",",
			tabular.Table{{"a", "1"}, {"b", "2"}}},
		{"keeps empty cells", "a\t\t3", `\n`, `\t`,
			tabular.Table{{"a", "", "3"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tabular.Parse(tt.text, tt.rowSep, tt.colSep))
		})
	}
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "\t", tabular.Unescape(`\t`))
	assert.Equal(t, "\r\n", tabular.Unescape(`\r\n`))
	assert.Equal(t, ";", tabular.Unescape(";"))
}

type fixture struct {
	schema     *domain.Schema
	population *domain.Variable
	gdp        *domain.Variable
	records    []*domain.Record
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg := variants.NewRegistry()
	long, err := reg.Lookup(variants.KindLong)
	require.NoError(t, err)
	series, err := reg.ResolveWith(variants.FamilySeries, variants.KindFloatSeries)
	require.NoError(t, err)

	f := fixture{
		population: domain.NewVariable("population", long),
		gdp:        domain.NewVariable("gdp", series),
	}
	f.schema, err = domain.NewSchema("country", f.population, f.gdp)
	require.NoError(t, err)
	for _, n := range []string{"Brazil", "Chile", "Peru"} {
		f.records = append(f.records, domain.NewRecord(n, f.schema))
	}
	return f
}

func TestPlan(t *testing.T) {
	f := newFixture(t)
	table := tabular.Parse("brazil\t203\nATLANTIS\t1\nchile", `\n`, `\t`)
	plan := tabular.NewPlan(f.records, []*domain.Variable{f.population}, table)

	require.Len(t, plan.Rows, 3)
	assert.Same(t, f.records[0], plan.Rows[0].Record, "names match case-insensitively")
	assert.Nil(t, plan.Rows[1].Record)
	assert.Equal(t, []string{"atlantis"}, plan.Unknown())
	assert.True(t, plan.Rows[2].Short(1))
	assert.False(t, plan.Rows[0].Short(1))
	assert.Equal(t, []*domain.Record{f.records[2]}, plan.Missing)
}

func TestExecute(t *testing.T) {
	f := newFixture(t)
	table := tabular.Parse("Brazil\t203000000\t2.17\t2023\nChile\tmany\t0.3\t2022\nPeru\t34000000", `\n`, `\t`)
	plan := tabular.NewPlan(f.records, []*domain.Variable{f.population, f.gdp}, table)

	res := plan.Execute(nil)
	assert.Equal(t, 4, res.Accepted)
	assert.Equal(t, 1, res.Rejected, "Chile's population is not a number")
	assert.Equal(t, f.records, res.Changed)

	pop, _ := f.records[0].ValueByName("population")
	assert.Equal(t, int64(203000000), pop.(*variants.Long).Get())

	gdp, _ := f.records[0].ValueByName("gdp")
	series := gdp.(*variants.FloatSeries)
	v, ok := series.Get(2023)
	require.True(t, ok, "last column receives (cell, next cell)")
	assert.Equal(t, 2.17, v)

	_, none := f.records[1].ValueByName("population")
	assert.Nil(t, none)
}

func TestExtract(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.records[0].Set("population", 203))
	require.True(t, f.records[1].Set("population", 19))

	var buf bytes.Buffer
	require.NoError(t, tabular.Extract(&buf, f.records, []string{"population", "gdp"}, `\t`))
	assert.Equal(t, "name\tpopulation\tgdp\nBrazil\t203\t\nChile\t19\t\nPeru\t\t\n", buf.String())
}
