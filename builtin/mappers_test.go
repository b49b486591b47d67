package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cg "github.com/siggimoo/compgraph"
	"github.com/siggimoo/compgraph/builtin"
)

func runMapper(t *testing.T, m cg.Mapper, row cg.Row) []cg.Row {
	t.Helper()
	var out []cg.Row
	err := m.Map(row, emitFunc(func(r cg.Row) error {
		out = append(out, r)
		return nil
	}))
	require.NoError(t, err)
	return out
}

type emitFunc func(cg.Row) error

func (f emitFunc) Emit(row cg.Row) error { return f(row) }

func TestFilterPunctuation(t *testing.T) {
	out := runMapper(t, builtin.FilterPunctuation("text"), cg.Row{"text": cg.String("Hi, there! 2026")})
	require.Len(t, out, 1)
	assert.Equal(t, "Hi there ", out[0]["text"].Str)
}

func TestLowerCaseIsUnicodeAware(t *testing.T) {
	out := runMapper(t, builtin.LowerCase("text"), cg.Row{"text": cg.String("HELLO Straße")})
	require.Len(t, out, 1)
	assert.Equal(t, "hello straße", out[0]["text"].Str)
}

func TestSplitDropsEmptyTokens(t *testing.T) {
	out := runMapper(t, builtin.Split("text"), cg.Row{"text": cg.String("  the cat  sat ")})
	require.Len(t, out, 3)
	assert.Equal(t, "the", out[0]["text"].Str)
	assert.Equal(t, "cat", out[1]["text"].Str)
	assert.Equal(t, "sat", out[2]["text"].Str)
}

func TestProjectMissingColumnIsFatal(t *testing.T) {
	m := builtin.Project([]string{"missing"})
	err := m.Map(cg.Row{"present": cg.Int64(1)}, emitFunc(func(cg.Row) error { return nil }))
	require.Error(t, err)

	var cerr *cg.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cg.KindSchema, cerr.Kind)
}

func TestFilterPassesOrDrops(t *testing.T) {
	pred := func(r cg.Row) bool { return r["n"].Int > 0 }

	passed := runMapper(t, builtin.Filter(pred), cg.Row{"n": cg.Int64(1)})
	require.Len(t, passed, 1)

	dropped := runMapper(t, builtin.Filter(pred), cg.Row{"n": cg.Int64(-1)})
	assert.Empty(t, dropped)
}

func TestProductMultipliesColumns(t *testing.T) {
	row := cg.Row{"a": cg.Int64(2), "b": cg.Int64(3)}
	out := runMapper(t, builtin.Product([]string{"a", "b"}, "p"), row)
	require.Len(t, out, 1)
	assert.EqualValues(t, 6, out[0]["p"].Int)
}

func TestHaversineMoscowToSaintPetersburg(t *testing.T) {
	row := cg.Row{
		"start": cg.Point(37.6173, 55.7558),
		"end":   cg.Point(30.3141, 59.9386),
	}
	out := runMapper(t, builtin.HaversineMapper("start", "end", "dist"), row)
	require.Len(t, out, 1)
	assert.InDelta(t, 632.0, out[0]["dist"].Float, 2.0)
}

func TestTimeProcessMapper(t *testing.T) {
	row := cg.Row{
		"enter": cg.String("20210503T081500"),
		"leave": cg.String("20210503T093000"),
	}
	out := runMapper(t, builtin.TimeProcessMapper("enter", "leave", "duration", "hour", "weekday"), row)
	require.Len(t, out, 1)
	assert.Equal(t, "Mon", out[0]["weekday"].Str)
	assert.EqualValues(t, 8, out[0]["hour"].Int)
	assert.InDelta(t, 1.25, out[0]["duration"].Float, 1e-9)
}

func TestTimeProcessMapperAcceptsFractionalSeconds(t *testing.T) {
	row := cg.Row{
		"enter": cg.String("20210503T081500.500000"),
		"leave": cg.String("20210503T081501.500000"),
	}
	out := runMapper(t, builtin.TimeProcessMapper("enter", "leave", "duration", "hour", "weekday"), row)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0/3600, out[0]["duration"].Float, 1e-9)
}

func TestSpeedMapperDivByZeroIsFatal(t *testing.T) {
	m := builtin.SpeedMapper("dist", "dur", "speed")
	err := m.Map(cg.Row{"dist": cg.Float64(10), "dur": cg.Float64(0)}, emitFunc(func(cg.Row) error { return nil }))
	require.Error(t, err)

	var cerr *cg.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cg.KindNumeric, cerr.Kind)
}

func TestTfIdfMapper(t *testing.T) {
	row := cg.Row{"tf": cg.Float64(2), "doc_total": cg.Float64(10), "word_docs": cg.Float64(5)}
	out := runMapper(t, builtin.TfIdfMapper("tf", "doc_total", "word_docs", "tfidf"), row)
	require.Len(t, out, 1)
	assert.InDelta(t, 2*0.6931471805599453, out[0]["tfidf"].Float, 1e-9)
}

func TestPMIMapperLogOfNonPositiveIsFatal(t *testing.T) {
	m := builtin.PMIMapper("doc_freq", "total_freq", "pmi")
	err := m.Map(cg.Row{"doc_freq": cg.Float64(0), "total_freq": cg.Float64(5)}, emitFunc(func(cg.Row) error { return nil }))
	require.Error(t, err)
}
