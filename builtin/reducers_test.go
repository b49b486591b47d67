package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cg "github.com/siggimoo/compgraph"
	"github.com/siggimoo/compgraph/builtin"
)

func runReducer(t *testing.T, r cg.Reducer, keys []string, group []cg.Row) []cg.Row {
	t.Helper()
	var out []cg.Row
	err := r.Reduce(keys, group, emitFunc(func(row cg.Row) error {
		out = append(out, row)
		return nil
	}))
	require.NoError(t, err)
	return out
}

func TestFirstReducerEmitsOnlyFirstRow(t *testing.T) {
	group := []cg.Row{
		{"k": cg.Int64(1), "v": cg.String("a")},
		{"k": cg.Int64(1), "v": cg.String("b")},
	}
	out := runReducer(t, builtin.FirstReducer(), []string{"k"}, group)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["v"].Str)
}

func TestCountGroupSize(t *testing.T) {
	group := []cg.Row{
		{"k": cg.String("cat")},
		{"k": cg.String("cat")},
		{"k": cg.String("cat")},
	}
	out := runReducer(t, builtin.Count("count"), []string{"k"}, group)
	require.Len(t, out, 1)
	assert.EqualValues(t, 3, out[0]["count"].Int)
	assert.Equal(t, "cat", out[0]["k"].Str)
}

func TestSumAccumulatesColumn(t *testing.T) {
	group := []cg.Row{
		{"k": cg.Int64(1), "score": cg.Int64(2)},
		{"k": cg.Int64(1), "score": cg.Int64(3)},
	}
	out := runReducer(t, builtin.Sum("score"), []string{"k"}, group)
	require.Len(t, out, 1)
	assert.EqualValues(t, 5, out[0]["score"].Int)
}

func TestMultiSumAccumulatesEachColumn(t *testing.T) {
	group := []cg.Row{
		{"k": cg.Int64(1), "a": cg.Int64(2), "b": cg.Float64(1.5)},
		{"k": cg.Int64(1), "a": cg.Int64(3), "b": cg.Float64(2.5)},
	}
	out := runReducer(t, builtin.MultiSum([]string{"a", "b"}), []string{"k"}, group)
	require.Len(t, out, 1)
	assert.EqualValues(t, 5, out[0]["a"].Int)
	assert.InDelta(t, 4.0, out[0]["b"].Float, 1e-9)
}

func TestTermFrequency(t *testing.T) {
	group := []cg.Row{
		{"doc": cg.Int64(1), "word": cg.String("a")},
		{"doc": cg.Int64(1), "word": cg.String("b")},
		{"doc": cg.Int64(1), "word": cg.String("a")},
		{"doc": cg.Int64(1), "word": cg.String("a")},
	}
	out := runReducer(t, builtin.TermFrequency("word", "tf"), []string{"doc"}, group)
	require.Len(t, out, 2)

	byWord := map[string]float64{}
	for _, row := range out {
		byWord[row["word"].Str] = row["tf"].Float
	}
	assert.InDelta(t, 0.75, byWord["a"], 1e-9)
	assert.InDelta(t, 0.25, byWord["b"], 1e-9)
}

func TestTopNBoundsLengthAndSortsDescending(t *testing.T) {
	group := []cg.Row{
		{"text": cg.String("alphabet"), "count": cg.Int64(2)},
		{"text": cg.String("elephant"), "count": cg.Int64(1)},
	}
	out := runReducer(t, builtin.TopN("count", 10), []string{}, group)
	require.Len(t, out, 2)
	assert.Equal(t, "alphabet", out[0]["text"].Str)
	assert.Equal(t, "elephant", out[1]["text"].Str)
}

func TestTopNBoundsToN(t *testing.T) {
	group := make([]cg.Row, 0, 20)
	for i := 0; i < 20; i++ {
		group = append(group, cg.Row{"n": cg.Int64(int64(i))})
	}
	out := runReducer(t, builtin.TopN("n", 3), []string{}, group)
	require.Len(t, out, 3)
	assert.EqualValues(t, 19, out[0]["n"].Int)
	assert.EqualValues(t, 18, out[1]["n"].Int)
	assert.EqualValues(t, 17, out[2]["n"].Int)
}
