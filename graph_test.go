package compgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cg "github.com/siggimoo/compgraph"
	"github.com/siggimoo/compgraph/ops"
)

func upperMapper() cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		out := row.Clone()
		if v, ok := out["text"]; ok {
			out["text"] = cg.String(v.Str + "!")
		}
		return emit.Emit(out)
	})
}

func TestGraphIsImmutableAcrossCombinators(t *testing.T) {
	base := cg.FromIter("in")
	withMap := base.Map(upperMapper())

	rows := []cg.Row{{"text": cg.String("a")}}
	inputs := cg.Inputs{"in": cg.SliceProducer(rows)}

	baseOut, err := base.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, rows, baseOut, "base graph must be unaffected by deriving withMap from it")

	mappedOut, err := withMap.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, mappedOut, 1)
	assert.Equal(t, "a!", mappedOut[0]["text"].Str)
}

func TestGraphReusableAcrossRuns(t *testing.T) {
	g := cg.FromIter("in").Map(upperMapper())
	rows := []cg.Row{{"text": cg.String("x")}}
	inputs := cg.Inputs{"in": cg.SliceProducer(rows)}

	first, err := g.Run(context.Background(), inputs)
	require.NoError(t, err)
	second, err := g.Run(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunEqualsListOfGenRun(t *testing.T) {
	g := cg.FromIter("in").Map(upperMapper())
	rows := []cg.Row{{"text": cg.String("p")}, {"text": cg.String("q")}}
	inputs := cg.Inputs{"in": cg.SliceProducer(rows)}

	ranRows, err := g.Run(context.Background(), inputs)
	require.NoError(t, err)

	seq, err := g.GenRun(context.Background(), inputs)
	require.NoError(t, err)
	genRows, err := ops.Collect(seq)
	require.NoError(t, err)

	assert.Equal(t, ranRows, genRows)
}

func TestUnknownInputIsFatal(t *testing.T) {
	g := cg.FromIter("missing")
	_, err := g.Run(context.Background(), cg.Inputs{})
	require.Error(t, err)

	var cerr *cg.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cg.KindInputResolution, cerr.Kind)
}

func TestProducerInvokedFreshPerRun(t *testing.T) {
	calls := 0
	producer := func() cg.RowSeq {
		calls++
		return cg.FromSlice([]cg.Row{{"n": cg.Int64(int64(calls))}})
	}

	g := cg.FromIter("in")
	inputs := cg.Inputs{"in": producer}

	first, err := g.Run(context.Background(), inputs)
	require.NoError(t, err)
	second, err := g.Run(context.Background(), inputs)
	require.NoError(t, err)

	assert.EqualValues(t, 1, first[0]["n"].Int)
	assert.EqualValues(t, 2, second[0]["n"].Int)
}

func TestChainingIsAssociativeAsPlans(t *testing.T) {
	double := ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		out := row.Clone()
		out["n"] = cg.Int64(out["n"].Int * 2)
		return emit.Emit(out)
	})
	addOne := ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		out := row.Clone()
		out["n"] = cg.Int64(out["n"].Int + 1)
		return emit.Emit(out)
	})
	composed := ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		var result cg.Row
		err := double.Map(row, ops.EmitFunc(func(r cg.Row) error {
			result = r
			return nil
		}))
		if err != nil {
			return err
		}
		return addOne.Map(result, emit)
	})

	rows := []cg.Row{{"n": cg.Int64(5)}}
	inputs := cg.Inputs{"in": cg.SliceProducer(rows)}

	chained, err := cg.FromIter("in").Map(double).Map(addOne).Run(context.Background(), inputs)
	require.NoError(t, err)

	single, err := cg.FromIter("in").Map(composed).Run(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, chained, single)
}

func TestContextCancellationAborts(t *testing.T) {
	g := cg.FromIter("in").Map(upperMapper())
	rows := []cg.Row{{"text": cg.String("a")}}
	inputs := cg.Inputs{"in": cg.SliceProducer(rows)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Run(ctx, inputs)
	assert.ErrorIs(t, err, context.Canceled)
}
