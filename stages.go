package compgraph

import (
	"context"
	"log/slog"

	"github.com/siggimoo/compgraph/extsort"
	"github.com/siggimoo/compgraph/ops"
)

type mapStage struct {
	mapper Mapper
}

func (s mapStage) run(ctx context.Context, in RowSeq, _ Inputs, _ Config) (RowSeq, error) {
	return ops.RunMap(ctx, in, s.mapper), nil
}

type reduceStage struct {
	reducer Reducer
	keys    []string
}

func (s reduceStage) run(ctx context.Context, in RowSeq, _ Inputs, _ Config) (RowSeq, error) {
	return ops.RunReduce(ctx, in, s.reducer, s.keys), nil
}

type sortStage struct {
	keys []string
}

func (s sortStage) run(ctx context.Context, in RowSeq, _ Inputs, cfg Config) (RowSeq, error) {
	return func(yield func(Row, error) bool) {
		cfg.logger().Debug("compgraph: sort stage starting", slog.Any("keys", s.keys))
		sorted, err := extsort.Sort(ctx, in, s.keys, extsort.Config{
			ChunkSize: cfg.ChunkSize,
			TempDir:   cfg.TempDir,
		})
		if err != nil {
			yield(nil, err)
			return
		}
		for row, err := range sorted {
			if !yield(row, err) {
				return
			}
		}
	}, nil
}

type joinStage struct {
	joiner Joiner
	other  Graph
	keys   []string
}

func (s joinStage) run(ctx context.Context, in RowSeq, inputs Inputs, _ Config) (RowSeq, error) {
	right, err := s.other.GenRun(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return ops.RunJoin(ctx, in, right, s.joiner, s.keys), nil
}
