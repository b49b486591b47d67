// Package extsort implements the external merge sort used to establish
// the sort order Reduce and Join require (spec §4.5): run generation
// with an in-memory sort bounded by a chunk size, followed by a k-way
// merge of the spilled runs using a min-heap keyed by (key tuple, run
// id).
package extsort

import (
	"bufio"
	"container/heap"
	"context"
	"encoding/gob"
	"os"
	"sort"

	"github.com/siggimoo/compgraph/internal/parallel"
	"github.com/siggimoo/compgraph/ops"
)

// DefaultChunkSize is the number of rows buffered and sorted in memory
// per run before it is either returned directly (single-run fast path)
// or spilled to disk.
const DefaultChunkSize = 100_000

// Config controls the memory/disk tradeoff of a Sort call.
type Config struct {
	// ChunkSize is the maximum number of rows held in memory per run.
	// Zero means DefaultChunkSize.
	ChunkSize int
	// TempDir is the directory spill files are created in. Empty
	// means the OS default temp directory.
	TempDir string
}

func (c Config) chunkSize() int {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return DefaultChunkSize
}

// Sort consumes in fully and returns a RowSeq yielding the same
// multiset of rows ordered ascending by keys (lexicographically across
// the key tuple). It works in bounded memory: at most two chunks of
// rows are held at a time during run generation (the first sorted
// chunk stays in memory until a second chunk forces it to be spilled),
// and only one row per open run is held during the merge.
func Sort(ctx context.Context, in ops.RowSeq, keys []string, cfg Config) (ops.RowSeq, error) {
	chunkSize := cfg.chunkSize()

	var runs []*run
	defer func() { cleanupRuns(ctx, runs) }()

	var singleRun []ops.Row
	buf := make([]ops.Row, 0, chunkSize)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		sorted, err := sortChunk(buf, keys)
		if err != nil {
			return err
		}
		if len(runs) == 0 && singleRun == nil {
			// Tentatively the single-run fast path; only spill if a
			// second run shows up.
			singleRun = sorted
			buf = make([]ops.Row, 0, chunkSize)
			return nil
		}
		if singleRun != nil {
			r, err := spill(cfg.TempDir, singleRun)
			if err != nil {
				return err
			}
			runs = append(runs, r)
			singleRun = nil
		}
		r, err := spill(cfg.TempDir, sorted)
		if err != nil {
			return err
		}
		runs = append(runs, r)
		buf = make([]ops.Row, 0, chunkSize)
		return nil
	}

	for row, err := range in {
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ops.NewError(ops.KindResource, "sort", ctx.Err())
		}
		buf = append(buf, row)
		if len(buf) >= chunkSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if singleRun != nil {
		return ops.FromSlice(singleRun), nil
	}
	if len(runs) == 0 {
		return ops.FromSlice(nil), nil
	}

	completedRuns := runs
	runs = nil // ownership of cleanup moves into the merged sequence

	return mergeRuns(ctx, completedRuns, keys), nil
}

func sortChunk(rows []ops.Row, keys []string) ([]ops.Row, error) {
	tuples := make([][]ops.Value, len(rows))
	for i, row := range rows {
		t, err := ops.KeyTuple(row, keys)
		if err != nil {
			return nil, err
		}
		tuples[i] = t
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}

	var sortErr error
	sort.SliceStable(order, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := ops.CompareTuples(tuples[order[i]], tuples[order[j]])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}

	out := make([]ops.Row, len(rows))
	for i, idx := range order {
		out[i] = rows[idx]
	}
	return out, nil
}

// run is one spilled, already-sorted chunk of rows, readable once as a
// gob-encoded stream. The single-run fast path never spills and does
// not use a run.
type run struct {
	id   int
	path string
}

func spill(dir string, rows []ops.Row) (*run, error) {
	f, err := os.CreateTemp(dir, "compgraph-sort-*.gob")
	if err != nil {
		return nil, ops.NewError(ops.KindResource, "sort spill", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := gob.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			os.Remove(f.Name())
			return nil, ops.NewError(ops.KindResource, "sort spill", err)
		}
	}
	if err := w.Flush(); err != nil {
		os.Remove(f.Name())
		return nil, ops.NewError(ops.KindResource, "sort spill", err)
	}

	return &run{path: f.Name()}, nil
}

func cleanupRuns(ctx context.Context, runs []*run) {
	if len(runs) == 0 {
		return
	}
	paths := make([]string, 0, len(runs))
	for _, r := range runs {
		if r.path != "" {
			paths = append(paths, r.path)
		}
	}
	// Cleanup is pure I/O housekeeping with no effect on row order or
	// on the (already single-threaded) merge above it, so it is the
	// one place this package reaches for bounded concurrency.
	_ = parallel.ForEach(context.WithoutCancel(ctx), paths, 0, func(_ context.Context, path string) error {
		return os.Remove(path)
	})
}

type runReader struct {
	id   int
	f    *os.File
	dec  *gob.Decoder
	next ops.Row
	done bool
	err  error
}

func openRun(r *run, id int) (*runReader, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, ops.NewError(ops.KindResource, "sort merge", err)
	}
	rr := &runReader{id: id, f: f, dec: gob.NewDecoder(bufio.NewReader(f))}
	rr.advance()
	return rr, rr.err
}

func (rr *runReader) advance() {
	var row ops.Row
	if err := rr.dec.Decode(&row); err != nil {
		rr.done = true
		rr.f.Close()
		return
	}
	rr.next = row
}

// mergedHeap is a min-heap over the current head row of every open
// run, ordered by (key tuple, run id) so that whole rows are never
// compared — only their key tuples and a stable run-id tie-breaker.
type mergedHeap struct {
	readers []*runReader
	tuples  [][]ops.Value
	keys    []string
	err     error
}

func (h *mergedHeap) Len() int { return len(h.readers) }

func (h *mergedHeap) Less(i, j int) bool {
	c, err := ops.CompareTuples(h.tuples[i], h.tuples[j])
	if err != nil {
		h.err = err
		return false
	}
	if c != 0 {
		return c < 0
	}
	return h.readers[i].id < h.readers[j].id
}

func (h *mergedHeap) Swap(i, j int) {
	h.readers[i], h.readers[j] = h.readers[j], h.readers[i]
	h.tuples[i], h.tuples[j] = h.tuples[j], h.tuples[i]
}

func (h *mergedHeap) Push(x any) {
	e := x.(heapEntry)
	h.readers = append(h.readers, e.reader)
	h.tuples = append(h.tuples, e.tuple)
}

func (h *mergedHeap) Pop() any {
	n := len(h.readers)
	e := heapEntry{reader: h.readers[n-1], tuple: h.tuples[n-1]}
	h.readers = h.readers[:n-1]
	h.tuples = h.tuples[:n-1]
	return e
}

type heapEntry struct {
	reader *runReader
	tuple  []ops.Value
}

func mergeRuns(ctx context.Context, runs []*run, keys []string) ops.RowSeq {
	return func(yield func(ops.Row, error) bool) {
		defer cleanupRuns(ctx, runs)

		h := &mergedHeap{keys: keys}
		for i, r := range runs {
			rr, err := openRun(r, i)
			if err != nil {
				yield(nil, err)
				return
			}
			if rr.done {
				continue
			}
			tuple, err := ops.KeyTuple(rr.next, keys)
			if err != nil {
				yield(nil, err)
				return
			}
			heap.Push(h, heapEntry{reader: rr, tuple: tuple})
		}

		for h.Len() > 0 {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			e := heap.Pop(h).(heapEntry)
			if h.err != nil {
				yield(nil, h.err)
				return
			}

			row := e.reader.next
			if !yield(row, nil) {
				return
			}

			e.reader.advance()
			if e.reader.done {
				continue
			}
			tuple, err := ops.KeyTuple(e.reader.next, keys)
			if err != nil {
				yield(nil, err)
				return
			}
			heap.Push(h, heapEntry{reader: e.reader, tuple: tuple})
		}
	}
}
