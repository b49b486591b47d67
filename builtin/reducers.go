package builtin

import (
	"container/heap"

	cg "github.com/siggimoo/compgraph"
	"github.com/siggimoo/compgraph/ops"
)

func keyRow(keys []string, row cg.Row) cg.Row {
	out := make(cg.Row, len(keys))
	for _, k := range keys {
		out[k] = row[k]
	}
	return out
}

// FirstReducer emits only the first row of the group.
func FirstReducer() cg.Reducer {
	return ops.ReducerFunc(func(keys []string, group []cg.Row, emit cg.Emitter) error {
		if len(group) == 0 {
			return nil
		}
		return emit.Emit(group[0])
	})
}

// Count emits one row: key columns plus col = the group's size.
func Count(col string) cg.Reducer {
	return ops.ReducerFunc(func(keys []string, group []cg.Row, emit cg.Emitter) error {
		if len(group) == 0 {
			return nil
		}
		out := keyRow(keys, group[len(group)-1])
		out[col] = cg.Int64(int64(len(group)))
		return emit.Emit(out)
	})
}

// Sum emits one row: key columns plus col = the sum of row[col] over the
// group.
func Sum(col string) cg.Reducer {
	return ops.ReducerFunc(func(keys []string, group []cg.Row, emit cg.Emitter) error {
		if len(group) == 0 {
			return nil
		}
		total, allInt := 0.0, true
		for _, row := range group {
			v, ok := row[col]
			if !ok {
				return cg.NewError(cg.KindSchema, "sum", missingColumn(col))
			}
			f, ok := v.AsFloat()
			if !ok {
				return cg.NewError(cg.KindSchema, "sum", notNumeric(col))
			}
			if v.Kind != cg.KindInt {
				allInt = false
			}
			total += f
		}
		out := keyRow(keys, group[len(group)-1])
		if allInt {
			out[col] = cg.Int64(int64(total))
		} else {
			out[col] = cg.Float64(total)
		}
		return emit.Emit(out)
	})
}

// MultiSum emits one row: key columns plus, for each c in cols,
// c = the sum of row[c] over the group.
func MultiSum(cols []string) cg.Reducer {
	return ops.ReducerFunc(func(keys []string, group []cg.Row, emit cg.Emitter) error {
		if len(group) == 0 {
			return nil
		}
		totals := make([]float64, len(cols))
		allInt := make([]bool, len(cols))
		for i := range allInt {
			allInt[i] = true
		}
		for _, row := range group {
			for i, c := range cols {
				v, ok := row[c]
				if !ok {
					return cg.NewError(cg.KindSchema, "multi_sum", missingColumn(c))
				}
				f, ok := v.AsFloat()
				if !ok {
					return cg.NewError(cg.KindSchema, "multi_sum", notNumeric(c))
				}
				if v.Kind != cg.KindInt {
					allInt[i] = false
				}
				totals[i] += f
			}
		}
		out := keyRow(keys, group[len(group)-1])
		for i, c := range cols {
			if allInt[i] {
				out[c] = cg.Int64(int64(totals[i]))
			} else {
				out[c] = cg.Float64(totals[i])
			}
		}
		return emit.Emit(out)
	})
}

// TermFrequency emits, for each distinct value v of wordCol in the
// group, key columns + wordCol=v + resultCol = count(v)/group_size.
// Emission order is arbitrary.
func TermFrequency(wordCol, resultCol string) cg.Reducer {
	return ops.ReducerFunc(func(keys []string, group []cg.Row, emit cg.Emitter) error {
		if len(group) == 0 {
			return nil
		}
		counts := make(map[string]int)
		order := make([]string, 0)
		values := make(map[string]cg.Value)
		for _, row := range group {
			v, ok := row[wordCol]
			if !ok {
				return cg.NewError(cg.KindSchema, "term_frequency", missingColumn(wordCol))
			}
			k := v.Str
			if _, seen := counts[k]; !seen {
				order = append(order, k)
				values[k] = v
			}
			counts[k]++
		}
		base := keyRow(keys, group[len(group)-1])
		n := float64(len(group))
		for _, k := range order {
			out := base.Clone()
			out[wordCol] = values[k]
			out[resultCol] = cg.Float64(float64(counts[k]) / n)
			if err := emit.Emit(out); err != nil {
				return err
			}
		}
		return nil
	})
}

// topEntry is one candidate row in TopN's bounded heap: its sort value,
// a monotonic sequence number breaking ties deterministically (§9
// redesign: the reference's random tie-break is replaced here), and the
// row itself.
type topEntry struct {
	value float64
	seq   int64
	row   cg.Row
}

// minTopHeap is a min-heap over topEntry so the smallest candidate sits
// at the root and is the first dropped once the heap exceeds n — the
// classic bounded top-K pattern.
type minTopHeap []topEntry

func (h minTopHeap) Len() int { return len(h) }
func (h minTopHeap) Less(i, j int) bool {
	if h[i].value != h[j].value {
		return h[i].value < h[j].value
	}
	return h[i].seq < h[j].seq
}
func (h minTopHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minTopHeap) Push(x interface{}) { *h = append(*h, x.(topEntry)) }
func (h *minTopHeap) Pop() interface{} {
	old := *h
	n := len(old)
	last := old[n-1]
	*h = old[:n-1]
	return last
}

// TopN emits up to n rows with the largest col values, in descending
// order of col. Ties are broken by push order so results are
// reproducible across runs given the same input order, unlike the
// reference's randomized tie-break (container/heap is the corpus's
// priority-queue idiom; no third-party one appears in the retrieved
// pack).
func TopN(col string, n int) cg.Reducer {
	return ops.ReducerFunc(func(keys []string, group []cg.Row, emit cg.Emitter) error {
		if n <= 0 {
			return nil
		}
		h := make(minTopHeap, 0, n)
		heap.Init(&h)
		var seq int64
		for _, row := range group {
			v, ok := row[col]
			if !ok {
				return cg.NewError(cg.KindSchema, "top_n", missingColumn(col))
			}
			f, ok := v.AsFloat()
			if !ok {
				return cg.NewError(cg.KindSchema, "top_n", notNumeric(col))
			}
			if h.Len() < n {
				heap.Push(&h, topEntry{value: f, seq: seq, row: row})
			} else if h.Len() > 0 && f > h[0].value {
				heap.Pop(&h)
				heap.Push(&h, topEntry{value: f, seq: seq, row: row})
			}
			seq++
		}

		out := make([]topEntry, h.Len())
		for i := len(out) - 1; i >= 0; i-- {
			out[i] = heap.Pop(&h).(topEntry)
		}
		for _, e := range out {
			if err := emit.Emit(e.row); err != nil {
				return err
			}
		}
		return nil
	})
}
