package ops

import "context"

// errStopped is a private sentinel an Emitter returns from Emit once
// its downstream consumer has stopped ranging early (e.g. the caller
// broke out of a for/range over the returned RowSeq). It is never
// surfaced to callers: it only tells the driver loop to stop quietly
// instead of reporting an error.
var errStopped = &Error{Kind: KindResource, Op: "emit", Err: errStoppedCause{}}

type errStoppedCause struct{}

func (errStoppedCause) Error() string { return "downstream consumer stopped" }

func isStopped(err error) bool { return err == errStopped }

// RunMap drives a Mapper over in, preserving row order and, within a
// single input row, the mapper's emission order (§4.2).
func RunMap(ctx context.Context, in RowSeq, m Mapper) RowSeq {
	return func(yield func(Row, error) bool) {
		for row, err := range in {
			if err != nil {
				yield(nil, err)
				return
			}
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			stopped := false
			emit := EmitFunc(func(out Row) error {
				if !yield(out, nil) {
					stopped = true
					return errStopped
				}
				return nil
			})

			if err := m.Map(row, emit); err != nil {
				if stopped || isStopped(err) {
					return
				}
				yield(nil, err)
				return
			}
			if stopped {
				return
			}
		}
	}
}

// RunReduce drives a Reducer over in, which must already be sorted by
// keys (§4.3). Groups are emitted in input group order; within a
// group, emission order is the Reducer's choice.
func RunReduce(ctx context.Context, in RowSeq, r Reducer, keys []string) RowSeq {
	return func(yield func(Row, error) bool) {
		gr := newGroupReader(in, keys)
		defer gr.Close()

		for {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			_, group, err, ok := gr.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}

			stopped := false
			emit := EmitFunc(func(out Row) error {
				if !yield(out, nil) {
					stopped = true
					return errStopped
				}
				return nil
			})

			if err := r.Reduce(keys, group, emit); err != nil {
				if stopped || isStopped(err) {
					return
				}
				yield(nil, err)
				return
			}
			if stopped {
				return
			}
		}
	}
}

// RunJoin drives a Joiner over two streams both sorted ascending by
// keys, following the merge protocol in §4.4: matching key values are
// paired into one cell, and a side with no match for the other side's
// key is paired with an empty group.
func RunJoin(ctx context.Context, left, right RowSeq, j Joiner, keys []string) RowSeq {
	return func(yield func(Row, error) bool) {
		lr := newGroupReader(left, keys)
		defer lr.Close()
		rr := newGroupReader(right, keys)
		defer rr.Close()

		emitCell := func(l, r []Row) bool {
			stopped := false
			emit := EmitFunc(func(out Row) error {
				if !yield(out, nil) {
					stopped = true
					return errStopped
				}
				return nil
			})
			if err := j.Join(keys, l, r, emit); err != nil {
				if !stopped && !isStopped(err) {
					yield(nil, err)
				}
				return false
			}
			return !stopped
		}

		lTuple, lGroup, lErr, lOK := lr.Next()
		if lErr != nil {
			yield(nil, lErr)
			return
		}
		rTuple, rGroup, rErr, rOK := rr.Next()
		if rErr != nil {
			yield(nil, rErr)
			return
		}

		for lOK && rOK {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			cmp, cerr := CompareTuples(lTuple, rTuple)
			if cerr != nil {
				yield(nil, cerr)
				return
			}

			switch {
			case cmp < 0:
				if !emitCell(lGroup, nil) {
					return
				}
				lTuple, lGroup, lErr, lOK = lr.Next()
			case cmp > 0:
				if !emitCell(nil, rGroup) {
					return
				}
				rTuple, rGroup, rErr, rOK = rr.Next()
			default:
				if !emitCell(lGroup, rGroup) {
					return
				}
				lTuple, lGroup, lErr, lOK = lr.Next()
				if lErr == nil {
					rTuple, rGroup, rErr, rOK = rr.Next()
				}
			}
			if lErr != nil {
				yield(nil, lErr)
				return
			}
			if rErr != nil {
				yield(nil, rErr)
				return
			}
		}

		for lOK {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}
			if !emitCell(lGroup, nil) {
				return
			}
			lTuple, lGroup, lErr, lOK = lr.Next()
			if lErr != nil {
				yield(nil, lErr)
				return
			}
		}
		_ = lTuple

		for rOK {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}
			if !emitCell(nil, rGroup) {
				return
			}
			rTuple, rGroup, rErr, rOK = rr.Next()
			if rErr != nil {
				yield(nil, rErr)
				return
			}
		}
		_ = rTuple
	}
}
