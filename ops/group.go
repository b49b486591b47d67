package ops

import (
	"fmt"
	"iter"
	"strings"
)

// groupReader turns a RowSeq sorted by keys into a sequence of maximal
// same-key groups (§3 "Group"). It is the shared machinery behind both
// the Reduce driver and the Join driver's co-grouping.
type groupReader struct {
	next func() (Row, error, bool)
	stop func()
	keys []string

	pending      Row
	pendingTuple []Value
	havePending  bool

	closed map[string]bool
	err    error
}

func newGroupReader(seq RowSeq, keys []string) *groupReader {
	next, stop := iter.Pull2(seq)
	return &groupReader{next: next, stop: stop, keys: keys, closed: map[string]bool{}}
}

func (g *groupReader) Close() { g.stop() }

// Next returns the next maximal group of rows sharing identical values
// on the key columns. ok is false once the stream is exhausted with no
// error. A non-nil err is fatal and terminates the reader.
func (g *groupReader) Next() (tuple []Value, group []Row, err error, ok bool) {
	if g.err != nil {
		return nil, nil, g.err, false
	}

	var curTuple []Value
	haveCur := false

	if g.havePending {
		curTuple = g.pendingTuple
		group = append(group, g.pending)
		haveCur = true
		g.havePending = false
	}

	for {
		row, rerr, rok := g.next()
		if !rok {
			break
		}
		if rerr != nil {
			g.err = rerr
			return nil, nil, rerr, false
		}

		t, kerr := KeyTuple(row, g.keys)
		if kerr != nil {
			g.err = kerr
			return nil, nil, kerr, false
		}

		if !haveCur {
			curTuple = t
			haveCur = true
			group = append(group, row)
			continue
		}

		if EqualTuples(curTuple, t) {
			group = append(group, row)
			continue
		}

		key := encodeTuple(t)
		if g.closed[key] {
			kerr := Errorf(KindPrecondition, "reduce/join",
				"input is not sorted by the group key columns: key %s reappeared after the stream moved past it",
				describeTuple(g.keys, t))
			g.err = kerr
			return nil, nil, kerr, false
		}

		g.pending = row
		g.pendingTuple = t
		g.havePending = true
		break
	}

	if !haveCur {
		return nil, nil, nil, false
	}

	g.closed[encodeTuple(curTuple)] = true
	return curTuple, group, nil, true
}

func encodeTuple(tuple []Value) string {
	var b strings.Builder
	for i, v := range tuple {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch v.Kind {
		case KindNull:
			b.WriteString("n")
		case KindInt:
			fmt.Fprintf(&b, "i%d", v.Int)
		case KindFloat:
			fmt.Fprintf(&b, "f%v", v.Float)
		case KindString:
			fmt.Fprintf(&b, "s%s", v.Str)
		case KindPoint:
			fmt.Fprintf(&b, "p%v,%v", v.Point[0], v.Point[1])
		}
	}
	return b.String()
}

func describeTuple(keys []string, tuple []Value) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", k, encodeTuple(tuple[i:i+1]))
	}
	b.WriteByte(')')
	return b.String()
}
