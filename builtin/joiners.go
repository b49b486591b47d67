package builtin

import (
	cg "github.com/siggimoo/compgraph"
	"github.com/siggimoo/compgraph/ops"
)

const (
	defaultSuffixA = "_1"
	defaultSuffixB = "_2"
)

// mergeMatched builds the output row for one matched (left, right) pair:
// keys columns appear once (from left), columns unique to one side pass
// through as-is, and columns present on both non-key sides are emitted
// twice, suffixed.
func mergeMatched(keys []string, left, right cg.Row, suffixA, suffixB string) cg.Row {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	out := make(cg.Row, len(left)+len(right))
	for _, k := range keys {
		if v, ok := left[k]; ok {
			out[k] = v
		} else {
			out[k] = right[k]
		}
	}
	for c, v := range left {
		if isKey[c] {
			continue
		}
		if _, collides := right[c]; collides {
			out[c+suffixA] = v
		} else {
			out[c] = v
		}
	}
	for c, v := range right {
		if isKey[c] {
			continue
		}
		if _, collides := left[c]; collides {
			out[c+suffixB] = v
		} else {
			out[c] = v
		}
	}
	return out
}

func crossProduct(keys []string, left, right []cg.Row, suffixA, suffixB string, emit cg.Emitter) error {
	for _, la := range left {
		for _, rb := range right {
			if err := emit.Emit(mergeMatched(keys, la, rb, suffixA, suffixB)); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitAll(rows []cg.Row, emit cg.Emitter) error {
	for _, row := range rows {
		if err := emit.Emit(row); err != nil {
			return err
		}
	}
	return nil
}

// Inner emits the Cartesian product of matched groups only; unmatched
// groups on either side are skipped.
func Inner() cg.Joiner { return InnerSuffixed(defaultSuffixA, defaultSuffixB) }

// InnerSuffixed is Inner with explicit column-collision suffixes.
func InnerSuffixed(suffixA, suffixB string) cg.Joiner {
	return ops.JoinerFunc(func(keys []string, left, right []cg.Row, emit cg.Emitter) error {
		if len(left) == 0 || len(right) == 0 {
			return nil
		}
		return crossProduct(keys, left, right, suffixA, suffixB, emit)
	})
}

// Outer emits matched Cartesian products as Inner, plus each unmatched
// row on either side as-is.
func Outer() cg.Joiner { return OuterSuffixed(defaultSuffixA, defaultSuffixB) }

// OuterSuffixed is Outer with explicit column-collision suffixes.
func OuterSuffixed(suffixA, suffixB string) cg.Joiner {
	return ops.JoinerFunc(func(keys []string, left, right []cg.Row, emit cg.Emitter) error {
		switch {
		case len(left) == 0:
			return emitAll(right, emit)
		case len(right) == 0:
			return emitAll(left, emit)
		default:
			return crossProduct(keys, left, right, suffixA, suffixB, emit)
		}
	})
}

// Left emits matched Cartesian products; unmatched left groups pass
// through as-is; unmatched right groups are dropped.
func Left() cg.Joiner { return LeftSuffixed(defaultSuffixA, defaultSuffixB) }

// LeftSuffixed is Left with explicit column-collision suffixes.
func LeftSuffixed(suffixA, suffixB string) cg.Joiner {
	return ops.JoinerFunc(func(keys []string, left, right []cg.Row, emit cg.Emitter) error {
		if len(right) == 0 {
			return emitAll(left, emit)
		}
		if len(left) == 0 {
			return nil
		}
		return crossProduct(keys, left, right, suffixA, suffixB, emit)
	})
}

// Right is symmetric to Left: unmatched right groups pass through
// as-is, unmatched left groups are dropped.
func Right() cg.Joiner { return RightSuffixed(defaultSuffixA, defaultSuffixB) }

// RightSuffixed is Right with explicit column-collision suffixes.
func RightSuffixed(suffixA, suffixB string) cg.Joiner {
	return ops.JoinerFunc(func(keys []string, left, right []cg.Row, emit cg.Emitter) error {
		if len(left) == 0 {
			return emitAll(right, emit)
		}
		if len(right) == 0 {
			return nil
		}
		return crossProduct(keys, left, right, suffixA, suffixB, emit)
	})
}
