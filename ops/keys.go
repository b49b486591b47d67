package ops

// KeyTuple extracts the values of keys from row, in order. A row
// missing a key column is a fatal Schema error (§3 invariant: "A row
// missing a sort-key column is a fatal error").
func KeyTuple(row Row, keys []string) ([]Value, error) {
	tuple := make([]Value, len(keys))
	for i, k := range keys {
		v, ok := row[k]
		if !ok {
			return nil, Errorf(KindSchema, "key tuple", "row is missing key column %q", k)
		}
		tuple[i] = v
	}
	return tuple, nil
}

// CompareTuples compares two key tuples of equal length component by
// component, left to right, the same way Sort and the external merge
// orders keys.
func CompareTuples(a, b []Value) (int, error) {
	for i := range a {
		c, err := Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// EqualTuples reports whether two key tuples of equal length are
// component-wise equal. Used for Reduce's group membership test,
// which per §3/§4.3 is defined purely by value equality on the key
// columns (the order used to build both tuples is the same list, so
// the spec's "order of the key list is irrelevant for equality" note
// does not need a separate unordered comparison).
func EqualTuples(a, b []Value) bool {
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}
