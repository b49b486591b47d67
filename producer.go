package compgraph

// Producer is a zero-argument callable supplying a fresh row stream
// for one named input. The engine may invoke it once per graph
// execution, and once more per Join sub-graph traversal that reads the
// same name — implementations must return a fresh stream on each call
// (§4.1 "the value supplied per name must produce a fresh stream on
// each call").
type Producer func() RowSeq

// Inputs maps input names to their Producer, as passed to Run/GenRun.
type Inputs map[string]Producer

// SliceProducer returns a Producer that yields a fresh sequence over
// rows on every call (the Row values themselves are shared, not
// copied), a convenient way to hand an in-memory fixture to Run.
func SliceProducer(rows []Row) Producer {
	return func() RowSeq {
		return FromSlice(rows)
	}
}
