package compgraph

import "github.com/siggimoo/compgraph/ops"

// These aliases let callers work entirely from the compgraph package
// for the common case, while compgraph/builtin and other extension
// code imports compgraph/ops directly for the same underlying types.

type (
	// Row is a mapping from column name to dynamically-typed value.
	Row = ops.Row
	// Value is a dynamically-typed column value.
	Value = ops.Value
	// Kind tags the dynamic type carried by a Value.
	Kind = ops.Kind
	// RowSeq is a lazy, single-pass row stream.
	RowSeq = ops.RowSeq
	// Mapper transforms one input row into zero or more output rows.
	Mapper = ops.Mapper
	// Reducer folds one group of same-key rows into zero or more
	// output rows.
	Reducer = ops.Reducer
	// Joiner decides what to emit for one co-grouped join cell.
	Joiner = ops.Joiner
	// Emitter receives the rows an operator produces.
	Emitter = ops.Emitter
	// Error is the error type for the failures the engine detects
	// itself; see ops.Error for the errors that pass through unwrapped.
	Error = ops.Error
	// ErrorKind classifies why a graph execution failed.
	ErrorKind = ops.ErrorKind
)

const (
	KindNull   = ops.KindNull
	KindInt    = ops.KindInt
	KindFloat  = ops.KindFloat
	KindString = ops.KindString
	KindPoint  = ops.KindPoint
)

const (
	KindInputResolution = ops.KindInputResolution
	KindSchema          = ops.KindSchema
	KindPrecondition    = ops.KindPrecondition
	KindNumeric         = ops.KindNumeric
	KindResource        = ops.KindResource
)

// Value constructors, re-exported for convenience.
var (
	Null          = ops.Null
	Int64         = ops.Int64
	Float64       = ops.Float64
	String        = ops.String
	Point         = ops.Point
	Collect       = ops.Collect
	FromSlice     = ops.FromSlice
	NewError      = ops.NewError
)
