package compgraph

import (
	"context"
	"log/slog"

	"github.com/siggimoo/compgraph/extsort"
	"github.com/siggimoo/compgraph/ops"
	"github.com/siggimoo/compgraph/rowio"
)

// Config holds the engine's tunable knobs: external sort's memory
// budget and spill location, and the logger used for structural
// boundary events.
type Config struct {
	ChunkSize int
	TempDir   string
	Logger    *slog.Logger
}

func defaultConfig() Config {
	return Config{
		ChunkSize: extsort.DefaultChunkSize,
		Logger:    slog.Default(),
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

type sourceKind int

const (
	sourceNamed sourceKind = iota
	sourceFile
)

type source struct {
	kind  sourceKind
	name  string // input key, for sourceNamed
	path  string // file path, for sourceFile
	parse rowio.LineParser
}

// stage is one node of a Graph's plan.
type stage interface {
	run(ctx context.Context, in RowSeq, inputs Inputs, cfg Config) (RowSeq, error)
}

// stageNode is one link of the persistent linked list backing a
// Graph's plan: combinators prepend a new node and never mutate an
// existing one, so many Graphs can share the same prefix (§4.1,
// §9 "Deep-copied graph on every combinator").
type stageNode struct {
	prev  *stageNode
	stage stage
}

// Graph is an immutable computation plan: a primary input plus an
// ordered sequence of stages. Building a Graph never fails (§3 I1);
// all validation happens during Run/GenRun.
type Graph struct {
	src  source
	tail *stageNode
	cfg  Config
}

// FromIter builds a Graph whose primary input is resolved at Run time
// by looking up name in the Inputs map passed to Run/GenRun.
func FromIter(name string) Graph {
	return Graph{src: source{kind: sourceNamed, name: name}, cfg: defaultConfig()}
}

// FromFile builds a Graph whose primary input is path, read one line
// at a time and converted to a Row by parse.
func FromFile(path string, parse rowio.LineParser) Graph {
	return Graph{src: source{kind: sourceFile, path: path, parse: parse}, cfg: defaultConfig()}
}

func (g Graph) push(s stage) Graph {
	return Graph{src: g.src, tail: &stageNode{prev: g.tail, stage: s}, cfg: g.cfg}
}

// WithLogger returns a copy of g that logs structural boundary events
// to l instead of slog.Default().
func (g Graph) WithLogger(l *slog.Logger) Graph {
	g.cfg.Logger = l
	return g
}

// WithChunkSize returns a copy of g whose Sort stages buffer at most n
// rows in memory per run before spilling.
func (g Graph) WithChunkSize(n int) Graph {
	g.cfg.ChunkSize = n
	return g
}

// WithTempDir returns a copy of g whose Sort stages spill to dir
// instead of the OS default temp directory.
func (g Graph) WithTempDir(dir string) Graph {
	g.cfg.TempDir = dir
	return g
}

// Map returns a new Graph with a Map stage appended.
func (g Graph) Map(m Mapper) Graph {
	return g.push(mapStage{mapper: m})
}

// Reduce returns a new Graph with a Reduce stage appended. The input
// reaching this stage at Run time must already be sorted by keys.
func (g Graph) Reduce(r Reducer, keys []string) Graph {
	return g.push(reduceStage{reducer: r, keys: keys})
}

// Sort returns a new Graph with a Sort stage appended, reordering the
// stream ascending by keys via external merge sort.
func (g Graph) Sort(keys []string) Graph {
	return g.push(sortStage{keys: keys})
}

// Join returns a new Graph with a Join stage appended: a sort-merge
// join against other's output on keys. Both g's output and other's
// output must already be sorted by keys by the time they reach this
// stage.
func (g Graph) Join(j Joiner, other Graph, keys []string) Graph {
	return g.push(joinStage{joiner: j, other: other, keys: keys})
}

// stages returns g's plan as an ordered slice, oldest first.
func (g Graph) stages() []stage {
	var n int
	for s := g.tail; s != nil; s = s.prev {
		n++
	}
	out := make([]stage, n)
	i := n
	for s := g.tail; s != nil; s = s.prev {
		i--
		out[i] = s.stage
	}
	return out
}

func (g Graph) resolve(ctx context.Context, inputs Inputs) (RowSeq, error) {
	switch g.src.kind {
	case sourceFile:
		return rowio.Lines(ctx, g.src.path, g.src.parse), nil
	case sourceNamed:
		producer, ok := inputs[g.src.name]
		if !ok {
			return nil, ops.NewError(ops.KindInputResolution, "resolve input",
				unknownInputError(g.src.name))
		}
		return producer(), nil
	default:
		return nil, ops.NewError(ops.KindInputResolution, "resolve input", errNoSource{})
	}
}

// GenRun resolves g's input and composes its stages into a lazy
// RowSeq. Each call re-resolves the input: two GenRun calls on the
// same Graph, even concurrently-unsafe producers aside, never share
// state (§3 I4).
func (g Graph) GenRun(ctx context.Context, inputs Inputs) (RowSeq, error) {
	cur, err := g.resolve(ctx, inputs)
	if err != nil {
		return nil, err
	}

	for _, st := range g.stages() {
		cur, err = st.run(ctx, cur, inputs, g.cfg)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Run executes g eagerly and returns every row it produces, in order.
// Run(ctx, inputs) always equals list(GenRun(ctx, inputs)) element-wise
// (§8 P1).
func (g Graph) Run(ctx context.Context, inputs Inputs) ([]Row, error) {
	seq, err := g.GenRun(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return Collect(seq)
}

type unknownInputError string

func (e unknownInputError) Error() string { return "no input named " + string(e) }

type errNoSource struct{}

func (errNoSource) Error() string { return "graph has no configured input source" }
