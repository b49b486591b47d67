// Package rowio supplies the one external row source the engine knows
// about directly: a line-oriented text file turned into rows by a
// caller-supplied parser (spec §4.1, §6 "File source format").
package rowio

import (
	"bufio"
	"context"
	"os"

	"github.com/siggimoo/compgraph/ops"
)

// LineParser converts one line of text into a Row. The engine imposes
// no schema; a parser that wants to skip a line can return a sentinel
// row alongside a Filter mapper downstream (§7).
type LineParser func(line string) (ops.Row, error)

// Lines opens path and returns a RowSeq that reads it one line at a
// time, applying parse to each line. The file is closed once the
// sequence is exhausted, errors, or its consumer stops ranging early.
func Lines(ctx context.Context, path string, parse LineParser) ops.RowSeq {
	return func(yield func(ops.Row, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(nil, ops.NewError(ops.KindInputResolution, "open file", err))
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		for scanner.Scan() {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			row, err := parse(scanner.Text())
			if err != nil {
				yield(nil, ops.NewError(ops.KindInputResolution, "parse line", err))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, ops.NewError(ops.KindResource, "read file", err))
		}
	}
}
