// Package builtin is the small library of built-in mappers, reducers
// and joiners spec'd for this system: word-processing helpers, TF-IDF
// and PMI, and the haversine/time/speed helpers for the average-speed
// example (spec §4.2–§4.4, §4.6).
package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	cg "github.com/siggimoo/compgraph"
	"github.com/siggimoo/compgraph/ops"
)

var lowerCaser = cases.Lower(language.Und)

// Identity emits the row unchanged.
func Identity() cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		return emit.Emit(row)
	})
}

// FilterPunctuation replaces col with a string containing only the
// alphabetic characters and spaces from its original value.
func FilterPunctuation(col string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		v, err := requireString(row, col)
		if err != nil {
			return err
		}
		var b strings.Builder
		for _, r := range v {
			if unicode.IsLetter(r) || r == ' ' {
				b.WriteRune(r)
			}
		}
		out := row.Clone()
		out[col] = cg.String(b.String())
		return emit.Emit(out)
	})
}

// LowerCase folds col to lower case using Unicode-aware case folding
// (golang.org/x/text/cases) rather than strings.ToLower.
func LowerCase(col string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		v, err := requireString(row, col)
		if err != nil {
			return err
		}
		out := row.Clone()
		out[col] = cg.String(lowerCaser.String(v))
		return emit.Emit(out)
	})
}

// Split emits one row per whitespace-delimited token in col, each
// carrying that token in col and all other columns unchanged. Empty
// tokens are dropped.
func Split(col string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		v, err := requireString(row, col)
		if err != nil {
			return err
		}
		for _, tok := range strings.Fields(v) {
			out := row.Clone()
			out[col] = cg.String(tok)
			if err := emit.Emit(out); err != nil {
				return err
			}
		}
		return nil
	})
}

// Project emits one row containing only cols. A missing column is
// fatal.
func Project(cols []string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		out := make(cg.Row, len(cols))
		for _, c := range cols {
			v, ok := row[c]
			if !ok {
				return cg.NewError(cg.KindSchema, "project", missingColumn(c))
			}
			out[c] = v
		}
		return emit.Emit(out)
	})
}

// Filter emits the row iff pred(row) is true.
func Filter(pred func(cg.Row) bool) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		if !pred(row) {
			return nil
		}
		return emit.Emit(row)
	})
}

// Product sets result to the numeric product of row[c] for c in cols.
func Product(cols []string, result string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		allInt := true
		product := 1.0
		for _, c := range cols {
			v, ok := row[c]
			if !ok {
				return cg.NewError(cg.KindSchema, "product", missingColumn(c))
			}
			f, ok := v.AsFloat()
			if !ok {
				return cg.NewError(cg.KindSchema, "product", notNumeric(c))
			}
			if v.Kind != cg.KindInt {
				allInt = false
			}
			product *= f
		}
		out := row.Clone()
		if allInt {
			out[result] = cg.Int64(int64(product))
		} else {
			out[result] = cg.Float64(product)
		}
		return emit.Emit(out)
	})
}

func requireString(row cg.Row, col string) (string, error) {
	v, ok := row[col]
	if !ok {
		return "", cg.NewError(cg.KindSchema, "mapper", missingColumn(col))
	}
	if v.Kind != cg.KindString {
		return "", cg.NewError(cg.KindSchema, "mapper", notString(col))
	}
	return v.Str, nil
}

type missingColumn string

func (c missingColumn) Error() string { return "row is missing column " + string(c) }

type notNumeric string

func (c notNumeric) Error() string { return "column " + string(c) + " is not numeric" }

type notString string

func (c notString) Error() string { return "column " + string(c) + " is not a string" }
