package builtin

import (
	"math"
	"strings"
	"time"

	cg "github.com/siggimoo/compgraph"
	"github.com/siggimoo/compgraph/ops"
)

const earthRadiusKm = 6373.0

// TfIdfMapper sets result = tf * ln(doc_total / word_docs).
func TfIdfMapper(tf, docTotal, wordDocs, result string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		tfVal, err := requireFloat(row, tf, "tf_idf")
		if err != nil {
			return err
		}
		totalVal, err := requireFloat(row, docTotal, "tf_idf")
		if err != nil {
			return err
		}
		wordDocsVal, err := requireFloat(row, wordDocs, "tf_idf")
		if err != nil {
			return err
		}
		ratio := totalVal / wordDocsVal
		if math.IsInf(ratio, 0) {
			return cg.NewError(cg.KindNumeric, "tf_idf", divByZero{})
		}
		if ratio <= 0 {
			return cg.NewError(cg.KindNumeric, "tf_idf", logNonPositive{})
		}
		out := row.Clone()
		out[result] = cg.Float64(tfVal * math.Log(ratio))
		return emit.Emit(out)
	})
}

// PMIMapper sets result = ln(doc_freq / total_freq).
func PMIMapper(docFreq, totalFreq, result string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		docFreqVal, err := requireFloat(row, docFreq, "pmi")
		if err != nil {
			return err
		}
		totalFreqVal, err := requireFloat(row, totalFreq, "pmi")
		if err != nil {
			return err
		}
		if totalFreqVal == 0 {
			return cg.NewError(cg.KindNumeric, "pmi", divByZero{})
		}
		ratio := docFreqVal / totalFreqVal
		if ratio <= 0 {
			return cg.NewError(cg.KindNumeric, "pmi", logNonPositive{})
		}
		out := row.Clone()
		out[result] = cg.Float64(math.Log(ratio))
		return emit.Emit(out)
	})
}

// HaversineMapper sets result to the great-circle distance in km between
// the (lon, lat) points carried in start and end, using R=6373.
func HaversineMapper(start, end, result string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		a, err := requirePoint(row, start)
		if err != nil {
			return err
		}
		b, err := requirePoint(row, end)
		if err != nil {
			return err
		}
		out := row.Clone()
		out[result] = cg.Float64(haversine(a, b))
		return emit.Emit(out)
	})
}

func haversine(start, end [2]float64) float64 {
	lon1, lat1 := start[0], start[1]
	lon2, lat2 := end[0], end[1]
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

const timeLayout = "20060102T150405.000000"

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// TimeProcessMapper parses enter/leave timestamps of the form
// YYYYMMDDTHHMMSS[.ffffff] and sets duration (hours, float), hour
// (0-23 of enter) and weekday (Mon..Sun, of enter).
func TimeProcessMapper(enter, leave, duration, hour, weekday string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		enterStr, err := requireString(row, enter)
		if err != nil {
			return err
		}
		leaveStr, err := requireString(row, leave)
		if err != nil {
			return err
		}
		enterTime, err := parseTimestamp(enterStr)
		if err != nil {
			return cg.NewError(cg.KindSchema, "time_process", err)
		}
		leaveTime, err := parseTimestamp(leaveStr)
		if err != nil {
			return cg.NewError(cg.KindSchema, "time_process", err)
		}

		delta := leaveTime.Sub(enterTime)
		hours := delta.Hours()

		out := row.Clone()
		out[duration] = cg.Float64(hours)
		out[hour] = cg.Int64(int64(enterTime.Hour()))
		out[weekday] = cg.String(weekdayNames[int(enterTime.Weekday()+6)%7])
		return emit.Emit(out)
	})
}

func parseTimestamp(s string) (time.Time, error) {
	if !strings.Contains(s, ".") {
		s += ".000000"
	}
	return time.Parse(timeLayout, s)
}

// SpeedMapper sets result = dist / dur. Division by zero is fatal.
func SpeedMapper(dist, dur, result string) cg.Mapper {
	return ops.MapperFunc(func(row cg.Row, emit cg.Emitter) error {
		distVal, err := requireFloat(row, dist, "speed")
		if err != nil {
			return err
		}
		durVal, err := requireFloat(row, dur, "speed")
		if err != nil {
			return err
		}
		if durVal == 0 {
			return cg.NewError(cg.KindNumeric, "speed", divByZero{})
		}
		out := row.Clone()
		out[result] = cg.Float64(distVal / durVal)
		return emit.Emit(out)
	})
}

func requireFloat(row cg.Row, col, op string) (float64, error) {
	v, ok := row[col]
	if !ok {
		return 0, cg.NewError(cg.KindSchema, op, missingColumn(col))
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, cg.NewError(cg.KindSchema, op, notNumeric(col))
	}
	return f, nil
}

func requirePoint(row cg.Row, col string) ([2]float64, error) {
	v, ok := row[col]
	if !ok {
		return [2]float64{}, cg.NewError(cg.KindSchema, "haversine", missingColumn(col))
	}
	if v.Kind != cg.KindPoint {
		return [2]float64{}, cg.NewError(cg.KindSchema, "haversine", notPoint(col))
	}
	return v.Point, nil
}

type divByZero struct{}

func (divByZero) Error() string { return "division by zero" }

type logNonPositive struct{}

func (logNonPositive) Error() string { return "logarithm of a non-positive number" }

type notPoint string

func (c notPoint) Error() string { return "column " + string(c) + " is not a point" }
