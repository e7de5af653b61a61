package schema

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxRangeGrowth is the maximum number of intervals a single FindRange call may append.
const MaxRangeGrowth int64 = 1 << 16

// IntervalColumn is the name of the column of range tables holding the lower bound of each
// interval.
const IntervalColumn = "Interval"

// RangeSpec describes the intervals of a range table: row i is the interval
// [Origin + i*Period, Origin + (i+1)*Period). Origin and Period must be both int64, both
// float64, both decimal.Decimal, or a time.Time origin with a time.Duration period. Count is
// the number of intervals created when the table is evaluated.
type RangeSpec struct {
	Origin any
	Period any
	Count  int64
}

// classifier maps values to interval indexes for one value type.
type classifier interface {
	// index returns the index of the interval containing the value, or false if the value
	// has a different type or lies below the origin.
	index(v any) (int64, bool)
	// lower returns the lower bound of the i-th interval.
	lower(i int64) any
	// kind returns the name of the primitive table of the bounds.
	kind() string
}

func newClassifier(spec RangeSpec) (classifier, error) {
	if spec.Count < 0 {
		return nil, NewDefinitionError("negative interval count", fmt.Sprintf("%d", spec.Count))
	}

	switch origin := spec.Origin.(type) {
	case int64:
		period, ok := spec.Period.(int64)
		if !ok || period <= 0 {
			return nil, NewDefinitionError("int64 ranges need a positive int64 period", fmt.Sprintf("%v", spec.Period))
		}
		return &intClassifier{origin: origin, period: period}, nil
	case float64:
		period, ok := spec.Period.(float64)
		if !ok || !(period > 0) || math.IsInf(period, 0) || math.IsNaN(origin) || math.IsInf(origin, 0) {
			return nil, NewDefinitionError("float64 ranges need a finite origin and a positive float64 period",
				fmt.Sprintf("%v", spec.Period))
		}
		return &floatClassifier{origin: origin, period: period}, nil
	case decimal.Decimal:
		period, ok := spec.Period.(decimal.Decimal)
		if !ok || !period.IsPositive() {
			return nil, NewDefinitionError("decimal ranges need a positive decimal period", fmt.Sprintf("%v", spec.Period))
		}
		return &decimalClassifier{origin: origin, period: period}, nil
	case time.Time:
		period, ok := spec.Period.(time.Duration)
		if !ok || period <= 0 {
			return nil, NewDefinitionError("time ranges need a positive duration period", fmt.Sprintf("%v", spec.Period))
		}
		return &timeClassifier{origin: origin, period: period}, nil
	default:
		return nil, NewDefinitionError(fmt.Sprintf("unsupported range origin type %T", spec.Origin), "")
	}
}

type intClassifier struct{ origin, period int64 }

func (c *intClassifier) index(v any) (int64, bool) {
	x, ok := v.(int64)
	if !ok || x < c.origin {
		return -1, false
	}
	return (x - c.origin) / c.period, true
}
func (c *intClassifier) lower(i int64) any { return c.origin + i*c.period }
func (c *intClassifier) kind() string      { return IntegerTable }

type floatClassifier struct{ origin, period float64 }

func (c *floatClassifier) index(v any) (int64, bool) {
	x, ok := v.(float64)
	if !ok || math.IsNaN(x) || x < c.origin {
		return -1, false
	}
	i := math.Floor((x - c.origin) / c.period)
	if i >= math.MaxInt64 {
		return -1, false
	}
	return int64(i), true
}
func (c *floatClassifier) lower(i int64) any { return c.origin + float64(i)*c.period }
func (c *floatClassifier) kind() string      { return DoubleTable }

type decimalClassifier struct{ origin, period decimal.Decimal }

func (c *decimalClassifier) index(v any) (int64, bool) {
	x, ok := v.(decimal.Decimal)
	if !ok || x.LessThan(c.origin) {
		return -1, false
	}
	return x.Sub(c.origin).Div(c.period).Floor().IntPart(), true
}
func (c *decimalClassifier) lower(i int64) any {
	return c.origin.Add(c.period.Mul(decimal.NewFromInt(i)))
}
func (c *decimalClassifier) kind() string { return DecimalTable }

type timeClassifier struct {
	origin time.Time
	period time.Duration
}

func (c *timeClassifier) index(v any) (int64, bool) {
	x, ok := v.(time.Time)
	if !ok || x.Before(c.origin) {
		return -1, false
	}
	d := x.Sub(c.origin)
	// Sub saturates beyond ~292 years
	if d == time.Duration(math.MaxInt64) {
		return -1, false
	}
	return int64(d / c.period), true
}
func (c *timeClassifier) lower(i int64) any { return c.origin.Add(time.Duration(i) * c.period) }
func (c *timeClassifier) kind() string      { return TimeTable }

// Interval returns the interval column of a range table, or nil for other tables.
func (t *Table) Interval() *Column { return t.interval }

// FindRange returns the id of the interval containing the value. If the value lies beyond the
// last interval and insertIfMissing is set, intervals are appended up to the one containing the
// value. Values of a different type than the origin and values below the origin are not found.
// A value that would need more than MaxRangeGrowth new intervals is not found and recorded in
// ExecutionErrors.
func (t *Table) FindRange(value any, insertIfMissing bool) (int64, bool) {
	t.executionErrors = nil
	if t.kind != RangeTable || value == nil {
		return -1, false
	}

	idx, ok := t.classifier.index(value)
	if !ok || idx < t.idRange.Start {
		return -1, false
	}

	if idx >= t.idRange.End {
		if !insertIfMissing {
			return -1, false
		}
		if idx-t.idRange.End >= MaxRangeGrowth {
			t.executionErrors = append(t.executionErrors, NewEvaluationError(
				fmt.Sprintf("value %v needs %d new intervals", value, idx-t.idRange.End+1), t.name, nil))
			return -1, false
		}
		for t.idRange.End <= idx {
			t.appendBucket()
		}
	}

	return idx, true
}

func (t *Table) appendBucket() int64 {
	id := t.Add()
	t.interval.SetValue(id, t.classifier.lower(id))
	return id
}
