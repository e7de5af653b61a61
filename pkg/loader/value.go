package loader

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/l7mp/dcolumn/pkg/api/v1alpha1"
	"github.com/l7mp/dcolumn/pkg/schema"
)

// valueKind returns the primitive kind of the values of an output table. Row ids of plain and
// range tables are integers.
func valueKind(output *schema.Table) string {
	if !output.IsPrimitive() {
		return schema.IntegerTable
	}
	return output.Name()
}

// convertValue turns a value decoded from YAML (string, float64, bool, nil, or nested
// lists/maps) into the given kind: Integer values become int64, Double values float64, Decimal
// values decimal.Decimal, Time values time.Time. Object values are kept as decoded.
func convertValue(v any, kind string) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch kind {
	case schema.IntegerTable:
		switch x := v.(type) {
		case float64:
			if x != math.Trunc(x) || math.IsInf(x, 0) {
				return nil, errors.New("not an integer")
			}
			return int64(x), nil
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		}
		return nil, fmt.Errorf("expected a number, got %T", v)

	case schema.DoubleTable:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		}
		return nil, fmt.Errorf("expected a number, got %T", v)

	case schema.DecimalTable:
		switch x := v.(type) {
		case string:
			return decimal.NewFromString(x)
		case float64:
			return decimal.NewFromFloat(x), nil
		case int64:
			return decimal.NewFromInt(x), nil
		}
		return nil, fmt.Errorf("expected a decimal string or number, got %T", v)

	case schema.TimeTable:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected an RFC 3339 string, got %T", v)
		}
		return time.Parse(time.RFC3339Nano, s)

	case schema.StringTable:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", v)
		}
		return s, nil

	default:
		return v, nil
	}
}

// convertRange builds the range specification of a range table.
func convertRange(spec *v1alpha1.RangeSpec) (schema.RangeSpec, error) {
	ret := schema.RangeSpec{Count: spec.Count}

	var err error
	switch spec.Type {
	case schema.IntegerTable, schema.DoubleTable, schema.DecimalTable:
		if ret.Period, err = convertValue(spec.Period, spec.Type); err != nil {
			return ret, fmt.Errorf("period: %w", err)
		}
	case schema.TimeTable:
		p, ok := spec.Period.(string)
		if !ok {
			return ret, fmt.Errorf("period: expected a duration string, got %T", spec.Period)
		}
		if ret.Period, err = time.ParseDuration(p); err != nil {
			return ret, fmt.Errorf("period: %w", err)
		}
	default:
		return ret, fmt.Errorf("unsupported range type %q", spec.Type)
	}

	if ret.Origin, err = convertValue(spec.Origin, spec.Type); err != nil {
		return ret, fmt.Errorf("origin: %w", err)
	}

	return ret, nil
}
