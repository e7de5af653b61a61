package schema

import (
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// StrictEqual compares two values type-strictly: values of different runtime types are never equal,
// even if they represent the same number (e.g., int64(5) and float64(5.0)). Nil is only equal
// to nil.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Less orders two values of the same type. Supported types are int64, int, float64, string,
// decimal.Decimal and time.Time. Mixed or unsupported types return an error.
func Less(a, b any) (bool, error) {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return x < y, nil
		}
	case int:
		if y, ok := b.(int); ok {
			return x < y, nil
		}
	case float64:
		if y, ok := b.(float64); ok {
			return x < y, nil
		}
	case string:
		if y, ok := b.(string); ok {
			return x < y, nil
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.LessThan(y), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Before(y), nil
		}
	default:
		return false, fmt.Errorf("values of type %T are not ordered", a)
	}
	return false, fmt.Errorf("cannot compare %T with %T", a, b)
}
