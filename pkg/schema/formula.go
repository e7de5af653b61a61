package schema

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// formulaFunctions are the functions callable from formulas.
var formulaFunctions = map[string]function.Function{
	"abs":      stdlib.AbsoluteFunc,
	"ceil":     stdlib.CeilFunc,
	"floor":    stdlib.FloorFunc,
	"max":      stdlib.MaxFunc,
	"min":      stdlib.MinFunc,
	"upper":    stdlib.UpperFunc,
	"lower":    stdlib.LowerFunc,
	"strlen":   stdlib.StrlenFunc,
	"concat":   stdlib.ConcatFunc,
	"format":   stdlib.FormatFunc,
	"join":     stdlib.JoinFunc,
	"coalesce": stdlib.CoalesceFunc,
}

// formulaNode is an intermediate object built from the path prefixes shared by parameters.
type formulaNode map[string]any

// formula is an expression written in HCL syntax, e.g., "Price * Qty" or
// "Customer.Region.Name == \"EU\"". Every variable traversal is a column path starting at the
// table of the formula.
type formula struct {
	src   string
	expr  hclsyntax.Expression
	paths []*ColumnPath
	names [][]string
	// result is the name of the primitive table the numeric results are converted to
	result string
}

// NewFormula parses an HCL expression whose variables are column paths of the table.
func NewFormula(table *Table, src string) (Expression, error) {
	return newFormula(table, src, "")
}

func newFormula(table *Table, src, result string) (*formula, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "formula", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &Error{Code: DefinitionError, Message: "invalid formula", Context: src, Cause: diags}
	}

	f := &formula{src: src, expr: expr, result: result}
	seen := map[string]bool{}
	for _, tr := range expr.Variables() {
		names, err := traversalNames(tr)
		if err != nil {
			return nil, &Error{Code: DefinitionError, Message: "invalid formula variable", Context: src, Cause: err}
		}
		key := strings.Join(names, ".")
		if seen[key] {
			continue
		}
		seen[key] = true

		path, err := table.schema.pathByNames(table, names)
		if err != nil {
			return nil, err
		}
		f.paths = append(f.paths, path)
		f.names = append(f.names, names)
	}

	// a column cannot be read both as a value and as the prefix of a longer path
	for i, a := range f.names {
		for j, b := range f.names {
			if i != j && len(a) < len(b) && strings.Join(b[:len(a)], ".") == strings.Join(a, ".") {
				return nil, NewDefinitionError(fmt.Sprintf("column path %s is also used as a prefix of %s",
					strings.Join(a, "."), strings.Join(b, ".")), src)
			}
		}
	}

	return f, nil
}

func traversalNames(tr hcl.Traversal) ([]string, error) {
	names := []string{tr.RootName()}
	for _, step := range tr[1:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			names = append(names, s.Name)
		case hcl.TraverseIndex:
			if s.Key.Type() != cty.String || !s.Key.IsKnown() || s.Key.IsNull() {
				return nil, fmt.Errorf("only string indexes can name columns")
			}
			names = append(names, s.Key.AsString())
		default:
			return nil, fmt.Errorf("unsupported traversal step %T", step)
		}
	}
	return names, nil
}

func (f *formula) ParameterPaths() []*ColumnPath { return f.paths }

func (f *formula) String() string { return f.src }

func (f *formula) Evaluate(params []any) (any, error) {
	if len(params) != len(f.names) {
		return nil, NewEvaluationError(fmt.Sprintf("expected %d parameters, got %d", len(f.names), len(params)), f.src, nil)
	}

	root := formulaNode{}
	for i, names := range f.names {
		node := root
		for _, n := range names[:len(names)-1] {
			child, ok := node[n].(formulaNode)
			if !ok {
				child = formulaNode{}
				node[n] = child
			}
			node = child
		}
		node[names[len(names)-1]] = params[i]
	}

	vars := make(map[string]cty.Value, len(root))
	for k, v := range root {
		cv, err := toCty(v)
		if err != nil {
			return nil, NewEvaluationError("cannot convert parameter", k, err)
		}
		vars[k] = cv
	}

	val, diags := f.expr.Value(&hcl.EvalContext{Variables: vars, Functions: formulaFunctions})
	if diags.HasErrors() {
		return nil, NewEvaluationError("formula failed", f.src, diags)
	}

	ret, err := fromCty(val, f.result)
	if err != nil {
		return nil, NewEvaluationError("cannot convert result", f.src, err)
	}
	return ret, nil
}

// toCty converts a Go value to a cty value. Unresolved values become null.
func toCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case formulaNode:
		attrs := make(map[string]cty.Value, len(x))
		for k, sub := range x {
			cv, err := toCty(sub)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	case cty.Value:
		return x, nil
	case bool:
		return cty.BoolVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case float64:
		if math.IsNaN(x) {
			return cty.NilVal, fmt.Errorf("NaN is not a number")
		}
		return cty.NumberFloatVal(x), nil
	case decimal.Decimal:
		return cty.ParseNumberVal(x.String())
	case time.Time:
		return cty.StringVal(x.Format(time.RFC3339Nano)), nil
	default:
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unable to infer cty type of %T: %w", v, err)
		}
		return gocty.ToCtyValue(v, ty)
	}
}

// fromCty converts a cty value to its natural Go counterpart. Numbers become int64 when
// integral and float64 otherwise, unless the result table requests a specific kind.
func fromCty(v cty.Value, result string) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		s := v.AsString()
		if result == TimeTable {
			return time.Parse(time.RFC3339Nano, s)
		}
		return s, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty == cty.Number:
		return fromCtyNumber(v.AsBigFloat(), result)

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		ret := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			x, err := fromCty(e, "")
			if err != nil {
				return nil, err
			}
			ret = append(ret, x)
		}
		return ret, nil

	case ty.IsObjectType() || ty.IsMapType():
		ret := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			x, err := fromCty(e, "")
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}
			ret[k.AsString()] = x
		}
		return ret, nil

	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}

func fromCtyNumber(bf *big.Float, result string) (any, error) {
	switch result {
	case DoubleTable:
		f, _ := bf.Float64()
		return f, nil
	case DecimalTable:
		return decimal.NewFromString(bf.Text('f', -1))
	}

	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}
	}
	f, _ := bf.Float64()
	return f, nil
}
