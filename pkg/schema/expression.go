package schema

import (
	"fmt"
	"strings"

	"github.com/l7mp/dcolumn/pkg/util"
)

// EvalFunc computes one value from the values of the parameter paths of an expression, in the
// order of the paths. Unresolved parameters are passed as nil. Returning an *Error keeps its code
// and message, any other error is wrapped as an EvaluationError.
type EvalFunc func(params []any) (any, error)

// Expression computes a value from the resolved values of its parameter paths.
type Expression interface {
	// ParameterPaths returns the paths whose values are passed to Evaluate.
	ParameterPaths() []*ColumnPath
	// Evaluate computes the result for one set of parameter values.
	Evaluate(params []any) (any, error)
	fmt.Stringer
}

type funcExpression struct {
	fn    EvalFunc
	paths []*ColumnPath
}

// NewExpression wraps a Go function over the given parameter paths.
func NewExpression(fn EvalFunc, paths ...*ColumnPath) Expression {
	return &funcExpression{fn: fn, paths: paths}
}

// NewColumnExpression wraps a Go function whose parameters are plain columns.
func NewColumnExpression(fn EvalFunc, cols ...*Column) Expression {
	return NewExpression(fn, pathsOf(cols)...)
}

func (e *funcExpression) ParameterPaths() []*ColumnPath { return e.paths }

func (e *funcExpression) Evaluate(params []any) (any, error) {
	if e.fn == nil {
		return nil, NewEvaluationError("no evaluator function", "", nil)
	}
	return e.fn(params)
}

func (e *funcExpression) String() string {
	return fmt.Sprintf("func(%s)", joinPaths(e.paths))
}

// evaluateExpression runs an expression and converts both returned errors and panics into
// evaluation errors.
func evaluateExpression(expr Expression, params []any) (ret any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ret = nil
			err = NewEvaluationError(fmt.Sprintf("panic: %v", r), expr.String(), nil)
		}
	}()

	v, err := expr.Evaluate(params)
	if err != nil {
		return nil, asEvaluationError(err)
	}
	return v, nil
}

func joinPaths(paths []*ColumnPath) string {
	return strings.Join(util.Map((*ColumnPath).String, paths), ", ")
}
