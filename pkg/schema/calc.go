package schema

// calcDependencies returns the columns read by the parameter paths of the expression.
func (c *Column) calcDependencies(d *CalcDef) []Element {
	deps := []Element{}
	if d.Expr == nil {
		return deps
	}
	for _, col := range ColumnsOf(d.Expr.ParameterPaths()) {
		deps = append(deps, col)
	}
	return deps
}

// evalCalc recomputes every live row of the input table. The first failing row stops the scan:
// rows before it keep their new values and rows from it on keep their previous values.
func (c *Column) evalCalc(d *CalcDef) {
	if d.Expr == nil {
		c.Reset()
		return
	}

	c.errors = nil

	mainRange := c.Input().IDRange()
	paths := d.Expr.ParameterPaths()
	params := make([]any, len(paths))

	c.log.V(1).Info("evaluating calc column", "range", mainRange.String(), "expression", d.Expr.String())
	columnEvaluationsTotal.WithLabelValues(string(CalcKind), "full").Inc()

	var n int64
	defer func() { rowsEvaluatedTotal.WithLabelValues(string(CalcKind)).Add(float64(n)) }()

	for i := mainRange.Start; i < mainRange.End; i++ {
		for p, path := range paths {
			params[p] = path.Value(i)
		}

		result, err := evaluateExpression(d.Expr, params)
		if err != nil {
			e := asEvaluationError(err)
			if e.Context == "" {
				e.Context = c.String()
			}
			c.addError(e)
			return
		}

		c.SetValue(i, result)
		n++
	}
}
