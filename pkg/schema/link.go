package schema

// linkDependencies returns the input table, the output table and the columns of the value
// paths. Nil value paths mean the definition is not configured.
func (c *Column) linkDependencies(paths []*ColumnPath) ([]Element, DepState) {
	if paths == nil {
		return nil, DepsUnconfigured
	}

	deps := []Element{}

	// columns wait for the rows of their own table
	deps = append(deps, c.Input())

	// link columns need the rows of the output table to exist before matching; project columns
	// populate it themselves but its population rule (where predicate) can change on its own
	deps = append(deps, c.Output())

	for _, col := range ColumnsOf(paths) {
		if !containsElement(deps, col) {
			deps = append(deps, col)
		}
	}

	return deps, DepsReady
}

// fullScope decides whether a link column must re-evaluate every row or only the rows appended
// to the input table since the last pass.
func (c *Column) fullScope(isProj bool) (bool, string) {
	// project columns populate their output table
	if isProj {
		return true, "project"
	}

	if c.definitionChangedAt > c.changedAt {
		return true, "definition changed"
	}

	output := c.Output()
	deps, _ := c.Dependencies()
	for _, e := range deps {
		col, ok := e.(*Column)
		if !ok {
			continue
		}
		// writes restricted to appended rows can only be read by appended rows
		if col.IsModified() {
			return true, "dependency changed: " + col.String()
		}
	}

	// removed records leave dangling ids behind
	if !output.RemovedRange().IsEmpty() {
		return true, "output table records removed"
	}

	if output.DefinitionChangedAt() > c.changedAt {
		return true, "output table definition changed"
	}

	return false, ""
}

// evalPaths matches the key tuple of each row in the dirty scope against the output table. For
// project columns missing records are appended to the output table.
func (c *Column) evalPaths(valuePaths []*ColumnPath, keyColumns []*Column, isProj bool) {
	if valuePaths == nil {
		return
	}

	c.errors = nil

	mainTable, typeTable := c.Input(), c.Output()
	kind := string(LinkKind)
	if isProj {
		kind = string(ProjectKind)
	}

	mainRange := mainTable.IDRange()
	full, reason := c.fullScope(isProj)
	scope := "full"
	if !full {
		mainRange = mainTable.AddedRange()
		scope = "incremental"
	}

	c.log.V(1).Info("evaluating link column", "kind", kind, "scope", scope, "reason", reason,
		"range", mainRange.String())
	columnEvaluationsTotal.WithLabelValues(kind, scope).Inc()

	var n int64
	defer func() { rowsEvaluatedTotal.WithLabelValues(kind).Add(float64(n)) }()

	key := make([]any, len(keyColumns))
	for i := mainRange.Start; i < mainRange.End; i++ {
		for k := range keyColumns {
			key[k] = valuePaths[k].Value(i)
		}

		whereTrue := typeTable.IsWhereTrue(key, keyColumns)
		if errs := typeTable.ExecutionErrors(); len(errs) > 0 {
			for _, err := range errs {
				c.addError(err)
			}
			return
		}
		n++

		if !whereTrue {
			continue
		}

		id, ok := typeTable.Find(key, keyColumns, isProj)
		if !ok {
			c.SetValue(i, nil)
			continue
		}
		c.SetValue(i, id)
	}
}

// evalRange classifies the value of every live row into the intervals of the output table.
func (c *Column) evalRange(d *RangeDef) {
	if d.ValuePath == nil {
		return
	}

	c.errors = nil

	typeTable := c.Output()
	mainRange := c.Input().IDRange()

	c.log.V(1).Info("evaluating range column", "project", d.Project, "range", mainRange.String())
	columnEvaluationsTotal.WithLabelValues(string(RangeKind), "full").Inc()
	rowsEvaluatedTotal.WithLabelValues(string(RangeKind)).Add(float64(mainRange.Len()))

	for i := mainRange.Start; i < mainRange.End; i++ {
		id, ok := typeTable.FindRange(d.ValuePath.Value(i), d.Project)
		if errs := typeTable.ExecutionErrors(); len(errs) > 0 {
			for _, err := range errs {
				c.addError(err)
			}
			return
		}
		if !ok {
			c.SetValue(i, nil)
			continue
		}
		c.SetValue(i, id)
	}
}
