package schema

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// Column maps the rows of its input table to values of its output table. A column without a
// definition is a plain data column.
type Column struct {
	schema *Schema
	id     ColumnID
	name   string
	input  TableID
	output TableID

	// values is indexed by absolute row id
	values       []any
	defaultValue any

	def                 Definition
	changedAt           uint64
	definitionChangedAt uint64
	// modifiedAt is the tick of the last write to a row outside the added range of the input
	// table, i.e., to a row that existed before the current pass
	modifiedAt uint64

	errors []*Error
	log    logr.Logger
}

func (c *Column) Name() string     { return c.name }
func (c *Column) ID() ColumnID     { return c.id }
func (c *Column) Schema() *Schema  { return c.schema }
func (c *Column) Errors() []*Error { return c.errors }
func (c *Column) label() string    { return fmt.Sprintf("column:%d", c.id) }

// Input returns the table the column belongs to.
func (c *Column) Input() *Table { return c.schema.table(c.input) }

// Output returns the table of the values of the column.
func (c *Column) Output() *Table { return c.schema.table(c.output) }

func (c *Column) String() string {
	if t := c.Input(); t != nil {
		return t.name + "." + c.name
	}
	return c.name
}

// Value returns the value of a row, or the default value if the row was never written.
func (c *Column) Value(id int64) any {
	if id < 0 || id >= int64(len(c.values)) {
		return c.defaultValue
	}
	return c.values[id]
}

// SetValue writes the value of a row and marks the column as changed.
func (c *Column) SetValue(id int64, v any) {
	if id < 0 {
		return
	}
	for int64(len(c.values)) <= id {
		c.values = append(c.values, c.defaultValue)
	}
	c.values[id] = v
	c.changedAt = c.schema.tick()
	if t := c.Input(); t == nil || !t.AddedRange().Contains(id) {
		c.modifiedAt = c.changedAt
	}
}

// Reset sets every live row to the default value.
func (c *Column) Reset() {
	r := c.Input().IDRange()
	for id := r.Start; id < r.End; id++ {
		if id < int64(len(c.values)) {
			c.values[id] = c.defaultValue
		}
	}
	c.changedAt = c.schema.tick()
	c.modifiedAt = c.changedAt
}

// DefaultValue returns the value of rows that were never written.
func (c *Column) DefaultValue() any { return c.defaultValue }

// SetDefaultValue sets the value of rows that were never written.
func (c *Column) SetDefaultValue(v any) { c.defaultValue = v }

// IsChanged returns true if the column was written since the last evaluation pass completed.
func (c *Column) IsChanged() bool { return c.changedAt > c.schema.resetAt }

// IsModified returns true if, since the last evaluation pass completed, the column was written at
// a row that is not among the rows appended to its table in the meantime. A column that is only
// written at appended rows is changed but not modified.
func (c *Column) IsModified() bool { return c.modifiedAt > c.schema.resetAt }

// ChangedAt returns the clock tick of the last write.
func (c *Column) ChangedAt() uint64 { return c.changedAt }

// DefinitionChangedAt returns the clock tick of the last definition change.
func (c *Column) DefinitionChangedAt() uint64 { return c.definitionChangedAt }

// Definition returns the definition of the column or nil for data columns.
func (c *Column) Definition() Definition { return c.def }

// IsDerived returns true if the column has a definition.
func (c *Column) IsDerived() bool { return c.def != nil }

// populates returns the table a project column (or a range column in project mode) appends
// records to, or nil.
func (c *Column) populates() *Table {
	switch d := c.def.(type) {
	case *ProjectDef:
		return c.Output()
	case *RangeDef:
		if d.Project {
			return c.Output()
		}
	}
	return nil
}

// Dependencies returns the elements the column definition reads.
func (c *Column) Dependencies() ([]Element, DepState) {
	switch d := c.def.(type) {
	case nil:
		return []Element{}, DepsReady
	case *CalcDef:
		return c.calcDependencies(d), DepsReady
	case *LinkDef:
		return c.linkDependencies(d.ValuePaths)
	case *ProjectDef:
		return c.linkDependencies(d.ValuePaths)
	case *RangeDef:
		if d.ValuePath == nil {
			return c.linkDependencies(nil)
		}
		return c.linkDependencies([]*ColumnPath{d.ValuePath})
	default:
		return nil, DepsUnconfigured
	}
}

// Evaluate recomputes the column from its definition. Errors are not returned but recorded in
// Errors: callers must inspect them after each evaluation.
func (c *Column) Evaluate(ctx context.Context) {
	c.evaluate(ctx)
}

func (c *Column) evaluate(ctx context.Context) {
	if c.def == nil {
		return
	}

	_, span := startSpan(ctx, "column.Evaluate", c)
	defer func() { endSpan(span, c.errors) }()

	switch d := c.def.(type) {
	case *CalcDef:
		c.evalCalc(d)
	case *LinkDef:
		c.evalPaths(d.ValuePaths, d.KeyColumns, false)
	case *ProjectDef:
		c.evalPaths(d.ValuePaths, d.KeyColumns, true)
	case *RangeDef:
		c.evalRange(d)
	}
}

func (c *Column) addError(err *Error) {
	c.errors = append(c.errors, err)
	columnErrorsTotal.WithLabelValues(kindOf(c.def)).Inc()
	c.log.Error(err, "evaluation aborted")
}
