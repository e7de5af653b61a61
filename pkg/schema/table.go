package schema

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// TableKind tells how the rows of a table come into existence.
type TableKind int

const (
	// PrimitiveTable is a value domain (Double, String, ...) without rows.
	PrimitiveTable TableKind = iota
	// PlainTable is populated by explicit appends and by project columns.
	PlainTable
	// RangeTable is populated with consecutive intervals.
	RangeTable
)

func (k TableKind) String() string {
	switch k {
	case PrimitiveTable:
		return "primitive"
	case PlainTable:
		return "plain"
	case RangeTable:
		return "range"
	default:
		return "unknown"
	}
}

// Table holds a dense range of row ids and tracks the ids added and removed since the last
// evaluation pass.
type Table struct {
	schema *Schema
	id     TableID
	name   string
	kind   TableKind

	idRange      Range
	addedRange   Range
	removedRange Range

	// where is the admission predicate for rows appended by project columns
	where               Expression
	definitionChangedAt uint64
	executionErrors     []*Error

	// range tables only
	classifier classifier
	rangeCount int64
	interval   *Column

	errors []*Error
	log    logr.Logger
}

func (t *Table) Name() string     { return t.name }
func (t *Table) ID() TableID      { return t.id }
func (t *Table) Kind() TableKind  { return t.kind }
func (t *Table) Schema() *Schema  { return t.schema }
func (t *Table) String() string   { return t.name }
func (t *Table) label() string    { return fmt.Sprintf("table:%d", t.id) }
func (t *Table) Errors() []*Error { return t.errors }

// IsPrimitive returns true for value domain tables.
func (t *Table) IsPrimitive() bool { return t.kind == PrimitiveTable }

// IDRange returns the range of live row ids.
func (t *Table) IDRange() Range { return t.idRange }

// AddedRange returns the live ids appended since the last reset.
func (t *Table) AddedRange() Range { return t.addedRange.Intersect(t.idRange) }

// RemovedRange returns the ids removed since the last reset.
func (t *Table) RemovedRange() Range { return t.removedRange }

// Length returns the number of live rows.
func (t *Table) Length() int64 { return t.idRange.Len() }

// DefinitionChangedAt returns the clock tick when the population rule of the table (e.g., its
// where predicate) was last changed.
func (t *Table) DefinitionChangedAt() uint64 { return t.definitionChangedAt }

// ExecutionErrors returns the errors raised by the last call to IsWhereTrue or FindRange.
func (t *Table) ExecutionErrors() []*Error { return t.executionErrors }

// Columns returns the live columns of the table.
func (t *Table) Columns() []*Column {
	ret := []*Column{}
	for _, c := range t.schema.Columns() {
		if c.input == t.id {
			ret = append(ret, c)
		}
	}
	return ret
}

// Column returns a column of the table by name or nil if not found.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns() {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Dependencies returns no dependencies: tables are populated explicitly, from their own
// specification (range tables) or by project columns, which Plan orders before every reader of
// the table.
func (t *Table) Dependencies() ([]Element, DepState) {
	return []Element{}, DepsReady
}

// Add appends a new row and returns its id.
func (t *Table) Add() int64 {
	return t.AddN(1).Start
}

// AddN appends n rows and returns the range of the new ids.
func (t *Table) AddN(n int64) Range {
	if n <= 0 {
		return NewRange(t.idRange.End, t.idRange.End)
	}
	added := NewRange(t.idRange.End, t.idRange.End+n)
	if t.addedRange.IsEmpty() {
		t.addedRange = added
	} else {
		t.addedRange.End = added.End
	}
	t.idRange.End = added.End
	t.log.V(4).Info("rows added", "range", added.String())
	return added
}

// Remove deletes the n oldest rows and returns their ids.
func (t *Table) Remove(n int64) Range {
	n = min(n, t.Length())
	if n <= 0 {
		return NewRange(t.idRange.Start, t.idRange.Start)
	}
	removed := NewRange(t.idRange.Start, t.idRange.Start+n)
	if t.removedRange.IsEmpty() {
		t.removedRange = removed
	} else {
		t.removedRange.End = removed.End
	}
	t.idRange.Start = removed.End
	t.log.V(4).Info("rows removed", "range", removed.String())
	return removed
}

// RemoveBelow deletes the oldest rows as long as their value in the column is less than the
// threshold and returns the number of deleted rows. Rows with missing or incomparable values
// stop the scan.
func (t *Table) RemoveBelow(col *Column, threshold any) int64 {
	if col == nil || col.input != t.id {
		return 0
	}
	var n int64
	for id := t.idRange.Start; id < t.idRange.End; id++ {
		less, err := Less(col.Value(id), threshold)
		if err != nil || !less {
			break
		}
		n++
	}
	return t.Remove(n).Len()
}

// SetValues writes the values of multiple columns of a row.
func (t *Table) SetValues(id int64, cols []*Column, values []any) {
	for i, c := range cols {
		if i < len(values) {
			c.SetValue(id, values[i])
		}
	}
}

// Find returns the first live row whose key columns equal the values, compared type-strictly.
// If no row matches and insertIfMissing is set, a new row is appended with the key values.
func (t *Table) Find(values []any, keyColumns []*Column, insertIfMissing bool) (int64, bool) {
	for id := t.idRange.Start; id < t.idRange.End; id++ {
		match := true
		for i, c := range keyColumns {
			if !StrictEqual(c.Value(id), values[i]) {
				match = false
				break
			}
		}
		if match {
			return id, true
		}
	}

	if !insertIfMissing {
		return -1, false
	}

	id := t.Add()
	t.SetValues(id, keyColumns, values)
	return id, true
}

// SetWhere sets the admission predicate of the table. The parameter paths of the expression
// must start at the table. A nil expression admits every record.
func (t *Table) SetWhere(expr Expression) error {
	if expr != nil {
		for _, p := range expr.ParameterPaths() {
			if p.Input() != t {
				return NewDefinitionError("where parameter path does not start at the table", p.String())
			}
		}
	}
	t.where = expr
	t.definitionChangedAt = t.schema.tick()
	return nil
}

// SetWhereFormula sets the admission predicate from an HCL boolean expression over the columns
// of the table.
func (t *Table) SetWhereFormula(src string) error {
	f, err := NewFormula(t, src)
	if err != nil {
		return err
	}
	return t.SetWhere(f)
}

// Where returns the admission predicate or nil.
func (t *Table) Where() Expression { return t.where }

// IsWhereTrue evaluates the admission predicate against a record given by key columns and their
// values. Each parameter path of the predicate must start with one of the key columns. Failures
// are recorded in ExecutionErrors and yield false.
func (t *Table) IsWhereTrue(values []any, keyColumns []*Column) bool {
	t.executionErrors = nil
	if t.where == nil {
		return true
	}

	paths := t.where.ParameterPaths()
	params := make([]any, len(paths))
	for i, p := range paths {
		idx := -1
		for k, c := range keyColumns {
			if c == p.columns[0] {
				idx = k
				break
			}
		}
		if idx < 0 || idx >= len(values) {
			t.executionErrors = append(t.executionErrors,
				NewExecutionError("where predicate parameter is not a key column", p.String(), nil))
			return false
		}
		params[i] = p.valueFrom(values[idx], 1)
	}

	ret, err := evaluateExpression(t.where, params)
	if err != nil {
		t.executionErrors = append(t.executionErrors,
			NewExecutionError("where predicate failed", t.name, err))
		return false
	}

	b, ok := ret.(bool)
	if !ok {
		t.executionErrors = append(t.executionErrors,
			NewExecutionError(fmt.Sprintf("where predicate returned %T instead of bool", ret), t.name, nil))
		return false
	}

	return b
}

// ResetDirty empties the added and removed ranges, anchoring them at their prior end.
func (t *Table) ResetDirty() {
	t.addedRange = NewRange(t.idRange.End, t.idRange.End)
	// removals always take the oldest rows, so the prior end of the removed range is the
	// start of the live range
	t.removedRange = NewRange(t.idRange.Start, t.idRange.Start)
}

// evaluate populates range tables with their initial buckets. Other tables are populated
// explicitly.
func (t *Table) evaluate(ctx context.Context) {
	if t.kind != RangeTable {
		return
	}
	t.errors = nil
	for t.idRange.End < t.rangeCount {
		t.appendBucket()
	}
}
