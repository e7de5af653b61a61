package schema

import (
	"fmt"

	"github.com/go-logr/logr"
)

// Names of the primitive tables created with every schema. Primitive tables are the output
// tables of data and calc columns.
const (
	ObjectTable  = "Object"
	IntegerTable = "Integer"
	DoubleTable  = "Double"
	StringTable  = "String"
	DecimalTable = "Decimal"
	TimeTable    = "Time"
)

var primitiveTables = []string{ObjectTable, IntegerTable, DoubleTable, StringTable, DecimalTable, TimeTable}

// TableID is a stable handle of a table in the schema.
type TableID int

// ColumnID is a stable handle of a column in the schema.
type ColumnID int

// Schema owns all tables and columns, and the logical clock used to time-stamp changes.
type Schema struct {
	name    string
	tables  []*Table
	columns []*Column

	// clock is incremented on every write and definition change
	clock uint64
	// resetAt is the clock value when the last evaluation pass was completed
	resetAt uint64

	log logr.Logger
}

// New creates a schema with the primitive tables.
func New(name string, log logr.Logger) *Schema {
	s := &Schema{
		name:    name,
		tables:  []*Table{},
		columns: []*Column{},
		log:     log.WithName("schema").WithValues("schema", name),
	}

	for _, n := range primitiveTables {
		s.addTable(n, PrimitiveTable)
	}

	return s
}

// Name returns the name of the schema.
func (s *Schema) Name() string { return s.name }

// Now returns the current tick of the logical clock.
func (s *Schema) Now() uint64 { return s.clock }

func (s *Schema) tick() uint64 {
	s.clock++
	return s.clock
}

// CreateTable creates a new plain table.
func (s *Schema) CreateTable(name string) (*Table, error) {
	if s.Table(name) != nil {
		return nil, NewDefinitionError("table already exists", name)
	}
	t := s.addTable(name, PlainTable)
	s.log.V(1).Info("table created", "table", name)
	return t, nil
}

// CreateRangeTable creates a table whose rows are consecutive intervals.
func (s *Schema) CreateRangeTable(name string, spec RangeSpec) (*Table, error) {
	if s.Table(name) != nil {
		return nil, NewDefinitionError("table already exists", name)
	}

	c, err := newClassifier(spec)
	if err != nil {
		return nil, err
	}

	prim := s.Primitive(c.kind())
	t := s.addTable(name, RangeTable)
	t.classifier = c
	t.rangeCount = spec.Count
	t.interval = s.addColumn(IntervalColumn, t, prim)

	s.log.V(1).Info("range table created", "table", name, "origin", spec.Origin,
		"period", spec.Period, "count", spec.Count)

	return t, nil
}

func (s *Schema) addTable(name string, kind TableKind) *Table {
	t := &Table{
		schema:              s,
		id:                  TableID(len(s.tables)),
		name:                name,
		kind:                kind,
		definitionChangedAt: s.tick(),
		log:                 s.log.WithName("table").WithValues("table", name),
	}
	s.tables = append(s.tables, t)
	return t
}

// CreateColumn creates a column in the input table whose values belong to the output table. A
// nil output defaults to the Object primitive table.
func (s *Schema) CreateColumn(name string, input, output *Table) (*Column, error) {
	if input == nil || input.schema != s || s.tables[input.id] != input {
		return nil, NewDefinitionError("input table does not belong to the schema", name)
	}
	if input.kind == PrimitiveTable {
		return nil, NewDefinitionError("cannot add columns to a primitive table", input.name)
	}
	if output == nil {
		output = s.Primitive(ObjectTable)
	}
	if output.schema != s || s.tables[output.id] != output {
		return nil, NewDefinitionError("output table does not belong to the schema", name)
	}
	if input.Column(name) != nil {
		return nil, NewDefinitionError("column already exists", input.name+"."+name)
	}

	c := s.addColumn(name, input, output)
	s.log.V(1).Info("column created", "column", c.String(), "output", output.name)
	return c, nil
}

func (s *Schema) addColumn(name string, input, output *Table) *Column {
	c := &Column{
		schema: s,
		id:     ColumnID(len(s.columns)),
		name:   name,
		input:  input.id,
		output: output.id,
		values: []any{},
		log:    s.log.WithName("column").WithValues("column", input.name+"."+name),
	}
	s.columns = append(s.columns, c)
	return c
}

// DeleteColumn removes a column from the schema. Its handle becomes invalid.
func (s *Schema) DeleteColumn(c *Column) error {
	if c == nil || c.schema != s || s.columns[c.id] != c {
		return NewNotFoundError("column", fmt.Sprintf("%v", c))
	}
	if t := c.Input(); t.kind == RangeTable && t.interval == c {
		return NewDefinitionError("cannot delete the interval column of a range table", c.String())
	}
	s.columns[c.id] = nil
	s.log.V(1).Info("column deleted", "column", c.String())
	return nil
}

// DeleteTable removes a table, its columns and all columns whose output is the table.
func (s *Schema) DeleteTable(t *Table) error {
	if t == nil || t.schema != s || s.tables[t.id] != t {
		return NewNotFoundError("table", fmt.Sprintf("%v", t))
	}
	if t.kind == PrimitiveTable {
		return NewDefinitionError("cannot delete a primitive table", t.name)
	}

	for i, c := range s.columns {
		if c != nil && (c.input == t.id || c.output == t.id) {
			s.columns[i] = nil
		}
	}
	s.tables[t.id] = nil

	s.log.V(1).Info("table deleted", "table", t.name)
	return nil
}

// Table returns a table by name or nil if not found.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.tables {
		if t != nil && t.name == name {
			return t
		}
	}
	return nil
}

// Primitive returns one of the primitive tables, e.g., Primitive(DoubleTable).
func (s *Schema) Primitive(name string) *Table {
	t := s.Table(name)
	if t == nil || t.kind != PrimitiveTable {
		return nil
	}
	return t
}

// Tables returns all live tables in creation order.
func (s *Schema) Tables() []*Table {
	ret := make([]*Table, 0, len(s.tables))
	for _, t := range s.tables {
		if t != nil {
			ret = append(ret, t)
		}
	}
	return ret
}

// Columns returns all live columns in creation order.
func (s *Schema) Columns() []*Column {
	ret := make([]*Column, 0, len(s.columns))
	for _, c := range s.columns {
		if c != nil {
			ret = append(ret, c)
		}
	}
	return ret
}

// Elements returns all live tables followed by all live columns.
func (s *Schema) Elements() []Element {
	ret := []Element{}
	for _, t := range s.Tables() {
		ret = append(ret, t)
	}
	for _, c := range s.Columns() {
		ret = append(ret, c)
	}
	return ret
}

// Errors collects the errors recorded by the last evaluation of every element.
func (s *Schema) Errors() []*Error {
	ret := []*Error{}
	for _, e := range s.Elements() {
		ret = append(ret, e.Errors()...)
	}
	return ret
}

func (s *Schema) table(id TableID) *Table {
	if int(id) < 0 || int(id) >= len(s.tables) {
		return nil
	}
	return s.tables[id]
}

func (s *Schema) String() string {
	return fmt.Sprintf("schema %s: %d tables, %d columns", s.name, len(s.Tables()), len(s.Columns()))
}
