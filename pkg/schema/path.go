package schema

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/l7mp/dcolumn/pkg/util"
)

// ColumnPath is a chain of columns where each column is indexed by the output table of the
// previous one. The value of the path for a row is obtained by reading the first column at the
// row, then the next column at the resulting id, and so on.
type ColumnPath struct {
	columns []*Column
}

// NewColumnPath creates a path from a sequence of columns.
func NewColumnPath(cols ...*Column) (*ColumnPath, error) {
	if len(cols) == 0 {
		return nil, NewDefinitionError("empty column path", "")
	}
	for i, c := range cols {
		if c == nil {
			return nil, NewDefinitionError("nil column in path", fmt.Sprintf("position %d", i))
		}
		if i > 0 && c.input != cols[i-1].output {
			return nil, NewDefinitionError(fmt.Sprintf("column %s is not a column of %s",
				c.String(), cols[i-1].Output().Name()), c.String())
		}
	}
	return &ColumnPath{columns: cols}, nil
}

// PathOf is a shorthand for single-column paths.
func PathOf(c *Column) *ColumnPath {
	return &ColumnPath{columns: []*Column{c}}
}

func pathsOf(cols []*Column) []*ColumnPath {
	ret := make([]*ColumnPath, len(cols))
	for i, c := range cols {
		ret[i] = PathOf(c)
	}
	return ret
}

// Columns returns the columns of the path.
func (p *ColumnPath) Columns() []*Column { return p.columns }

// Input returns the table the path starts at.
func (p *ColumnPath) Input() *Table { return p.columns[0].Input() }

// Output returns the table of the values of the path.
func (p *ColumnPath) Output() *Table { return p.columns[len(p.columns)-1].Output() }

// Value resolves the path for a row. The result is nil if any step is unresolved.
func (p *ColumnPath) Value(id int64) any {
	return p.valueFrom(id, 0)
}

// valueFrom resolves the path starting at the column with the given index, using v as the row
// id for that column. For from == 1 this continues a resolution whose first step yielded v.
func (p *ColumnPath) valueFrom(v any, from int) any {
	for _, c := range p.columns[from:] {
		id, ok := v.(int64)
		if !ok {
			return nil
		}
		v = c.Value(id)
	}
	return v
}

func (p *ColumnPath) String() string {
	return strings.Join(util.Map((*Column).Name, p.columns), ".")
}

// ColumnsOf returns the distinct columns of a list of paths in order of appearance.
func ColumnsOf(paths []*ColumnPath) []*Column {
	ret := []*Column{}
	seen := map[*Column]bool{}
	for _, p := range paths {
		for _, c := range p.columns {
			if !seen[c] {
				seen[c] = true
				ret = append(ret, c)
			}
		}
	}
	return ret
}

// ParsePath parses a dotted path of column names starting at the table, e.g., "Customer.Name"
// or "['Order Date']". A leading "$." is accepted.
func (s *Schema) ParsePath(table *Table, path string) (*ColumnPath, error) {
	switch {
	case strings.HasPrefix(path, "$"):
	case strings.HasPrefix(path, "["):
		path = "$" + path
	default:
		path = "$." + path
	}

	x, err := jp.ParseString(path)
	if err != nil {
		return nil, &Error{Code: DefinitionError, Message: "invalid column path", Context: path, Cause: err}
	}

	names := []string{}
	for _, frag := range x {
		switch f := frag.(type) {
		case jp.Root, jp.Bracket:
			continue
		case jp.Child:
			names = append(names, string(f))
		default:
			return nil, NewDefinitionError(fmt.Sprintf("unsupported path fragment %T", frag), path)
		}
	}

	return s.pathByNames(table, names)
}

func (s *Schema) pathByNames(table *Table, names []string) (*ColumnPath, error) {
	if len(names) == 0 {
		return nil, NewDefinitionError("empty column path", table.name)
	}
	cols := make([]*Column, 0, len(names))
	t := table
	for _, name := range names {
		if t == nil {
			return nil, NewNotFoundError("table", strings.Join(names, "."))
		}
		c := t.Column(name)
		if c == nil {
			return nil, NewNotFoundError("column", t.name+"."+name)
		}
		cols = append(cols, c)
		t = c.Output()
	}
	return NewColumnPath(cols...)
}
