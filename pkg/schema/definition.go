package schema

import (
	"fmt"
	"strings"

	"github.com/l7mp/dcolumn/pkg/util"
)

// DefinitionKind names the variants of column definitions.
type DefinitionKind string

const (
	CalcKind    DefinitionKind = "calc"
	LinkKind    DefinitionKind = "link"
	ProjectKind DefinitionKind = "project"
	RangeKind   DefinitionKind = "range"
)

// Definition is the closed set of column definitions: *CalcDef, *LinkDef, *ProjectDef and
// *RangeDef.
type Definition interface {
	Kind() DefinitionKind
	fmt.Stringer
	definition()
}

// CalcDef computes the value of each row with an expression. A nil expression resets the column
// to its default value.
type CalcDef struct {
	Expr Expression
}

// LinkDef stores the id of the output row whose key columns equal the values of the value paths.
// Nil value paths mean the definition is not yet configured.
type LinkDef struct {
	ValuePaths []*ColumnPath
	KeyColumns []*Column
}

// ProjectDef is a LinkDef that appends missing rows to the output table.
type ProjectDef struct {
	ValuePaths []*ColumnPath
	KeyColumns []*Column
}

// RangeDef stores the id of the interval of a range table that contains the value of the path.
// With Project set, missing intervals are appended.
type RangeDef struct {
	ValuePath *ColumnPath
	Project   bool
}

func (*CalcDef) Kind() DefinitionKind    { return CalcKind }
func (*LinkDef) Kind() DefinitionKind    { return LinkKind }
func (*ProjectDef) Kind() DefinitionKind { return ProjectKind }
func (*RangeDef) Kind() DefinitionKind   { return RangeKind }

func (*CalcDef) definition()    {}
func (*LinkDef) definition()    {}
func (*ProjectDef) definition() {}
func (*RangeDef) definition()   {}

func (d *CalcDef) String() string {
	if d.Expr == nil {
		return "calc(default)"
	}
	return fmt.Sprintf("calc(%s)", d.Expr.String())
}

func (d *LinkDef) String() string {
	return fmt.Sprintf("link(%s -> %s)", joinPaths(d.ValuePaths), joinColumns(d.KeyColumns))
}

func (d *ProjectDef) String() string {
	return fmt.Sprintf("project(%s -> %s)", joinPaths(d.ValuePaths), joinColumns(d.KeyColumns))
}

func (d *RangeDef) String() string {
	path := "?"
	if d.ValuePath != nil {
		path = d.ValuePath.String()
	}
	if d.Project {
		return fmt.Sprintf("range-project(%s)", path)
	}
	return fmt.Sprintf("range(%s)", path)
}

func kindOf(d Definition) string {
	if d == nil {
		return "data"
	}
	return string(d.Kind())
}

func joinColumns(cols []*Column) string {
	return strings.Join(util.Map(func(c *Column) string { return c.name }, cols), ", ")
}

// SetDefinition validates and sets the definition of the column. A nil definition turns the
// column into a data column.
func (c *Column) SetDefinition(def Definition) error {
	if err := c.validate(def); err != nil {
		return err
	}
	c.def = def
	c.definitionChangedAt = c.schema.tick()
	c.log.V(1).Info("definition set", "definition", kindOf(def))
	return nil
}

// SetExpression defines the column as a calc column.
func (c *Column) SetExpression(expr Expression) error {
	return c.SetDefinition(&CalcDef{Expr: expr})
}

// SetCalc defines the column as a calc column over a Go function of the given paths.
func (c *Column) SetCalc(fn EvalFunc, paths ...*ColumnPath) error {
	return c.SetExpression(NewExpression(fn, paths...))
}

// SetCalcColumns defines the column as a calc column over a Go function of the given columns.
func (c *Column) SetCalcColumns(fn EvalFunc, cols ...*Column) error {
	return c.SetExpression(NewColumnExpression(fn, cols...))
}

// SetFormula defines the column as a calc column over an HCL formula. Numeric results are
// converted to the kind of the output table when it is Double, Decimal or Time.
func (c *Column) SetFormula(src string) error {
	f, err := newFormula(c.Input(), src, c.Output().name)
	if err != nil {
		return err
	}
	return c.SetExpression(f)
}

// SetLink defines the column as a link column. If the output table is a range table, exactly one
// value path and no key columns must be given and the column classifies values into intervals.
func (c *Column) SetLink(valuePaths []*ColumnPath, keyColumns []*Column) error {
	if c.Output() != nil && c.Output().kind == RangeTable {
		return c.setRange(valuePaths, keyColumns, false)
	}
	return c.SetDefinition(&LinkDef{ValuePaths: valuePaths, KeyColumns: keyColumns})
}

// SetProject defines the column as a project column. If the output table is a range table,
// missing intervals are appended instead of records.
func (c *Column) SetProject(valuePaths []*ColumnPath, keyColumns []*Column) error {
	if c.Output() != nil && c.Output().kind == RangeTable {
		return c.setRange(valuePaths, keyColumns, true)
	}
	return c.SetDefinition(&ProjectDef{ValuePaths: valuePaths, KeyColumns: keyColumns})
}

// SetLinkColumns is SetLink with single-column value paths.
func (c *Column) SetLinkColumns(valueColumns, keyColumns []*Column) error {
	return c.SetLink(pathsOf(valueColumns), keyColumns)
}

// SetProjectColumns is SetProject with single-column value paths.
func (c *Column) SetProjectColumns(valueColumns, keyColumns []*Column) error {
	return c.SetProject(pathsOf(valueColumns), keyColumns)
}

func (c *Column) setRange(valuePaths []*ColumnPath, keyColumns []*Column, project bool) error {
	if len(valuePaths) != 1 || len(keyColumns) != 0 {
		return NewDefinitionError("range columns need exactly one value path and no key columns", c.String())
	}
	return c.SetDefinition(&RangeDef{ValuePath: valuePaths[0], Project: project})
}

func (c *Column) validate(def Definition) error {
	input, output := c.Input(), c.Output()
	if input == nil || output == nil {
		return NewDefinitionError("column has been deleted", c.name)
	}
	if input.kind == RangeTable && input.interval == c && def != nil {
		return NewDefinitionError("the interval column of a range table cannot be derived", c.String())
	}

	checkPaths := func(paths []*ColumnPath) error {
		for _, p := range paths {
			if p == nil || len(p.columns) == 0 {
				return NewDefinitionError("empty value path", c.String())
			}
			if p.Input() != input {
				return NewDefinitionError(fmt.Sprintf("path %s does not start at table %s", p.String(), input.name), c.String())
			}
			for _, pc := range p.columns {
				if pc == c {
					return NewDefinitionError("column cannot read itself", c.String())
				}
			}
		}
		return nil
	}

	checkLink := func(paths []*ColumnPath, keys []*Column) error {
		if output.kind != PlainTable {
			return NewDefinitionError(fmt.Sprintf("link output table %s must be a plain table", output.name), c.String())
		}
		if paths == nil {
			// unconfigured
			return nil
		}
		if len(paths) != len(keys) || len(keys) == 0 {
			return NewDefinitionError(fmt.Sprintf("%d value paths for %d key columns", len(paths), len(keys)), c.String())
		}
		for _, k := range keys {
			if k == nil || k.Input() != output {
				return NewDefinitionError(fmt.Sprintf("key column is not a column of %s", output.name), c.String())
			}
		}
		return checkPaths(paths)
	}

	switch d := def.(type) {
	case nil:
		return nil
	case *CalcDef:
		if d.Expr == nil {
			return nil
		}
		return checkPaths(d.Expr.ParameterPaths())
	case *LinkDef:
		return checkLink(d.ValuePaths, d.KeyColumns)
	case *ProjectDef:
		return checkLink(d.ValuePaths, d.KeyColumns)
	case *RangeDef:
		if output.kind != RangeTable {
			return NewDefinitionError(fmt.Sprintf("range output table %s must be a range table", output.name), c.String())
		}
		if d.ValuePath == nil {
			return nil
		}
		return checkPaths([]*ColumnPath{d.ValuePath})
	default:
		return NewDefinitionError(fmt.Sprintf("unknown definition %T", def), c.String())
	}
}
