// Package loader builds schemas from declarative specs.
package loader

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"

	"github.com/l7mp/dcolumn/pkg/api/v1alpha1"
	"github.com/l7mp/dcolumn/pkg/schema"
)

// LoadFile loads a schema from a YAML file.
func LoadFile(file string, log logr.Logger) (*schema.Schema, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return LoadYAML(b, log)
}

// LoadYAML loads a schema from a YAML document.
func LoadYAML(b []byte, log logr.Logger) (*schema.Schema, error) {
	var spec v1alpha1.SchemaSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse schema spec: %w", err)
	}
	return Load(&spec, log)
}

// Load builds a schema from a spec. Tables are created first, then all columns, then the column
// definitions and where predicates, and finally the initial rows, so that definitions may refer
// to any table or column of the spec. The schema is not evaluated.
func Load(spec *v1alpha1.SchemaSpec, log logr.Logger) (*schema.Schema, error) {
	if spec.Name == "" {
		return nil, NewInvalidSpecError("schema", spec.Name, "empty name")
	}

	log = log.WithName("loader")
	s := schema.New(spec.Name, log)

	for _, ts := range spec.Tables {
		if ts.Name == "" {
			return nil, NewInvalidSpecError("table", ts.Name, "empty name")
		}
		if ts.Range != nil {
			r, err := convertRange(ts.Range)
			if err != nil {
				return nil, NewInvalidSpecError("range table", ts.Name, err.Error())
			}
			if _, err := s.CreateRangeTable(ts.Name, r); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := s.CreateTable(ts.Name); err != nil {
			return nil, err
		}
	}

	for _, ts := range spec.Tables {
		t := s.Table(ts.Name)
		for _, cs := range ts.Columns {
			if err := createColumn(s, t, cs); err != nil {
				return nil, err
			}
		}
	}

	for _, ts := range spec.Tables {
		t := s.Table(ts.Name)
		for _, cs := range ts.Columns {
			if err := defineColumn(s, t, cs); err != nil {
				return nil, NewDefinitionError(ts.Name+"."+cs.Name, err)
			}
		}
		if ts.Where != "" {
			if err := t.SetWhereFormula(ts.Where); err != nil {
				return nil, NewDefinitionError(ts.Name, err)
			}
		}
	}

	for _, ts := range spec.Tables {
		if err := addRows(s.Table(ts.Name), ts.Rows); err != nil {
			return nil, err
		}
	}

	log.V(2).Info("schema loaded", "schema", s.String())

	return s, nil
}

func createColumn(s *schema.Schema, t *schema.Table, cs v1alpha1.ColumnSpec) error {
	if cs.Name == "" {
		return NewInvalidSpecError("column", t.Name(), "empty name")
	}

	output := s.Primitive(schema.ObjectTable)
	if cs.Type != "" {
		output = s.Table(cs.Type)
		if output == nil {
			return NewInvalidSpecError("column", t.Name()+"."+cs.Name, fmt.Sprintf("unknown type %q", cs.Type))
		}
	}

	// the interval column of range tables is implicit
	if t.Kind() == schema.RangeTable && cs.Name == schema.IntervalColumn {
		return nil
	}

	c, err := s.CreateColumn(cs.Name, t, output)
	if err != nil {
		return err
	}

	if cs.Default != nil {
		v, err := convertValue(cs.Default, valueKind(output))
		if err != nil {
			return NewValueError(c.String(), cs.Default, err)
		}
		c.SetDefaultValue(v)
	}

	return nil
}

func defineColumn(s *schema.Schema, t *schema.Table, cs v1alpha1.ColumnSpec) error {
	c := t.Column(cs.Name)

	n := 0
	for _, set := range []bool{cs.Formula != "", cs.Link != nil, cs.Project != nil} {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("at most one of formula, link and project may be set")
	}

	switch {
	case cs.Formula != "":
		return c.SetFormula(cs.Formula)
	case cs.Link != nil:
		paths, keys, err := resolveLink(s, t, c.Output(), cs.Link)
		if err != nil {
			return err
		}
		return c.SetLink(paths, keys)
	case cs.Project != nil:
		paths, keys, err := resolveLink(s, t, c.Output(), cs.Project)
		if err != nil {
			return err
		}
		return c.SetProject(paths, keys)
	}

	return nil
}

func resolveLink(s *schema.Schema, t, output *schema.Table, ls *v1alpha1.LinkSpec) ([]*schema.ColumnPath, []*schema.Column, error) {
	paths := make([]*schema.ColumnPath, 0, len(ls.Paths))
	for _, p := range ls.Paths {
		path, err := s.ParsePath(t, p)
		if err != nil {
			return nil, nil, err
		}
		paths = append(paths, path)
	}

	keys := make([]*schema.Column, 0, len(ls.Keys))
	for _, k := range ls.Keys {
		key := output.Column(k)
		if key == nil {
			return nil, nil, fmt.Errorf("unknown key column %s.%s", output.Name(), k)
		}
		keys = append(keys, key)
	}

	return paths, keys, nil
}

func addRows(t *schema.Table, rows []map[string]any) error {
	for _, row := range rows {
		id := t.Add()
		for name, raw := range row {
			c := t.Column(name)
			if c == nil {
				return NewInvalidSpecError("row", t.Name(), fmt.Sprintf("unknown column %q", name))
			}
			v, err := convertValue(raw, valueKind(c.Output()))
			if err != nil {
				return NewValueError(c.String(), raw, err)
			}
			c.SetValue(id, v)
		}
	}
	return nil
}
