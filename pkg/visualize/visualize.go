// Package visualize provides functionality for visualizing schemas as diagrams.
package visualize

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/l7mp/dcolumn/pkg/schema"
)

// Graph represents the visualization graph of a schema.
type Graph struct {
	SchemaName string
	Tables     []TableNode
	Columns    []ColumnNode
	// Connections are the dependency edges between columns.
	Connections []Connection
}

// TableNode represents a non-primitive table.
type TableNode struct {
	Name string
	Kind string
	Rows int64
}

// ColumnNode represents a column of a table.
type ColumnNode struct {
	// ID is the qualified name of the column, e.g., Items.Price.
	ID     string
	Name   string
	Table  string
	Output string
	// Kind is the definition kind or "data".
	Kind   string
	Errors int
	// Unconfigured is set for columns that cannot be scheduled yet.
	Unconfigured bool
}

// Connection represents a dependency of a column on another column.
type Connection struct {
	From string
	To   string
}

// BuildGraph constructs a visualization graph from a schema. Primitive tables are omitted.
func BuildGraph(s *schema.Schema) *Graph {
	g := &Graph{
		SchemaName:  s.Name(),
		Tables:      []TableNode{},
		Columns:     []ColumnNode{},
		Connections: []Connection{},
	}

	for _, t := range s.Tables() {
		if t.IsPrimitive() {
			continue
		}
		g.Tables = append(g.Tables, TableNode{Name: t.Name(), Kind: t.Kind().String(), Rows: t.Length()})
	}

	for _, c := range s.Columns() {
		kind := "data"
		if def := c.Definition(); def != nil {
			kind = string(def.Kind())
		}

		deps, state := c.Dependencies()
		g.Columns = append(g.Columns, ColumnNode{
			ID:           c.String(),
			Name:         c.Name(),
			Table:        c.Input().Name(),
			Output:       c.Output().Name(),
			Kind:         kind,
			Errors:       len(c.Errors()),
			Unconfigured: state == schema.DepsUnconfigured,
		})

		for _, d := range deps {
			if dc, ok := d.(*schema.Column); ok {
				g.Connections = append(g.Connections, Connection{From: dc.String(), To: c.String()})
			}
		}
	}

	return g
}

// isReference checks whether a column stores row ids of a table shown in the graph.
func (g *Graph) isReference(c ColumnNode) bool {
	for _, t := range g.Tables {
		if t.Name == c.Output {
			return true
		}
	}
	return false
}

// BuildDotGraph creates a dot.Graph from the visualization graph.
// This unified graph can then be rendered in different formats (DOT, Mermaid, etc.).
func BuildDotGraph(g *Graph) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")    // Left to right layout.
	graph.Attr("compound", "true") // Allow edges between clusters.
	graph.Attr("newrank", "true")
	graph.Attr("label", g.SchemaName)
	graph.Attr("labelloc", "t")
	graph.Attr("fontsize", "16")

	clusters := make(map[string]*dot.Graph)
	tableNodes := make(map[string]dot.Node)
	columnNodes := make(map[string]dot.Node)

	for _, t := range g.Tables {
		cluster := graph.Subgraph(t.Name, dot.ClusterOption{})
		cluster.Attr("label", fmt.Sprintf("%s (%s, %d rows)", t.Name, t.Kind, t.Rows))
		cluster.Attr("style", "rounded")
		clusters[t.Name] = cluster

		// anchor node for edges pointing to the table
		tableNodes[t.Name] = cluster.Node("table:"+t.Name).
			Attr("label", t.Name).
			Attr("shape", "box3d").
			Attr("style", "filled").
			Attr("fillcolor", "lightyellow").
			Attr("fontname", "helvetica")
	}

	for _, c := range g.Columns {
		parent, ok := clusters[c.Table]
		if !ok {
			parent = graph
		}

		label := fmt.Sprintf("%s: %s", c.Name, c.Kind)
		fill := "lightgreen"
		switch {
		case c.Errors > 0:
			label += fmt.Sprintf(" (%d errors)", c.Errors)
			fill = "salmon"
		case c.Unconfigured:
			label += " (unconfigured)"
			fill = "lightgrey"
		case c.Kind != "data":
			fill = "lightblue"
		}

		columnNodes[c.ID] = parent.Node(c.ID).
			Attr("label", label).
			Attr("shape", "box").
			Attr("style", "filled,rounded").
			Attr("fillcolor", fill).
			Attr("fontname", "helvetica")
	}

	for _, conn := range g.Connections {
		from, fromExists := columnNodes[conn.From]
		to, toExists := columnNodes[conn.To]
		if fromExists && toExists {
			graph.Edge(from, to)
		}
	}

	// Reference columns point to the table they store row ids of.
	for _, c := range g.Columns {
		if !g.isReference(c) {
			continue
		}
		graph.Edge(columnNodes[c.ID], tableNodes[c.Output]).
			Attr("label", c.Kind).
			Attr("style", "dashed").
			Attr("color", "blue").
			Attr("fontname", "helvetica").
			Attr("fontsize", "10")
	}

	return graph
}
