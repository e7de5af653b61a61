// Package v1alpha1 contains the declarative specification of schemas: tables, columns, their
// definitions and initial rows. Specs are usually written in YAML.
package v1alpha1

// SchemaSpec defines a schema.
type SchemaSpec struct {
	// Name is the name of the schema.
	Name string `json:"name"`

	// Tables is a list of tables. Columns may refer to tables declared later in the list.
	Tables []TableSpec `json:"tables"`
}

// TableSpec defines a table.
type TableSpec struct {
	// Name is the name of the table. Must not clash with the primitive tables.
	Name string `json:"name"`

	// Range turns the table into a range table.
	//
	// +optional
	Range *RangeSpec `json:"range,omitempty"`

	// Where is the admission predicate for records appended by project columns, a formula over
	// the columns of the table.
	//
	// +optional
	Where string `json:"where,omitempty"`

	// Columns is the list of columns in evaluation tie-break order: when two columns do not
	// depend on each other, the one declared first is evaluated first.
	Columns []ColumnSpec `json:"columns,omitempty"`

	// Rows are the initial records keyed by column name.
	//
	// +optional
	Rows []map[string]any `json:"rows,omitempty"`
}

// RangeSpec defines the intervals of a range table.
type RangeSpec struct {
	// Type is the primitive type of the interval bounds: Integer, Double, Decimal or Time.
	Type string `json:"type"`

	// Origin is the lower bound of the first interval. Time origins are RFC 3339 strings.
	Origin any `json:"origin"`

	// Period is the length of the intervals. Time periods are Go duration strings, e.g. "1h".
	Period any `json:"period"`

	// Count is the number of intervals created on evaluation.
	//
	// +optional
	Count int64 `json:"count,omitempty"`
}

// ColumnSpec defines a column. At most one of Formula, Link and Project may be set; a column
// without a definition is a data column.
type ColumnSpec struct {
	// Name is the name of the column.
	Name string `json:"name"`

	// Type is the name of the output table: a primitive table (Object, Integer, Double, String,
	// Decimal, Time) or another table of the schema. Defaults to Object.
	//
	// +optional
	Type string `json:"type,omitempty"`

	// Default is the value of rows never written.
	//
	// +optional
	Default any `json:"default,omitempty"`

	// Formula makes the column a calc column.
	//
	// +optional
	Formula string `json:"formula,omitempty"`

	// Link makes the column a link column.
	//
	// +optional
	Link *LinkSpec `json:"link,omitempty"`

	// Project makes the column a project column.
	//
	// +optional
	Project *LinkSpec `json:"project,omitempty"`
}

// LinkSpec defines how the rows of a table are matched against the records of the output table.
type LinkSpec struct {
	// Paths are dotted column paths starting at the table of the column.
	Paths []string `json:"paths"`

	// Keys are the names of the matched columns of the output table, in the order of the paths.
	// Must be empty for range tables.
	//
	// +optional
	Keys []string `json:"keys,omitempty"`
}
