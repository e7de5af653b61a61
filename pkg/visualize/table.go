package visualize

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/l7mp/dcolumn/pkg/schema"
	"github.com/l7mp/dcolumn/pkg/util"
)

// TableGenerator renders the live rows of every non-primitive table as aligned text.
type TableGenerator struct{}

// Generate creates a plain text dump of the schema data followed by the recorded errors.
func (t *TableGenerator) Generate(s *schema.Schema) string {
	b := &strings.Builder{}

	for _, table := range s.Tables() {
		if table.IsPrimitive() {
			continue
		}

		fmt.Fprintf(b, "%s (%s, %d rows)\n", table.Name(), table.Kind(), table.Length())

		w := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
		cols := table.Columns()
		header := []string{"#"}
		for _, c := range cols {
			header = append(header, c.Name())
		}
		fmt.Fprintln(w, strings.Join(header, "\t"))

		r := table.IDRange()
		for id := r.Start; id < r.End; id++ {
			row := []string{fmt.Sprintf("%d", id)}
			for _, c := range cols {
				row = append(row, formatValue(c.Value(id)))
			}
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		w.Flush() //nolint:errcheck
		fmt.Fprintln(b)
	}

	if errs := s.Errors(); len(errs) > 0 {
		fmt.Fprintf(b, "%d errors:\n", len(errs))
		for _, err := range errs {
			fmt.Fprintf(b, "  %s\n", err.Error())
		}
	}

	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case []any, map[string]any:
		return util.Stringify(x)
	default:
		return fmt.Sprintf("%v", v)
	}
}
