// Package schema implements an in-memory, column-oriented incremental computation engine.
//
// A Schema holds tables and columns. Tables own a dense space of integer row ids and track
// which ids were added or removed since the last evaluation pass. Columns are either plain data
// stores or derived columns whose values are recomputed from other columns by a definition:
//
//   - Calc: a user function (or an HCL formula) evaluated over resolved parameter paths.
//   - Link: the id of the row of another table whose key columns match a key tuple.
//   - Project: like Link, but missing rows are appended to the output table.
//   - Range: the id of the bucket of a range table containing a value.
//
// Evaluation is incremental: link columns only re-evaluate rows appended since the last pass
// unless one of their dependencies has changed, which is decided by comparing the ticks of a
// logical clock owned by the schema.
//
// Example usage:
//
//	s := schema.New("sales", logger)
//	items, _ := s.CreateTable("Items")
//	price, _ := s.CreateColumn("Price", items, s.Primitive(schema.DoubleTable))
//	qty, _ := s.CreateColumn("Qty", items, s.Primitive(schema.DoubleTable))
//	amount, _ := s.CreateColumn("Amount", items, s.Primitive(schema.DoubleTable))
//	_ = amount.SetFormula("Price * Qty")
//	_ = s.Evaluate(ctx)
package schema
