package schema

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/l7mp/dcolumn/internal/dag"
)

// Plan returns the elements of the schema in evaluation order, i.e., every element after its
// dependencies. Elements whose dependencies are not configured are returned separately and are
// not part of the order. A dependency cycle yields an error.
func (s *Schema) Plan() ([]Element, []Element, error) {
	g := dag.New()
	byLabel := map[string]Element{}
	unconfigured := []Element{}

	elems := s.Elements()
	deps := make(map[string][]Element, len(elems))
	for _, e := range elems {
		d, state := e.Dependencies()
		if state == DepsUnconfigured {
			unconfigured = append(unconfigured, e)
			continue
		}
		g.AddNode(e.label())
		byLabel[e.label()] = e
		deps[e.label()] = d
	}

	for _, label := range g.Nodes {
		for _, d := range deps[label] {
			if !g.HasNode(d.label()) {
				continue
			}
			if err := g.AddEdge(d.label(), label); err != nil {
				return nil, unconfigured, NewDefinitionError(err.Error(), byLabel[label].String())
			}
		}
	}

	// project columns append records to their output table: every reader of the table, other
	// than another project column filling the same table, runs after them
	for _, label := range g.Nodes {
		p, ok := byLabel[label].(*Column)
		if !ok || p.populates() == nil {
			continue
		}
		t := p.populates()
		for _, reader := range g.Nodes {
			if reader == label || g.HasEdge(label, reader) || !readsTable(deps[reader], t) {
				continue
			}
			if c, ok := byLabel[reader].(*Column); ok && c.populates() == t {
				continue
			}
			if err := g.AddEdge(label, reader); err != nil {
				return nil, unconfigured, NewDefinitionError(err.Error(), p.String())
			}
		}
	}

	s.log.V(2).Info("evaluation plan", "roots", g.Roots())

	order, err := g.TopoSort()
	if err != nil {
		return nil, unconfigured, &Error{Code: DefinitionError, Message: "cannot order schema elements", Context: s.name, Cause: err}
	}

	ret := make([]Element, len(order))
	for i, label := range order {
		ret[i] = byLabel[label]
	}
	return ret, unconfigured, nil
}

// readsTable returns true if the dependencies contain the table or one of its columns.
func readsTable(deps []Element, t *Table) bool {
	for _, d := range deps {
		switch e := d.(type) {
		case *Table:
			if e == t {
				return true
			}
		case *Column:
			if e.Input() == t {
				return true
			}
		}
	}
	return false
}

// Evaluate runs one evaluation pass: every element is evaluated once in dependency order, then
// the added and removed ranges of all tables are reset and all columns become unchanged. Errors of
// individual columns do not stop the pass; they are available from the columns and from
// Schema.Errors. An error is returned only if the schema cannot be ordered, in which case
// nothing is evaluated.
func (s *Schema) Evaluate(ctx context.Context) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "schema.Evaluate")
	defer span.End()

	timer := prometheus.NewTimer(passDuration)
	defer timer.ObserveDuration()

	order, unconfigured, err := s.Plan()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error(err, "evaluation pass failed")
		return err
	}

	for _, e := range unconfigured {
		s.log.V(1).Info("skipping unconfigured element", "element", e.String())
	}

	s.log.Info("evaluation pass started", "elements", len(order), "skipped", len(unconfigured))

	errs := 0
	for _, e := range order {
		e.evaluate(ctx)
		errs += len(e.Errors())
	}

	for _, t := range s.Tables() {
		t.ResetDirty()
	}
	s.resetAt = s.tick()

	span.SetAttributes(attribute.Int("elements", len(order)), attribute.Int("errors", errs))
	s.log.Info("evaluation pass finished", "elements", len(order), "errors", errs)

	return nil
}
