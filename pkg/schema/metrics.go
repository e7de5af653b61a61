package schema

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/l7mp/dcolumn/pkg/schema"

var (
	columnEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dcolumn_column_evaluations_total",
		Help: "Number of column evaluations by definition kind and dirty scope",
	}, []string{"kind", "scope"})

	rowsEvaluatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dcolumn_rows_evaluated_total",
		Help: "Number of rows evaluated by definition kind",
	}, []string{"kind"})

	columnErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dcolumn_column_errors_total",
		Help: "Number of errors recorded by column evaluations",
	}, []string{"kind"})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dcolumn_pass_duration_seconds",
		Help:    "Duration of schema evaluation passes",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
)

func startSpan(ctx context.Context, name string, e Element) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithAttributes(attribute.String("element", e.String())))
}

func endSpan(span trace.Span, errs []*Error) {
	if len(errs) > 0 {
		span.RecordError(errs[0])
		span.SetStatus(codes.Error, errs[0].Error())
		span.SetAttributes(attribute.Int("errors", len(errs)))
	}
	span.End()
}
