// Package testutils holds helpers shared by the test suites.
package testutils

import (
	"io"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// NewLogger returns a development logger writing to w. Use a negative level to enable verbose
// logs, e.g., -10 for everything.
func NewLogger(w io.Writer, level int) logr.Logger {
	return zap.New(zap.UseFlagOptions(&zap.Options{
		Development:     true,
		DestWriter:      w,
		StacktraceLevel: zapcore.Level(3),
		TimeEncoder:     zapcore.RFC3339NanoTimeEncoder,
		Level:           zapcore.Level(level),
	}))
}

// Rows is a helper to fill tables in tests: each row is a list of values in column order.
type Rows [][]any

// Column returns the values of the i-th column of the rows.
func (r Rows) Column(i int) []any {
	ret := make([]any, len(r))
	for k, row := range r {
		ret[k] = row[i]
	}
	return ret
}
