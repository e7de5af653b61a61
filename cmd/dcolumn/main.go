/*
Copyright 2022 The l7mp/stunner team.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/l7mp/dcolumn/internal/buildinfo"
	"github.com/l7mp/dcolumn/pkg/loader"
	"github.com/l7mp/dcolumn/pkg/schema"
	"github.com/l7mp/dcolumn/pkg/visualize"
)

var (
	version    = "dev"
	commitHash = "n/a"
	buildDate  = "<unknown>"
)

func main() {
	var schemaFile, output string
	var passes int

	flag.StringVar(&schemaFile, "schema", "", "The YAML file holding the schema spec.")
	flag.StringVar(&output, "output", "table", "Output format: table, dot or mermaid.")
	flag.IntVar(&passes, "passes", 1, "The number of evaluation passes to run.")

	opts := zap.Options{
		Development:     true,
		DestWriter:      os.Stderr,
		StacktraceLevel: zapcore.Level(3),
		TimeEncoder:     zapcore.RFC3339NanoTimeEncoder,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	logger := zap.New(zap.UseFlagOptions(&opts))
	setupLog := logger.WithName("setup")

	buildInfo := buildinfo.New(version, commitHash, buildDate)
	setupLog.Info(fmt.Sprintf("starting %s", buildInfo.String()))

	if schemaFile == "" {
		setupLog.Error(nil, "no schema file given, use -schema")
		os.Exit(1)
	}

	s, err := loader.LoadFile(schemaFile, logger)
	if err != nil {
		setupLog.Error(err, "unable to load schema", "file", schemaFile)
		os.Exit(1)
	}

	if err := run(context.Background(), s, passes, output, os.Stdout); err != nil {
		setupLog.Error(err, "problem evaluating schema")
		os.Exit(1)
	}
}

// run evaluates the schema and writes it to w in the given format.
func run(ctx context.Context, s *schema.Schema, passes int, output string, w io.Writer) error {
	for i := 0; i < passes; i++ {
		if err := s.Evaluate(ctx); err != nil {
			return err
		}
	}

	var out string
	switch output {
	case "table":
		out = (&visualize.TableGenerator{}).Generate(s)
	case "dot":
		out = (&visualize.DotGenerator{}).Generate(visualize.BuildGraph(s))
	case "mermaid":
		out = (&visualize.MermaidGenerator{}).Generate(visualize.BuildGraph(s))
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	_, err := fmt.Fprint(w, out)
	return err
}
