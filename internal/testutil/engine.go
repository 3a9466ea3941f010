package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/infrastructure/inproc"
	"github.com/reglet-dev/xsd-bridge/processor"
)

// EngineCall records one request a RecordingEngine received.
type EngineCall struct {
	Op         string
	Cwd        string
	Source     string
	OutputFile string
	FromString bool
	Params     map[string]any
	Properties map[string]any
}

// RecordingEngine is an inproc.Engine that records every request and answers
// with canned results. Fail maps an op ("registerSchema" or "validate") to the
// error it raises once; the entry is consumed by the call that raises it.
type RecordingEngine struct {
	Calls    []EngineCall
	Fail     map[string]error
	Document any
	Report   any
}

var _ inproc.Engine = (*RecordingEngine)(nil)

// NewRecordingEngine creates an engine that answers validations with document
// and report.
func NewRecordingEngine(document, report any) *RecordingEngine {
	return &RecordingEngine{Fail: make(map[string]error), Document: document, Report: report}
}

// FailNext makes the next call of op raise err.
func (e *RecordingEngine) FailNext(op string, err error) {
	e.Fail[op] = err
}

// Last returns the most recent call.
func (e *RecordingEngine) Last() EngineCall {
	if len(e.Calls) == 0 {
		return EngineCall{}
	}
	return e.Calls[len(e.Calls)-1]
}

func (e *RecordingEngine) failure(op string) error {
	err, ok := e.Fail[op]
	if !ok {
		return nil
	}
	delete(e.Fail, op)
	return err
}

// RegisterSchema implements inproc.Engine.
func (e *RecordingEngine) RegisterSchema(_ context.Context, req inproc.SchemaRequest) error {
	e.Calls = append(e.Calls, EngineCall{
		Op: "registerSchema", Cwd: req.Cwd, Source: req.Source, FromString: req.FromString,
		Params: req.Params, Properties: req.Properties,
	})
	return e.failure("registerSchema")
}

// Validate implements inproc.Engine.
func (e *RecordingEngine) Validate(_ context.Context, req inproc.ValidateRequest) (*inproc.Outcome, error) {
	e.Calls = append(e.Calls, EngineCall{
		Op: "validate", Cwd: req.Cwd, Source: req.Source, OutputFile: req.OutputFile,
		Params: req.Params, Properties: req.Properties,
	})
	if err := e.failure("validate"); err != nil {
		return nil, err
	}
	return &inproc.Outcome{Document: e.Document, Report: e.Report}, nil
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewRuntime creates an in-process runtime hosting engine, plus any extra classes.
func NewRuntime(t *testing.T, engine inproc.Engine, extra ...*inproc.ClassDef) *inproc.Runtime {
	t.Helper()

	classes := inproc.EngineClasses(func() inproc.Engine { return engine })
	rt, err := inproc.NewRuntime(
		inproc.WithClass(append(classes, extra...)...),
		inproc.WithLogger(DiscardLogger()),
	)
	require.NoError(t, err)
	return rt
}

// NewProcessor creates a processor on an in-process runtime hosting engine.
func NewProcessor(t *testing.T, engine inproc.Engine, opts ...processor.Option) (*inproc.Runtime, *processor.Processor) {
	t.Helper()

	rt := NewRuntime(t, engine)
	opts = append([]processor.Option{processor.WithLogger(DiscardLogger())}, opts...)
	p, err := processor.New(context.Background(), rt, opts...)
	require.NoError(t, err)
	return rt, p
}
