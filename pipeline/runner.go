package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MetricsSink receives per-step timing and failure observations. Optional;
// defaults to a no-op so the pipeline package carries no hard dependency on
// any particular metrics backend (observability/metrics implements this).
type MetricsSink interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepFailure(step string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStepDuration(string, time.Duration) {}
func (noopMetrics) IncStepFailure(string)                     {}

// FailureHandler is consulted when a step returns an error (not a panic).
// lineNo/stepIndex let it decide whether identity is recoverable yet. It
// returns a replacement message to substitute for the failed message and
// whether the run should continue (fail-closed) or abort (spec.md §4.1).
type FailureHandler func(lineNo uint64, stepIndex int, stepName string, err error) (replacement Message, continueRun bool)

// AbortError wraps the cause of a run abort, whether from a failure policy
// decision or a recovered panic (an internal invariant violation per
// spec.md §7).
type AbortError struct {
	LineNo uint64
	Step   string
	Cause  error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("pipeline: aborted at line %d, step %q: %v", e.LineNo, e.Step, e.Cause)
}

func (e *AbortError) Unwrap() error { return e.Cause }

// Runner executes a Scenario against a stream of input messages, depth-first
// per message (spec.md §4.1). One Runner instance is reused across an
// entire run so ordering guarantees hold across records.
type Runner struct {
	scenario   *Scenario
	tracer     Tracer
	onFail     FailureHandler
	traceID    string
	metrics    MetricsSink
	otelTracer trace.Tracer
}

// Option configures a Runner at construction time.
type Option func(*Runner)

// WithTracer attaches a tracing hook. Defaults to NoopTracer.
func WithTracer(t Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithFailureHandler overrides the default abort-always policy.
func WithFailureHandler(h FailureHandler) Option {
	return func(r *Runner) { r.onFail = h }
}

// WithTraceID sets the run-scoped correlation id attached to every
// per-record Context.
func WithTraceID(id string) Option {
	return func(r *Runner) { r.traceID = id }
}

// WithMetrics attaches a MetricsSink. Defaults to a no-op sink.
func WithMetrics(m MetricsSink) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithOtelTracing records one OpenTelemetry span per processed record, with
// a child span per step, against whatever global TracerProvider is active
// (observability/otel.Init sets it before the run loop starts). Disabled by
// default, matching observability.tracing's opt-in config knob; with no
// TracerProvider configured the global one is a no-op and spans are
// discarded cheaply.
func WithOtelTracing() Option {
	return func(r *Runner) { r.otelTracer = otel.Tracer("loadshield/pipeline") }
}

// NewRunner constructs a Runner bound to scenario.
func NewRunner(scenario *Scenario, opts ...Option) *Runner {
	r := &Runner{
		scenario: scenario,
		tracer:   NoopTracer{},
		metrics:  noopMetrics{},
		onFail: func(lineNo uint64, stepIndex int, stepName string, err error) (Message, bool) {
			return nil, false
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Process runs one input message through the entire scenario depth-first:
// for each step in order, every message currently in the worklist is run
// through it in order, and outputs are appended to the next worklist in
// emission order. An empty worklist after a step ends processing for this
// input (Dropped, spec.md §4.9). Input N+1 must not begin until this call
// returns, which the caller (the composition root's run loop) guarantees by
// calling Process synchronously per line.
func (r *Runner) Process(input Message, lineNo uint64) (results []Message, err error) {
	ctx := NewContext(r.traceID, lineNo)
	work := []Message{input}

	spanCtx := context.Background()
	if r.otelTracer != nil {
		var span trace.Span
		spanCtx, span = r.otelTracer.Start(spanCtx, "pipeline.process_record",
			trace.WithAttributes(attribute.Int64("line_no", int64(lineNo))))
		defer span.End()
	}

	for idx, bound := range r.scenario.Steps() {
		if len(work) == 0 {
			break
		}
		next := make([]Message, 0, len(work))
		for _, m := range work {
			outs, stepErr := r.runStepSafely(spanCtx, bound, m, ctx, lineNo, idx)
			if stepErr != nil {
				return nil, stepErr
			}
			next = append(next, outs...)
		}
		work = next
	}
	return work, nil
}

// runStepSafely invokes one step, recovering panics as invariant
// violations that always abort (spec.md §7), and routing returned errors
// through the configured FailureHandler (spec.md §4.1).
func (r *Runner) runStepSafely(spanCtx context.Context, bound BoundStep, m Message, ctx *Context, lineNo uint64, idx int) (outs []Message, abortErr error) {
	before := snapshotTags(ctx.Tags)
	started := time.Now()

	var span trace.Span
	if r.otelTracer != nil {
		_, span = r.otelTracer.Start(spanCtx, "pipeline.step."+bound.StepName,
			trace.WithAttributes(attribute.String("step", bound.StepName), attribute.Int64("line_no", int64(lineNo))))
	}

	defer func() {
		if rec := recover(); rec != nil {
			cause := fmt.Errorf("panic: %v", rec)
			r.metrics.ObserveStepDuration(bound.StepName, time.Since(started))
			r.metrics.IncStepFailure(bound.StepName)
			if span != nil {
				span.RecordError(cause)
				span.SetStatus(codes.Error, cause.Error())
				span.End()
			}
			r.tracer.OnStep(TraceEvent{
				TraceID: r.traceID, LineNo: lineNo, Step: bound.StepName,
				Input: m, Err: cause,
			})
			abortErr = &AbortError{LineNo: lineNo, Step: bound.StepName, Cause: cause}
			outs = nil
		}
	}()

	stepOuts, err := bound.Impl.Run(m, ctx)
	r.metrics.ObserveStepDuration(bound.StepName, time.Since(started))
	if err != nil {
		r.metrics.IncStepFailure(bound.StepName)
		replacement, cont := r.onFail(lineNo, idx, bound.StepName, err)
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
		}
		r.tracer.OnStep(TraceEvent{
			TraceID: r.traceID, LineNo: lineNo, Step: bound.StepName,
			Input: m, Err: err, TagDiff: diffTags(before, ctx.Tags),
		})
		if !cont {
			return nil, &AbortError{LineNo: lineNo, Step: bound.StepName, Cause: err}
		}
		if replacement == nil {
			return nil, nil
		}
		return []Message{replacement}, nil
	}

	if span != nil {
		span.End()
	}
	r.tracer.OnStep(TraceEvent{
		TraceID: r.traceID, LineNo: lineNo, Step: bound.StepName,
		Input: m, Outputs: stepOuts, TagDiff: diffTags(before, ctx.Tags),
	})
	return stepOuts, nil
}
