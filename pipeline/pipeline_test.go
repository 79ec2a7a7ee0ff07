package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func upperStep(name string, fn func(Message, *Context) ([]Message, error)) BoundStep {
	return BoundStep{StepName: name, Impl: StepFunc{StepName: name, Fn: fn}}
}

func TestScenarioRejectsEmptyOrMalformedSteps(t *testing.T) {
	if _, err := NewScenario(nil); err == nil {
		t.Fatal("expected error for empty scenario")
	}
	if _, err := NewScenario([]BoundStep{{StepName: "", Impl: StepFunc{}}}); err == nil {
		t.Fatal("expected error for unnamed step")
	}
	if _, err := NewScenario([]BoundStep{{StepName: "a", Impl: nil}}); err == nil {
		t.Fatal("expected error for nil implementation")
	}
}

func TestRunnerProcessesDepthFirstInOrder(t *testing.T) {
	var order []string
	double := upperStep("double", func(m Message, ctx *Context) ([]Message, error) {
		n := m.(int)
		order = append(order, "double")
		return []Message{n * 2, n * 2}, nil
	})
	identity := upperStep("identity", func(m Message, ctx *Context) ([]Message, error) {
		order = append(order, "identity")
		return One(m), nil
	})
	scenario, err := NewScenario([]BoundStep{double, identity})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	runner := NewRunner(scenario)
	out, err := runner.Process(5, 1)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 || out[0] != 10 || out[1] != 10 {
		t.Fatalf("Process output = %v, want [10 10]", out)
	}
	if len(order) != 3 {
		t.Fatalf("expected double to run once and identity twice, got %v", order)
	}
}

func TestRunnerDropsWhenEmptyWorklist(t *testing.T) {
	drop := upperStep("drop", func(m Message, ctx *Context) ([]Message, error) {
		return nil, nil
	})
	neverRuns := upperStep("never", func(m Message, ctx *Context) ([]Message, error) {
		t.Fatal("step after a drop must never run")
		return nil, nil
	})
	scenario, err := NewScenario([]BoundStep{drop, neverRuns})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	runner := NewRunner(scenario)
	out, err := runner.Process(1, 1)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}

func TestRunnerPanicAbortsRegardlessOfFailureHandler(t *testing.T) {
	boom := upperStep("boom", func(m Message, ctx *Context) ([]Message, error) {
		panic("invariant violated")
	})
	scenario, err := NewScenario([]BoundStep{boom})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	called := false
	runner := NewRunner(scenario, WithFailureHandler(func(lineNo uint64, stepIndex int, stepName string, err error) (Message, bool) {
		called = true
		return nil, true
	}))
	_, err = runner.Process(1, 1)
	if err == nil {
		t.Fatal("expected panic to abort the run")
	}
	var abortErr *AbortError
	if !errors.As(err, &abortErr) {
		t.Fatalf("expected *AbortError, got %T: %v", err, err)
	}
	if called {
		t.Fatal("a panic must never reach the FailureHandler")
	}
}

func TestRunnerErrorRoutesThroughFailureHandler(t *testing.T) {
	failing := upperStep("failing", func(m Message, ctx *Context) ([]Message, error) {
		return nil, errors.New("boom")
	})
	scenario, err := NewScenario([]BoundStep{failing})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	runner := NewRunner(scenario, WithFailureHandler(func(lineNo uint64, stepIndex int, stepName string, err error) (Message, bool) {
		return "replacement", true
	}))
	out, err := runner.Process(1, 1)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0] != "replacement" {
		t.Fatalf("Process output = %v, want [replacement]", out)
	}
}

func TestRunnerDefaultFailureHandlerAborts(t *testing.T) {
	failing := upperStep("failing", func(m Message, ctx *Context) ([]Message, error) {
		return nil, errors.New("boom")
	})
	scenario, err := NewScenario([]BoundStep{failing})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	runner := NewRunner(scenario)
	if _, err := runner.Process(1, 1); err == nil {
		t.Fatal("expected default failure handler to abort")
	}
}

func TestTracerObservesEverySuccessfulStep(t *testing.T) {
	var events []TraceEvent
	tracer := TracerFunc(func(evt TraceEvent) { events = append(events, evt) })
	step := upperStep("tag", func(m Message, ctx *Context) ([]Message, error) {
		ctx.SetTag("k", "v")
		return One(m), nil
	})
	scenario, err := NewScenario([]BoundStep{step})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	runner := NewRunner(scenario, WithTracer(tracer))
	if _, err := runner.Process(1, 1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one trace event, got %d", len(events))
	}
	if events[0].TagDiff["k"] != "v" {
		t.Fatalf("TagDiff = %v, want k=v", events[0].TagDiff)
	}
}

type recordingMetrics struct {
	durations map[string]time.Duration
	failures  map[string]int
}

func (m *recordingMetrics) ObserveStepDuration(step string, d time.Duration) {
	if m.durations == nil {
		m.durations = make(map[string]time.Duration)
	}
	m.durations[step] = d
}

func (m *recordingMetrics) IncStepFailure(step string) {
	if m.failures == nil {
		m.failures = make(map[string]int)
	}
	m.failures[step]++
}

func TestRunnerReportsMetricsOnSuccessAndFailure(t *testing.T) {
	ok := upperStep("ok", func(m Message, ctx *Context) ([]Message, error) {
		return One(m), nil
	})
	scenario, err := NewScenario([]BoundStep{ok})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	m := &recordingMetrics{}
	runner := NewRunner(scenario, WithMetrics(m))
	if _, err := runner.Process(1, 1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := m.durations["ok"]; !ok {
		t.Fatal("expected a step duration observation for \"ok\"")
	}
	if m.failures["ok"] != 0 {
		t.Fatalf("expected no failures for a successful step, got %d", m.failures["ok"])
	}

	failing := upperStep("failing", func(m Message, ctx *Context) ([]Message, error) {
		return nil, errors.New("boom")
	})
	failScenario, err := NewScenario([]BoundStep{failing})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	m2 := &recordingMetrics{}
	failRunner := NewRunner(failScenario, WithMetrics(m2), WithFailureHandler(func(lineNo uint64, stepIndex int, stepName string, err error) (Message, bool) {
		return nil, true
	}))
	if _, err := failRunner.Process(1, 1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if m2.failures["failing"] != 1 {
		t.Fatalf("expected one failure for \"failing\", got %d", m2.failures["failing"])
	}
}

// TestRunnerEmitsOtelSpansPerRecordAndStep grounds WithOtelTracing against a
// real in-memory span recorder rather than asserting on the global no-op
// provider, so a future regression that stops calling Start/End is caught.
func TestRunnerEmitsOtelSpansPerRecordAndStep(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prior := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(prior)

	first := upperStep("first", func(m Message, ctx *Context) ([]Message, error) {
		return One(m), nil
	})
	second := upperStep("second", func(m Message, ctx *Context) ([]Message, error) {
		return nil, errors.New("boom")
	})
	scenario, err := NewScenario([]BoundStep{first, second})
	if err != nil {
		t.Fatalf("NewScenario: %v", err)
	}
	runner := NewRunner(scenario, WithOtelTracing(), WithFailureHandler(func(lineNo uint64, stepIndex int, stepName string, err error) (Message, bool) {
		return nil, true
	}))
	if _, err := runner.Process(1, 1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := provider.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans (1 record + 2 steps), got %d: %+v", len(spans), spans)
	}
	names := map[string]bool{}
	for _, s := range spans {
		names[s.Name] = true
	}
	for _, want := range []string{"pipeline.process_record", "pipeline.step.first", "pipeline.step.second"} {
		if !names[want] {
			t.Fatalf("missing span %q among %v", want, names)
		}
	}
}
