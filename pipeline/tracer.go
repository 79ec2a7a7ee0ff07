package pipeline

// TraceEvent is one before/after observation around a single step
// invocation, for the runner's tracing hook (spec.md §4.1). Tracing is
// observability only: it never alters control flow.
type TraceEvent struct {
	TraceID  string
	LineNo   uint64
	Step     string
	Input    Message
	Outputs  []Message
	TagDiff  map[string]string
	Err      error
	Attempt  int
}

// Tracer receives trace events. Implementations must not block the runner
// meaningfully; a slow tracer slows the whole run since tracing is
// synchronous by design (single-threaded execution model, spec.md §5).
type Tracer interface {
	OnStep(evt TraceEvent)
}

// NoopTracer discards every event. Used when tracing is disabled.
type NoopTracer struct{}

// OnStep implements Tracer.
func (NoopTracer) OnStep(TraceEvent) {}

// TracerFunc adapts a plain function to Tracer.
type TracerFunc func(TraceEvent)

// OnStep implements Tracer.
func (f TracerFunc) OnStep(evt TraceEvent) { f(evt) }
