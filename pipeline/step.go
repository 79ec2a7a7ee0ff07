// Package pipeline implements the generic step kernel: a runtime that
// executes an ordered, configuration-composed sequence of transformations
// per message end-to-end, with deterministic fan-out and drop semantics
// (spec.md §4.1).
package pipeline

// Message is the payload flowing between steps. Each step's concrete input
// and output types are distinct domain values (RawLine, LoadAttempt,
// Classified, Features, Decision, OutputRow); the kernel itself is agnostic
// to the shape and leaves type assertion to each step.
type Message any

// Step is a function (msg, ctx) → seq<out>, returning 0, 1, or many
// outputs. Implementations must not mutate msg in place; any enrichment
// constructs a new value (spec.md §4.1).
type Step interface {
	// Name is a stable identifier used in tracing and failure records.
	Name() string
	// Run executes the step against one message. An empty, nil-error result
	// means the message is dropped for all subsequent steps.
	Run(msg Message, ctx *Context) ([]Message, error)
}

// StepFunc adapts a plain function to the Step interface for steps with no
// internal state worth a dedicated type.
type StepFunc struct {
	StepName string
	Fn       func(Message, *Context) ([]Message, error)
}

// Name implements Step.
func (f StepFunc) Name() string { return f.StepName }

// Run implements Step.
func (f StepFunc) Run(msg Message, ctx *Context) ([]Message, error) {
	return f.Fn(msg, ctx)
}

// One is a convenience constructor for steps that always produce exactly
// one output and never fail.
func One(msg Message) []Message {
	return []Message{msg}
}
