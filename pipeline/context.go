package pipeline

import "time"

// Context is short-lived mutable execution metadata for one record,
// end-to-end. It never carries business state (spec.md §3); the window
// store and idempotency registry live outside it, injected into steps as
// ports instead.
type Context struct {
	TraceID string
	LineNo  uint64

	Metrics map[string]int64
	Errors  []string
	Tags    map[string]string

	StartedAt time.Time
}

// NewContext constructs a per-record context.
func NewContext(traceID string, lineNo uint64) *Context {
	return &Context{
		TraceID:   traceID,
		LineNo:    lineNo,
		Metrics:   make(map[string]int64),
		Tags:      make(map[string]string),
		StartedAt: time.Now(),
	}
}

// AddError appends a diagnostic note. This is distinct from a step error:
// it records non-fatal context (e.g. "defaulted missing multiplier") that
// tracing may surface.
func (c *Context) AddError(msg string) {
	c.Errors = append(c.Errors, msg)
}

// IncMetric bumps a named counter local to this record's execution.
func (c *Context) IncMetric(name string, delta int64) {
	c.Metrics[name] += delta
}

// SetTag sets a whitelisted context field for tracing diffs.
func (c *Context) SetTag(key, value string) {
	c.Tags[key] = value
}

// diffTags reports which entries changed between two tag snapshots, for the
// tracer's whitelisted context diff (spec.md §4.1).
func diffTags(before, after map[string]string) map[string]string {
	diff := make(map[string]string)
	for k, v := range after {
		if before[k] != v {
			diff[k] = v
		}
	}
	return diff
}

// snapshotTags returns a shallow copy for before/after comparison.
func snapshotTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
