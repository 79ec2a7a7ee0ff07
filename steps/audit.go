package steps

import (
	"loadshield/domain"
	"loadshield/pipeline"
)

// DecisionRecorder observes a terminal Decision for audit logging and run
// statistics. It never influences adjudication; a nil or failing recorder
// must never affect the Decision flowing through.
type DecisionRecorder interface {
	RecordDecision(d domain.Decision)
}

// Audit implements the optional audit step (SPEC_FULL.md supplemented
// feature: audit/reconciliation export). It sits between window_update and
// format so it observes every Decision, canonical or not, exactly once,
// before Format discards everything but the OutputRow projection.
type Audit struct {
	Recorder DecisionRecorder
}

// Name implements pipeline.Step.
func (Audit) Name() string { return "audit" }

// Run implements pipeline.Step.
func (a Audit) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	d, ok := msg.(domain.Decision)
	if !ok {
		return pipeline.One(msg), nil
	}
	if a.Recorder != nil {
		a.Recorder.RecordDecision(d)
	}
	return pipeline.One(d), nil
}
