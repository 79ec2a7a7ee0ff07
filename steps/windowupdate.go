package steps

import (
	"loadshield/domain"
	"loadshield/pipeline"
	"loadshield/window"
)

// WindowUpdate implements the window update step (spec.md §4.7). It is the
// sole mutator of the window store; the policy step only reads snapshots.
// Exactly one output per input, identical to the input Decision.
type WindowUpdate struct {
	Store            *window.Store
	PrimeGateEnabled bool
}

// Name implements pipeline.Step.
func (WindowUpdate) Name() string { return "window_update" }

// Run implements pipeline.Step.
func (w WindowUpdate) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	d, ok := msg.(domain.Decision)
	if !ok {
		return pipeline.One(msg), nil
	}
	if !d.IsCanonical {
		return pipeline.One(d), nil
	}

	w.Store.IncrementAttempt(d.CustomerID, d.DayKey)
	if d.Accepted {
		w.Store.AddAccepted(d.CustomerID, d.DayKey, d.WeekKey, d.EffectiveAmount)
		if w.PrimeGateEnabled && d.IsPrimeID {
			w.Store.IncrementPrimeGate(d.DayKey)
		}
	}
	return pipeline.One(d), nil
}
