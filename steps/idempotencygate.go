package steps

import (
	"loadshield/domain"
	"loadshield/idempotency"
	"loadshield/pipeline"
)

// IdempotencyGate implements the idempotency gate step (spec.md §4.4). It
// is the sole caller of the registry's Classify method; no other step
// touches it. Exactly one output per input.
type IdempotencyGate struct {
	Registry *idempotency.Registry
}

// Name implements pipeline.Step.
func (IdempotencyGate) Name() string { return "idempotency_gate" }

// Run implements pipeline.Step.
func (g IdempotencyGate) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	tk, ok := msg.(domain.TimeKeys)
	if !ok {
		return pipeline.One(msg), nil
	}
	fp := domain.ComputeFingerprint(tk.CustomerID, tk.Ts, tk.Amount)
	status := g.Registry.Classify(tk.ID, fp, tk.LineNo)
	ctx.SetTag("idem_outcome", status.Outcome.String())
	return pipeline.One(domain.Classified{TimeKeys: tk, Fingerprint: fp, Idem: status}), nil
}
