package steps

import (
	"loadshield/domain"
	"loadshield/pipeline"
	"loadshield/window"
)

// PolicyLimits bundles the configured limits consumed by the evaluator
// (spec.md §4.6, §6).
type PolicyLimits struct {
	DailyAttempts     uint32
	DailyAmount       domain.Money
	WeeklyAmount      domain.Money
	PrimeGateEnabled  bool
	PrimeGlobalPerDay uint32
	PrimeAmountCap    domain.Money
}

// Policy implements the policy evaluator step (spec.md §4.6): it reads
// window snapshots (no mutation) and applies first-failure evaluation in
// the canonical, fixed order. Exactly one output per input.
type Policy struct {
	Store  *window.Store
	Limits PolicyLimits
}

// Name implements pipeline.Step.
func (Policy) Name() string { return "policy" }

// Run implements pipeline.Step.
func (p Policy) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	f, ok := msg.(domain.Features)
	if !ok {
		return pipeline.One(msg), nil
	}

	decision := domain.Decision{
		LineNo:          f.LineNo,
		ID:              f.ID,
		CustomerID:      f.CustomerID,
		DayKey:          f.DayKey,
		WeekKey:         f.WeekKey,
		EffectiveAmount: f.EffectiveAmount,
		IdemStatus:      f.Idem,
		IsPrimeID:       f.IsPrimeID,
	}

	// Rule 1: idempotency precedence.
	switch f.Idem.Outcome {
	case domain.DuplicateReplay:
		decision.Accepted = false
		decision.Reasons = []domain.ReasonCode{domain.ReasonIDDuplicateReplay}
		return pipeline.One(decision), nil
	case domain.DuplicateConflict:
		decision.Accepted = false
		decision.Reasons = []domain.ReasonCode{domain.ReasonIDDuplicateConflict}
		return pipeline.One(decision), nil
	}

	decision.IsCanonical = true
	snap := p.Store.Read(f.CustomerID, f.DayKey, f.WeekKey)

	// Rule 2: daily attempt limit.
	attemptNo := snap.DailyAttemptsBefore + 1
	if attemptNo > p.Limits.DailyAttempts {
		decision.Accepted = false
		decision.Reasons = []domain.ReasonCode{domain.ReasonDailyAttemptLimit}
		return pipeline.One(decision), nil
	}

	// Rule 3: prime gate.
	if p.Limits.PrimeGateEnabled && f.IsPrimeID {
		if f.EffectiveAmount > p.Limits.PrimeAmountCap {
			decision.Accepted = false
			decision.Reasons = []domain.ReasonCode{domain.ReasonPrimeAmountCap}
			return pipeline.One(decision), nil
		}
		if snap.PrimeApprovedBefore >= p.Limits.PrimeGlobalPerDay {
			decision.Accepted = false
			decision.Reasons = []domain.ReasonCode{domain.ReasonPrimeDailyGlobalLimit}
			return pipeline.One(decision), nil
		}
	}

	// Rule 4: daily amount limit.
	if snap.DailyAcceptedBefore+f.EffectiveAmount > p.Limits.DailyAmount {
		decision.Accepted = false
		decision.Reasons = []domain.ReasonCode{domain.ReasonDailyAmountLimit}
		return pipeline.One(decision), nil
	}

	// Rule 5: weekly amount limit.
	if snap.WeeklyAcceptedBefore+f.EffectiveAmount > p.Limits.WeeklyAmount {
		decision.Accepted = false
		decision.Reasons = []domain.ReasonCode{domain.ReasonWeeklyAmountLimit}
		return pipeline.One(decision), nil
	}

	decision.Accepted = true
	return pipeline.One(decision), nil
}
