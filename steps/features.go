package steps

import (
	"time"

	"loadshield/domain"
	"loadshield/pipeline"
	"loadshield/primeset"
)

// Features implements the feature computation step (spec.md §4.5): pure,
// exactly one output per input.
type Features struct {
	MondayMultiplierEnabled bool
	Multiplier              int64
	AmplifiedWeekday        time.Weekday
	PrimeGateEnabled        bool
	Primes                  *primeset.Oracle
}

// Name implements pipeline.Step.
func (Features) Name() string { return "features" }

// Run implements pipeline.Step.
func (f Features) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	c, ok := msg.(domain.Classified)
	if !ok {
		return pipeline.One(msg), nil
	}

	riskFactor := int64(1)
	if f.MondayMultiplierEnabled && c.Ts.Weekday() == f.AmplifiedWeekday {
		riskFactor = f.Multiplier
	}
	effective := c.Amount.Mul(riskFactor)

	isPrime := false
	if f.PrimeGateEnabled && f.Primes != nil {
		isPrime = f.Primes.IsPrime(c.ID)
	}

	ctx.IncMetric("risk_factor", riskFactor)
	return pipeline.One(domain.Features{
		Classified:      c,
		RiskFactor:      riskFactor,
		EffectiveAmount: effective,
		IsPrimeID:       isPrime,
	}), nil
}
