package steps

import (
	"time"

	"loadshield/domain"
	"loadshield/pipeline"
)

// TimeKeys implements the time-keys step (spec.md §4.3). It is pure:
// exactly one output per domain.LoadAttempt input. A domain.Decision input
// (an already-terminal parse failure) passes through unchanged.
type TimeKeys struct {
	WeekStart time.Weekday
}

// Name implements pipeline.Step.
func (TimeKeys) Name() string { return "timekeys" }

// Run implements pipeline.Step.
func (s TimeKeys) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	attempt, ok := msg.(domain.LoadAttempt)
	if !ok {
		return pipeline.One(msg), nil
	}
	if attempt.Ts.Time().Location() != time.UTC {
		panic("timekeys: attempt timestamp is not UTC-normalized")
	}
	day := domain.DayKeyOf(attempt.Ts)
	week := domain.WeekKeyOf(day, s.WeekStart)
	return pipeline.One(domain.TimeKeys{LoadAttempt: attempt, DayKey: day, WeekKey: week}), nil
}
