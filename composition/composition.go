// Package composition is the wiring root: it turns a validated
// config.Config into a ready-to-run pipeline.Scenario plus the supporting
// stores and registries the cmd/loadshield entrypoint drives the run loop
// with. It is grounded in the teacher's cmd/nhb/main.go composition style,
// where a single function builds every collaborator from config before the
// run loop starts.
package composition

import (
	"fmt"
	"log/slog"
	"time"

	"loadshield/audit"
	"loadshield/config"
	"loadshield/domain"
	"loadshield/idempotency"
	"loadshield/observability/admin"
	"loadshield/observability/logging"
	"loadshield/observability/metrics"
	"loadshield/pipeline"
	"loadshield/primeset"
	"loadshield/steps"
	"loadshield/window"
)

// amplifiedWeekday is the weekday the amount-amplification feature keys on
// (spec.md §4.5). It is fixed by the feature's definition, unlike the
// week-start weekday used for bucketing, which is configurable.
const amplifiedWeekday = time.Monday

// Engine bundles everything a run loop needs: the scenario to execute per
// line and the stateful collaborators it shares across records.
type Engine struct {
	Scenario *pipeline.Scenario
	Window   *window.Store
	Registry *idempotency.Registry
	Primes   *primeset.Oracle
	RunStats *RunStats
}

// Build constructs an Engine from a validated configuration. The scenario
// order is fixed (spec.md §4.1): parse, timekeys, idempotencygate,
// features, policy, windowupdate, audit, format, write. The audit step is
// a SPEC_FULL.md supplemented feature; auditLog may be nil when the audit
// database is disabled in configuration. logger may be nil (e.g. in
// tests); a nil logger silently drops the audit-failure warning this
// recorder otherwise emits.
func Build(cfg *config.Config, sink steps.RowWriter, auditLog *audit.Log, logger *slog.Logger) (*Engine, error) {
	store := window.New()
	registry := idempotency.New()
	primes := primeset.New()
	stats := &RunStats{}
	rec := &recorder{stats: stats, auditLog: auditLog, logger: logger, metricsEnabled: cfg.MetricsEnabled}

	featuresStep := steps.Features{
		MondayMultiplierEnabled: cfg.MondayMultiplierEnabled,
		Multiplier:              cfg.MondayMultiplier,
		AmplifiedWeekday:        amplifiedWeekday,
		PrimeGateEnabled:        cfg.PrimeGateEnabled,
		Primes:                  primes,
	}

	policyStep := steps.Policy{
		Store: store,
		Limits: steps.PolicyLimits{
			DailyAttempts:     cfg.DailyAttemptLimit,
			DailyAmount:       domain.Money(cfg.DailyAmountLimit),
			WeeklyAmount:      domain.Money(cfg.WeeklyAmountLimit),
			PrimeGateEnabled:  cfg.PrimeGateEnabled,
			PrimeGlobalPerDay: cfg.PrimeGlobalPerDay,
			PrimeAmountCap:    domain.Money(cfg.PrimeAmountCap),
		},
	}

	windowUpdateStep := steps.WindowUpdate{
		Store:            store,
		PrimeGateEnabled: cfg.PrimeGateEnabled,
	}

	scenario, err := pipeline.NewScenario([]pipeline.BoundStep{
		{StepName: "parse", Impl: steps.Parse{}},
		{StepName: "timekeys", Impl: steps.TimeKeys{WeekStart: cfg.WeekStart}},
		{StepName: "idempotency_gate", Impl: steps.IdempotencyGate{Registry: registry}},
		{StepName: "features", Impl: featuresStep},
		{StepName: "policy", Impl: policyStep},
		{StepName: "window_update", Impl: windowUpdateStep},
		{StepName: "audit", Impl: steps.Audit{Recorder: rec}},
		{StepName: "format", Impl: steps.Format{}},
		{StepName: "write", Impl: steps.Write{Sink: sink}},
	})
	if err != nil {
		return nil, fmt.Errorf("composition: build scenario: %w", err)
	}

	stats.store = store

	return &Engine{
		Scenario: scenario,
		Window:   store,
		Registry: registry,
		Primes:   primes,
		RunStats: stats,
	}, nil
}

// RunStats tracks run-wide counters surfaced through the admin status
// endpoint.
type RunStats struct {
	store    *window.Store
	accepted uint64
	declined uint64
}

// Status implements admin.StatusProvider.
func (s *RunStats) Status() admin.StatusSnapshot {
	snapshot := admin.StatusSnapshot{
		RecordsAccepted: s.accepted,
		RecordsDeclined: s.declined,
	}
	if s.store != nil {
		snapshot.DistinctCustomerDays = s.store.DistinctCustomerDays()
		snapshot.PrimeGateDays = s.store.PrimeGateSnapshot()
	}
	return snapshot
}

// recorder implements steps.DecisionRecorder, fanning one Decision out to
// run statistics, the Prometheus registry (only when
// observability.metrics.enabled is set, matching the runner's own
// MetricsSink gating), and (when enabled) the sqlite audit log. A failing
// audit write never affects adjudication; it is only logged, with the
// decision's identifiers passed through observability/logging's redaction
// allowlist so a diagnostic log line never leaks a raw id/customer_id.
type recorder struct {
	stats          *RunStats
	auditLog       *audit.Log
	logger         *slog.Logger
	metricsEnabled bool
}

// RecordDecision implements steps.DecisionRecorder.
func (r *recorder) RecordDecision(d domain.Decision) {
	if d.Accepted {
		r.stats.accepted++
	} else {
		r.stats.declined++
	}
	reason := ""
	if len(d.Reasons) > 0 {
		reason = string(d.Reasons[0])
	}
	if r.metricsEnabled {
		metrics.Decision().ObserveRecord(reason)
		if r.stats.store != nil {
			metrics.Decision().SetDistinctCustomerDays(r.stats.store.DistinctCustomerDays())
		}
	}
	if r.auditLog != nil {
		if err := r.auditLog.Record(d, time.Now().UTC()); err != nil && r.logger != nil {
			r.logger.Warn("audit write failed",
				logging.MaskField("id", d.ID),
				logging.MaskField("customer_id", d.CustomerID),
				slog.Uint64("line_no", d.LineNo),
				slog.Any("error", err),
			)
		}
	}
}
