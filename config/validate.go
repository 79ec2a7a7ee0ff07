package config

import (
	"fmt"
	"strings"

	"loadshield/domain"
)

// Validate converts a decoded Raw configuration into a runtime Config,
// rejecting invalid values (negative limits, a negative multiplier when the
// Monday multiplier is enabled, unsupported idempotency mode) per spec.md §6.
// A multiplier of 0 is taken as unset and defaults to 2, since Raw cannot
// tell an absent key from an explicit 0; Load rejects an explicitly written
// multiplier below 1 before calling Validate.
func Validate(raw Raw) (*Config, error) {
	cfg := &Config{}

	weekStartName := strings.TrimSpace(raw.Domain.Time.WeekStart)
	if weekStartName == "" {
		weekStartName = "Monday"
	}
	weekStart, err := domain.ParseWeekday(weekStartName)
	if err != nil {
		return nil, fmt.Errorf("config: domain.time.week_start: %w", err)
	}
	cfg.WeekStart = weekStart

	currency := strings.TrimSpace(raw.Domain.Money.Currency)
	if currency == "" {
		currency = "USD"
	}
	if currency != "USD" {
		return nil, fmt.Errorf("config: domain.money.currency: only USD is supported, got %q", currency)
	}
	cfg.Currency = currency

	cfg.MondayMultiplierEnabled = raw.Features.MondayMultiplier.Enabled
	multiplier := raw.Features.MondayMultiplier.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}
	if cfg.MondayMultiplierEnabled && multiplier < 1 {
		return nil, fmt.Errorf("config: features.monday_multiplier.multiplier must be >= 1, got %d", multiplier)
	}
	cfg.MondayMultiplier = multiplier

	cfg.PrimeGateEnabled = raw.Features.PrimeGate.Enabled

	dailyAmount, err := parseMoneyConfigValue(raw.Policies.Limits.DailyAmount, "policies.limits.daily_amount")
	if err != nil {
		return nil, err
	}
	cfg.DailyAmountLimit = dailyAmount

	weeklyAmount, err := parseMoneyConfigValue(raw.Policies.Limits.WeeklyAmount, "policies.limits.weekly_amount")
	if err != nil {
		return nil, err
	}
	cfg.WeeklyAmountLimit = weeklyAmount

	if raw.Policies.Limits.DailyAttempts == 0 {
		return nil, fmt.Errorf("config: policies.limits.daily_attempts must be > 0")
	}
	cfg.DailyAttemptLimit = raw.Policies.Limits.DailyAttempts

	cfg.PrimeGlobalPerDay = raw.Policies.PrimeGate.GlobalPerDay
	primeCap, err := parseMoneyConfigValue(raw.Policies.PrimeGate.AmountCap, "policies.prime_gate.amount_cap")
	if err != nil {
		return nil, err
	}
	cfg.PrimeAmountCap = primeCap

	mode := strings.TrimSpace(raw.Idempotency.Mode)
	if mode == "" {
		mode = "canonical_first"
	}
	if mode != "canonical_first" {
		return nil, fmt.Errorf("config: idempotency.mode: only canonical_first is supported, got %q", mode)
	}
	cfg.IdempotencyMode = mode

	cfg.OutputFilePath = strings.TrimSpace(raw.Output.FilePath)
	if cfg.OutputFilePath == "" {
		return nil, fmt.Errorf("config: output.file_path is required")
	}
	cfg.OutputAtomicMode = raw.Output.AtomicReplace

	cfg.TracingEnabled = raw.Observability.Tracing.Enabled
	cfg.TracePath = strings.TrimSpace(raw.Observability.Tracing.Path)
	cfg.MetricsEnabled = raw.Observability.Metrics.Enabled

	cfg.OtelEnabled = raw.Observability.Otel.Enabled
	cfg.OtelEndpoint = strings.TrimSpace(raw.Observability.Otel.Endpoint)
	cfg.OtelInsecure = raw.Observability.Otel.Insecure

	cfg.AdminEnabled = raw.Observability.Admin.Enabled
	cfg.AdminListenAddress = strings.TrimSpace(raw.Observability.Admin.ListenAddress)
	if cfg.AdminEnabled && cfg.AdminListenAddress == "" {
		cfg.AdminListenAddress = ":9090"
	}
	cfg.AdminRatePerSecond = raw.Observability.Admin.RatePerSecond
	cfg.AdminBurst = raw.Observability.Admin.Burst

	cfg.AuditEnabled = raw.Audit.Enabled
	cfg.AuditDatabasePath = strings.TrimSpace(raw.Audit.DatabasePath)
	cfg.AuditReportDir = strings.TrimSpace(raw.Audit.ReportDir)
	if cfg.AuditEnabled && cfg.AuditReportDir == "" {
		cfg.AuditReportDir = "./audit-reports"
	}

	return cfg, nil
}

func parseMoneyConfigValue(raw, field string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("config: %s is required", field)
	}
	m, err := domain.ParseMoney(trimmed)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", field, err)
	}
	if m.Sign() < 0 {
		return 0, fmt.Errorf("config: %s must be non-negative", field)
	}
	return int64(m), nil
}
