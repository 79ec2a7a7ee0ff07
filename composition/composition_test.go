package composition

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"loadshield/audit"
	"loadshield/config"
	"loadshield/domain"
	"loadshield/observability/logging"
	"loadshield/pipeline"
)

type fakeSink struct {
	rows []domain.OutputRow
}

func (f *fakeSink) WriteRow(row domain.OutputRow) error {
	f.rows = append(f.rows, row)
	return nil
}

func baseConfig() *config.Config {
	return &config.Config{
		WeekStart:         time.Monday,
		DailyAttemptLimit: 10,
		DailyAmountLimit:  100000,
		WeeklyAmountLimit: 1000000,
		PrimeGateEnabled:  true,
		PrimeGlobalPerDay: 5,
		PrimeAmountCap:    50000,
	}
}

func TestBuildConstructsRunnableScenario(t *testing.T) {
	sink := &fakeSink{}
	engine, err := Build(baseConfig(), sink, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if engine.Scenario.Len() != 9 {
		t.Fatalf("Scenario.Len() = %d, want 9", engine.Scenario.Len())
	}

	runner := pipeline.NewRunner(engine.Scenario)
	line := domain.RawLine{LineNo: 1, Text: []byte(`{"id":"4","customer_id":"100","load_amount":"10.00","time":"2024-01-18T00:00:00Z"}`)}
	if _, err := runner.Process(line, 1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected one row written, got %d", len(sink.rows))
	}
	if !sink.rows[0].Accepted {
		t.Fatalf("expected the record to be accepted: %+v", sink.rows[0])
	}

	status := engine.RunStats.Status()
	if status.RecordsAccepted != 1 || status.RecordsDeclined != 0 {
		t.Fatalf("unexpected run stats: %+v", status)
	}
	if status.DistinctCustomerDays != 1 {
		t.Fatalf("DistinctCustomerDays = %d, want 1", status.DistinctCustomerDays)
	}
}

func TestBuildTracksDeclinedRecords(t *testing.T) {
	sink := &fakeSink{}
	engine, err := Build(baseConfig(), sink, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	runner := pipeline.NewRunner(engine.Scenario)
	malformed := domain.RawLine{LineNo: 1, Text: []byte(`not json`)}
	if _, err := runner.Process(malformed, 1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	status := engine.RunStats.Status()
	if status.RecordsDeclined != 1 {
		t.Fatalf("RecordsDeclined = %d, want 1", status.RecordsDeclined)
	}
}

// TestRecorderRedactsIdentifiersOnAuditFailure grounds the recorder's audit-
// failure warning in the same pattern as the teacher's
// cmd/nhb/logging_sanitization_test.go: a masked field never leaks the raw
// value into the structured log line.
func TestRecorderRedactsIdentifiersOnAuditFailure(t *testing.T) {
	dir := t.TempDir()
	log, err := audit.Open(filepath.Join(dir, "audit.db"))
	if err != nil {
		t.Fatalf("audit.Open: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("audit.Close: %v", err)
	}

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{}))
	rec := &recorder{stats: &RunStats{}, auditLog: log, logger: logger}

	decision := domain.Decision{LineNo: 9, ID: "15337", CustomerID: "100", Accepted: true}
	rec.RecordDecision(decision)

	raw := buf.Bytes()
	if len(raw) == 0 {
		t.Fatal("expected a warning log line for the failed audit write")
	}
	if bytes.Contains(raw, []byte(decision.ID)) || bytes.Contains(raw, []byte(decision.CustomerID)) {
		t.Fatalf("log output leaked a raw identifier: %s", raw)
	}

	var entry map[string]any
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatalf("decode log payload: %v", err)
	}
	if entry["id"] != logging.RedactedValue || entry["customer_id"] != logging.RedactedValue {
		t.Fatalf("expected redacted id/customer_id, got %+v", entry)
	}
	if logging.IsAllowlisted("customer_id") {
		t.Fatalf("customer_id should not be allowlisted for logging: %v", logging.RedactionAllowlist())
	}
}
