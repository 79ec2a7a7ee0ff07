package metrics

import (
	"testing"
	"time"
)

func TestDecisionReturnsSingleton(t *testing.T) {
	a := Decision()
	b := Decision()
	if a != b {
		t.Fatal("Decision() must return the same global registry on every call")
	}
}

func TestDecisionMetricsNilReceiverIsSafe(t *testing.T) {
	var m *DecisionMetrics
	m.ObserveRecord("accepted")
	m.ObserveStepDuration("parse", time.Millisecond)
	m.IncStepFailure("parse")
	m.SetDistinctCustomerDays(1)
	m.SetPrimeGateUsage("2024-01-01", 1)
}

func TestDecisionMetricsRecordsWithoutPanicking(t *testing.T) {
	m := Decision()
	m.ObserveRecord("")
	m.ObserveRecord("DAILY_ATTEMPT_LIMIT")
	m.ObserveStepDuration("policy", 2*time.Millisecond)
	m.IncStepFailure("policy")
	m.SetDistinctCustomerDays(5)
	m.SetPrimeGateUsage("2024-01-02", 3)
}
