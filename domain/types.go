package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RawLine is one physical line from the input adapter, in input order.
type RawLine struct {
	LineNo uint64
	Text   []byte
}

// LoadAttempt is the immutable, normalized form of one input record.
// Enrichment never mutates a LoadAttempt; it constructs a new value.
type LoadAttempt struct {
	LineNo     uint64
	ID         string
	CustomerID string
	Amount     Money
	Ts         Instant
}

// TimeKeys carries the derived day/week buckets for an attempt (spec.md §4.3).
type TimeKeys struct {
	LoadAttempt
	DayKey  DayKey
	WeekKey WeekKey
}

// Fingerprint is a stable hash over (customer_id, ts, amount), excluding id.
type Fingerprint [32]byte

// String renders the fingerprint as hex for logging/tracing.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ComputeFingerprint hashes the idempotency-relevant fields of an attempt.
// ts is hashed at nanosecond precision (not Unix()'s whole-second
// truncation) so two attempts differing only in sub-second ts normalize to
// distinct fingerprints, per the ts-normalized instant the registry keys on.
func ComputeFingerprint(customerID string, ts Instant, amount Money) Fingerprint {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d", customerID, ts.Time().UnixNano(), int64(amount))
	var out Fingerprint
	copy(out[:], h.Sum(nil))
	return out
}

// IdempotencyOutcome tags how an id classified against the registry.
type IdempotencyOutcome int

const (
	Canonical IdempotencyOutcome = iota
	DuplicateReplay
	DuplicateConflict
)

// String renders the outcome for tracing/logging.
func (o IdempotencyOutcome) String() string {
	switch o {
	case Canonical:
		return "canonical"
	case DuplicateReplay:
		return "duplicate_replay"
	case DuplicateConflict:
		return "duplicate_conflict"
	default:
		return "unknown"
	}
}

// IdempotencyStatus classifies a repeated identifier (spec.md §3).
type IdempotencyStatus struct {
	Outcome       IdempotencyOutcome
	CanonicalLine uint64 // 0 when Outcome == Canonical
}

// Classified is a TimeKeys attempt enriched with its idempotency status.
type Classified struct {
	TimeKeys
	Fingerprint Fingerprint
	Idem        IdempotencyStatus
}

// Features carries calendar/prime enrichment computed ahead of policy
// evaluation (spec.md §3, §4.5).
type Features struct {
	Classified
	RiskFactor      int64
	EffectiveAmount Money
	IsPrimeID       bool
}

// Decision is the full internal outcome of adjudicating one record
// (spec.md §3). Only a subset of its fields ever reach OutputRow.
type Decision struct {
	LineNo          uint64
	ID              string
	CustomerID      string
	Accepted        bool
	Reasons         []ReasonCode
	DayKey          DayKey
	WeekKey         WeekKey
	EffectiveAmount Money
	IdemStatus      IdempotencyStatus
	IsPrimeID       bool
	IsCanonical     bool
}

// DeclineParse builds the declined Decision emitted by the parse step on
// failure, carrying whatever identity was recoverable (spec.md §4.2).
func DeclineParse(lineNo uint64, id, customerID string, reason ReasonCode) Decision {
	return Decision{
		LineNo:     lineNo,
		ID:         id,
		CustomerID: customerID,
		Accepted:   false,
		Reasons:    []ReasonCode{reason},
	}
}

// OutputRow is the only externally visible shape (spec.md §3, §6).
type OutputRow struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Accepted   bool   `json:"accepted"`
}

// Project converts a Decision to its OutputRow, dropping all internal
// reason-code and window bookkeeping (spec.md §4.8).
func (d Decision) Project() OutputRow {
	return OutputRow{ID: d.ID, CustomerID: d.CustomerID, Accepted: d.Accepted}
}
