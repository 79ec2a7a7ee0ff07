package idempotency

import (
	"testing"

	"loadshield/domain"
)

func fp(n byte) domain.Fingerprint {
	var f domain.Fingerprint
	f[0] = n
	return f
}

func TestClassifyFirstSightIsCanonical(t *testing.T) {
	r := New()
	status := r.Classify("id-1", fp(1), 10)
	if status.Outcome != domain.Canonical {
		t.Fatalf("first sight outcome = %v, want Canonical", status.Outcome)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestClassifyReplayMatchesFingerprint(t *testing.T) {
	r := New()
	r.Classify("id-1", fp(1), 10)
	status := r.Classify("id-1", fp(1), 20)
	if status.Outcome != domain.DuplicateReplay {
		t.Fatalf("outcome = %v, want DuplicateReplay", status.Outcome)
	}
	if status.CanonicalLine != 10 {
		t.Fatalf("CanonicalLine = %d, want 10", status.CanonicalLine)
	}
}

func TestClassifyConflictOnDifferentFingerprint(t *testing.T) {
	r := New()
	r.Classify("id-1", fp(1), 10)
	status := r.Classify("id-1", fp(2), 20)
	if status.Outcome != domain.DuplicateConflict {
		t.Fatalf("outcome = %v, want DuplicateConflict", status.Outcome)
	}
	if status.CanonicalLine != 10 {
		t.Fatalf("CanonicalLine = %d, want 10", status.CanonicalLine)
	}
}

func TestCanonicalEntryNeverOverwritten(t *testing.T) {
	r := New()
	r.Classify("id-1", fp(1), 10)
	r.Classify("id-1", fp(2), 20) // conflict, must not replace the canonical entry
	status := r.Classify("id-1", fp(1), 30)
	if status.Outcome != domain.DuplicateReplay || status.CanonicalLine != 10 {
		t.Fatalf("canonical entry was overwritten: %+v", status)
	}
}
