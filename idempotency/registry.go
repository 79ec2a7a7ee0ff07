// Package idempotency implements the id → (fingerprint, canonical line)
// registry (spec.md §3, §4.4). The idempotency gate step is the sole owner
// of this registry; no other step may mutate it.
package idempotency

import "loadshield/domain"

type entry struct {
	fingerprint   domain.Fingerprint
	canonicalLine uint64
}

// Registry is a write-once-per-id map: once an id's canonical entry is
// recorded it is never overwritten (spec.md §4.9).
type Registry struct {
	entries map[string]entry
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Classify registers id on first sight (Canonical) or compares the supplied
// fingerprint against the stored one for replays (spec.md §4.4 algorithm).
func (r *Registry) Classify(id string, fingerprint domain.Fingerprint, lineNo uint64) domain.IdempotencyStatus {
	if existing, ok := r.entries[id]; ok {
		if existing.fingerprint == fingerprint {
			return domain.IdempotencyStatus{Outcome: domain.DuplicateReplay, CanonicalLine: existing.canonicalLine}
		}
		return domain.IdempotencyStatus{Outcome: domain.DuplicateConflict, CanonicalLine: existing.canonicalLine}
	}
	r.entries[id] = entry{fingerprint: fingerprint, canonicalLine: lineNo}
	return domain.IdempotencyStatus{Outcome: domain.Canonical}
}

// Len reports how many distinct ids have been registered; used by audit
// reporting.
func (r *Registry) Len() int {
	return len(r.entries)
}
