// Package window implements the keyed counters and sums the policy
// evaluator reads as snapshots and the window-update step mutates
// (spec.md §3, §4.7). The store is owned by the single-threaded pipeline
// runner; nothing in this package synchronizes concurrent access, matching
// the spec's single-threaded execution requirement.
package window

import "loadshield/domain"

type customerDayKey struct {
	customer string
	day      domain.DayKey
}

type customerWeekKey struct {
	customer string
	week     domain.WeekKey
}

// Store holds all windowed state for one run. All maps start empty; absent
// entries default to zero on read.
type Store struct {
	dailyAttempts  map[customerDayKey]uint32
	dailyAccepted  map[customerDayKey]domain.Money
	weeklyAccepted map[customerWeekKey]domain.Money
	dailyPrimeGate map[domain.DayKey]uint32
}

// New constructs an empty window store.
func New() *Store {
	return &Store{
		dailyAttempts:  make(map[customerDayKey]uint32),
		dailyAccepted:  make(map[customerDayKey]domain.Money),
		weeklyAccepted: make(map[customerWeekKey]domain.Money),
		dailyPrimeGate: make(map[domain.DayKey]uint32),
	}
}

// Snapshot is a read-only view of the counters relevant to one record,
// taken before any mutation from that record is applied (spec.md §4.6).
type Snapshot struct {
	DailyAttemptsBefore uint32
	DailyAcceptedBefore domain.Money
	WeeklyAcceptedBefore domain.Money
	PrimeApprovedBefore uint32
}

// Read takes a pre-mutation snapshot for the given customer/day/week.
func (s *Store) Read(customer string, day domain.DayKey, week domain.WeekKey) Snapshot {
	return Snapshot{
		DailyAttemptsBefore:  s.dailyAttempts[customerDayKey{customer, day}],
		DailyAcceptedBefore:  s.dailyAccepted[customerDayKey{customer, day}],
		WeeklyAcceptedBefore: s.weeklyAccepted[customerWeekKey{customer, week}],
		PrimeApprovedBefore:  s.dailyPrimeGate[day],
	}
}

// IncrementAttempt bumps the daily attempt counter for a canonical record,
// regardless of outcome (spec.md §4.7).
func (s *Store) IncrementAttempt(customer string, day domain.DayKey) {
	s.dailyAttempts[customerDayKey{customer, day}]++
}

// AddAccepted adds effectiveAmount to both the daily and weekly accepted
// sums for a canonical, accepted record. A sum that would go negative is an
// internal invariant violation and panics.
func (s *Store) AddAccepted(customer string, day domain.DayKey, week domain.WeekKey, effectiveAmount domain.Money) {
	dk := customerDayKey{customer, day}
	wk := customerWeekKey{customer, week}
	s.dailyAccepted[dk] += effectiveAmount
	s.weeklyAccepted[wk] += effectiveAmount
	if s.dailyAccepted[dk] < 0 || s.weeklyAccepted[wk] < 0 {
		panic("window: accepted sum went negative")
	}
}

// IncrementPrimeGate bumps the global daily prime-approval counter.
func (s *Store) IncrementPrimeGate(day domain.DayKey) {
	s.dailyPrimeGate[day]++
}

// DailyAttempts exposes the current attempt count, for tests.
func (s *Store) DailyAttempts(customer string, day domain.DayKey) uint32 {
	return s.dailyAttempts[customerDayKey{customer, day}]
}

// DailyAccepted exposes the current accepted sum, for tests.
func (s *Store) DailyAccepted(customer string, day domain.DayKey) domain.Money {
	return s.dailyAccepted[customerDayKey{customer, day}]
}

// WeeklyAccepted exposes the current accepted sum, for tests.
func (s *Store) WeeklyAccepted(customer string, week domain.WeekKey) domain.Money {
	return s.weeklyAccepted[customerWeekKey{customer, week}]
}

// PrimeGateCount exposes the current global daily prime-approval count.
func (s *Store) PrimeGateCount(day domain.DayKey) uint32 {
	return s.dailyPrimeGate[day]
}

// DistinctCustomerDays reports how many (customer, day) buckets have been
// touched so far in the run, for the admin status surface and metrics.
func (s *Store) DistinctCustomerDays() int {
	return len(s.dailyAttempts)
}

// PrimeGateSnapshot copies the current global daily prime-approval counts
// keyed by their string day representation, for the admin status surface.
func (s *Store) PrimeGateSnapshot() map[string]uint32 {
	out := make(map[string]uint32, len(s.dailyPrimeGate))
	for day, count := range s.dailyPrimeGate {
		out[day.String()] = count
	}
	return out
}
