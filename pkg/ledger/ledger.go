package ledger

import "time"

// DayLedger is one budget-day of the materialized spending ledger. Rows are
// derived, never hand-edited: the recomputation engine upserts them keyed by
// (budget, date).
//
// Invariants:
//
//	AvailableCents    = rate(date) + CarryoverStartCents
//	CarryoverEndCents = CarryoverStartCents + (rate(date) - SpentCents)
//
// CarryoverEndCents is never clamped: overspending drives it negative,
// underspending lets it exceed the rate.
type DayLedger struct {
	BudgetID            int
	Date                time.Time
	SpentCents          int
	CarryoverStartCents int
	CarryoverEndCents   int
	AvailableCents      int
}
