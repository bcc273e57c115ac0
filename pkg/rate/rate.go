package rate

import "time"

// Record is one entry in a budget's rate history: the daily allowance in
// force from EffectiveFrom until superseded by a later record. EffectiveFrom
// is unique per budget.
type Record struct {
	ID             int
	BudgetID       int
	EffectiveFrom  time.Time
	BaseDailyCents int
}
