package budget

import (
	"errors"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	log "github.com/sirupsen/logrus"
)

type CarryoverMode string

const (
	// CarryoverContinuous rolls surplus and deficit forward indefinitely.
	CarryoverContinuous CarryoverMode = "continuous"
	// CarryoverMonthlyReset zeroes the carryover on the first day of every month.
	CarryoverMonthlyReset CarryoverMode = "monthly_reset"
)

func (m CarryoverMode) Valid() bool {
	return m == CarryoverContinuous || m == CarryoverMonthlyReset
}

// Defaults applied when a budget is lazily created on first access.
const (
	DefaultBaseDailyCents = 2000
	DefaultCurrency       = "CAD"
	DefaultTimezone       = "America/Toronto"
)

var (
	ErrInvalidRate          = errors.New("base daily rate must be positive")
	ErrInvalidCarryoverMode = errors.New("unknown carryover mode")
	ErrInvalidTimezone      = errors.New("unknown timezone")
)

// Budget is a user's single daily-allowance budget. Exactly one exists per
// user; it owns the rate history, expenses, and day ledgers.
type Budget struct {
	ID                             int
	UserID                         int
	BaseDailyCents                 int
	Currency                       string
	Timezone                       string
	CarryoverMode                  CarryoverMode
	SubscriptionBudgetEnabled      bool
	MonthlySubscriptionBudgetCents *int
	CreatedAt                      time.Time
	UpdatedAt                      time.Time
}

// Location resolves the budget's IANA timezone, falling back to UTC if the
// stored name cannot be loaded.
func (b Budget) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		log.Warnf("could not load timezone %q for budget %d, falling back to UTC", b.Timezone, b.ID)
		return time.UTC
	}
	return loc
}

// StartDate is the budget's creation instant converted into its own timezone
// and truncated to a date. No ledger, rate, or computation may reference an
// earlier date.
func (b Budget) StartDate() time.Time {
	return utils.DateOf(b.CreatedAt.In(b.Location()))
}

// TodayIn converts an instant into the budget's timezone and truncates it to
// a date. Today is the moving frontier up to which ledgers are materialized.
func (b Budget) TodayIn(now time.Time) time.Time {
	return utils.DateOf(now.In(b.Location()))
}
