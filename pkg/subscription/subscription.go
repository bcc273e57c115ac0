package subscription

import (
	"errors"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
)

type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

var Categories = []string{"streaming", "software", "music", "news", "fitness", "cloud_storage", "gaming", "other"}

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidBillingCycle = errors.New("unknown billing cycle")
	ErrInvalidCategory     = errors.New("unknown subscription category")
	ErrInvalidStatus       = errors.New("unknown subscription status")
	ErrMissingName         = errors.New("subscription name is required")
	ErrNotFound            = errors.New("subscription not found")
)

// Subscription is a recurring charge owned by a user. It does not feed the
// day ledgers; it exists for stats projections and the monthly subscription
// budget summary.
type Subscription struct {
	ID              int
	UserID          int
	Name            string
	AmountCents     int
	BillingCycle    BillingCycle
	Category        string
	Status          Status
	NextChargeDate  time.Time
	LastChargedDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s Subscription) Validate() error {
	if s.Name == "" {
		return ErrMissingName
	}
	if s.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if s.BillingCycle != BillingMonthly && s.BillingCycle != BillingYearly {
		return ErrInvalidBillingCycle
	}
	if s.Status != StatusActive && s.Status != StatusPaused {
		return ErrInvalidStatus
	}
	if !validCategory(s.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// MonthlyCostCents normalizes the charge to a monthly figure; yearly amounts
// are divided by 12, rounded up.
func (s Subscription) MonthlyCostCents() int {
	if s.BillingCycle == BillingMonthly {
		return s.AmountCents
	}
	return (s.AmountCents + 11) / 12
}

// NextAfter returns the charge date one billing period after the given one.
func (s Subscription) NextAfter(date time.Time) time.Time {
	if s.BillingCycle == BillingMonthly {
		return date.AddDate(0, 1, 0)
	}
	return date.AddDate(1, 0, 0)
}

func (s Subscription) previousBefore(date time.Time) time.Time {
	if s.BillingCycle == BillingMonthly {
		return date.AddDate(0, -1, 0)
	}
	return date.AddDate(-1, 0, 0)
}

// AdvancePastDue rolls NextChargeDate forward past any due dates, recording
// the most recent one as LastChargedDate. No-op when the next charge is
// still in the future.
func (s *Subscription) AdvancePastDue(today time.Time) {
	today = utils.DateOf(today)
	for !s.NextChargeDate.After(today) {
		charged := s.NextChargeDate
		s.LastChargedDate = &charged
		s.NextChargeDate = s.NextAfter(s.NextChargeDate)
	}
}

// ChargesSoon reports whether the next charge lands within the given number
// of days from today.
func (s Subscription) ChargesSoon(today time.Time, days int) bool {
	today = utils.DateOf(today)
	return !s.NextChargeDate.After(today.AddDate(0, 0, days)) && !s.NextChargeDate.Before(today)
}

// ChargeDatesBetween projects the dates this subscription charges within
// [from, to], never earlier than the subscription's creation date. The
// projection steps back from NextChargeDate to the first occurrence in range
// and then walks forward, bounded to stay O(years).
func (s Subscription) ChargeDatesBetween(from, to time.Time) []time.Time {
	lowerBound := utils.MaxDate(utils.DateOf(from), utils.DateOf(s.CreatedAt))
	to = utils.DateOf(to)
	if lowerBound.After(to) {
		return nil
	}

	current := s.NextChargeDate
	for i := 0; i < 36; i++ {
		previous := s.previousBefore(current)
		if previous.Before(lowerBound) {
			break
		}
		current = previous
	}

	var dates []time.Time
	for i := 0; i < 48 && !current.After(to); i++ {
		if !current.Before(lowerBound) {
			dates = append(dates, current)
		}
		current = s.NextAfter(current)
	}
	return dates
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
