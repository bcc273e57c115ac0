package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestSubscription_MonthlyCostCents(t *testing.T) {
	t.Run("should pass a monthly amount through", func(t *testing.T) {
		s := Subscription{AmountCents: 1599, BillingCycle: BillingMonthly}
		assert.Equal(t, 1599, s.MonthlyCostCents())
	})

	t.Run("should divide a yearly amount by twelve rounding up", func(t *testing.T) {
		s := Subscription{AmountCents: 10000, BillingCycle: BillingYearly}
		// 10000 / 12 = 833.33, rounded up
		assert.Equal(t, 834, s.MonthlyCostCents())

		s.AmountCents = 12000
		assert.Equal(t, 1000, s.MonthlyCostCents())
	})
}

func TestSubscription_AdvancePastDue(t *testing.T) {
	t.Run("should roll a past-due monthly charge forward", func(t *testing.T) {
		s := Subscription{
			BillingCycle:   BillingMonthly,
			NextChargeDate: day(2025, 1, 15),
		}

		s.AdvancePastDue(day(2025, 3, 20))

		assert.Equal(t, day(2025, 4, 15), s.NextChargeDate)
		require.NotNil(t, s.LastChargedDate)
		assert.Equal(t, day(2025, 3, 15), *s.LastChargedDate)
	})

	t.Run("should charge today and schedule the next period", func(t *testing.T) {
		s := Subscription{
			BillingCycle:   BillingMonthly,
			NextChargeDate: day(2025, 3, 20),
		}

		s.AdvancePastDue(day(2025, 3, 20))

		assert.Equal(t, day(2025, 4, 20), s.NextChargeDate)
		require.NotNil(t, s.LastChargedDate)
		assert.Equal(t, day(2025, 3, 20), *s.LastChargedDate)
	})

	t.Run("should leave a future charge untouched", func(t *testing.T) {
		s := Subscription{
			BillingCycle:   BillingYearly,
			NextChargeDate: day(2025, 6, 1),
		}

		s.AdvancePastDue(day(2025, 3, 20))

		assert.Equal(t, day(2025, 6, 1), s.NextChargeDate)
		assert.Nil(t, s.LastChargedDate)
	})
}

func TestSubscription_ChargesSoon(t *testing.T) {
	s := Subscription{NextChargeDate: day(2025, 3, 25)}

	assert.True(t, s.ChargesSoon(day(2025, 3, 20), 7))
	assert.True(t, s.ChargesSoon(day(2025, 3, 25), 7))
	assert.False(t, s.ChargesSoon(day(2025, 3, 17), 7))
	assert.False(t, s.ChargesSoon(day(2025, 3, 26), 7))
}

func TestSubscription_ChargeDatesBetween(t *testing.T) {
	t.Run("should project monthly charges across the range", func(t *testing.T) {
		s := Subscription{
			BillingCycle:   BillingMonthly,
			NextChargeDate: day(2025, 4, 10),
			CreatedAt:      day(2024, 12, 1),
		}

		dates := s.ChargeDatesBetween(day(2025, 1, 1), day(2025, 3, 31))

		require.Len(t, dates, 3)
		assert.Equal(t, day(2025, 1, 10), dates[0])
		assert.Equal(t, day(2025, 2, 10), dates[1])
		assert.Equal(t, day(2025, 3, 10), dates[2])
	})

	t.Run("should never project before the subscription existed", func(t *testing.T) {
		s := Subscription{
			BillingCycle:   BillingMonthly,
			NextChargeDate: day(2025, 4, 10),
			CreatedAt:      day(2025, 2, 20),
		}

		dates := s.ChargeDatesBetween(day(2025, 1, 1), day(2025, 3, 31))

		require.Len(t, dates, 1)
		assert.Equal(t, day(2025, 3, 10), dates[0])
	})

	t.Run("should handle a yearly cycle", func(t *testing.T) {
		s := Subscription{
			BillingCycle:   BillingYearly,
			NextChargeDate: day(2026, 5, 1),
			CreatedAt:      day(2024, 4, 15),
		}

		dates := s.ChargeDatesBetween(day(2025, 1, 1), day(2025, 12, 31))

		require.Len(t, dates, 1)
		assert.Equal(t, day(2025, 5, 1), dates[0])
	})

	t.Run("should return nothing for a range before creation", func(t *testing.T) {
		s := Subscription{
			BillingCycle:   BillingMonthly,
			NextChargeDate: day(2025, 4, 10),
			CreatedAt:      day(2025, 3, 1),
		}

		dates := s.ChargeDatesBetween(day(2024, 1, 1), day(2024, 12, 31))

		assert.Empty(t, dates)
	})
}

func TestSubscription_Validate(t *testing.T) {
	valid := Subscription{
		Name:           "Streaming service",
		AmountCents:    1599,
		BillingCycle:   BillingMonthly,
		Category:       "streaming",
		Status:         StatusActive,
		NextChargeDate: day(2025, 4, 1),
	}
	assert.NoError(t, valid.Validate())

	missingName := valid
	missingName.Name = ""
	assert.ErrorIs(t, missingName.Validate(), ErrMissingName)

	badCycle := valid
	badCycle.BillingCycle = "weekly"
	assert.ErrorIs(t, badCycle.Validate(), ErrInvalidBillingCycle)

	badCategory := valid
	badCategory.Category = "utilities"
	assert.ErrorIs(t, badCategory.Validate(), ErrInvalidCategory)
}
