package ledger

import (
	"testing"
	"time"

	"github.com/breakeven/breakeven/pkg/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var service Service

func setupService(t *testing.T) func() {
	teardown := setupEngine(t)
	service = NewLedgerService(ledgerRepoStub, engine, clock)
	return teardown
}

func TestServiceImpl_Today(t *testing.T) {
	t.Run("should materialize history up to today when nothing exists", func(t *testing.T) {
		teardown := setupService(t)
		defer teardown()

		// given
		start := day(2025, 3, 1)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 3, 4))

		// when
		result, err := service.Today(engineCtx, b)

		// then
		require.NoError(t, err)
		assert.Equal(t, day(2025, 3, 4), result.Date)
		assert.Equal(t, 8000, result.AvailableCents)
		assert.Equal(t, 4, ledgerRepoStub.Count(b.ID))
	})

	t.Run("should heal the gap since the last materialized day", func(t *testing.T) {
		teardown := setupService(t)
		defer teardown()

		// given
		start := day(2025, 3, 1)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 3, 2))
		_, err := service.Today(engineCtx, b)
		require.NoError(t, err)

		// three days pass without any request
		clock.SetNow(day(2025, 3, 5))

		// when
		result, err := service.Today(engineCtx, b)

		// then
		require.NoError(t, err)
		assert.Equal(t, day(2025, 3, 5), result.Date)
		assert.Equal(t, 8000, result.CarryoverStartCents)
		assert.Equal(t, 10000, result.AvailableCents)
		assert.Equal(t, 5, ledgerRepoStub.Count(b.ID))
	})

	t.Run("should refresh today's row when the frontier is current", func(t *testing.T) {
		teardown := setupService(t)
		defer teardown()

		// given
		start := day(2025, 3, 1)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 3, 2))
		_, err := service.Today(engineCtx, b)
		require.NoError(t, err)
		addExpense(t, b.ID, day(2025, 3, 2), 500)

		// when
		result, err := service.Today(engineCtx, b)

		// then
		require.NoError(t, err)
		assert.Equal(t, 500, result.SpentCents)
	})
}

func TestServiceImpl_Range(t *testing.T) {
	t.Run("should return ledgers newest first within explicit bounds", func(t *testing.T) {
		teardown := setupService(t)
		defer teardown()

		// given
		start := day(2025, 3, 1)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 3, 10))

		// when
		result, err := service.Range(engineCtx, b, day(2025, 3, 2), day(2025, 3, 4))

		// then
		require.NoError(t, err)
		require.Len(t, result.Ledgers, 3)
		assert.Equal(t, day(2025, 3, 4), result.Ledgers[0].Date)
		assert.Equal(t, day(2025, 3, 2), result.Ledgers[2].Date)
	})

	t.Run("should clamp the lower bound to the start date", func(t *testing.T) {
		teardown := setupService(t)
		defer teardown()

		// given
		start := day(2025, 3, 1)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 3, 3))

		// when
		result, err := service.Range(engineCtx, b, day(2025, 2, 1), time.Time{})

		// then
		require.NoError(t, err)
		assert.Equal(t, start, result.From)
		assert.Equal(t, day(2025, 3, 3), result.To)
		assert.Len(t, result.Ledgers, 3)
	})

	t.Run("should default to the last 30 days", func(t *testing.T) {
		teardown := setupService(t)
		defer teardown()

		// given
		start := day(2025, 1, 1)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 3, 10))

		// when
		result, err := service.Range(engineCtx, b, time.Time{}, time.Time{})

		// then
		require.NoError(t, err)
		assert.Equal(t, day(2025, 2, 8), result.From)
		assert.Equal(t, day(2025, 3, 10), result.To)
		assert.Len(t, result.Ledgers, 31)
	})

	t.Run("should apply rate changes across the range", func(t *testing.T) {
		teardown := setupService(t)
		defer teardown()

		// given
		start := day(2025, 3, 1)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		seedRate(t, b.ID, day(2025, 3, 3), 1000)
		clock.SetNow(day(2025, 3, 4))

		// when
		result, err := service.Range(engineCtx, b, start, time.Time{})

		// then
		require.NoError(t, err)
		require.Len(t, result.Ledgers, 4)
		// newest first: Mar 4 and Mar 3 at 1000, Mar 2 and Mar 1 at 2000
		assert.Equal(t, result.Ledgers[0].CarryoverStartCents+1000, result.Ledgers[0].AvailableCents)
		assert.Equal(t, result.Ledgers[3].CarryoverStartCents+2000, result.Ledgers[3].AvailableCents)
	})
}
