package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	"github.com/breakeven/breakeven/pkg/expense"
	"github.com/breakeven/breakeven/pkg/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engineCtx = context.Background()

var ledgerRepoStub = NewStubLedgerRepo()
var rateRepoStub = rate.NewStubRateRepo()
var expenseRepoStub = expense.NewStubExpenseRepo()
var clock = &utils.MockClock{}

var engine *Engine

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func setupEngine(t *testing.T) func() {
	engine = NewEngine(ledgerRepoStub, rate.NewSchedule(rateRepoStub), expenseRepoStub, clock)
	return func() {
		t.Log("Teardown after test")
		ledgerRepoStub.Cleanup()
		rateRepoStub.Cleanup()
		expenseRepoStub.Cleanup()
	}
}

func testBudget(start time.Time, mode budget.CarryoverMode) budget.Budget {
	return budget.Budget{
		ID:             1,
		UserID:         1,
		BaseDailyCents: 2000,
		Currency:       "CAD",
		Timezone:       "UTC",
		CarryoverMode:  mode,
		CreatedAt:      start,
	}
}

func seedRate(t *testing.T, budgetId int, from time.Time, cents int) {
	t.Helper()
	require.NoError(t, rateRepoStub.Store(engineCtx, rate.Record{
		BudgetID:       budgetId,
		EffectiveFrom:  from,
		BaseDailyCents: cents,
	}))
}

func addExpense(t *testing.T, budgetId int, date time.Time, cents int) {
	t.Helper()
	_, err := expenseRepoStub.Store(engineCtx, expense.Expense{
		BudgetID:    budgetId,
		Date:        date,
		AmountCents: cents,
		Category:    "food",
	})
	require.NoError(t, err)
}

func mustFind(t *testing.T, budgetId int, date time.Time) DayLedger {
	t.Helper()
	ledger, found, err := ledgerRepoStub.Find(engineCtx, budgetId, date)
	require.NoError(t, err)
	require.True(t, found, "expected ledger for %s", date.Format(utils.DateLayout))
	return ledger
}

func TestEngine_RecomputeFromDate(t *testing.T) {
	t.Run("should accumulate unspent allowance day over day", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 1, 12).Add(9 * time.Hour))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, start)

		// then
		require.NoError(t, err)
		day1 := mustFind(t, b.ID, start)
		assert.Equal(t, 0, day1.CarryoverStartCents)
		assert.Equal(t, 2000, day1.AvailableCents)
		assert.Equal(t, 2000, day1.CarryoverEndCents)

		day2 := mustFind(t, b.ID, day(2025, 1, 11))
		assert.Equal(t, 2000, day2.CarryoverStartCents)
		assert.Equal(t, 4000, day2.AvailableCents)
		assert.Equal(t, 4000, day2.CarryoverEndCents)

		day3 := mustFind(t, b.ID, day(2025, 1, 12))
		assert.Equal(t, 4000, day3.CarryoverStartCents)
		assert.Equal(t, 6000, day3.AvailableCents)
		assert.Equal(t, 6000, day3.CarryoverEndCents)
	})

	t.Run("should carry a deficit forward after overspending", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		addExpense(t, b.ID, start, 2500)
		clock.SetNow(day(2025, 1, 11))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, start)

		// then
		require.NoError(t, err)
		day1 := mustFind(t, b.ID, start)
		assert.Equal(t, 2500, day1.SpentCents)
		assert.Equal(t, 2000, day1.AvailableCents)
		assert.Equal(t, -500, day1.CarryoverEndCents)

		day2 := mustFind(t, b.ID, day(2025, 1, 11))
		assert.Equal(t, -500, day2.CarryoverStartCents)
		assert.Equal(t, 1500, day2.AvailableCents)
	})

	t.Run("should apply the rate in force on each day", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		seedRate(t, b.ID, day(2025, 1, 15), 3000)
		clock.SetNow(day(2025, 1, 16))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, start)

		// then
		require.NoError(t, err)
		before := mustFind(t, b.ID, day(2025, 1, 14))
		assert.Equal(t, before.CarryoverStartCents+2000, before.AvailableCents)

		at := mustFind(t, b.ID, day(2025, 1, 15))
		assert.Equal(t, at.CarryoverStartCents+3000, at.AvailableCents)

		after := mustFind(t, b.ID, day(2025, 1, 16))
		assert.Equal(t, after.CarryoverStartCents+3000, after.AvailableCents)
	})

	t.Run("should reset carryover on the first of the month under monthly_reset", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 30)
		b := testBudget(start, budget.CarryoverMonthlyReset)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 2, 2))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, start)

		// then
		require.NoError(t, err)
		jan31 := mustFind(t, b.ID, day(2025, 1, 31))
		assert.Equal(t, 4000, jan31.CarryoverEndCents)

		feb1 := mustFind(t, b.ID, day(2025, 2, 1))
		assert.Equal(t, 0, feb1.CarryoverStartCents)
		assert.Equal(t, 2000, feb1.AvailableCents)

		feb2 := mustFind(t, b.ID, day(2025, 2, 2))
		assert.Equal(t, 2000, feb2.CarryoverStartCents)
	})

	t.Run("should keep continuous carryover across month boundaries", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 30)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 2, 1))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, start)

		// then
		require.NoError(t, err)
		feb1 := mustFind(t, b.ID, day(2025, 2, 1))
		assert.Equal(t, 4000, feb1.CarryoverStartCents)
	})

	t.Run("should never write ledgers before the start date", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 1, 11))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, day(2024, 12, 1))

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, ledgerRepoStub.Count(b.ID))
		_, found, _ := ledgerRepoStub.Find(engineCtx, b.ID, day(2025, 1, 9))
		assert.False(t, found)
	})

	t.Run("should write nothing when the anchor is in the future", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 1, 12))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, day(2025, 1, 13))

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, ledgerRepoStub.Count(b.ID))
	})

	t.Run("should treat a missing previous ledger as zero carryover", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 1, 13))
		require.NoError(t, engine.RecomputeFromDate(engineCtx, b, start))
		ledgerRepoStub.Delete(b.ID, day(2025, 1, 11))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, day(2025, 1, 12))

		// then
		require.NoError(t, err)
		day3 := mustFind(t, b.ID, day(2025, 1, 12))
		assert.Equal(t, 0, day3.CarryoverStartCents)
		assert.Equal(t, 2000, day3.AvailableCents)
	})

	t.Run("should be idempotent for identical inputs", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		addExpense(t, b.ID, day(2025, 1, 11), 700)
		clock.SetNow(day(2025, 1, 13))
		require.NoError(t, engine.RecomputeFromDate(engineCtx, b, start))
		first := mustFind(t, b.ID, day(2025, 1, 13))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, start)

		// then
		require.NoError(t, err)
		second := mustFind(t, b.ID, day(2025, 1, 13))
		assert.Equal(t, first, second)
		assert.Equal(t, 4, ledgerRepoStub.Count(b.ID))
	})

	t.Run("should pick up an expense added to a past day", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		seedRate(t, b.ID, start, 2000)
		clock.SetNow(day(2025, 1, 12))
		require.NoError(t, engine.RecomputeFromDate(engineCtx, b, start))
		addExpense(t, b.ID, day(2025, 1, 10), 1500)

		// when
		err := engine.RecomputeFromDate(engineCtx, b, day(2025, 1, 10))

		// then
		require.NoError(t, err)
		day1 := mustFind(t, b.ID, start)
		assert.Equal(t, 1500, day1.SpentCents)
		assert.Equal(t, 500, day1.CarryoverEndCents)

		day3 := mustFind(t, b.ID, day(2025, 1, 12))
		assert.Equal(t, 1000, day3.CarryoverStartCents)
		assert.Equal(t, 3000, day3.AvailableCents)
	})

	t.Run("should fall back to the live rate when history is empty", func(t *testing.T) {
		teardown := setupEngine(t)
		defer teardown()

		// given
		start := day(2025, 1, 10)
		b := testBudget(start, budget.CarryoverContinuous)
		clock.SetNow(day(2025, 1, 10))

		// when
		err := engine.RecomputeFromDate(engineCtx, b, start)

		// then
		require.NoError(t, err)
		day1 := mustFind(t, b.ID, start)
		assert.Equal(t, 2000, day1.AvailableCents)
	})
}
