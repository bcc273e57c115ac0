package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	log "github.com/sirupsen/logrus"
)

// RateProvider answers "what daily rate was in force on date D".
type RateProvider interface {
	RateForDate(ctx context.Context, b budget.Budget, date time.Time) (int, error)
}

// ExpenseSummer sums expense amounts for a budget on an exact date.
type ExpenseSummer interface {
	SumOnDate(ctx context.Context, budgetId int, date time.Time) (int, error)
}

// Engine rebuilds the materialized day ledgers. Given a budget and a
// "recompute from" date it walks forward day by day to today in the budget's
// timezone, looking up the effective rate and the day's spending, chaining
// the carryover, and upserting one row per day.
//
// Walks for the same budget are serialized through a per-budget mutex: two
// overlapping walks could otherwise read each other's half-written carryover
// chains. Walks for different budgets run concurrently. The exclusion is
// in-process, which matches a single-instance deployment.
type Engine struct {
	repo     Repo
	rates    RateProvider
	expenses ExpenseSummer
	clock    utils.Clock

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewEngine(repo Repo, rates RateProvider, expenses ExpenseSummer, clock utils.Clock) *Engine {
	return &Engine{
		repo:     repo,
		rates:    rates,
		expenses: expenses,
		clock:    clock,
		locks:    map[int]*sync.Mutex{},
	}
}

// RecomputeFromDate rebuilds ledgers for every date in [fromDate, today],
// in strictly ascending order. The walk never starts before the budget's
// start date and writes nothing when the clamped date is in the future.
//
// The whole walk is idempotent: each day is an upsert and depends only on
// already-settled values, so a partially applied walk is safe to retry.
func (e *Engine) RecomputeFromDate(ctx context.Context, b budget.Budget, fromDate time.Time) error {
	lock := e.lockFor(b.ID)
	lock.Lock()
	defer lock.Unlock()

	today := b.TodayIn(e.clock.Now())
	startDate := b.StartDate()
	from := utils.MaxDate(utils.DateOf(fromDate), startDate)
	if from.After(today) {
		return nil
	}

	log.Debugf("recomputing ledgers for budget %d from %s to %s", b.ID, from.Format(utils.DateLayout), today.Format(utils.DateLayout))

	// Rate lookups repeat heavily across adjacent days; the cache lives
	// only for this run so a rate edit elsewhere can never leak stale
	// values into a later walk.
	rates := map[time.Time]int{}

	carryoverEnd := 0
	haveChain := false
	for date := from; !date.After(today); date = date.AddDate(0, 0, 1) {
		dailyRate, ok := rates[date]
		if !ok {
			var err error
			dailyRate, err = e.rates.RateForDate(ctx, b, date)
			if err != nil {
				return fmt.Errorf("failed to resolve rate for %s: %w", date.Format(utils.DateLayout), err)
			}
			rates[date] = dailyRate
		}

		spent, err := e.expenses.SumOnDate(ctx, b.ID, date)
		if err != nil {
			return fmt.Errorf("failed to sum expenses for %s: %w", date.Format(utils.DateLayout), err)
		}

		carryoverStart, err := e.carryoverStart(ctx, b, date, startDate, carryoverEnd, haveChain)
		if err != nil {
			return err
		}

		row := DayLedger{
			BudgetID:            b.ID,
			Date:                date,
			SpentCents:          spent,
			CarryoverStartCents: carryoverStart,
			CarryoverEndCents:   carryoverStart + (dailyRate - spent),
			AvailableCents:      dailyRate + carryoverStart,
		}
		if err := e.repo.Upsert(ctx, row); err != nil {
			return err
		}

		carryoverEnd = row.CarryoverEndCents
		haveChain = true
	}
	return nil
}

// carryoverStart resolves the carryover flowing into a date. The first day of
// the budget always starts clean; under monthly_reset so does the first day
// of every month. Past the first iteration the chain is carried in memory,
// which by construction equals the freshly upserted previous row. Only the
// walk's first day reads the prior ledger from the store; a missing prior
// row is treated as zero carryover rather than an error.
func (e *Engine) carryoverStart(ctx context.Context, b budget.Budget, date, startDate time.Time, chainedEnd int, haveChain bool) (int, error) {
	if date.Equal(startDate) {
		return 0, nil
	}
	if b.CarryoverMode == budget.CarryoverMonthlyReset && date.Day() == 1 {
		return 0, nil
	}
	if haveChain {
		return chainedEnd, nil
	}
	previous, found, err := e.repo.Find(ctx, b.ID, date.AddDate(0, 0, -1))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return previous.CarryoverEndCents, nil
}

func (e *Engine) lockFor(budgetId int) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[budgetId]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[budgetId] = lock
	}
	return lock
}
