package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
)

// Recomputer is the mutating entry point of the engine, consumed here and by
// the mutation triggers in the budget and expense services.
type Recomputer interface {
	RecomputeFromDate(ctx context.Context, b budget.Budget, fromDate time.Time) error
}

type RangeResult struct {
	From    time.Time
	To      time.Time
	Ledgers []DayLedger
}

type Service interface {
	// Today returns today's ledger, first healing any gap between the
	// latest materialized date and today.
	Today(ctx context.Context, b budget.Budget) (DayLedger, error)
	// Range returns ledgers for [from, to] descending, recomputing the
	// range first so rows reflect the latest inputs. Zero bounds default
	// to the last 30 days (clamped to the start date) and today.
	Range(ctx context.Context, b budget.Budget, from, to time.Time) (RangeResult, error)
	Get(ctx context.Context, b budget.Budget, date time.Time) (DayLedger, bool, error)
}

type ServiceImpl struct {
	repo       Repo
	recomputer Recomputer
	clock      utils.Clock
}

func NewLedgerService(repo Repo, recomputer Recomputer, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, recomputer: recomputer, clock: clock}
}

func (s *ServiceImpl) Today(ctx context.Context, b budget.Budget) (DayLedger, error) {
	today := b.TodayIn(s.clock.Now())

	latest, found, err := s.repo.LatestDate(ctx, b.ID)
	if err != nil {
		return DayLedger{}, err
	}

	// Anchor at the earliest date that could be stale: the day after the
	// last materialized ledger, the start date when nothing exists yet,
	// or just today when the frontier is current.
	var from time.Time
	switch {
	case !found:
		from = b.StartDate()
	case latest.Before(today):
		from = utils.MaxDate(latest.AddDate(0, 0, 1), b.StartDate())
	default:
		from = today
	}

	if err := s.recomputer.RecomputeFromDate(ctx, b, from); err != nil {
		return DayLedger{}, err
	}

	ledger, found, err := s.repo.Find(ctx, b.ID, today)
	if err != nil {
		return DayLedger{}, err
	}
	if !found {
		return DayLedger{}, fmt.Errorf("ledger for %s missing after recompute", today.Format(utils.DateLayout))
	}
	return ledger, nil
}

func (s *ServiceImpl) Range(ctx context.Context, b budget.Budget, from, to time.Time) (RangeResult, error) {
	today := b.TodayIn(s.clock.Now())
	startDate := b.StartDate()

	if from.IsZero() {
		from = utils.MaxDate(startDate, today.AddDate(0, 0, -30))
	}
	if to.IsZero() {
		to = today
	}
	from = utils.MaxDate(utils.DateOf(from), startDate)
	to = utils.DateOf(to)

	if err := s.recomputer.RecomputeFromDate(ctx, b, from); err != nil {
		return RangeResult{}, err
	}

	ledgers, err := s.repo.FindRange(ctx, b.ID, from, to)
	if err != nil {
		return RangeResult{}, err
	}
	return RangeResult{From: from, To: to, Ledgers: ledgers}, nil
}

func (s *ServiceImpl) Get(ctx context.Context, b budget.Budget, date time.Time) (DayLedger, bool, error) {
	return s.repo.Find(ctx, b.ID, utils.DateOf(date))
}
