package rate

import (
	"context"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	log "github.com/sirupsen/logrus"
)

// Schedule answers "what daily rate was in force on date D" from a budget's
// rate history and applies rate mutations. Lookups are pure reads; callers
// running a recomputation walk keep their own call-scoped cache.
type Schedule struct {
	repo Repo
}

func NewSchedule(repo Repo) *Schedule {
	return &Schedule{repo: repo}
}

// RateForDate returns the base daily cents of the record with the greatest
// effective_from <= date. Falls back to the budget's live rate when the
// history has no matching record.
func (s *Schedule) RateForDate(ctx context.Context, b budget.Budget, date time.Time) (int, error) {
	cents, found, err := s.repo.EffectiveOn(ctx, b.ID, utils.DateOf(date))
	if err != nil {
		return 0, err
	}
	if !found {
		// Should not happen once the initial record is seeded.
		log.Warnf("no rate record found for budget %d on %s, falling back to live rate", b.ID, date.Format(utils.DateLayout))
		return b.BaseDailyCents, nil
	}
	return cents, nil
}

// SetRate records a rate change and returns the clamped effective date, which
// is the anchor callers must recompute ledgers from.
//
// A zero effectiveFrom defaults to the start date. An effective date at the
// start date means the rate applies to all history: the existing records are
// collapsed into a single one. Otherwise the record at that exact date is
// overwritten if present, or inserted.
func (s *Schedule) SetRate(ctx context.Context, b budget.Budget, newRateCents int, effectiveFrom time.Time) (time.Time, error) {
	if newRateCents <= 0 {
		return time.Time{}, budget.ErrInvalidRate
	}

	startDate := b.StartDate()
	if effectiveFrom.IsZero() {
		effectiveFrom = startDate
	}
	effectiveFrom = utils.MaxDate(utils.DateOf(effectiveFrom), startDate)

	if effectiveFrom.Equal(startDate) {
		err := s.repo.ReplaceAll(ctx, b.ID, Record{
			BudgetID:       b.ID,
			EffectiveFrom:  startDate,
			BaseDailyCents: newRateCents,
		})
		if err != nil {
			return time.Time{}, err
		}
		return effectiveFrom, nil
	}

	existing, found, err := s.repo.FindByDate(ctx, b.ID, effectiveFrom)
	if err != nil {
		return time.Time{}, err
	}
	if found {
		if err := s.repo.UpdateAmount(ctx, existing.ID, newRateCents); err != nil {
			return time.Time{}, err
		}
	} else {
		err := s.repo.Store(ctx, Record{
			BudgetID:       b.ID,
			EffectiveFrom:  effectiveFrom,
			BaseDailyCents: newRateCents,
		})
		if err != nil {
			return time.Time{}, err
		}
	}
	return effectiveFrom, nil
}
