package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/breakeven/breakeven/pkg/user"
	log "github.com/sirupsen/logrus"
)

// RateWriter applies the rate-mutation protocol: clamp the effective date to
// the budget's start date, collapse or extend the rate history, and return
// the clamped date as the recomputation anchor. A zero effectiveFrom means
// "apply to all history".
type RateWriter interface {
	SetRate(ctx context.Context, b Budget, newRateCents int, effectiveFrom time.Time) (time.Time, error)
}

// Recomputer rebuilds day ledgers from the given date forward to today.
type Recomputer interface {
	RecomputeFromDate(ctx context.Context, b Budget, fromDate time.Time) error
}

type BudgetService interface {
	// GetOrCreate returns the current user's budget, creating it with
	// defaults (and its initial rate record) on first access.
	GetOrCreate(ctx context.Context) (Budget, error)
	Update(ctx context.Context, patch Update) (Budget, error)
	ChangeRate(ctx context.Context, b Budget, newRateCents int, effectiveFrom time.Time) (Budget, error)
	ChangeCarryoverMode(ctx context.Context, b Budget, mode CarryoverMode) (Budget, error)
}

// Update is a partial settings change; nil fields are left untouched.
// EffectiveFrom only applies together with BaseDailyCents.
type Update struct {
	BaseDailyCents                 *int
	EffectiveFrom                  *time.Time
	Currency                       *string
	Timezone                       *string
	CarryoverMode                  *CarryoverMode
	SubscriptionBudgetEnabled      *bool
	MonthlySubscriptionBudgetCents *int
}

type BudgetServiceImpl struct {
	repo       BudgetRepo
	rates      RateWriter
	recomputer Recomputer
}

func NewBudgetService(repo BudgetRepo, rates RateWriter, recomputer Recomputer) *BudgetServiceImpl {
	return &BudgetServiceImpl{repo: repo, rates: rates, recomputer: recomputer}
}

func (s *BudgetServiceImpl) GetOrCreate(ctx context.Context) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}

	b, err := s.repo.FindByUserId(ctx, userId)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrBudgetNotFound) {
		return Budget{}, err
	}

	log.Infof("creating default budget for user %d", userId)
	b, err = s.repo.Store(ctx, Budget{
		UserID:         userId,
		BaseDailyCents: DefaultBaseDailyCents,
		Currency:       DefaultCurrency,
		Timezone:       DefaultTimezone,
		CarryoverMode:  CarryoverContinuous,
	})
	if err != nil {
		return Budget{}, err
	}

	// Seed the initial rate record at the start date. No recompute is
	// needed: no ledgers can exist yet.
	if _, err := s.rates.SetRate(ctx, b, b.BaseDailyCents, time.Time{}); err != nil {
		return Budget{}, fmt.Errorf("failed to seed initial rate: %w", err)
	}
	return b, nil
}

func (s *BudgetServiceImpl) Update(ctx context.Context, patch Update) (Budget, error) {
	b, err := s.GetOrCreate(ctx)
	if err != nil {
		return Budget{}, err
	}

	if patch.Currency != nil {
		b.Currency = *patch.Currency
	}
	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil {
			return Budget{}, ErrInvalidTimezone
		}
		b.Timezone = *patch.Timezone
	}
	if patch.SubscriptionBudgetEnabled != nil {
		b.SubscriptionBudgetEnabled = *patch.SubscriptionBudgetEnabled
	}
	if patch.MonthlySubscriptionBudgetCents != nil {
		v := *patch.MonthlySubscriptionBudgetCents
		b.MonthlySubscriptionBudgetCents = &v
	}
	if _, err := s.repo.Update(ctx, b); err != nil {
		return Budget{}, err
	}

	if patch.CarryoverMode != nil && *patch.CarryoverMode != b.CarryoverMode {
		b, err = s.ChangeCarryoverMode(ctx, b, *patch.CarryoverMode)
		if err != nil {
			return Budget{}, err
		}
	}

	if patch.BaseDailyCents != nil && *patch.BaseDailyCents != b.BaseDailyCents {
		effectiveFrom := time.Time{}
		if patch.EffectiveFrom != nil {
			effectiveFrom = *patch.EffectiveFrom
		}
		b, err = s.ChangeRate(ctx, b, *patch.BaseDailyCents, effectiveFrom)
		if err != nil {
			return Budget{}, err
		}
	}

	return b, nil
}

// ChangeRate updates the nominal daily rate, records it in the rate history,
// and recomputes ledgers from the clamped effective date. Mutation and
// recomputation are two explicit sequential steps.
func (s *BudgetServiceImpl) ChangeRate(ctx context.Context, b Budget, newRateCents int, effectiveFrom time.Time) (Budget, error) {
	if newRateCents <= 0 {
		return Budget{}, ErrInvalidRate
	}

	b.BaseDailyCents = newRateCents
	if _, err := s.repo.Update(ctx, b); err != nil {
		return Budget{}, err
	}

	anchor, err := s.rates.SetRate(ctx, b, newRateCents, effectiveFrom)
	if err != nil {
		return Budget{}, err
	}

	if err := s.recomputer.RecomputeFromDate(ctx, b, anchor); err != nil {
		return Budget{}, fmt.Errorf("failed to recompute ledgers after rate change: %w", err)
	}
	return b, nil
}

// ChangeCarryoverMode switches the carryover policy and recomputes the whole
// history, since every day's carryover-in depends on the policy.
func (s *BudgetServiceImpl) ChangeCarryoverMode(ctx context.Context, b Budget, mode CarryoverMode) (Budget, error) {
	if !mode.Valid() {
		return Budget{}, ErrInvalidCarryoverMode
	}

	b.CarryoverMode = mode
	if _, err := s.repo.Update(ctx, b); err != nil {
		return Budget{}, err
	}

	if err := s.recomputer.RecomputeFromDate(ctx, b, b.StartDate()); err != nil {
		return Budget{}, fmt.Errorf("failed to recompute ledgers after carryover mode change: %w", err)
	}
	return b, nil
}
