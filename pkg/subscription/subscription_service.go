package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	"github.com/breakeven/breakeven/pkg/user"
)

const upcomingWindowDays = 7

// Summary aggregates a user's active subscriptions, optionally compared
// against the budget's monthly subscription allowance.
type Summary struct {
	TotalMonthlyCents  int
	ActiveCount        int
	UpcomingCount      int
	BudgetEnabled      bool
	MonthlyBudgetCents *int
	RemainingCents     *int
	OverBudget         bool
}

type Service interface {
	List(ctx context.Context) ([]Subscription, error)
	Get(ctx context.Context, id int) (Subscription, error)
	// Create stores a subscription. When startDate is set the first charge
	// is one billing period after it; otherwise an explicit NextChargeDate
	// is honored, falling back to one period from today.
	Create(ctx context.Context, sub Subscription, startDate time.Time) (Subscription, error)
	Update(ctx context.Context, sub Subscription) (Subscription, error)
	Delete(ctx context.Context, id int) error
	Summary(ctx context.Context, b budget.Budget) (Summary, error)
}

type ServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewSubscriptionService(repo Repo, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Subscription, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListByUser(ctx, userId)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Subscription, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.FindByID(ctx, userId, id)
}

func (s *ServiceImpl) Create(ctx context.Context, sub Subscription, startDate time.Time) (Subscription, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to get current user: %w", err)
	}
	sub.UserID = userId
	if sub.Status == "" {
		sub.Status = StatusActive
	}

	today := utils.DateOf(s.clock.Now())
	if !startDate.IsZero() {
		sub.NextChargeDate = sub.NextAfter(utils.DateOf(startDate))
	} else if sub.NextChargeDate.IsZero() {
		sub.NextChargeDate = sub.NextAfter(today)
	}

	if err := sub.Validate(); err != nil {
		return Subscription{}, err
	}
	sub.AdvancePastDue(today)

	return s.repo.Store(ctx, sub)
}

func (s *ServiceImpl) Update(ctx context.Context, sub Subscription) (Subscription, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to get current user: %w", err)
	}

	existing, err := s.repo.FindByID(ctx, userId, sub.ID)
	if err != nil {
		return Subscription{}, err
	}
	sub.UserID = userId
	sub.CreatedAt = existing.CreatedAt
	if sub.NextChargeDate.IsZero() {
		sub.NextChargeDate = existing.NextChargeDate
	}
	if sub.LastChargedDate == nil {
		sub.LastChargedDate = existing.LastChargedDate
	}

	if err := sub.Validate(); err != nil {
		return Subscription{}, err
	}
	sub.AdvancePastDue(utils.DateOf(s.clock.Now()))

	updated, err := s.repo.Update(ctx, sub)
	if err != nil {
		return Subscription{}, err
	}
	if !updated {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *ServiceImpl) Summary(ctx context.Context, b budget.Budget) (Summary, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get current user: %w", err)
	}

	active, err := s.repo.ListActive(ctx, userId)
	if err != nil {
		return Summary{}, err
	}

	today := utils.DateOf(s.clock.Now())
	summary := Summary{ActiveCount: len(active)}
	for _, sub := range active {
		summary.TotalMonthlyCents += sub.MonthlyCostCents()
		if sub.ChargesSoon(today, upcomingWindowDays) {
			summary.UpcomingCount++
		}
	}

	if b.SubscriptionBudgetEnabled && b.MonthlySubscriptionBudgetCents != nil {
		remaining := *b.MonthlySubscriptionBudgetCents - summary.TotalMonthlyCents
		summary.BudgetEnabled = true
		summary.MonthlyBudgetCents = b.MonthlySubscriptionBudgetCents
		summary.RemainingCents = &remaining
		summary.OverBudget = remaining < 0
	}
	return summary, nil
}
