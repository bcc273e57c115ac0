package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
)

// Recomputer rebuilds day ledgers from the given date forward. Every expense
// write must trigger it with the earliest date whose spending may have changed.
type Recomputer interface {
	RecomputeFromDate(ctx context.Context, b budget.Budget, fromDate time.Time) error
}

type ListResult struct {
	From     time.Time
	To       time.Time
	Expenses []Expense
}

type Service interface {
	Create(ctx context.Context, b budget.Budget, e Expense) (Expense, error)
	Update(ctx context.Context, b budget.Budget, e Expense) (Expense, error)
	Delete(ctx context.Context, b budget.Budget, id int) error
	// List returns expenses in [from, to] descending. Zero bounds default
	// to the last 30 days and today.
	List(ctx context.Context, b budget.Budget, from, to time.Time) (ListResult, error)
}

type ServiceImpl struct {
	repo       Repo
	recomputer Recomputer
	clock      utils.Clock
}

func NewExpenseService(repo Repo, recomputer Recomputer, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, recomputer: recomputer, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, b budget.Budget, e Expense) (Expense, error) {
	e.BudgetID = b.ID
	e.Date = utils.DateOf(e.Date)
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}

	created, err := s.repo.Store(ctx, e)
	if err != nil {
		return Expense{}, err
	}

	if err := s.recomputer.RecomputeFromDate(ctx, b, created.Date); err != nil {
		return Expense{}, fmt.Errorf("failed to recompute ledgers after expense create: %w", err)
	}
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, b budget.Budget, e Expense) (Expense, error) {
	existing, err := s.repo.FindByID(ctx, e.ID)
	if err != nil {
		return Expense{}, err
	}
	if existing.BudgetID != b.ID {
		return Expense{}, ErrExpenseNotFound
	}

	e.BudgetID = b.ID
	e.Date = utils.DateOf(e.Date)
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}

	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return Expense{}, err
	}
	if !updated {
		return Expense{}, ErrExpenseNotFound
	}

	// A date change invalidates both the old and the new day; anchor at
	// the earlier of the two.
	anchor := utils.MinDate(existing.Date, e.Date)
	if err := s.recomputer.RecomputeFromDate(ctx, b, anchor); err != nil {
		return Expense{}, fmt.Errorf("failed to recompute ledgers after expense update: %w", err)
	}

	e.CreatedAt = existing.CreatedAt
	return e, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, b budget.Budget, id int) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.BudgetID != b.ID {
		return ErrExpenseNotFound
	}

	deleted, err := s.repo.Delete(ctx, b.ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseNotFound
	}

	if err := s.recomputer.RecomputeFromDate(ctx, b, existing.Date); err != nil {
		return fmt.Errorf("failed to recompute ledgers after expense delete: %w", err)
	}
	return nil
}

func (s *ServiceImpl) List(ctx context.Context, b budget.Budget, from, to time.Time) (ListResult, error) {
	today := b.TodayIn(s.clock.Now())
	if from.IsZero() {
		from = today.AddDate(0, 0, -30)
	}
	if to.IsZero() {
		to = today
	}
	from = utils.DateOf(from)
	to = utils.DateOf(to)

	expenses, err := s.repo.ListRange(ctx, b.ID, from, to)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{From: from, To: to, Expenses: expenses}, nil
}
