package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetRepo interface {
	// Store stores a new Budget and returns it with its id and creation time set.
	Store(ctx context.Context, budget Budget) (Budget, error)
	FindByUserId(ctx context.Context, userId int) (Budget, error)
	Update(ctx context.Context, budget Budget) (bool, error)
}

type BudgetRepoImpl struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db}
}

func (r *BudgetRepoImpl) Store(ctx context.Context, budget Budget) (Budget, error) {
	query := `INSERT INTO budgets (
					user_id,
					base_daily_cents,
					currency,
					timezone,
					carryover_mode,
					subscription_budget_enabled,
					monthly_subscription_budget_cents,
					created_at,
					updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
				RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		budget.UserID,
		budget.BaseDailyCents,
		budget.Currency,
		budget.Timezone,
		string(budget.CarryoverMode),
		budget.SubscriptionBudgetEnabled,
		budget.MonthlySubscriptionBudgetCents,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		err := fmt.Errorf("could not insert budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *BudgetRepoImpl) FindByUserId(ctx context.Context, userId int) (Budget, error) {
	query := `SELECT id, user_id, base_daily_cents, currency, timezone, carryover_mode,
					subscription_budget_enabled, monthly_subscription_budget_cents, created_at, updated_at
				FROM budgets WHERE user_id = $1`

	var budget Budget
	var mode string
	err := r.db.QueryRowContext(ctx, query, userId).Scan(
		&budget.ID,
		&budget.UserID,
		&budget.BaseDailyCents,
		&budget.Currency,
		&budget.Timezone,
		&mode,
		&budget.SubscriptionBudgetEnabled,
		&budget.MonthlySubscriptionBudgetCents,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	budget.CarryoverMode = CarryoverMode(mode)
	return budget, nil
}

func (r *BudgetRepoImpl) Update(ctx context.Context, budget Budget) (bool, error) {
	query := `UPDATE budgets SET
					base_daily_cents = $1,
					currency = $2,
					timezone = $3,
					carryover_mode = $4,
					subscription_budget_enabled = $5,
					monthly_subscription_budget_cents = $6,
					updated_at = now()
				WHERE id = $7 AND user_id = $8`

	result, err := r.db.ExecContext(ctx, query,
		budget.BaseDailyCents,
		budget.Currency,
		budget.Timezone,
		string(budget.CarryoverMode),
		budget.SubscriptionBudgetEnabled,
		budget.MonthlySubscriptionBudgetCents,
		budget.ID,
		budget.UserID,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}
