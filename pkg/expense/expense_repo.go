package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	Store(ctx context.Context, expense Expense) (Expense, error)
	FindByID(ctx context.Context, id int) (Expense, error)
	Update(ctx context.Context, expense Expense) (bool, error)
	Delete(ctx context.Context, budgetId int, id int) (bool, error)
	// ListRange returns expenses in [from, to] ordered by date descending,
	// newest first within a date.
	ListRange(ctx context.Context, budgetId int, from, to time.Time) ([]Expense, error)
	// SumOnDate sums amounts for the exact date; zero if none.
	SumOnDate(ctx context.Context, budgetId int, date time.Time) (int, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, expense Expense) (Expense, error) {
	query := `INSERT INTO expenses (budget_id, date, amount_cents, category, note, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
				RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		expense.BudgetID,
		expense.Date.Format(utils.DateLayout),
		expense.AmountCents,
		expense.Category,
		expense.Note,
	).Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		err := fmt.Errorf("could not insert expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	return expense, nil
}

func (r *RepoImpl) FindByID(ctx context.Context, id int) (Expense, error) {
	query := `SELECT id, budget_id, date, amount_cents, category, note, created_at, updated_at
				FROM expenses WHERE id = $1`

	var expense Expense
	var date time.Time
	var note sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.BudgetID,
		&date,
		&expense.AmountCents,
		&expense.Category,
		&note,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Expense{}, ErrExpenseNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	expense.Date = utils.DateOf(date)
	expense.Note = note.String
	return expense, nil
}

func (r *RepoImpl) Update(ctx context.Context, expense Expense) (bool, error) {
	query := `UPDATE expenses SET
					date = $1,
					amount_cents = $2,
					category = $3,
					note = $4,
					updated_at = now()
				WHERE id = $5 AND budget_id = $6`

	result, err := r.db.ExecContext(ctx, query,
		expense.Date.Format(utils.DateLayout),
		expense.AmountCents,
		expense.Category,
		expense.Note,
		expense.ID,
		expense.BudgetID,
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

func (r *RepoImpl) Delete(ctx context.Context, budgetId int, id int) (bool, error) {
	query := `DELETE FROM expenses WHERE id = $1 AND budget_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, budgetId)
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

func (r *RepoImpl) ListRange(ctx context.Context, budgetId int, from, to time.Time) ([]Expense, error) {
	query := `SELECT id, budget_id, date, amount_cents, category, note, created_at, updated_at
				FROM expenses
				WHERE budget_id = $1 AND date >= $2 AND date <= $3
				ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, budgetId, from.Format(utils.DateLayout), to.Format(utils.DateLayout))
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var expense Expense
		var date time.Time
		var note sql.NullString
		if err := rows.Scan(
			&expense.ID,
			&expense.BudgetID,
			&date,
			&expense.AmountCents,
			&expense.Category,
			&note,
			&expense.CreatedAt,
			&expense.UpdatedAt,
		); err != nil {
			err := fmt.Errorf("could not scan expense: %w", err)
			log.Error(err)
			return nil, err
		}
		expense.Date = utils.DateOf(date)
		expense.Note = note.String
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}

func (r *RepoImpl) SumOnDate(ctx context.Context, budgetId int, date time.Time) (int, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE budget_id = $1 AND date = $2`

	var sum int
	if err := r.db.QueryRowContext(ctx, query, budgetId, date.Format(utils.DateLayout)).Scan(&sum); err != nil {
		err := fmt.Errorf("could not sum expenses: %w", err)
		log.Error(err)
		return 0, err
	}
	return sum, nil
}
