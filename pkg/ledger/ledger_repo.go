package ledger

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
	// Upsert writes the row for (budget, date), replacing any stale row
	// from a previous computation.
	Upsert(ctx context.Context, ledger DayLedger) error
	Find(ctx context.Context, budgetId int, date time.Time) (DayLedger, bool, error)
	// FindRange returns rows in [from, to] ordered by date descending.
	FindRange(ctx context.Context, budgetId int, from, to time.Time) ([]DayLedger, error)
	// LatestDate returns the most recent materialized date, or found=false
	// if the budget has no ledgers yet.
	LatestDate(ctx context.Context, budgetId int) (time.Time, bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Upsert(ctx context.Context, ledger DayLedger) error {
	query := `INSERT INTO day_ledgers (
					budget_id, date, spent_cents, carryover_start_cents, carryover_end_cents, available_cents, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
				ON CONFLICT (budget_id, date) DO UPDATE SET
					spent_cents = EXCLUDED.spent_cents,
					carryover_start_cents = EXCLUDED.carryover_start_cents,
					carryover_end_cents = EXCLUDED.carryover_end_cents,
					available_cents = EXCLUDED.available_cents,
					updated_at = now()`

	_, err := r.db.ExecContext(ctx, query,
		ledger.BudgetID,
		ledger.Date.Format(utils.DateLayout),
		ledger.SpentCents,
		ledger.CarryoverStartCents,
		ledger.CarryoverEndCents,
		ledger.AvailableCents,
	)
	if err != nil {
		err := fmt.Errorf("could not upsert day ledger: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepoImpl) Find(ctx context.Context, budgetId int, date time.Time) (DayLedger, bool, error) {
	query := `SELECT budget_id, date, spent_cents, carryover_start_cents, carryover_end_cents, available_cents
				FROM day_ledgers WHERE budget_id = $1 AND date = $2`

	ledger, err := scanLedger(r.db.QueryRowContext(ctx, query, budgetId, date.Format(utils.DateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return DayLedger{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not query day ledger: %w", err)
		log.Error(err)
		return DayLedger{}, false, err
	}
	return ledger, true, nil
}

func (r *RepoImpl) FindRange(ctx context.Context, budgetId int, from, to time.Time) ([]DayLedger, error) {
	query := `SELECT budget_id, date, spent_cents, carryover_start_cents, carryover_end_cents, available_cents
				FROM day_ledgers
				WHERE budget_id = $1 AND date >= $2 AND date <= $3
				ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, budgetId, from.Format(utils.DateLayout), to.Format(utils.DateLayout))
	if err != nil {
		err := fmt.Errorf("could not query day ledgers: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var ledgers []DayLedger
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			err := fmt.Errorf("could not scan day ledger: %w", err)
			log.Error(err)
			return nil, err
		}
		ledgers = append(ledgers, ledger)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return ledgers, nil
}

func (r *RepoImpl) LatestDate(ctx context.Context, budgetId int) (time.Time, bool, error) {
	query := `SELECT MAX(date) FROM day_ledgers WHERE budget_id = $1`

	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, budgetId).Scan(&latest); err != nil {
		err := fmt.Errorf("could not query latest ledger date: %w", err)
		log.Error(err)
		return time.Time{}, false, err
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return utils.DateOf(latest.Time), true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedger(row rowScanner) (DayLedger, error) {
	var ledger DayLedger
	var date time.Time
	err := row.Scan(
		&ledger.BudgetID,
		&date,
		&ledger.SpentCents,
		&ledger.CarryoverStartCents,
		&ledger.CarryoverEndCents,
		&ledger.AvailableCents,
	)
	if err != nil {
		return DayLedger{}, err
	}
	ledger.Date = utils.DateOf(date)
	return ledger, nil
}
