package rate

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
	// EffectiveOn returns the base daily cents of the record with the
	// greatest effective_from <= date, or found=false if none exists.
	EffectiveOn(ctx context.Context, budgetId int, date time.Time) (cents int, found bool, err error)
	FindByDate(ctx context.Context, budgetId int, date time.Time) (Record, bool, error)
	Store(ctx context.Context, record Record) error
	UpdateAmount(ctx context.Context, id int, cents int) error
	// ReplaceAll atomically discards the budget's whole rate history and
	// inserts the given record as its only entry.
	ReplaceAll(ctx context.Context, budgetId int, record Record) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewRateRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) EffectiveOn(ctx context.Context, budgetId int, date time.Time) (int, bool, error) {
	query := `SELECT base_daily_cents FROM budget_rates
				WHERE budget_id = $1 AND effective_from <= $2
				ORDER BY effective_from DESC
				LIMIT 1`

	var cents int
	err := r.db.QueryRowContext(ctx, query, budgetId, date.Format(utils.DateLayout)).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not query effective rate: %w", err)
		log.Error(err)
		return 0, false, err
	}
	return cents, true, nil
}

func (r *RepoImpl) FindByDate(ctx context.Context, budgetId int, date time.Time) (Record, bool, error) {
	query := `SELECT id, budget_id, effective_from, base_daily_cents FROM budget_rates
				WHERE budget_id = $1 AND effective_from = $2`

	var record Record
	var effectiveFrom time.Time
	err := r.db.QueryRowContext(ctx, query, budgetId, date.Format(utils.DateLayout)).Scan(
		&record.ID, &record.BudgetID, &effectiveFrom, &record.BaseDailyCents)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not query rate record: %w", err)
		log.Error(err)
		return Record{}, false, err
	}
	record.EffectiveFrom = utils.DateOf(effectiveFrom)
	return record, true, nil
}

func (r *RepoImpl) Store(ctx context.Context, record Record) error {
	query := `INSERT INTO budget_rates (budget_id, effective_from, base_daily_cents, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())`

	_, err := r.db.ExecContext(ctx, query, record.BudgetID, record.EffectiveFrom.Format(utils.DateLayout), record.BaseDailyCents)
	if err != nil {
		err := fmt.Errorf("could not insert rate record: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepoImpl) UpdateAmount(ctx context.Context, id int, cents int) error {
	query := `UPDATE budget_rates SET base_daily_cents = $1, updated_at = now() WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, cents, id)
	if err != nil {
		err := fmt.Errorf("could not update rate record: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepoImpl) ReplaceAll(ctx context.Context, budgetId int, record Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_rates WHERE budget_id = $1`, budgetId); err != nil {
		err := fmt.Errorf("could not delete rate records: %w", err)
		log.Error(err)
		return err
	}
	insert := `INSERT INTO budget_rates (budget_id, effective_from, base_daily_cents, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())`
	if _, err := tx.ExecContext(ctx, insert, record.BudgetID, record.EffectiveFrom.Format(utils.DateLayout), record.BaseDailyCents); err != nil {
		err := fmt.Errorf("could not insert rate record: %w", err)
		log.Error(err)
		return err
	}

	return tx.Commit()
}
