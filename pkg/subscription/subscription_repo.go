package subscription

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
	Store(ctx context.Context, sub Subscription) (Subscription, error)
	FindByID(ctx context.Context, userId int, id int) (Subscription, error)
	Update(ctx context.Context, sub Subscription) (bool, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
	// ListByUser returns all subscriptions ordered by next charge date ascending.
	ListByUser(ctx context.Context, userId int) ([]Subscription, error)
	ListActive(ctx context.Context, userId int) ([]Subscription, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewSubscriptionRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const subscriptionColumns = `id, user_id, name, amount_cents, billing_cycle, category, status, next_charge_date, last_charged_date, created_at, updated_at`

func (r *RepoImpl) Store(ctx context.Context, sub Subscription) (Subscription, error) {
	query := `INSERT INTO subscriptions (
					user_id, name, amount_cents, billing_cycle, category, status, next_charge_date, last_charged_date, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
				RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		sub.UserID,
		sub.Name,
		sub.AmountCents,
		string(sub.BillingCycle),
		sub.Category,
		string(sub.Status),
		sub.NextChargeDate.Format(utils.DateLayout),
		nullableDate(sub.LastChargedDate),
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		err := fmt.Errorf("could not insert subscription: %w", err)
		log.Error(err)
		return Subscription{}, err
	}
	return sub, nil
}

func (r *RepoImpl) FindByID(ctx context.Context, userId int, id int) (Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE id = $1 AND user_id = $2`, subscriptionColumns)

	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, id, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return Subscription{}, ErrNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query subscription: %w", err)
		log.Error(err)
		return Subscription{}, err
	}
	return sub, nil
}

func (r *RepoImpl) Update(ctx context.Context, sub Subscription) (bool, error) {
	query := `UPDATE subscriptions SET
					name = $1,
					amount_cents = $2,
					billing_cycle = $3,
					category = $4,
					status = $5,
					next_charge_date = $6,
					last_charged_date = $7,
					updated_at = now()
				WHERE id = $8 AND user_id = $9`

	result, err := r.db.ExecContext(ctx, query,
		sub.Name,
		sub.AmountCents,
		string(sub.BillingCycle),
		sub.Category,
		string(sub.Status),
		sub.NextChargeDate.Format(utils.DateLayout),
		nullableDate(sub.LastChargedDate),
		sub.ID,
		sub.UserID,
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

func (r *RepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	query := `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userId)
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

func (r *RepoImpl) ListByUser(ctx context.Context, userId int) ([]Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE user_id = $1 ORDER BY next_charge_date ASC`, subscriptionColumns)
	return r.list(ctx, query, userId)
}

func (r *RepoImpl) ListActive(ctx context.Context, userId int) ([]Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE user_id = $1 AND status = 'active' ORDER BY next_charge_date ASC`, subscriptionColumns)
	return r.list(ctx, query, userId)
}

func (r *RepoImpl) list(ctx context.Context, query string, userId int) ([]Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query subscriptions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			err := fmt.Errorf("could not scan subscription: %w", err)
			log.Error(err)
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return subs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (Subscription, error) {
	var sub Subscription
	var cycle, status string
	var nextCharge time.Time
	var lastCharged sql.NullTime
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Name,
		&sub.AmountCents,
		&cycle,
		&sub.Category,
		&status,
		&nextCharge,
		&lastCharged,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return Subscription{}, err
	}
	sub.BillingCycle = BillingCycle(cycle)
	sub.Status = Status(status)
	sub.NextChargeDate = utils.DateOf(nextCharge)
	if lastCharged.Valid {
		d := utils.DateOf(lastCharged.Time)
		sub.LastChargedDate = &d
	}
	return sub, nil
}

func nullableDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(utils.DateLayout)
}
