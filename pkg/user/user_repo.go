package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	Create(ctx context.Context, user User) (int, error)
	FindBySupabaseUid(ctx context.Context, uid string) (User, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Create(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (supabase_uid, email, created_at, updated_at)
				VALUES ($1, $2, now(), now())
				RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query, user.SupabaseUid, user.Email).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not insert user: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepoImpl) FindBySupabaseUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, supabase_uid, email, created_at FROM users WHERE supabase_uid = $1`

	var user User
	err := r.db.QueryRowContext(ctx, query, uid).Scan(&user.Id, &user.SupabaseUid, &user.Email, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}
