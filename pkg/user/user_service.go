package user

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	// GetOrCreate returns the user for a verified Supabase identity,
	// provisioning the account row on first sight.
	GetOrCreate(ctx context.Context, supabaseUid string, email string) (User, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u, nil
}

func (s *ServiceImpl) GetOrCreate(ctx context.Context, supabaseUid string, email string) (User, error) {
	u, err := s.repo.FindBySupabaseUid(ctx, supabaseUid)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	log.Infof("provisioning new user for supabase uid %s", supabaseUid)
	u = User{SupabaseUid: supabaseUid, Email: email}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, err
	}
	u.Id = id
	return u, nil
}
