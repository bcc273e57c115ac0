package user

import (
	"context"
	"time"
)

type StubUserRepo struct {
	nextId int
	data   map[int]User
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{nextId: 0, data: map[int]User{}}
}

func (s *StubUserRepo) Create(ctx context.Context, user User) (int, error) {
	s.nextId++
	user.Id = s.nextId
	user.CreatedAt = time.Now()
	s.data[user.Id] = user
	return user.Id, nil
}

func (s *StubUserRepo) FindBySupabaseUid(ctx context.Context, uid string) (User, error) {
	for _, u := range s.data {
		if u.SupabaseUid == uid {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepo) Cleanup() {
	s.data = map[int]User{}
}
