package subscription

import (
	"context"
	"sort"
	"time"
)

type StubSubscriptionRepo struct {
	nextId int
	data   map[int]Subscription
}

func NewStubSubscriptionRepo() *StubSubscriptionRepo {
	return &StubSubscriptionRepo{nextId: 0, data: map[int]Subscription{}}
}

func (s *StubSubscriptionRepo) Store(ctx context.Context, sub Subscription) (Subscription, error) {
	s.nextId++
	sub.ID = s.nextId
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	sub.UpdatedAt = sub.CreatedAt
	s.data[sub.ID] = sub
	return sub, nil
}

func (s *StubSubscriptionRepo) FindByID(ctx context.Context, userId int, id int) (Subscription, error) {
	sub, ok := s.data[id]
	if !ok || sub.UserID != userId {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (s *StubSubscriptionRepo) Update(ctx context.Context, sub Subscription) (bool, error) {
	existing, ok := s.data[sub.ID]
	if !ok || existing.UserID != sub.UserID {
		return false, nil
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = time.Now()
	s.data[sub.ID] = sub
	return true, nil
}

func (s *StubSubscriptionRepo) Delete(ctx context.Context, userId int, id int) (bool, error) {
	existing, ok := s.data[id]
	if !ok || existing.UserID != userId {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubSubscriptionRepo) ListByUser(ctx context.Context, userId int) ([]Subscription, error) {
	var subs []Subscription
	for _, sub := range s.data {
		if sub.UserID == userId {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].NextChargeDate.Before(subs[j].NextChargeDate)
	})
	return subs, nil
}

func (s *StubSubscriptionRepo) ListActive(ctx context.Context, userId int) ([]Subscription, error) {
	all, _ := s.ListByUser(ctx, userId)
	var active []Subscription
	for _, sub := range all {
		if sub.Status == StatusActive {
			active = append(active, sub)
		}
	}
	return active, nil
}

func (s *StubSubscriptionRepo) Cleanup() {
	s.data = map[int]Subscription{}
}
