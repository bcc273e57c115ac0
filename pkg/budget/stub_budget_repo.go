package budget

import (
	"context"
	"time"
)

type StubBudgetRepo struct {
	nextId int
	data   map[int]Budget
	// CreatedAt assigned to the next stored budget; tests set this to
	// control the derived start date.
	NextCreatedAt time.Time
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{nextId: 0, data: map[int]Budget{}}
}

func (s *StubBudgetRepo) Store(ctx context.Context, budget Budget) (Budget, error) {
	s.nextId++
	budget.ID = s.nextId
	if !s.NextCreatedAt.IsZero() {
		budget.CreatedAt = s.NextCreatedAt
	} else {
		budget.CreatedAt = time.Now()
	}
	budget.UpdatedAt = budget.CreatedAt
	s.data[budget.ID] = budget
	return budget, nil
}

func (s *StubBudgetRepo) FindByUserId(ctx context.Context, userId int) (Budget, error) {
	for _, b := range s.data {
		if b.UserID == userId {
			return b, nil
		}
	}
	return Budget{}, ErrBudgetNotFound
}

func (s *StubBudgetRepo) Update(ctx context.Context, budget Budget) (bool, error) {
	existing, ok := s.data[budget.ID]
	if !ok {
		return false, nil
	}
	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now()
	s.data[budget.ID] = budget
	return true, nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.data = map[int]Budget{}
	s.NextCreatedAt = time.Time{}
}
