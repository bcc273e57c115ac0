package expense

import (
	"context"
	"time"
)

type StubExpenseRepo struct {
	nextId int
	data   map[int]Expense
}

func NewStubExpenseRepo() *StubExpenseRepo {
	return &StubExpenseRepo{nextId: 0, data: map[int]Expense{}}
}

func (s *StubExpenseRepo) Store(ctx context.Context, expense Expense) (Expense, error) {
	s.nextId++
	expense.ID = s.nextId
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt
	s.data[expense.ID] = expense
	return expense, nil
}

func (s *StubExpenseRepo) FindByID(ctx context.Context, id int) (Expense, error) {
	expense, ok := s.data[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return expense, nil
}

func (s *StubExpenseRepo) Update(ctx context.Context, expense Expense) (bool, error) {
	existing, ok := s.data[expense.ID]
	if !ok || existing.BudgetID != expense.BudgetID {
		return false, nil
	}
	expense.CreatedAt = existing.CreatedAt
	expense.UpdatedAt = time.Now()
	s.data[expense.ID] = expense
	return true, nil
}

func (s *StubExpenseRepo) Delete(ctx context.Context, budgetId int, id int) (bool, error) {
	existing, ok := s.data[id]
	if !ok || existing.BudgetID != budgetId {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubExpenseRepo) ListRange(ctx context.Context, budgetId int, from, to time.Time) ([]Expense, error) {
	var expenses []Expense
	for date := to; !date.Before(from); date = date.AddDate(0, 0, -1) {
		for _, e := range s.data {
			if e.BudgetID == budgetId && e.Date.Equal(date) {
				expenses = append(expenses, e)
			}
		}
	}
	return expenses, nil
}

func (s *StubExpenseRepo) SumOnDate(ctx context.Context, budgetId int, date time.Time) (int, error) {
	sum := 0
	for _, e := range s.data {
		if e.BudgetID == budgetId && e.Date.Equal(date) {
			sum += e.AmountCents
		}
	}
	return sum, nil
}

func (s *StubExpenseRepo) Cleanup() {
	s.data = map[int]Expense{}
}
