package rate

import (
	"context"
	"time"
)

type StubRateRepo struct {
	nextId int
	data   map[int]Record
}

func NewStubRateRepo() *StubRateRepo {
	return &StubRateRepo{nextId: 0, data: map[int]Record{}}
}

func (s *StubRateRepo) EffectiveOn(ctx context.Context, budgetId int, date time.Time) (int, bool, error) {
	var best Record
	found := false
	for _, r := range s.data {
		if r.BudgetID != budgetId || r.EffectiveFrom.After(date) {
			continue
		}
		if !found || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = r
			found = true
		}
	}
	if !found {
		return 0, false, nil
	}
	return best.BaseDailyCents, true, nil
}

func (s *StubRateRepo) FindByDate(ctx context.Context, budgetId int, date time.Time) (Record, bool, error) {
	for _, r := range s.data {
		if r.BudgetID == budgetId && r.EffectiveFrom.Equal(date) {
			return r, true, nil
		}
	}
	return Record{}, false, nil
}

func (s *StubRateRepo) Store(ctx context.Context, record Record) error {
	s.nextId++
	record.ID = s.nextId
	s.data[record.ID] = record
	return nil
}

func (s *StubRateRepo) UpdateAmount(ctx context.Context, id int, cents int) error {
	r := s.data[id]
	r.BaseDailyCents = cents
	s.data[id] = r
	return nil
}

func (s *StubRateRepo) ReplaceAll(ctx context.Context, budgetId int, record Record) error {
	for id, r := range s.data {
		if r.BudgetID == budgetId {
			delete(s.data, id)
		}
	}
	return s.Store(ctx, record)
}

// Records returns the budget's history ordered by effective date, for test assertions.
func (s *StubRateRepo) Records(budgetId int) []Record {
	var records []Record
	for _, r := range s.data {
		if r.BudgetID == budgetId {
			records = append(records, r)
		}
	}
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if records[j].EffectiveFrom.Before(records[i].EffectiveFrom) {
				records[i], records[j] = records[j], records[i]
			}
		}
	}
	return records
}

func (s *StubRateRepo) Cleanup() {
	s.data = map[int]Record{}
}
