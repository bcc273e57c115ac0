package ledger

import (
	"context"
	"time"
)

type StubLedgerRepo struct {
	data map[int]map[time.Time]DayLedger
}

func NewStubLedgerRepo() *StubLedgerRepo {
	return &StubLedgerRepo{data: map[int]map[time.Time]DayLedger{}}
}

func (s *StubLedgerRepo) Upsert(ctx context.Context, ledger DayLedger) error {
	rows, ok := s.data[ledger.BudgetID]
	if !ok {
		rows = map[time.Time]DayLedger{}
		s.data[ledger.BudgetID] = rows
	}
	rows[ledger.Date] = ledger
	return nil
}

func (s *StubLedgerRepo) Find(ctx context.Context, budgetId int, date time.Time) (DayLedger, bool, error) {
	ledger, ok := s.data[budgetId][date]
	return ledger, ok, nil
}

func (s *StubLedgerRepo) FindRange(ctx context.Context, budgetId int, from, to time.Time) ([]DayLedger, error) {
	var ledgers []DayLedger
	for date := to; !date.Before(from); date = date.AddDate(0, 0, -1) {
		if ledger, ok := s.data[budgetId][date]; ok {
			ledgers = append(ledgers, ledger)
		}
	}
	return ledgers, nil
}

func (s *StubLedgerRepo) LatestDate(ctx context.Context, budgetId int) (time.Time, bool, error) {
	var latest time.Time
	found := false
	for date := range s.data[budgetId] {
		if !found || date.After(latest) {
			latest = date
			found = true
		}
	}
	return latest, found, nil
}

// Count returns the number of materialized rows for a budget.
func (s *StubLedgerRepo) Count(budgetId int) int {
	return len(s.data[budgetId])
}

// Delete removes a single row, letting tests punch gaps into the history.
func (s *StubLedgerRepo) Delete(budgetId int, date time.Time) {
	delete(s.data[budgetId], date)
}

func (s *StubLedgerRepo) Cleanup() {
	s.data = map[int]map[time.Time]DayLedger{}
}
