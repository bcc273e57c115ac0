package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	"github.com/breakeven/breakeven/pkg/expense"
	"github.com/breakeven/breakeven/pkg/subscription"
	"github.com/breakeven/breakeven/pkg/user"
)

type BucketSize string

const (
	BucketDaily   BucketSize = "daily"
	BucketWeekly  BucketSize = "weekly"
	BucketMonthly BucketSize = "monthly"
)

// ExpenseReader supplies the raw expense rows for a budget and range.
type ExpenseReader interface {
	ListRange(ctx context.Context, budgetId int, from, to time.Time) ([]expense.Expense, error)
}

// SubscriptionReader supplies the user's active subscriptions, whose charges
// are projected into the range.
type SubscriptionReader interface {
	ListActive(ctx context.Context, userId int) ([]subscription.Subscription, error)
}

type Query struct {
	From     time.Time
	To       time.Time
	Bucket   BucketSize
	Category string
}

type Bucket struct {
	BucketStart       time.Time
	TotalCents        int
	ExpenseCents      int
	SubscriptionCents int
}

type Report struct {
	From              time.Time
	To                time.Time
	Bucket            BucketSize
	Category          string
	Buckets           []Bucket
	TotalCents        int
	ExpenseCents      int
	SubscriptionCents int
	// Category totals over the whole range, for everything and split by kind.
	CategoryTotals             map[string]int
	CategoryTotalsExpense      map[string]int
	CategoryTotalsSubscription map[string]int
}

type point struct {
	date         time.Time
	amountCents  int
	category     string
	subscription bool
}

type StatsService interface {
	Spending(ctx context.Context, b budget.Budget, q Query) (Report, error)
}

type StatsServiceImpl struct {
	expenses      ExpenseReader
	subscriptions SubscriptionReader
	clock         utils.Clock
}

func NewStatsService(expenses ExpenseReader, subscriptions SubscriptionReader, clock utils.Clock) *StatsServiceImpl {
	return &StatsServiceImpl{expenses: expenses, subscriptions: subscriptions, clock: clock}
}

func (s *StatsServiceImpl) Spending(ctx context.Context, b budget.Budget, q Query) (Report, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get current user: %w", err)
	}

	today := b.TodayIn(s.clock.Now())
	if q.From.IsZero() {
		q.From = today.AddDate(0, 0, -30)
	}
	if q.To.IsZero() {
		q.To = today
	}
	q.From = utils.DateOf(q.From)
	q.To = utils.DateOf(q.To)
	if q.Bucket != BucketDaily && q.Bucket != BucketWeekly && q.Bucket != BucketMonthly {
		q.Bucket = BucketDaily
	}

	expenses, err := s.expenses.ListRange(ctx, b.ID, q.From, q.To)
	if err != nil {
		return Report{}, err
	}
	var points []point
	for _, e := range expenses {
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		points = append(points, point{date: e.Date, amountCents: e.AmountCents, category: e.Category})
	}

	subs, err := s.subscriptions.ListActive(ctx, userId)
	if err != nil {
		return Report{}, err
	}
	for _, sub := range subs {
		if q.Category != "" && sub.Category != q.Category {
			continue
		}
		for _, chargeDate := range sub.ChargeDatesBetween(q.From, q.To) {
			points = append(points, point{date: chargeDate, amountCents: sub.AmountCents, category: sub.Category, subscription: true})
		}
	}

	report := Report{
		From:                       q.From,
		To:                         q.To,
		Bucket:                     q.Bucket,
		Category:                   q.Category,
		Buckets:                    bucketize(points, q.From, q.To, q.Bucket),
		CategoryTotals:             map[string]int{},
		CategoryTotalsExpense:      map[string]int{},
		CategoryTotalsSubscription: map[string]int{},
	}
	for _, p := range points {
		report.TotalCents += p.amountCents
		report.CategoryTotals[p.category] += p.amountCents
		if p.subscription {
			report.SubscriptionCents += p.amountCents
			report.CategoryTotalsSubscription[p.category] += p.amountCents
		} else {
			report.ExpenseCents += p.amountCents
			report.CategoryTotalsExpense[p.category] += p.amountCents
		}
	}
	return report, nil
}

// bucketize pre-seeds an empty bucket for every period touching [from, to]
// and folds the points in, so sparse ranges still chart as a continuous axis.
func bucketize(points []point, from, to time.Time, size BucketSize) []Bucket {
	buckets := map[time.Time]*Bucket{}
	for current := bucketKey(from, size); !current.After(to); current = advanceBucket(current, size) {
		buckets[current] = &Bucket{BucketStart: current}
	}

	for _, p := range points {
		key := bucketKey(p.date, size)
		b, ok := buckets[key]
		if !ok {
			b = &Bucket{BucketStart: key}
			buckets[key] = b
		}
		b.TotalCents += p.amountCents
		if p.subscription {
			b.SubscriptionCents += p.amountCents
		} else {
			b.ExpenseCents += p.amountCents
		}
	}

	result := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].BucketStart.Before(result[j].BucketStart)
	})
	return result
}

func bucketKey(date time.Time, size BucketSize) time.Time {
	switch size {
	case BucketWeekly:
		// Weeks start on Monday.
		offset := (int(date.Weekday()) + 6) % 7
		return date.AddDate(0, 0, -offset)
	case BucketMonthly:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return date
	}
}

func advanceBucket(date time.Time, size BucketSize) time.Time {
	switch size {
	case BucketWeekly:
		return date.AddDate(0, 0, 7)
	case BucketMonthly:
		return date.AddDate(0, 1, 0)
	default:
		return date.AddDate(0, 0, 1)
	}
}
