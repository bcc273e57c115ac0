package stats

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
)

type BudgetProvider interface {
	GetOrCreate(ctx context.Context) (budget.Budget, error)
}

type bucketDTO struct {
	BucketStart       string `json:"bucket_start"`
	TotalCents        int    `json:"total_cents"`
	ExpenseCents      int    `json:"expense_cents"`
	SubscriptionCents int    `json:"subscription_cents"`
}

type spendingDTO struct {
	From       string                       `json:"from"`
	To         string                       `json:"to"`
	Bucket     string                       `json:"bucket"`
	Category   string                       `json:"category,omitempty"`
	Buckets    []bucketDTO                  `json:"buckets"`
	Totals     totalsDTO                    `json:"totals"`
	ByCategory map[string]categoryTotalsDTO `json:"by_category"`
}

type totalsDTO struct {
	TotalCents        int `json:"total_cents"`
	ExpenseCents      int `json:"expense_cents"`
	SubscriptionCents int `json:"subscription_cents"`
}

type categoryTotalsDTO struct {
	TotalCents        int `json:"total_cents"`
	ExpenseCents      int `json:"expense_cents"`
	SubscriptionCents int `json:"subscription_cents"`
}

type Handler struct {
	service StatsService
	budgets BudgetProvider
}

func NewHandler(service StatsService, budgets BudgetProvider) *Handler {
	return &Handler{service: service, budgets: budgets}
}

func (h *Handler) Spending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := Query{
		Bucket:   BucketSize(r.URL.Query().Get("bucket")),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := utils.ParseDate(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		query.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := utils.ParseDate(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		query.To = to
	}

	b, err := h.budgets.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	report, err := h.service.Spending(r.Context(), b, query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toSpendingDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func toSpendingDTO(report Report) spendingDTO {
	buckets := make([]bucketDTO, 0, len(report.Buckets))
	for _, b := range report.Buckets {
		buckets = append(buckets, bucketDTO{
			BucketStart:       b.BucketStart.Format(utils.DateLayout),
			TotalCents:        b.TotalCents,
			ExpenseCents:      b.ExpenseCents,
			SubscriptionCents: b.SubscriptionCents,
		})
	}

	byCategory := map[string]categoryTotalsDTO{}
	for category, total := range report.CategoryTotals {
		byCategory[category] = categoryTotalsDTO{
			TotalCents:        total,
			ExpenseCents:      report.CategoryTotalsExpense[category],
			SubscriptionCents: report.CategoryTotalsSubscription[category],
		}
	}

	return spendingDTO{
		From:     report.From.Format(utils.DateLayout),
		To:       report.To.Format(utils.DateLayout),
		Bucket:   string(report.Bucket),
		Category: report.Category,
		Buckets:  buckets,
		Totals: totalsDTO{
			TotalCents:        report.TotalCents,
			ExpenseCents:      report.ExpenseCents,
			SubscriptionCents: report.SubscriptionCents,
		},
		ByCategory: byCategory,
	}
}
