package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	log "github.com/sirupsen/logrus"
)

// BudgetProvider yields the current user's budget, creating it on first access.
type BudgetProvider interface {
	GetOrCreate(ctx context.Context) (budget.Budget, error)
}

type TodayDTO struct {
	Date                string `json:"date"`
	AvailableCents      int    `json:"available_cents"`
	SpentCents          int    `json:"spent_cents"`
	CarryoverStartCents int    `json:"carryover_start_cents"`
	CarryoverEndCents   int    `json:"carryover_end_cents"`
	BreakEvenSpendCents int    `json:"break_even_spend_cents"`
	StartDate           string `json:"start_date"`
}

type DayLedgerDTO struct {
	Date                string `json:"date"`
	SpentCents          int    `json:"spent_cents"`
	CarryoverStartCents int    `json:"carryover_start_cents"`
	CarryoverEndCents   int    `json:"carryover_end_cents"`
	AvailableCents      int    `json:"available_cents"`
	DailyRateCents      int    `json:"daily_rate_cents"`
}

type rangeResponseDTO struct {
	FromDate  string         `json:"from_date"`
	ToDate    string         `json:"to_date"`
	StartDate string         `json:"start_date"`
	Ledgers   []DayLedgerDTO `json:"ledgers"`
}

type Handler struct {
	service Service
	budgets BudgetProvider
	rates   RateProvider
}

func NewHandler(service Service, budgets BudgetProvider, rates RateProvider) *Handler {
	return &Handler{service: service, budgets: budgets, rates: rates}
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	log.Debug("Fetching today's ledger")
	w.Header().Set("Content-Type", "application/json")

	b, err := h.budgets.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ledger, err := h.service.Today(r.Context(), b)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := TodayDTO{
		Date:                ledger.Date.Format(utils.DateLayout),
		AvailableCents:      ledger.AvailableCents,
		SpentCents:          ledger.SpentCents,
		CarryoverStartCents: ledger.CarryoverStartCents,
		CarryoverEndCents:   ledger.CarryoverEndCents,
		BreakEvenSpendCents: ledger.AvailableCents,
		StartDate:           b.StartDate().Format(utils.DateLayout),
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	b, err := h.budgets.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = utils.ParseDate(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = utils.ParseDate(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.Range(r.Context(), b, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]DayLedgerDTO, 0, len(result.Ledgers))
	for _, l := range result.Ledgers {
		dailyRate, err := h.rates.RateForDate(r.Context(), b, l.Date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		dtos = append(dtos, DayLedgerDTO{
			Date:                l.Date.Format(utils.DateLayout),
			SpentCents:          l.SpentCents,
			CarryoverStartCents: l.CarryoverStartCents,
			CarryoverEndCents:   l.CarryoverEndCents,
			AvailableCents:      l.AvailableCents,
			DailyRateCents:      dailyRate,
		})
	}

	response := rangeResponseDTO{
		FromDate:  result.From.Format(utils.DateLayout),
		ToDate:    result.To.Format(utils.DateLayout),
		StartDate: b.StartDate().Format(utils.DateLayout),
		Ledgers:   dtos,
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
