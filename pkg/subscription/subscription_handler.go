package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type BudgetProvider interface {
	GetOrCreate(ctx context.Context) (budget.Budget, error)
}

type SubscriptionDTO struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	AmountCents      int     `json:"amount_cents"`
	BillingCycle     string  `json:"billing_cycle"`
	Category         string  `json:"category"`
	Status           string  `json:"status"`
	NextChargeDate   string  `json:"next_charge_date"`
	LastChargedDate  *string `json:"last_charged_date"`
	MonthlyCostCents int     `json:"monthly_cost_cents"`
	ChargesSoon      bool    `json:"charges_soon"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type writeSubscriptionDTO struct {
	Name           string  `json:"name"`
	AmountCents    int     `json:"amount_cents"`
	BillingCycle   string  `json:"billing_cycle"`
	Category       string  `json:"category"`
	Status         string  `json:"status"`
	NextChargeDate *string `json:"next_charge_date"`
	StartDate      *string `json:"start_date"`
}

type summaryDTO struct {
	TotalMonthlyCents int             `json:"total_monthly_cents"`
	ActiveCount       int             `json:"active_count"`
	UpcomingCount     int             `json:"upcoming_count"`
	BudgetStatus      budgetStatusDTO `json:"budget_status"`
}

type budgetStatusDTO struct {
	Enabled            bool `json:"enabled"`
	MonthlyBudgetCents *int `json:"monthly_budget_cents"`
	TotalMonthlyCents  int  `json:"total_monthly_cents"`
	RemainingCents     *int `json:"remaining_cents"`
	OverBudget         bool `json:"over_budget"`
}

type Handler struct {
	service Service
	budgets BudgetProvider
	clock   utils.Clock
}

func NewHandler(service Service, budgets BudgetProvider, clock utils.Clock) *Handler {
	return &Handler{service: service, budgets: budgets, clock: clock}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	subs, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	today := utils.DateOf(h.clock.Now())
	dtos := make([]SubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		dtos = append(dtos, h.toDTO(sub, today))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string][]SubscriptionDTO{"subscriptions": dtos}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.toDTO(sub, utils.DateOf(h.clock.Now()))); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating subscription")
	w.Header().Set("Content-Type", "application/json")

	sub, startDate, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), sub, startDate)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(h.toDTO(created, utils.DateOf(h.clock.Now()))); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, _, ok := h.decode(w, r)
	if !ok {
		return
	}
	sub.ID = id

	updated, err := h.service.Update(r.Context(), sub)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.toDTO(updated, utils.DateOf(h.clock.Now()))); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	b, err := h.budgets.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary, err := h.service.Summary(r.Context(), b)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := summaryDTO{
		TotalMonthlyCents: summary.TotalMonthlyCents,
		ActiveCount:       summary.ActiveCount,
		UpcomingCount:     summary.UpcomingCount,
		BudgetStatus: budgetStatusDTO{
			Enabled:            summary.BudgetEnabled,
			MonthlyBudgetCents: summary.MonthlyBudgetCents,
			TotalMonthlyCents:  summary.TotalMonthlyCents,
			RemainingCents:     summary.RemainingCents,
			OverBudget:         summary.OverBudget,
		},
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Subscription, time.Time, bool) {
	var dto writeSubscriptionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Subscription{}, time.Time{}, false
	}

	sub := Subscription{
		Name:         dto.Name,
		AmountCents:  dto.AmountCents,
		BillingCycle: BillingCycle(dto.BillingCycle),
		Category:     dto.Category,
		Status:       Status(dto.Status),
	}
	if dto.NextChargeDate != nil {
		next, err := utils.ParseDate(*dto.NextChargeDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return Subscription{}, time.Time{}, false
		}
		sub.NextChargeDate = next
	}

	var startDate time.Time
	if dto.StartDate != nil {
		start, err := utils.ParseDate(*dto.StartDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return Subscription{}, time.Time{}, false
		}
		startDate = start
	}
	return sub, startDate, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidBillingCycle),
		errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrMissingName):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) toDTO(sub Subscription, today time.Time) SubscriptionDTO {
	var lastCharged *string
	if sub.LastChargedDate != nil {
		s := sub.LastChargedDate.Format(utils.DateLayout)
		lastCharged = &s
	}
	return SubscriptionDTO{
		ID:               sub.ID,
		Name:             sub.Name,
		AmountCents:      sub.AmountCents,
		BillingCycle:     string(sub.BillingCycle),
		Category:         sub.Category,
		Status:           string(sub.Status),
		NextChargeDate:   sub.NextChargeDate.Format(utils.DateLayout),
		LastChargedDate:  lastCharged,
		MonthlyCostCents: sub.MonthlyCostCents(),
		ChargesSoon:      sub.ChargesSoon(today, upcomingWindowDays),
		CreatedAt:        sub.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        sub.UpdatedAt.Format(time.RFC3339),
	}
}
