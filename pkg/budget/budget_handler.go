package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/breakeven/breakeven/internal/utils"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	ID                             int       `json:"id"`
	BaseDailyCents                 int       `json:"base_daily_cents"`
	Currency                       string    `json:"currency"`
	Timezone                       string    `json:"timezone"`
	CarryoverMode                  string    `json:"carryover_mode"`
	SubscriptionBudgetEnabled      bool      `json:"subscription_budget_enabled"`
	MonthlySubscriptionBudgetCents *int      `json:"monthly_subscription_budget_cents"`
	StartDate                      string    `json:"start_date"`
	CreatedAt                      time.Time `json:"created_at"`
	UpdatedAt                      time.Time `json:"updated_at"`
}

type updateBudgetDTO struct {
	BaseDailyCents                 *int    `json:"base_daily_cents"`
	EffectiveFrom                  *string `json:"effective_from"`
	Currency                       *string `json:"currency"`
	Timezone                       *string `json:"timezone"`
	CarryoverMode                  *string `json:"carryover_mode"`
	SubscriptionBudgetEnabled      *bool   `json:"subscription_budget_enabled"`
	MonthlySubscriptionBudgetCents *int    `json:"monthly_subscription_budget_cents"`
}

type BudgetHandler struct {
	service BudgetService
}

func NewBudgetHandler(service BudgetService) *BudgetHandler {
	return &BudgetHandler{service: service}
}

func (h *BudgetHandler) Show(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	b, err := h.service.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(BudgetToDTO(b)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating budget settings")
	w.Header().Set("Content-Type", "application/json")

	var dto updateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	patch := Update{
		BaseDailyCents:                 dto.BaseDailyCents,
		Currency:                       dto.Currency,
		Timezone:                       dto.Timezone,
		SubscriptionBudgetEnabled:      dto.SubscriptionBudgetEnabled,
		MonthlySubscriptionBudgetCents: dto.MonthlySubscriptionBudgetCents,
	}
	if dto.EffectiveFrom != nil {
		effectiveFrom, err := utils.ParseDate(*dto.EffectiveFrom)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		patch.EffectiveFrom = &effectiveFrom
	}
	if dto.CarryoverMode != nil {
		mode := CarryoverMode(*dto.CarryoverMode)
		if !mode.Valid() {
			http.Error(w, ErrInvalidCarryoverMode.Error(), http.StatusUnprocessableEntity)
			return
		}
		patch.CarryoverMode = &mode
	}

	b, err := h.service.Update(r.Context(), patch)
	if err != nil {
		if errors.Is(err, ErrInvalidRate) || errors.Is(err, ErrInvalidCarryoverMode) || errors.Is(err, ErrInvalidTimezone) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(BudgetToDTO(b)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func BudgetToDTO(b Budget) BudgetDTO {
	return BudgetDTO{
		ID:                             b.ID,
		BaseDailyCents:                 b.BaseDailyCents,
		Currency:                       b.Currency,
		Timezone:                       b.Timezone,
		CarryoverMode:                  string(b.CarryoverMode),
		SubscriptionBudgetEnabled:      b.SubscriptionBudgetEnabled,
		MonthlySubscriptionBudgetCents: b.MonthlySubscriptionBudgetCents,
		StartDate:                      b.StartDate().Format(utils.DateLayout),
		CreatedAt:                      b.CreatedAt,
		UpdatedAt:                      b.UpdatedAt,
	}
}
