package expense

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

type ExpenseDTO struct {
	ID          int       `json:"id"`
	Date        string    `json:"date"`
	AmountCents int       `json:"amount_cents"`
	Category    string    `json:"category"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type writeExpenseDTO struct {
	Date        string `json:"date"`
	AmountCents int    `json:"amount_cents"`
	Category    string `json:"category"`
	Note        string `json:"note"`
}

type listResponseDTO struct {
	FromDate string       `json:"from_date"`
	ToDate   string       `json:"to_date"`
	Expenses []ExpenseDTO `json:"expenses"`
}

type Handler struct {
	service Service
	budgets BudgetProvider
}

func NewHandler(service Service, budgets BudgetProvider) *Handler {
	return &Handler{service: service, budgets: budgets}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.service.List(r.Context(), b, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ExpenseDTO, 0, len(result.Expenses))
	for _, e := range result.Expenses {
		dtos = append(dtos, ExpenseToDTO(e))
	}

	response := listResponseDTO{
		FromDate: result.From.Format(utils.DateLayout),
		ToDate:   result.To.Format(utils.DateLayout),
		Expenses: dtos,
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating expense")
	w.Header().Set("Content-Type", "application/json")

	b, err := h.budgets.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	e, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), b, e)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ExpenseToDTO(created)); err != nil {
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

	b, err := h.budgets.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	e, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}
	e.ID = id

	updated, err := h.service.Update(r.Context(), b, e)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ExpenseToDTO(updated)); err != nil {
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

	b, err := h.budgets.GetOrCreate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.service.Delete(r.Context(), b, id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeExpense(w http.ResponseWriter, r *http.Request) (Expense, bool) {
	var dto writeExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Expense{}, false
	}
	date, err := utils.ParseDate(dto.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Expense{}, false
	}
	return Expense{
		Date:        date,
		AmountCents: dto.AmountCents,
		Category:    dto.Category,
		Note:        dto.Note,
	}, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrMissingDate):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ExpenseToDTO(e Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		Date:        e.Date.Format(utils.DateLayout),
		AmountCents: e.AmountCents,
		Category:    e.Category,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
