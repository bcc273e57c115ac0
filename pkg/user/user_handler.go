package user

import (
	"encoding/json"
	"net/http"
	"time"
)

type MeDTO struct {
	Id          int       `json:"id"`
	Email       string    `json:"email"`
	SupabaseUid string    `json:"supabase_uid"`
	CreatedAt   time.Time `json:"created_at"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	u, err := h.service.GetCurrentUser(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	dto := MeDTO{
		Id:          u.Id,
		Email:       u.Email,
		SupabaseUid: u.SupabaseUid,
		CreatedAt:   u.CreatedAt,
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
