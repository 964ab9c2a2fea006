package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"crosspost/internal/auth"
	"crosspost/internal/social"

	"github.com/go-chi/chi/v5"
)

type AccountHandler struct {
	Svc *social.Service
}

type accountDTO struct {
	ID          uint64     `json:"id"`
	Platform    string     `json:"platform"`
	AccountName string     `json:"account_name"`
	IsActive    bool       `json:"is_active"`
	TokenExpiry *time.Time `json:"token_expiry,omitempty"`
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	accounts, err := h.Svc.ListByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]accountDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountDTO{
			ID:          a.ID,
			Platform:    a.Platform,
			AccountName: a.AccountName,
			IsActive:    a.IsActive,
			TokenExpiry: a.TokenExpiry,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *AccountHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Disconnect(r.Context(), id, uid); err != nil {
		if errors.Is(err, social.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
