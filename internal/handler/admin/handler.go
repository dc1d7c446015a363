package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Handler serves the user-management panel: account listing, token
// balance correction and account deletion.
type Handler struct {
	repo   store.Repository
	ledger *ledger.Service
}

// New creates the admin handler.
func New(repo store.Repository, ledgerSvc *ledger.Service) *Handler {
	return &Handler{repo: repo, ledger: ledgerSvc}
}

// RegisterRoutes registers the admin endpoints. The caller is expected
// to guard them with the admin-key middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/users", h.handleListUsers)
	r.Put("/admin/users/{userID}/tokens", h.handleSetTokens)
	r.Delete("/admin/users/{userID}", h.handleDeleteUser)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"users": users})
}

type setTokensPayload struct {
	Tokens int `json:"tokens"`
}

func (h *Handler) handleSetTokens(w http.ResponseWriter, r *http.Request) {
	var payload setTokensPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Tokens < 0 {
		utils.RespondError(w, http.StatusBadRequest, "tokens must not be negative")
		return
	}

	userID := chi.URLParam(r, "userID")

	if err := h.ledger.SetBalance(r.Context(), userID, payload.Tokens); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			utils.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to update balance")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"id":     userID,
		"tokens": payload.Tokens,
	})
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.repo.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			utils.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	// Drop any in-memory session state held for the deleted account.
	h.ledger.ResetSession(userID)

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
