package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/middleware"
	authservice "github.com/avelichko/pyai-teacher/backend/internal/service/auth"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Handler serves registration, login and the user profile.
type Handler struct {
	authSvc *authservice.Service
	ledger  *ledger.Service
	repo    store.Repository
}

// New creates the auth handler.
func New(authSvc *authservice.Service, ledgerSvc *ledger.Service, repo store.Repository) *Handler {
	return &Handler{authSvc: authSvc, ledger: ledgerSvc, repo: repo}
}

// RegisterRoutes registers the public auth endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

// RegisterProtectedRoutes registers endpoints that require a session.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
	r.Post("/auth/password", h.handleChangePassword)
	r.Post("/auth/logout", h.handleLogout)
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := h.authSvc.Register(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidEmail),
			errors.Is(err, authservice.ErrWeakPassword):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrEmailTaken):
			utils.RespondError(w, http.StatusConflict, "email already registered")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{User: u, Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := h.authSvc.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{User: u, Token: token})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	u, err := h.repo.GetUser(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if u == nil {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, u)
}

type changePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var payload changePasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.UserID(r.Context())

	err := h.authSvc.ChangePassword(r.Context(), userID, payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrWeakPassword):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, authservice.ErrInvalidCredentials):
			utils.RespondError(w, http.StatusUnauthorized, "current password is incorrect")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	h.ledger.ResetSession(userID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
