package progress

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/middleware"
	"github.com/avelichko/pyai-teacher/backend/internal/model/lesson"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Handler serves token balance and lesson-progress endpoints.
type Handler struct {
	ledger  *ledger.Service
	catalog lesson.Store
}

// New creates the progress handler.
func New(ledgerSvc *ledger.Service, catalog lesson.Store) *Handler {
	return &Handler{ledger: ledgerSvc, catalog: catalog}
}

// RegisterRoutes registers the protected progress endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens", h.handleTokens)
	r.Get("/progress", h.handleProgress)
	r.Post("/progress/complete", h.handleComplete)
}

func (h *Handler) handleTokens(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	tokens, err := h.ledger.Balance(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load balance")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]int{"tokens": tokens})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	completed, err := h.ledger.Progress(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"completedLessons": completed})
}

type completePayload struct {
	LessonID string `json:"lessonId"`
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	var payload completePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.LessonID == "" {
		utils.RespondError(w, http.StatusBadRequest, "lessonId is required")
		return
	}
	if _, ok := h.catalog.FindByID(payload.LessonID); !ok {
		utils.RespondError(w, http.StatusBadRequest, "lesson not found")
		return
	}

	userID := middleware.UserID(r.Context())

	appended, err := h.ledger.MarkLessonComplete(r.Context(), userID, payload.LessonID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			utils.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}

	completed, err := h.ledger.Progress(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"completedLessons": completed,
		"appended":         appended,
	})
}
