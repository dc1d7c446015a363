package lesson

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/model/lesson"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Handler serves the curriculum browser.
type Handler struct {
	catalog lesson.Store
}

// New creates the lesson handler.
func New(catalog lesson.Store) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes registers the curriculum endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/lessons", h.handleList)
	r.Get("/lessons/{lessonID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"modules": h.catalog.Modules(),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonID")

	l, ok := h.catalog.FindByID(lessonID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "lesson not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, l)
}
