package speech

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/middleware"
	speechsvc "github.com/avelichko/pyai-teacher/backend/internal/service/speech"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Handler serves premium text-to-speech synthesis.
type Handler struct {
	speechSvc *speechsvc.Service
}

// New creates the speech handler.
func New(speechSvc *speechsvc.Service) *Handler {
	return &Handler{speechSvc: speechSvc}
}

// RegisterRoutes registers the speech endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/speech/synthesize", h.handleSynthesize)
}

type synthesizePayload struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight"`
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var payload synthesizePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.UserID(r.Context())

	audio, err := h.speechSvc.Synthesize(r.Context(), userID, payload.Text, payload.Highlight)
	if err != nil {
		switch {
		case errors.Is(err, speechsvc.ErrEmptyText):
			utils.RespondError(w, http.StatusBadRequest, "text is required")
		case errors.Is(err, speechsvc.ErrInsufficientTokens), errors.Is(err, store.ErrInsufficientTokens):
			utils.RespondError(w, http.StatusPaymentRequired, "недостаточно токенов")
		default:
			utils.RespondError(w, http.StatusServiceUnavailable, "озвучивание временно недоступно")
		}
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}
