package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/middleware"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ai"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Handler serves the AI lesson/chat endpoint.
type Handler struct {
	aiSvc  *ai.Service
	ledger *ledger.Service
}

// New creates the chat handler.
func New(aiSvc *ai.Service, ledgerSvc *ledger.Service) *Handler {
	return &Handler{aiSvc: aiSvc, ledger: ledgerSvc}
}

// RegisterRoutes registers the AI endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai/ask", h.handleAsk)
}

type askPayload struct {
	Prompt    string `json:"prompt"`
	Preferred string `json:"preferred,omitempty"`
}

type askResponse struct {
	Content string     `json:"content"`
	Source  ai.Backend `json:"source"`
	Tokens  int        `json:"tokens"`
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload askPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.UserID(r.Context())

	reply, err := h.aiSvc.Ask(r.Context(), userID, payload.Prompt, ai.Backend(payload.Preferred))
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrEmptyPrompt):
			utils.RespondError(w, http.StatusBadRequest, "пожалуйста, введите текст запроса")
		case errors.Is(err, ai.ErrInsufficientTokens), errors.Is(err, store.ErrInsufficientTokens):
			utils.RespondError(w, http.StatusPaymentRequired, "недостаточно токенов")
		case errors.Is(err, ai.ErrUnknownBackend):
			utils.RespondError(w, http.StatusBadRequest, "unknown AI backend")
		default:
			utils.RespondError(w, http.StatusServiceUnavailable, "сервис временно недоступен")
		}
		return
	}

	tokens, err := h.ledger.Balance(r.Context(), userID)
	if err != nil {
		// The reply is already paid for; return it with the last known
		// balance marker instead of failing the whole request.
		tokens = -1
	}

	utils.RespondJSON(w, http.StatusOK, askResponse{
		Content: reply.Content,
		Source:  reply.Source,
		Tokens:  tokens,
	})
}
