package payment

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	paymentsvc "github.com/avelichko/pyai-teacher/backend/internal/service/payment"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Handler serves the pricing catalog and the provider webhook.
type Handler struct {
	paymentSvc *paymentsvc.Service
}

// New creates the payment handler.
func New(paymentSvc *paymentsvc.Service) *Handler {
	return &Handler{paymentSvc: paymentSvc}
}

// RegisterRoutes registers the payment endpoints. The notify webhook
// is authenticated by signature, not by session, so both live on the
// public router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/payments/packages", h.handlePackages)
	r.Post("/payments/notify", h.handleNotify)
}

func (h *Handler) handlePackages(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"publicId": h.paymentSvc.PublicID(),
		"packages": h.paymentSvc.Packages(),
	})
}

// handleNotify processes the provider callback. The provider treats a
// non-zero "code" as a rejected payment and retries on transport-level
// failures, so business rejections answer 200 with code 13.
func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if err := h.paymentSvc.VerifySignature(body, r.Header.Get("Content-HMAC")); err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var notification paymentsvc.Notification
	if err := json.Unmarshal(body, &notification); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid notification body")
		return
	}

	if _, err := h.paymentSvc.HandleNotification(r.Context(), notification); err != nil {
		if errors.Is(err, paymentsvc.ErrUnknownPackage) {
			utils.RespondJSON(w, http.StatusOK, map[string]int{"code": 13})
			return
		}
		log.Printf("[payment] notification error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to process notification")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]int{"code": 0})
}
