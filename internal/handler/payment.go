package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sleephaven/sleephaven/internal/service"
)

type PaymentHandler struct {
	svc    *service.CheckoutService
	logger *slog.Logger
}

func NewPaymentHandler(svc *service.CheckoutService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

// CreateCheckoutSession creates a checkout session for an authenticated
// caller. An optional userId in the body tags the session with that identity;
// otherwise the session is tagged as guest-initiated.
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if r.Body != nil {
		// Body is optional; a decode failure on an empty body is fine.
		json.NewDecoder(r.Body).Decode(&req)
	}

	url, err := h.svc.CreateSession(req.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status": "success",
		"url":    url,
	})
}

// GuestCheckout creates a checkout session without any prior authentication.
func (h *PaymentHandler) GuestCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	url, err := h.svc.CreateGuestSession(req.Email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status": "success",
		"url":    url,
	})
}

// VerifyPayment reports the gateway's settlement view of a checkout session.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	status, err := h.svc.VerifyPayment(sessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status": "success",
		"data": envelope{
			"paymentStatus": status.PaymentStatus,
			"customerEmail": status.CustomerEmail,
			"amountTotal":   status.AmountTotal,
			"userId":        status.UserID,
		},
	})
}
