package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/checkout"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
)

type CheckoutHandler struct {
	svc    *checkout.Service
	logger *zap.Logger
}

func NewCheckoutHandler(svc *checkout.Service, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, logger: logger}
}

type InitiateCheckoutRequestDTO struct {
	PaymentMethod string `json:"paymentMethod"`
}

type CheckoutResponseDTO struct {
	CheckoutID string              `json:"checkoutId"`
	OrderID    string              `json:"orderId,omitempty"`
	Payment    domain.PaymentOrder `json:"payment"`
	Status     string              `json:"status"`
	Replayed   bool                `json:"replayed,omitempty"`
}

// Initiate starts a checkout. The Idempotency-Key header dedupes retries; a
// missing header gets a fresh key, so only explicit retries are deduped.
func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var req InitiateCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "card"
	}

	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		key = uuid.New().String()
	}

	res, err := h.svc.Initiate(r.Context(), session, key, req.PaymentMethod)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.logger.Info("checkout initiated",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("checkout_id", res.CheckoutID),
		zap.Bool("replayed", res.Replayed))

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		CheckoutID: res.CheckoutID,
		OrderID:    res.OrderID,
		Payment:    res.Payment,
		Status:     res.Status.String(),
		Replayed:   res.Replayed,
	})
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var confirmation domain.PaymentConfirmation
	if err := json.NewDecoder(r.Body).Decode(&confirmation); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.svc.Confirm(r.Context(), sessionFrom(r.Context()), id, confirmation); err != nil {
		handleServiceError(w, err)
		return
	}

	h.logger.Info("checkout confirmed",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("checkout_id", id))

	respondJSON(w, http.StatusOK, map[string]string{
		"checkoutId": id,
		"status":     domain.CheckoutStatusCompleted.String(),
	})
}

func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	status, err := h.svc.Status(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"checkoutId": id,
		"status":     status.String(),
	})
}
