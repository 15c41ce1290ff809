package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/cart"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/pricing"
)

type CartHandler struct {
	cart   *cart.Manager
	engine *pricing.Engine
	logger *zap.Logger
}

func NewCartHandler(cart *cart.Manager, engine *pricing.Engine, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, engine: engine, logger: logger}
}

type SelectLicenseRequestDTO struct {
	LicenseTier string `json:"licenseTier"`
}

type ApplyCouponRequestDTO struct {
	Code string `json:"code"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.cart.Items(),
		"count": h.cart.Len(),
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if item.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "item id is required")
		return
	}

	if err := h.cart.Add(r.Context(), item); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"items": h.cart.Items()})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.cart.Remove(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": h.cart.Items()})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	h.engine.Reset()
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": h.cart.Items()})
}

func (h *CartHandler) SelectLicense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.cart.Contains(id) {
		respondError(w, http.StatusNotFound, "not_found", "item is not in the cart")
		return
	}

	var req SelectLicenseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.engine.SelectLicense(id, domain.LicenseTier(req.LicenseTier)); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Quote())
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := h.engine.ApplyCoupon(r.Context(), sessionFrom(r.Context()), req.Code); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Quote())
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.engine.RemoveCoupon()
	respondJSON(w, http.StatusOK, h.engine.Quote())
}

func (h *CartHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Quote())
}
