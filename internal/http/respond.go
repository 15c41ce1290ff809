package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/apiclient"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/catalog"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/checkout"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/pricing"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/repository"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps component errors to HTTP responses. RemoteError
// messages pass through verbatim, everything unexpected collapses to a 500.
func handleServiceError(w http.ResponseWriter, err error) {
	var remote *apiclient.RemoteError
	switch {
	case errors.As(err, &remote):
		respondError(w, remote.StatusCode, "rejected", remote.Message)
	case errors.Is(err, apiclient.ErrConnectivity):
		respondError(w, http.StatusBadGateway, "unreachable", err.Error())
	case errors.Is(err, pricing.ErrEmptyCode),
		errors.Is(err, pricing.ErrInvalidLicenseTier),
		errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, checkout.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, checkout.ErrNotPaymentPending):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
