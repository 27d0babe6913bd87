package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// errorResponse is the JSON body of every failed API call
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps service errors onto HTTP status codes and stable error codes
func statusFor(err error) (int, string) {
	var syncErr *domain.SyncError
	switch {
	case errors.Is(err, domain.ErrMissingMerchant):
		return http.StatusBadRequest, "missing_merchant"
	case errors.Is(err, domain.ErrMissingMessage):
		return http.StatusBadRequest, "missing_message"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusPaymentRequired, "quota_exceeded"
	case errors.Is(err, domain.ErrUnauthorizedWidget):
		return http.StatusForbidden, "unauthorized_widget"
	case errors.Is(err, domain.ErrAPIKeyRequired):
		return http.StatusUnauthorized, "api_key_required"
	case errors.Is(err, domain.ErrAPIKeyMismatch):
		return http.StatusForbidden, "api_key_mismatch"
	case errors.Is(err, domain.ErrMerchantNotFound):
		return http.StatusNotFound, "merchant_not_found"
	case errors.Is(err, domain.ErrSyncInProgress):
		return http.StatusConflict, "sync_in_progress"
	case errors.Is(err, domain.ErrSyncQueueFull):
		return http.StatusServiceUnavailable, "sync_queue_full"
	case errors.As(err, &syncErr):
		return http.StatusBadGateway, "sync_" + string(syncErr.Kind)
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return http.StatusInternalServerError, "provider_not_configured"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && code == "internal_error" {
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}
