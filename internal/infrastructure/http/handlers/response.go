package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is empty, a default is used from code.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case http.StatusServiceUnavailable:
		return ErrCodeBackendUnavailable
	default:
		return ErrCodeInternal
	}
}

// writeTenancyErr maps tenancy errors: invalid domain 400, not found 404, repository failure 503.
func writeTenancyErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domerrors.ErrInvalidDomain):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidDomain, err.Error())
	case errors.Is(err, domerrors.ErrVendorNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeVendorNotFound, err.Error())
	case domerrors.IsRepositoryError(err):
		writeErr(w, http.StatusServiceUnavailable, "", "vendor store unavailable")
	default:
		writeErr(w, http.StatusInternalServerError, "", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
