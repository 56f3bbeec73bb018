package middleware

import (
	"encoding/json"
	"net/http"
)

// writeErr sends JSON { "error": message, "code": ... } with a code derived from the status.
func writeErr(w http.ResponseWriter, status int, message string) {
	code := "internal_error"
	switch status {
	case http.StatusUnauthorized:
		code = "unauthorized"
	case http.StatusTooManyRequests:
		code = "rate_limited"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
