package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeInvalidDomain      = "invalid_domain"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeNotFound           = "not_found"
	ErrCodeVendorNotFound     = "vendor_not_found"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeBackendUnavailable = "backend_unavailable"
	ErrCodeInternal           = "internal_error"
)
