package handlers

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation limits.
const (
	MaxHostInputLength = 2048
	MaxSlugLength      = 63
)

var sqlIdentRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SanitizeHostInput trims raw host/domain input; returns empty if over max length.
// Normalization proper happens in the tenancy package.
func SanitizeHostInput(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > MaxHostInputLength {
		return ""
	}
	return s
}

// newValidator returns a validator with the "sqlident" tag registered
// (lower-case SQL identifier: letters, digits, underscore; no leading digit).
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdentRe.MatchString(fl.Field().String())
	})
	return v
}
