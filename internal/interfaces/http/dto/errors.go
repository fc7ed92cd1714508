package dto

import (
	"net/http"
	"strings"

	"github.com/farmerp/backend/internal/domain/shared"
)

// Codes raised by the HTTP layer itself. Domain codes pass through unchanged.
const (
	ErrCodeValidation   = shared.CodeValidation
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = shared.CodeUnauthorized
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = shared.CodeNotFound
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeBodyTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes starting
// with INVALID_ that are not listed map to 400.
var ErrorCodeHTTPStatus = map[string]int{
	// Input
	shared.CodeValidation:   http.StatusBadRequest,
	shared.CodeInvalidInput: http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeBodyTooLarge:     http.StatusRequestEntityTooLarge,

	// Auth
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resources
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeDuplicateEntry:      http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeEditNotAllowed:      http.StatusConflict,
	"ALREADY_PAID":                 http.StatusConflict,

	// Lifecycle rules
	shared.CodeInvalidTransition: http.StatusUnprocessableEntity,
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	"NO_ITEMS":                   http.StatusUnprocessableEntity,

	// Platform
	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for code, 500 when it is unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
