package dto

import (
	"net/http"

	"github.com/mobilia/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes are defined in the shared
// package and passed through unchanged.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeNotMember    = "NOT_A_MEMBER"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeNotMember:    http.StatusForbidden,

	shared.CodeInvalidInput:    http.StatusBadRequest,
	shared.CodePrivilegeDenied: http.StatusForbidden,
	shared.CodeNotFound:        http.StatusNotFound,

	// Another request got there first; the client may retry
	shared.CodeDuplicateSubmission: http.StatusConflict,
	shared.CodeLockNotObtained:     http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	shared.CodeInvalidState:             http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition:        http.StatusUnprocessableEntity,
	shared.CodePaymentExceedsBalance:    http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:        http.StatusUnprocessableEntity,
	shared.CodeNoQuantityProvided:       http.StatusUnprocessableEntity,
	shared.CodeInvoicePreconditionUnmet: http.StatusUnprocessableEntity,
	shared.CodeReceiptExceedsRemaining:  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
