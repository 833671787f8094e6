package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across bounded contexts
const (
	CodeNotFound                 = "NOT_FOUND"
	CodeInvalidInput             = "INVALID_INPUT"
	CodeInvalidState             = "INVALID_STATE"
	CodeInvalidTransition        = "INVALID_TRANSITION"
	CodePaymentExceedsBalance    = "PAYMENT_EXCEEDS_BALANCE"
	CodeInsufficientStock        = "INSUFFICIENT_STOCK"
	CodeNoQuantityProvided       = "NO_QUANTITY_PROVIDED"
	CodePrivilegeDenied          = "PRIVILEGE_DENIED"
	CodeInvoicePreconditionUnmet = "INVOICE_PRECONDITION_UNMET"
	CodeReceiptExceedsRemaining  = "RECEIPT_EXCEEDS_REMAINING"
	CodeDuplicateSubmission      = "DUPLICATE_SUBMISSION"
	CodeLockNotObtained          = "LOCK_NOT_OBTAINED"
	CodeConcurrencyConflict      = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound                 = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput             = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState             = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidTransition        = NewDomainError(CodeInvalidTransition, "Status transition is not allowed")
	ErrPaymentExceedsBalance    = NewDomainError(CodePaymentExceedsBalance, "Payment amount exceeds the remaining balance")
	ErrInsufficientStock        = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrNoQuantityProvided       = NewDomainError(CodeNoQuantityProvided, "No quantity provided for any line")
	ErrPrivilegeDenied          = NewDomainError(CodePrivilegeDenied, "Your role does not allow this operation")
	ErrInvoicePreconditionUnmet = NewDomainError(CodeInvoicePreconditionUnmet, "Invoice cannot be generated for this order yet")
	ErrReceiptExceedsRemaining  = NewDomainError(CodeReceiptExceedsRemaining, "Received quantity exceeds the remaining quantity")
	ErrDuplicateSubmission      = NewDomainError(CodeDuplicateSubmission, "This submission has already been processed")
	ErrLockNotObtained          = NewDomainError(CodeLockNotObtained, "Record is being modified by another request")
	ErrConcurrencyConflict      = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// HasCode reports whether err is a DomainError carrying the given code
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
