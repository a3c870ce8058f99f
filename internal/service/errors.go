// Package service implements the expense approval and payment
// reconciliation workflows on top of the repositories.
package service

import "errors"

// ErrNotFound is returned when an expense or payment id does not resolve.
var ErrNotFound = errors.New("not found")

// ErrCrossSchool is returned when an actor's assigned school does not match
// the school owning the resource. The message deliberately carries no detail
// about the other school.
var ErrCrossSchool = errors.New("resource belongs to a different school")

// ValidationError reports malformed input. The operation aborts before any
// write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a business-rule violation: the request was
// well-formed but the current state forbids it.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Business-rule violations surfaced by the expense and payment services.
var (
	ErrNotPendingApproval = &ConflictError{Message: "expense is not pending approval"}
	ErrNotRejectable      = &ConflictError{Message: "expense cannot be rejected from its current status"}
	ErrRejectWithPayments = &ConflictError{Message: "cannot reject an expense with existing payments"}
	ErrDeleteWithPayments = &ConflictError{Message: "cannot delete an expense with existing payments"}
	ErrExpenseNotPayable  = &ConflictError{Message: "expense must be approved before recording payments"}
	ErrOverPayment        = &ConflictError{Message: "payment would exceed the remaining expense balance"}
)

// IsConflict reports whether err is a business-rule violation.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
