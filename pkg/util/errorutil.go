package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds exposed in the response envelope.
const (
	KindInvalidArgument  = "INVALID_ARGUMENT"
	KindValidationFailed = "VALIDATION_FAILED"
	KindUnauthenticated  = "UNAUTHENTICATED"
	KindForbidden        = "FORBIDDEN"
	KindNotFound         = "NOT_FOUND"
	KindConflict         = "CONFLICT"
	KindInternal         = "INTERNAL"
)

// FieldError describes a single failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DomainError standardizes application errors.
type DomainError struct {
	Kind       string
	Message    string
	Field      string
	FieldErrs  []FieldError
	HTTPStatus int
	Reason     string
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind, message string, status int) *DomainError {
	return &DomainError{Kind: kind, Message: message, HTTPStatus: status}
}

func NewInvalidArgument(message string) error {
	return NewDomainError(KindInvalidArgument, message, http.StatusBadRequest)
}

// NewValidationFailed aggregates all field errors into one error so the
// caller gets a complete report in a single round trip.
func NewValidationFailed(fieldErrs []FieldError) error {
	err := NewDomainError(KindValidationFailed, "one or more fields failed validation", http.StatusBadRequest)
	err.FieldErrs = fieldErrs
	if len(fieldErrs) == 1 {
		err.Field = fieldErrs[0].Field
	}
	return err
}

func NewUnauthenticated(message string) error {
	return NewDomainError(KindUnauthenticated, message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return NewDomainError(KindForbidden, message, http.StatusForbidden)
}

func NewNotFound(what string) error {
	return NewDomainError(KindNotFound, fmt.Sprintf("%s not found", what), http.StatusNotFound)
}

func NewConflict(message, field string) error {
	err := NewDomainError(KindConflict, message, http.StatusConflict)
	err.Field = field
	return err
}

// NewInternal wraps an unexpected failure. The message stays generic so
// internal detail never reaches the caller; reason is a short machine tag
// used for observability only.
func NewInternal(reason string, cause error) error {
	return &DomainError{
		Kind:       KindInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Reason:     reason,
		Err:        cause,
	}
}

// ToDomainError converts generic errors to DomainError, defaulting to
// Internal for anything unrecognized.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	de, _ := NewInternal("unexpected", err).(*DomainError)
	return de
}
