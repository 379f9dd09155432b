package usecase

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTransport    = "TRANSPORT_ERROR"
	CodeDatabase     = "DATABASE_ERROR"
)

// DomainError is a failure the caller can act on: bad input, missing record.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps failures of an external collaborator.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func validationFailed(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, "; "),
		Fields:  errs,
	}
}

func invalidField(field, msg string) *DomainError {
	return validationFailed([]ValidationError{{Field: field, Message: msg}})
}

func notFound(err error, id string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s: %s", err.Error(), id),
		Err:     err,
	}
}

func databaseError(op string, err error) *TechnicalError {
	return &TechnicalError{
		Code:    CodeDatabase,
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}

func transportError(err error) *TechnicalError {
	return &TechnicalError{
		Code:    CodeTransport,
		Message: "email transport failed: " + err.Error(),
		Err:     err,
	}
}

// lookupFailed maps a repository read error onto NOT_FOUND or DATABASE_ERROR.
func lookupFailed(op string, err, sentinel error, id string) error {
	if errors.Is(err, sentinel) {
		return notFound(sentinel, id)
	}
	return databaseError(op, err)
}
