package usecase

import (
	"errors"
	"strings"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrNotConfigured      = errors.New("not configured")
	ErrLeadNotFound       = entity.ErrLeadNotFound
)

// DomainError is a failure caused by the caller's input. Handlers surface it as-is.
type DomainError struct {
	Code    string
	Message string
	Fields  map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure on a path that must succeed.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(errs ValidationErrors) *DomainError {
	fields := make(map[string]string, len(errs))
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if _, seen := fields[e.Field]; !seen {
			fields[e.Field] = e.Message
		}
		parts = append(parts, e.Error())
	}
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}
