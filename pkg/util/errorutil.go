package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/platformhq/support-service/internal/domain"
)

// DomainError standardizes application errors at the transport boundary.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
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
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewUnprocessable(code, message string) error {
	return NewDomainError(code, message, http.StatusUnprocessableEntity, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts service and store errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return &DomainError{
			Code:       "NOT_FOUND",
			Message:    notFound.Error(),
			HTTPStatus: http.StatusNotFound,
			Details:    map[string]any{"resource": notFound.Resource, "id": notFound.ID},
		}
	}
	var invalidTransition *domain.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return &DomainError{
			Code:       "INVALID_STATUS_TRANSITION",
			Message:    invalidTransition.Error(),
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"from": invalidTransition.From, "to": invalidTransition.To},
		}
	}
	var ratingErr *domain.RatingError
	if errors.As(err, &ratingErr) {
		return &DomainError{
			Code:       "TICKET_RATING_REJECTED",
			Message:    ratingErr.Error(),
			HTTPStatus: http.StatusUnprocessableEntity,
		}
	}
	var allocErr *domain.AllocationError
	if errors.As(err, &allocErr) {
		return &DomainError{
			Code:       "SEQUENCE_ALLOCATION_FAILED",
			Message:    "could not allocate ticket number",
			HTTPStatus: http.StatusInternalServerError,
			Err:        allocErr,
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{Code: "INTERNAL_ERROR", Message: "internal server error", HTTPStatus: http.StatusInternalServerError, Err: err}
}
