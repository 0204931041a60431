package error

import (
	"errors"
	"net/http"

	"github.com/kompas/kompas/internal/domain"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Conflict", Status: http.StatusConflict}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusConflict}
}

func NewConfigurationError(message string) *AppError {
	return &AppError{Code: "CONFIGURATION_ERROR", Message: message, Status: http.StatusUnprocessableEntity}
}

// MapError translates domain and repository errors into HTTP-facing errors
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrObjectiveTypeNotFound),
		errors.Is(err, domain.ErrObjectiveNotFound):
		return NewNotFound(err.Error())
	case errors.Is(err, domain.ErrDuplicateCode):
		return NewConflict(err.Error())
	case errors.Is(err, domain.ErrUnknownEntity),
		errors.Is(err, domain.ErrUnknownOperation),
		errors.Is(err, domain.ErrUnknownValueField),
		errors.Is(err, domain.ErrIncompatibleValueField),
		errors.Is(err, domain.ErrUnknownUnit):
		return NewConfigurationError(err.Error())
	case errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrMissingScope),
		errors.Is(err, domain.ErrScopeNotAllowed):
		return NewBadRequest(err.Error())
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
