package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds surfaced at the orchestration boundary. Callers classify
// failures with errors.Is against these sentinels.
var (
	ErrInvalidFile           = errors.New("invalid file")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrExtractionParse       = errors.New("extraction response unparseable")
	ErrProviderRequest       = errors.New("provider request failed")
	ErrAlreadyProcessing     = errors.New("extraction already in progress")
	ErrFieldNotFound         = errors.New("field not found")
	ErrValidation            = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
