package common

import (
	"context"
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

// Sentinel errors for the pipeline stages. Per-record validation failures use
// ErrValidation and never abort a file; the rest are fatal for the file that
// raised them and become a failed entry at the batch boundary.
var (
	ErrUnsupportedFormat       = errors.New("unsupported document format")
	ErrClassificationParse     = errors.New("classification response did not match the expected shape")
	ErrUnsupportedBank         = errors.New("unrecognized bank")
	ErrUnsupportedDocumentType = errors.New("unrecognized document type")
	ErrUnsupportedCombination  = errors.New("no extraction procedure registered for bank/document type")
	ErrExtractionParse         = errors.New("extraction response did not match the expected shape")
	ErrExtractionAuth          = errors.New("model authentication or quota failure")
	ErrRateLimited             = errors.New("model rate limit exceeded")
	ErrValidation              = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Retryable reports whether an error is transient at the model boundary:
// rate-limit pushback and timeouts qualify, auth/quota and parse failures do not.
func Retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, ErrExtractionAuth) {
		return false
	}
	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
