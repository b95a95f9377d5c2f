package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network or HTTP-level fetch errors
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParse represents markup or JSON parsing errors
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeValidation represents event validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConflict represents duplicate dedup-key conflicts
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeAuthorization represents admin authorization failures
	ErrorTypeAuthorization ErrorType = "authorization"
	// ErrorTypeNotFound represents missing entities
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a pipeline-specific error
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	return e.Type == ErrorTypeFetch
}

// IsType reports whether err is a ScrapeError of the given type.
func IsType(err error, t ErrorType) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type == t
	}
	return false
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(source, message string, err error) *ScrapeError {
	return New(ErrorTypeFetch, source, message, err)
}

// NewParse creates a new parse error
func NewParse(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParse, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *ScrapeError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConflict creates a new dedup-conflict error
func NewConflict(source, message string) *ScrapeError {
	return New(ErrorTypeConflict, source, message, nil)
}

// NewAuthorization creates a new authorization error
func NewAuthorization(message string) *ScrapeError {
	return New(ErrorTypeAuthorization, "", message, nil)
}

// NewNotFound creates a new not-found error
func NewNotFound(source, message string) *ScrapeError {
	return New(ErrorTypeNotFound, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
