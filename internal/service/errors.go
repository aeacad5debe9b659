package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeNotAuthorized    = "NOT_AUTHORIZED"
)

type Resource string

const (
	ResourceTask   Resource = "task"
	ResourceThread Resource = "thread"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

// AsBusinessError finds a *BusinessError anywhere in err's chain.
func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}

func NewNotAuthenticated() *BusinessError {
	return NewBusinessError(CodeNotAuthenticated, "You must be signed in to do that")
}

// NewRateLimited reports retry_after in whole seconds, never less than one.
func NewRateLimited(rule string, retryAfter time.Duration) *BusinessError {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return NewBusinessError(CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %d seconds", seconds),
		ToDetail("rule", rule),
		ToDetail("retry_after", seconds),
	)
}

func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewNotAuthorized(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotAuthorized,
		Message: fmt.Sprintf("You are not allowed to access %s %s", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Invalid value for '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

// newTransitionError reports a state change the entity refused.
func newTransitionError(err error) *BusinessError {
	busErr := NewValidationError("status", err.Error())
	busErr.Err = err
	return busErr
}
