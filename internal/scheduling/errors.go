package scheduling

import (
	"errors"
	"fmt"
)

// Reason codes carried by ValidationError. They are part of the API
// contract and must stay stable.
const (
	ReasonSelfBooking          = "self_booking"
	ReasonPastDate             = "past_date"
	ReasonOutsideBusinessHours = "outside_business_hours"
	ReasonInvalidType          = "invalid_type"
)

// ValidationError rejects a booking request before any side effect runs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "appointment validation failed: " + e.Reason
}

func validationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// ErrProviderNotFound означает, что запрошенный провайдер не существует.
var ErrProviderNotFound = errors.New("provider not found")

// DependencyError wraps a collaborator failure so the boundary layer can
// distinguish it from business rejections.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func dependencyError(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
