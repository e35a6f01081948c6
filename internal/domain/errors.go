package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Not found
	ErrAttractionNotFound  = errors.New("attraction not found")
	ErrTicketNotFound      = errors.New("no valid ticket found")
	ErrIncidentNotFound    = errors.New("incident not found")
	ErrVisitNotFound       = errors.New("visit not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrStrategyNotFound    = errors.New("scoring strategy not found")
	ErrMaintenanceNotFound = errors.New("maintenance not found")
	ErrPluginNotFound      = errors.New("scoring plugin not found")

	// Validation
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidDateRange     = errors.New("start date must not be after end date")
	ErrInvalidScoringConfig = errors.New("invalid scoring strategy configuration")

	// Conflict
	ErrDuplicateName          = errors.New("name already in use")
	ErrCapacityReached        = errors.New("attraction capacity reached")
	ErrOutOfService           = errors.New("attraction is out of service")
	ErrIncidentAlreadyActive  = errors.New("attraction already has an active incident")
	ErrIncidentAlreadyClosed  = errors.New("incident is already resolved")
	ErrVisitAlreadyActive     = errors.New("visit already active")
	ErrStrategyAlreadyActive  = errors.New("another scoring strategy is already active")
	ErrStrategyActive         = errors.New("scoring strategy is active")
	ErrNoActiveStrategy       = errors.New("no active scoring strategy")
	ErrCannotDeleteAttraction = errors.New("attraction has active incidents or scheduled maintenance")

	// Ticket lifecycle
	ErrTicketInvalidCode        = errors.New("code does not resolve to a ticket")
	ErrTicketExpired            = errors.New("ticket has expired")
	ErrTicketAlreadyUsed        = errors.New("ticket already used for this attraction")
	ErrTicketNotValidForDate    = errors.New("ticket is not valid for today")
	ErrTicketWrongAttraction    = errors.New("ticket is not valid for this attraction")
	ErrTicketOutsideEventWindow = errors.New("ticket is not valid at this time")

	// Domain rules
	ErrAgeBelowMinimum = errors.New("user is below the minimum age")
	ErrNoActiveVisit   = errors.New("no active visit to exit from")
)

// NotFoundError carries the resource kind and lookup key of a failed lookup.
type NotFoundError struct {
	Sentinel error
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return e.Sentinel }

func NotFound(sentinel error, resource, key string) error {
	return &NotFoundError{Sentinel: sentinel, Resource: resource, Key: key}
}

// ConflictError carries the state that made a mutation impossible.
type ConflictError struct {
	Sentinel error
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Resource, e.Key, e.Sentinel)
}

func (e *ConflictError) Unwrap() error { return e.Sentinel }

func Conflict(sentinel error, resource, key string) error {
	return &ConflictError{Sentinel: sentinel, Resource: resource, Key: key}
}

// CapacityError reports an admission attempt against a full attraction.
type CapacityError struct {
	Attraction string
	Capacity   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("attraction %q is at capacity (%d)", e.Attraction, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityReached }

// AgeLimitError reports the threshold and the actual age of the rejected user.
type AgeLimitError struct {
	Attraction  string
	RequiredAge int
	ActualAge   int
}

func (e *AgeLimitError) Error() string {
	return fmt.Sprintf("attraction %q requires age %d, user is %d",
		e.Attraction, e.RequiredAge, e.ActualAge)
}

func (e *AgeLimitError) Unwrap() error { return ErrAgeBelowMinimum }

// ValidationError wraps ErrInvalidInput with a field-level explanation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAttractionNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrIncidentNotFound) ||
		errors.Is(err, ErrVisitNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrStrategyNotFound) ||
		errors.Is(err, ErrMaintenanceNotFound) ||
		errors.Is(err, ErrPluginNotFound)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidScoringConfig)
}

// IsConflict checks if the error is a conflict with current state
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrCapacityReached) ||
		errors.Is(err, ErrOutOfService) ||
		errors.Is(err, ErrIncidentAlreadyActive) ||
		errors.Is(err, ErrIncidentAlreadyClosed) ||
		errors.Is(err, ErrVisitAlreadyActive) ||
		errors.Is(err, ErrStrategyAlreadyActive) ||
		errors.Is(err, ErrStrategyActive) ||
		errors.Is(err, ErrNoActiveStrategy) ||
		errors.Is(err, ErrCannotDeleteAttraction)
}

// IsTicketRejection checks if the error is a ticket lifecycle rejection
func IsTicketRejection(err error) bool {
	return errors.Is(err, ErrTicketInvalidCode) ||
		errors.Is(err, ErrTicketExpired) ||
		errors.Is(err, ErrTicketAlreadyUsed) ||
		errors.Is(err, ErrTicketNotValidForDate) ||
		errors.Is(err, ErrTicketWrongAttraction) ||
		errors.Is(err, ErrTicketOutsideEventWindow)
}
