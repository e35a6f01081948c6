package handlers

import (
	"errors"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/danielgtaylor/huma/v2"
)

// mapDomainError translates typed domain failures into HTTP status errors.
// Anything unclassified is an internal failure and is reported as such.
func mapDomainError(err error) error {
	switch {
	case domain.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case domain.IsValidation(err):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, domain.ErrNoActiveVisit):
		return huma.Error409Conflict(err.Error())
	case domain.IsConflict(err):
		return huma.Error409Conflict(err.Error())
	case domain.IsTicketRejection(err):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrAgeBelowMinimum):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	return huma.Error500InternalServerError("Unexpected error: " + err.Error())
}
