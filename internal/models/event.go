package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	Name        string       `json:"name" gorm:"uniqueIndex"`
	Description string       `json:"description"`
	StartsAt    time.Time    `json:"starts_at"`
	EndsAt      time.Time    `json:"ends_at"`
	Capacity    int          `json:"capacity"`
	Attractions []Attraction `json:"attractions" gorm:"many2many:event_attractions"`
}

// Includes reports whether the attraction takes part in the event.
func (e *Event) Includes(attractionName string) bool {
	for _, a := range e.Attractions {
		if a.Name == attractionName {
			return true
		}
	}
	return false
}

// InWindow reports whether the given moment falls inside the event hours.
func (e *Event) InWindow(at time.Time) bool {
	return !at.Before(e.StartsAt) && !at.After(e.EndsAt)
}
