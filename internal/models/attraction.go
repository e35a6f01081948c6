package models

import (
	"gorm.io/gorm"
)

type AttractionType string

const (
	AttractionRollerCoaster   AttractionType = "roller_coaster"
	AttractionSimulator       AttractionType = "simulator"
	AttractionShow            AttractionType = "show"
	AttractionInteractiveZone AttractionType = "interactive_zone"
)

func (t AttractionType) Valid() bool {
	switch t {
	case AttractionRollerCoaster, AttractionSimulator, AttractionShow, AttractionInteractiveZone:
		return true
	}
	return false
}

type Attraction struct {
	gorm.Model
	Name         string         `json:"name" gorm:"uniqueIndex"`
	Type         AttractionType `json:"type"`
	MinimumAge   int            `json:"minimum_age"`
	Capacity     int            `json:"capacity"`
	Occupancy    int            `json:"occupancy"`
	Description  string         `json:"description"`
	OutOfService bool           `json:"out_of_service"`
}

// Full reports whether another guest can be admitted.
func (a *Attraction) Full() bool {
	return a.Occupancy >= a.Capacity
}
