package models

import (
	"time"

	"gorm.io/gorm"
)

type Maintenance struct {
	gorm.Model
	AttractionName  string    `json:"attraction_name"`
	ScheduledFor    time.Time `json:"scheduled_for"`
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description"`
	IncidentID      uint      `json:"incident_id"`
}
