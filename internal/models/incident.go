package models

import (
	"time"

	"gorm.io/gorm"
)

// Incident takes an attraction out of service while active. Incidents created
// from preventive maintenance start inactive and carry the scheduled moment at
// which they become due.
type Incident struct {
	gorm.Model
	AttractionName string     `json:"attraction_name"`
	Description    string     `json:"description"`
	Active         bool       `json:"active"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	MaintenanceID  *uint      `json:"maintenance_id,omitempty"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty"`
}

// Pending reports whether the incident is scheduled but not yet active.
func (i *Incident) Pending() bool {
	return !i.Active && i.ResolvedAt == nil && i.ScheduledFor != nil
}

// Due reports whether a pending incident's scheduled moment has passed.
func (i *Incident) Due(at time.Time) bool {
	return i.Pending() && !at.Before(*i.ScheduledFor)
}
