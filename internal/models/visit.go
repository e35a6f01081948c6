package models

import (
	"time"

	"gorm.io/gorm"
)

type Visit struct {
	gorm.Model
	UserID         uint       `json:"user_id"`
	User           User       `json:"user"`
	AttractionName string     `json:"attraction_name"`
	EnteredAt      time.Time  `json:"entered_at"`
	ExitedAt       *time.Time `json:"exited_at,omitempty"`
	Points         int        `json:"points"`
	StrategyName   string     `json:"strategy_name"`
	EventName      string     `json:"event_name,omitempty"`
}

// Open reports whether the guest is still inside the attraction.
func (v *Visit) Open() bool {
	return v.ExitedAt == nil
}
