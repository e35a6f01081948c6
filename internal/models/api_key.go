package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey authenticates unattended gate readers that cannot hold a session.
type APIKey struct {
	gorm.Model
	UserID     uint       `json:"user_id"`
	User       User       `json:"user"`
	Key        string     `json:"key" gorm:"uniqueIndex"`
	Label      string     `json:"label"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
