package models

import (
	"time"

	"gorm.io/gorm"
)

type TicketKind string

const (
	TicketGeneral TicketKind = "general"
	TicketEvent   TicketKind = "event"
)

type Ticket struct {
	gorm.Model
	QRCode      string     `json:"qr_code" gorm:"uniqueIndex"`
	Kind        TicketKind `json:"kind"`
	PurchasedAt time.Time  `json:"purchased_at"`
	VisitDate   time.Time  `json:"visit_date"`
	UserID      uint       `json:"user_id"`
	User        User       `json:"user"`
	EventID     *uint      `json:"event_id,omitempty"`
}

// TicketUse records a consumed admission of a ticket at an attraction. General
// tickets may accumulate one use per attraction visit; event tickets admit at
// most once per attraction.
type TicketUse struct {
	gorm.Model
	TicketID       uint   `json:"ticket_id"`
	AttractionName string `json:"attraction_name"`
	VisitID        uint   `json:"visit_id"`
}
