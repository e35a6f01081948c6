package tickets

import (
	"time"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Issuer sells tickets. QR codes are opaque uuids printed on the ticket; NFC
// admission goes through the holder's identification code instead.
type Issuer struct {
	tickets store.TicketStore
	users   store.UserStore
	events  store.EventStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewIssuer(
	tickets store.TicketStore,
	users store.UserStore,
	events store.EventStore,
	logger *zap.Logger,
) *Issuer {
	return &Issuer{
		tickets: tickets,
		users:   users,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueGeneral sells a day ticket for the given visit date, which must not be
// in the past.
func (i *Issuer) IssueGeneral(userID uint, visitDate time.Time) (*models.Ticket, error) {
	if _, err := i.users.GetByID(userID); err != nil {
		return nil, err
	}

	now := i.now()
	if dateOf(visitDate).Before(dateOf(now)) {
		return nil, domain.Invalid("visit_date", "must not be in the past")
	}

	ticket := &models.Ticket{
		QRCode:      uuid.NewString(),
		Kind:        models.TicketGeneral,
		PurchasedAt: now,
		VisitDate:   visitDate,
		UserID:      userID,
	}
	if err := i.tickets.Save(ticket); err != nil {
		return nil, err
	}

	i.logger.Info("general ticket issued",
		zap.Uint("user_id", userID),
		zap.String("qr_code", ticket.QRCode))
	return ticket, nil
}

// IssueEvent sells an event ticket. The visit date is pinned to the event's
// start day; sales stop when the event capacity is reached or the event is
// over.
func (i *Issuer) IssueEvent(userID uint, eventName string) (*models.Ticket, error) {
	if _, err := i.users.GetByID(userID); err != nil {
		return nil, err
	}
	event, err := i.events.GetByName(eventName)
	if err != nil {
		return nil, err
	}

	now := i.now()
	if now.After(event.EndsAt) {
		return nil, domain.Invalid("event", "has already ended")
	}
	if event.Capacity > 0 {
		sold, err := i.tickets.CountForEvent(event.ID)
		if err != nil {
			return nil, err
		}
		if sold >= int64(event.Capacity) {
			return nil, domain.Conflict(domain.ErrCapacityReached, "event", eventName)
		}
	}

	ticket := &models.Ticket{
		QRCode:      uuid.NewString(),
		Kind:        models.TicketEvent,
		PurchasedAt: now,
		VisitDate:   dateOf(event.StartsAt),
		UserID:      userID,
		EventID:     &event.ID,
	}
	if err := i.tickets.Save(ticket); err != nil {
		return nil, err
	}

	i.logger.Info("event ticket issued",
		zap.Uint("user_id", userID),
		zap.String("event", eventName),
		zap.String("qr_code", ticket.QRCode))
	return ticket, nil
}
