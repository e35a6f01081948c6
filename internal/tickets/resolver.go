package tickets

import (
	"time"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/store"
)

// Channel is the way an admission code reaches a gate.
type Channel string

const (
	ChannelNFC Channel = "nfc" // code is the user's identification code
	ChannelQR  Channel = "qr"  // code is the ticket's own QR identifier
)

func (c Channel) Valid() bool {
	return c == ChannelNFC || c == ChannelQR
}

// Resolver maps an admission code to a concrete ticket that is valid for the
// target attraction right now.
type Resolver struct {
	tickets store.TicketStore
	users   store.UserStore
	events  store.EventStore
	now     func() time.Time
}

func NewResolver(
	tickets store.TicketStore,
	users store.UserStore,
	events store.EventStore,
) *Resolver {
	return &Resolver{
		tickets: tickets,
		users:   users,
		events:  events,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns the ticket admitting the holder of code to the attraction,
// together with the event for event tickets. On the NFC channel the user's
// tickets are scanned for the first valid one; on the QR channel the code
// names the ticket directly.
func (r *Resolver) Resolve(channel Channel, code, attractionName string) (*models.Ticket, *models.Event, error) {
	switch channel {
	case ChannelQR:
		ticket, err := r.tickets.GetByQRCode(code)
		if err != nil {
			return nil, nil, err
		}
		event, err := r.validate(ticket, attractionName)
		if err != nil {
			return nil, nil, err
		}
		return ticket, event, nil

	case ChannelNFC:
		if _, err := r.users.GetByCode(code); err != nil {
			if domain.IsNotFound(err) {
				return nil, nil, domain.NotFound(domain.ErrTicketInvalidCode, "code", code)
			}
			return nil, nil, err
		}
		candidates, err := r.tickets.GetByUserCode(code)
		if err != nil {
			return nil, nil, err
		}

		var rejection error
		for i := range candidates {
			ticket := &candidates[i]
			event, err := r.validate(ticket, attractionName)
			if err != nil {
				if rejection == nil {
					rejection = err
				}
				continue
			}
			return ticket, event, nil
		}
		if rejection != nil {
			return nil, nil, rejection
		}
		return nil, nil, domain.NotFound(domain.ErrTicketNotFound, "ticket", code)

	default:
		return nil, nil, domain.Invalid("channel", "must be nfc or qr")
	}
}

// ResolveUser identifies the guest behind an exit code without re-validating
// ticket rules.
func (r *Resolver) ResolveUser(channel Channel, code string) (*models.User, error) {
	switch channel {
	case ChannelNFC:
		return r.users.GetByCode(code)
	case ChannelQR:
		ticket, err := r.tickets.GetByQRCode(code)
		if err != nil {
			return nil, err
		}
		return r.users.GetByID(ticket.UserID)
	default:
		return nil, domain.Invalid("channel", "must be nfc or qr")
	}
}

// validate applies the ticket validity rules against the current moment: the
// visit date must be today, event tickets must cover the attraction inside
// the event window, and prior uses at the attraction may block re-entry.
func (r *Resolver) validate(ticket *models.Ticket, attractionName string) (*models.Event, error) {
	now := r.now()

	today := dateOf(now)
	visitDate := dateOf(ticket.VisitDate)
	if visitDate.Before(today) {
		return nil, domain.Conflict(domain.ErrTicketExpired, "ticket", ticket.QRCode)
	}
	if visitDate.After(today) {
		return nil, domain.Conflict(domain.ErrTicketNotValidForDate, "ticket", ticket.QRCode)
	}

	var event *models.Event
	if ticket.Kind == models.TicketEvent {
		if ticket.EventID == nil {
			return nil, domain.Invalid("ticket", "event ticket without event")
		}
		var err error
		event, err = r.events.GetByID(*ticket.EventID)
		if err != nil {
			return nil, err
		}
		if !event.Includes(attractionName) {
			return nil, domain.Conflict(domain.ErrTicketWrongAttraction, "ticket", ticket.QRCode)
		}
		if !event.InWindow(now) {
			return nil, domain.Conflict(domain.ErrTicketOutsideEventWindow, "ticket", ticket.QRCode)
		}
	}

	if err := r.checkUses(ticket, attractionName); err != nil {
		return nil, err
	}
	return event, nil
}

// checkUses enforces single admission per attraction for event tickets.
// General tickets may re-enter once the previous visit closed; while a visit
// is still open the admission guard rejects them before this is reached.
func (r *Resolver) checkUses(ticket *models.Ticket, attractionName string) error {
	if ticket.Kind != models.TicketEvent {
		return nil
	}
	uses, err := r.tickets.GetUses(ticket.ID, attractionName)
	if err != nil {
		return err
	}
	if len(uses) > 0 {
		return domain.Conflict(domain.ErrTicketAlreadyUsed, "ticket", ticket.QRCode)
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
