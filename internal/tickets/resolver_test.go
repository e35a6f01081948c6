package tickets

import (
	"errors"
	"testing"
	"time"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupResolver(t *testing.T, now *time.Time) (*gorm.DB, *Resolver) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.User{}, &models.Attraction{}, &models.Event{},
		&models.Ticket{}, &models.TicketUse{})

	resolver := NewResolver(
		store.NewTicketStore(db),
		store.NewUserStore(db),
		store.NewEventStore(db),
	).WithClock(func() time.Time { return *now })

	return db, resolver
}

func TestResolveGeneralTicket(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	db, resolver := setupResolver(t, &now)

	user := models.User{Name: "alice", Email: "alice@example.com", IdentificationCode: "nfc-alice"}
	db.Create(&user)

	today := models.Ticket{QRCode: "qr-today", Kind: models.TicketGeneral, VisitDate: now, UserID: user.ID}
	yesterday := models.Ticket{QRCode: "qr-old", Kind: models.TicketGeneral, VisitDate: now.AddDate(0, 0, -1), UserID: user.ID}
	tomorrow := models.Ticket{QRCode: "qr-early", Kind: models.TicketGeneral, VisitDate: now.AddDate(0, 0, 1), UserID: user.ID}
	db.Create(&today)
	db.Create(&yesterday)
	db.Create(&tomorrow)

	t.Run("ValidToday", func(t *testing.T) {
		ticket, event, err := resolver.Resolve(ChannelQR, "qr-today", "T-Rex")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if ticket.QRCode != "qr-today" {
			t.Errorf("expected qr-today, got %s", ticket.QRCode)
		}
		if event != nil {
			t.Error("expected no event for a general ticket")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		_, _, err := resolver.Resolve(ChannelQR, "qr-old", "T-Rex")
		if !errors.Is(err, domain.ErrTicketExpired) {
			t.Fatalf("expected expired, got %v", err)
		}
	})

	t.Run("NotYetValid", func(t *testing.T) {
		_, _, err := resolver.Resolve(ChannelQR, "qr-early", "T-Rex")
		if !errors.Is(err, domain.ErrTicketNotValidForDate) {
			t.Fatalf("expected not valid for today, got %v", err)
		}
	})

	t.Run("UnknownCode", func(t *testing.T) {
		_, _, err := resolver.Resolve(ChannelQR, "qr-nope", "T-Rex")
		if !errors.Is(err, domain.ErrTicketInvalidCode) {
			t.Fatalf("expected invalid code, got %v", err)
		}
	})

	t.Run("UnknownChannel", func(t *testing.T) {
		_, _, err := resolver.Resolve(Channel("carrier-pigeon"), "qr-today", "T-Rex")
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestResolveEventTicket(t *testing.T) {
	now := time.Date(2025, 6, 15, 19, 30, 0, 0, time.UTC)
	db, resolver := setupResolver(t, &now)

	haunted := models.Attraction{Name: "Haunted House", Type: models.AttractionShow, Capacity: 30}
	db.Create(&haunted)

	event := models.Event{
		Name:        "Night of Terror",
		StartsAt:    time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC),
		EndsAt:      time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC),
		Attractions: []models.Attraction{haunted},
	}
	db.Create(&event)

	user := models.User{Name: "bob", Email: "bob@example.com", IdentificationCode: "nfc-bob"}
	db.Create(&user)

	ticket := models.Ticket{
		QRCode:    "qr-terror",
		Kind:      models.TicketEvent,
		VisitDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		UserID:    user.ID,
		EventID:   &event.ID,
	}
	db.Create(&ticket)

	t.Run("BeforeWindow", func(t *testing.T) {
		_, _, err := resolver.Resolve(ChannelQR, "qr-terror", "Haunted House")
		if !errors.Is(err, domain.ErrTicketOutsideEventWindow) {
			t.Fatalf("expected outside event window, got %v", err)
		}
	})

	t.Run("InsideWindow", func(t *testing.T) {
		now = time.Date(2025, 6, 15, 20, 5, 0, 0, time.UTC)
		resolved, ev, err := resolver.Resolve(ChannelQR, "qr-terror", "Haunted House")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if resolved.ID != ticket.ID {
			t.Errorf("expected ticket %d, got %d", ticket.ID, resolved.ID)
		}
		if ev == nil || ev.Name != "Night of Terror" {
			t.Fatalf("expected event Night of Terror, got %+v", ev)
		}
	})

	t.Run("WrongAttraction", func(t *testing.T) {
		now = time.Date(2025, 6, 15, 20, 5, 0, 0, time.UTC)
		_, _, err := resolver.Resolve(ChannelQR, "qr-terror", "T-Rex")
		if !errors.Is(err, domain.ErrTicketWrongAttraction) {
			t.Fatalf("expected wrong attraction, got %v", err)
		}
	})

	t.Run("SingleUsePerAttraction", func(t *testing.T) {
		now = time.Date(2025, 6, 15, 21, 0, 0, 0, time.UTC)
		use := models.TicketUse{TicketID: ticket.ID, AttractionName: "Haunted House", VisitID: 1}
		if err := db.Create(&use).Error; err != nil {
			t.Fatalf("failed to record use: %v", err)
		}
		_, _, err := resolver.Resolve(ChannelQR, "qr-terror", "Haunted House")
		if !errors.Is(err, domain.ErrTicketAlreadyUsed) {
			t.Fatalf("expected already used, got %v", err)
		}
	})
}

func TestResolveNFC(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	db, resolver := setupResolver(t, &now)

	user := models.User{Name: "carol", Email: "carol@example.com", IdentificationCode: "nfc-carol"}
	db.Create(&user)
	broke := models.User{Name: "dave", Email: "dave@example.com", IdentificationCode: "nfc-dave"}
	db.Create(&broke)

	// An expired ticket next to a valid one; the scan must pick the valid one.
	db.Create(&models.Ticket{QRCode: "qr-stale", Kind: models.TicketGeneral, VisitDate: now.AddDate(0, 0, -3), UserID: user.ID})
	db.Create(&models.Ticket{QRCode: "qr-fresh", Kind: models.TicketGeneral, VisitDate: now, UserID: user.ID})

	t.Run("PicksValidTicket", func(t *testing.T) {
		ticket, _, err := resolver.Resolve(ChannelNFC, "nfc-carol", "T-Rex")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if ticket.QRCode != "qr-fresh" {
			t.Errorf("expected qr-fresh, got %s", ticket.QRCode)
		}
	})

	t.Run("NoTickets", func(t *testing.T) {
		_, _, err := resolver.Resolve(ChannelNFC, "nfc-dave", "T-Rex")
		if !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected no valid ticket, got %v", err)
		}
	})

	t.Run("UnknownCode", func(t *testing.T) {
		_, _, err := resolver.Resolve(ChannelNFC, "nfc-nobody", "T-Rex")
		if !errors.Is(err, domain.ErrTicketInvalidCode) {
			t.Fatalf("expected invalid code, got %v", err)
		}
	})

	t.Run("KeepsFirstRejection", func(t *testing.T) {
		onlyStale := models.User{Name: "erin", Email: "erin@example.com", IdentificationCode: "nfc-erin"}
		db.Create(&onlyStale)
		db.Create(&models.Ticket{QRCode: "qr-erin", Kind: models.TicketGeneral, VisitDate: now.AddDate(0, 0, -1), UserID: onlyStale.ID})

		_, _, err := resolver.Resolve(ChannelNFC, "nfc-erin", "T-Rex")
		if !errors.Is(err, domain.ErrTicketExpired) {
			t.Fatalf("expected expired, got %v", err)
		}
	})
}

func TestResolveUser(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	db, resolver := setupResolver(t, &now)

	user := models.User{Name: "frank", Email: "frank@example.com", IdentificationCode: "nfc-frank"}
	db.Create(&user)
	db.Create(&models.Ticket{QRCode: "qr-frank", Kind: models.TicketGeneral, VisitDate: now, UserID: user.ID})

	byNFC, err := resolver.ResolveUser(ChannelNFC, "nfc-frank")
	if err != nil {
		t.Fatalf("resolve by nfc failed: %v", err)
	}
	byQR, err := resolver.ResolveUser(ChannelQR, "qr-frank")
	if err != nil {
		t.Fatalf("resolve by qr failed: %v", err)
	}
	if byNFC.ID != user.ID || byQR.ID != user.ID {
		t.Errorf("expected user %d on both channels, got %d and %d", user.ID, byNFC.ID, byQR.ID)
	}
}
