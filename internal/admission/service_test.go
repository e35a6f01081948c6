package admission

import (
	"errors"
	"testing"
	"time"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/incidents"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/scoring"
	"github.com/NBS282/themepark-api/internal/store"
	"github.com/NBS282/themepark-api/internal/tickets"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db          *gorm.DB
	svc         *Service
	tracker     *incidents.Tracker
	engine      *scoring.Engine
	attractions store.AttractionStore
	visits      store.VisitStore
	users       store.UserStore
	resolver    *tickets.Resolver
	clock       func() time.Time
}

// setupService wires the service against an in-memory DB with a clock pinned
// to *now; tests advance time by moving the pointer's value.
func setupService(t *testing.T, now *time.Time) *serviceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.User{}, &models.Attraction{}, &models.Event{},
		&models.Ticket{}, &models.TicketUse{}, &models.Visit{},
		&models.Incident{}, &models.Maintenance{}, &models.ScoringStrategy{})

	clock := func() time.Time { return *now }
	logger := zap.NewNop()

	attractionStore := store.NewAttractionStore(db)
	userStore := store.NewUserStore(db)
	ticketStore := store.NewTicketStore(db)
	eventStore := store.NewEventStore(db)
	visitStore := store.NewVisitStore(db)
	incidentStore := store.NewIncidentStore(db)
	maintenanceStore := store.NewMaintenanceStore(db)
	strategyStore := store.NewStrategyStore(db)

	tracker := incidents.NewTracker(attractionStore, incidentStore, maintenanceStore, nil, logger).WithClock(clock)
	resolver := tickets.NewResolver(ticketStore, userStore, eventStore).WithClock(clock)
	engine := scoring.NewEngine(strategyStore, attractionStore, nil, logger)
	txRunner := store.NewTxRunner(db)
	svc := NewService(attractionStore, visitStore, userStore, resolver, tracker, engine, txRunner, logger).WithClock(clock)

	return &serviceFixture{
		db:          db,
		svc:         svc,
		tracker:     tracker,
		engine:      engine,
		attractions: attractionStore,
		visits:      visitStore,
		users:       userStore,
		resolver:    resolver,
		clock:       clock,
	}
}

func createGuest(t *testing.T, db *gorm.DB, name, code string, birth time.Time) models.User {
	t.Helper()
	user := models.User{
		Name:               name,
		Email:              name + "@example.com",
		IdentificationCode: code,
		BirthDate:          birth,
		Role:               models.RoleVisitor,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create guest %s: %v", name, err)
	}
	return user
}

func createGeneralTicket(t *testing.T, db *gorm.DB, userID uint, qrCode string, visitDate time.Time) models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		QRCode:      qrCode,
		Kind:        models.TicketGeneral,
		PurchasedAt: visitDate.Add(-72 * time.Hour),
		VisitDate:   visitDate,
		UserID:      userID,
	}
	if err := db.Create(&ticket).Error; err != nil {
		t.Fatalf("failed to create ticket %s: %v", qrCode, err)
	}
	return ticket
}

func occupancyOf(t *testing.T, s store.AttractionStore, name string) int {
	t.Helper()
	attraction, err := s.GetByName(name)
	if err != nil {
		t.Fatalf("failed to reload attraction %s: %v", name, err)
	}
	return attraction.Occupancy
}

func TestValidateAndRegisterAccess(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	f.db.Create(&models.Attraction{
		Name:       "T-Rex",
		Type:       models.AttractionRollerCoaster,
		MinimumAge: 12,
		Capacity:   2,
	})

	alice := createGuest(t, f.db, "alice", "nfc-alice", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	bob := createGuest(t, f.db, "bob", "nfc-bob", time.Date(2008, 3, 20, 0, 0, 0, 0, time.UTC))
	carol := createGuest(t, f.db, "carol", "nfc-carol", time.Date(2005, 9, 9, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, alice.ID, "qr-alice", now)
	createGeneralTicket(t, f.db, bob.ID, "qr-bob", now)
	createGeneralTicket(t, f.db, carol.ID, "qr-carol", now)

	t.Run("FirstEntry", func(t *testing.T) {
		visit, err := f.svc.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-alice")
		if err != nil {
			t.Fatalf("first entry failed: %v", err)
		}
		if !visit.Open() {
			t.Error("expected an open visit")
		}
		if got := occupancyOf(t, f.attractions, "T-Rex"); got != 1 {
			t.Errorf("expected occupancy 1, got %d", got)
		}
	})

	t.Run("DuplicateEntry", func(t *testing.T) {
		_, err := f.svc.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-alice")
		if !errors.Is(err, domain.ErrVisitAlreadyActive) {
			t.Fatalf("expected visit already active, got %v", err)
		}
		if got := occupancyOf(t, f.attractions, "T-Rex"); got != 1 {
			t.Errorf("expected occupancy to stay at 1, got %d", got)
		}
	})

	t.Run("SecondGuest", func(t *testing.T) {
		if _, err := f.svc.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-bob"); err != nil {
			t.Fatalf("second entry failed: %v", err)
		}
		if got := occupancyOf(t, f.attractions, "T-Rex"); got != 2 {
			t.Errorf("expected occupancy 2, got %d", got)
		}
	})

	t.Run("AtCapacity", func(t *testing.T) {
		_, err := f.svc.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-carol")
		var capErr *domain.CapacityError
		if !errors.As(err, &capErr) {
			t.Fatalf("expected capacity error, got %v", err)
		}
		if capErr.Capacity != 2 {
			t.Errorf("expected reported capacity 2, got %d", capErr.Capacity)
		}
	})

	t.Run("ExitFreesSlot", func(t *testing.T) {
		visit, err := f.svc.RegisterExit("T-Rex", tickets.ChannelQR, "qr-alice")
		if err != nil {
			t.Fatalf("exit failed: %v", err)
		}
		if visit.ExitedAt == nil {
			t.Fatal("expected exit timestamp to be set")
		}
		if got := occupancyOf(t, f.attractions, "T-Rex"); got != 1 {
			t.Errorf("expected occupancy 1 after exit, got %d", got)
		}
		if _, err := f.svc.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-carol"); err != nil {
			t.Fatalf("entry into freed slot failed: %v", err)
		}
	})

	t.Run("ExitWithoutVisit", func(t *testing.T) {
		_, err := f.svc.RegisterExit("T-Rex", tickets.ChannelQR, "qr-alice")
		if !errors.Is(err, domain.ErrNoActiveVisit) {
			t.Fatalf("expected no active visit, got %v", err)
		}
	})

	t.Run("UnknownAttraction", func(t *testing.T) {
		_, err := f.svc.ValidateAndRegisterAccess("Ghost Coaster", tickets.ChannelQR, "qr-alice")
		if !domain.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestValidateAndRegisterAccessReentry(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	f.db.Create(&models.Attraction{
		Name:     "Space Loop",
		Type:     models.AttractionRollerCoaster,
		Capacity: 10,
	})
	guest := createGuest(t, f.db, "dana", "nfc-dana", time.Date(2000, 5, 5, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, guest.ID, "qr-dana", now)

	if _, err := f.svc.ValidateAndRegisterAccess("Space Loop", tickets.ChannelQR, "qr-dana"); err != nil {
		t.Fatalf("first entry failed: %v", err)
	}
	now = now.Add(30 * time.Minute)
	if _, err := f.svc.RegisterExit("Space Loop", tickets.ChannelQR, "qr-dana"); err != nil {
		t.Fatalf("exit failed: %v", err)
	}
	now = now.Add(time.Hour)
	if _, err := f.svc.ValidateAndRegisterAccess("Space Loop", tickets.ChannelQR, "qr-dana"); err != nil {
		t.Fatalf("re-entry after exit failed: %v", err)
	}

	var count int64
	f.db.Model(&models.Visit{}).Where("user_id = ?", guest.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 visits on record, got %d", count)
	}
}

// brokenAttractionStore refuses writes, standing in for a storage failure in
// the middle of an admission.
type brokenAttractionStore struct {
	store.AttractionStore
}

func (brokenAttractionStore) Save(*models.Attraction) error {
	return errors.New("attraction write failed")
}

type brokenOccupancyRunner struct {
	inner store.TxRunner
}

func (r brokenOccupancyRunner) InTransaction(fn func(tx store.Stores) error) error {
	return r.inner.InTransaction(func(tx store.Stores) error {
		return fn(store.Stores{
			Attractions: brokenAttractionStore{tx.Attractions},
			Visits:      tx.Visits,
			Tickets:     tx.Tickets,
		})
	})
}

func TestValidateAndRegisterAccessRollsBackOnWriteFailure(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	f.db.Create(&models.Attraction{
		Name:     "T-Rex",
		Type:     models.AttractionRollerCoaster,
		Capacity: 2,
	})
	guest := createGuest(t, f.db, "nils", "nfc-nils", time.Date(1996, 8, 8, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, guest.ID, "qr-nils", now)

	broken := NewService(f.attractions, f.visits, f.users, f.resolver, f.tracker, f.engine,
		brokenOccupancyRunner{inner: store.NewTxRunner(f.db)}, zap.NewNop()).WithClock(f.clock)

	if _, err := broken.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-nils"); err == nil {
		t.Fatal("expected the failed occupancy write to surface")
	}

	// The failed admission must leave no trace: no visit, no ticket use, no
	// occupancy drift.
	var visitCount, useCount int64
	f.db.Model(&models.Visit{}).Where("user_id = ?", guest.ID).Count(&visitCount)
	if visitCount != 0 {
		t.Errorf("expected no visit rows after rollback, got %d", visitCount)
	}
	f.db.Model(&models.TicketUse{}).Count(&useCount)
	if useCount != 0 {
		t.Errorf("expected no ticket use rows after rollback, got %d", useCount)
	}
	if got := occupancyOf(t, f.attractions, "T-Rex"); got != 0 {
		t.Errorf("expected occupancy 0 after rollback, got %d", got)
	}

	// With a healthy runner the same guest gets in cleanly.
	if _, err := f.svc.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-nils"); err != nil {
		t.Fatalf("entry after the failed attempt was rejected: %v", err)
	}
	if got := occupancyOf(t, f.attractions, "T-Rex"); got != 1 {
		t.Errorf("expected occupancy 1, got %d", got)
	}
}

func TestValidateAndRegisterAccessOutOfService(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	f.db.Create(&models.Attraction{
		Name:     "Hyper Drop",
		Type:     models.AttractionRollerCoaster,
		Capacity: 5,
	})
	guest := createGuest(t, f.db, "erik", "nfc-erik", time.Date(1999, 2, 2, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, guest.ID, "qr-erik", now)

	incident, err := f.tracker.CreateIncident("Hyper Drop", "harness jammed")
	if err != nil {
		t.Fatalf("failed to open incident: %v", err)
	}

	_, err = f.svc.ValidateAndRegisterAccess("Hyper Drop", tickets.ChannelQR, "qr-erik")
	if !errors.Is(err, domain.ErrOutOfService) {
		t.Fatalf("expected out of service, got %v", err)
	}

	if _, err := f.tracker.ResolveIncident("Hyper Drop", incident.ID); err != nil {
		t.Fatalf("failed to resolve incident: %v", err)
	}
	if _, err := f.svc.ValidateAndRegisterAccess("Hyper Drop", tickets.ChannelQR, "qr-erik"); err != nil {
		t.Fatalf("entry after resolution failed: %v", err)
	}
}

func TestValidateAndRegisterAccessAgeBoundary(t *testing.T) {
	now := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	f.db.Create(&models.Attraction{
		Name:       "Vertigo",
		Type:       models.AttractionSimulator,
		MinimumAge: 18,
		Capacity:   4,
	})

	// Birthday is today: exactly 18, admitted.
	birthday := createGuest(t, f.db, "fiona", "nfc-fiona", time.Date(2007, 6, 15, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, birthday.ID, "qr-fiona", now)
	if _, err := f.svc.ValidateAndRegisterAccess("Vertigo", tickets.ChannelQR, "qr-fiona"); err != nil {
		t.Fatalf("guest turning 18 today was rejected: %v", err)
	}

	// Birthday is tomorrow: still 17, rejected.
	younger := createGuest(t, f.db, "gus", "nfc-gus", time.Date(2007, 6, 16, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, younger.ID, "qr-gus", now)
	_, err := f.svc.ValidateAndRegisterAccess("Vertigo", tickets.ChannelQR, "qr-gus")
	var ageErr *domain.AgeLimitError
	if !errors.As(err, &ageErr) {
		t.Fatalf("expected age limit error, got %v", err)
	}
	if ageErr.ActualAge != 17 || ageErr.RequiredAge != 18 {
		t.Errorf("expected 17 vs required 18, got %d vs %d", ageErr.ActualAge, ageErr.RequiredAge)
	}
}

func TestValidateAndRegisterAccessScoresVisit(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	f.db.Create(&models.Attraction{
		Name:     "T-Rex",
		Type:     models.AttractionRollerCoaster,
		Capacity: 5,
	})
	guest := createGuest(t, f.db, "hana", "nfc-hana", time.Date(1998, 4, 4, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, guest.ID, "qr-hana", now)

	if _, err := f.engine.CreateStrategy(scoring.CreateStrategyInput{
		Name:   "type-points",
		Kind:   models.StrategyPerAttraction,
		Config: []byte(`{"points":{"roller_coaster":10}}`),
	}); err != nil {
		t.Fatalf("failed to create strategy: %v", err)
	}
	if _, err := f.engine.ToggleActive("type-points"); err != nil {
		t.Fatalf("failed to activate strategy: %v", err)
	}

	visit, err := f.svc.ValidateAndRegisterAccess("T-Rex", tickets.ChannelQR, "qr-hana")
	if err != nil {
		t.Fatalf("entry failed: %v", err)
	}
	if visit.Points != 10 {
		t.Errorf("expected 10 points, got %d", visit.Points)
	}
	if visit.StrategyName != "type-points" {
		t.Errorf("expected strategy name stamped on visit, got %q", visit.StrategyName)
	}
}

func TestValidateAndRegisterAccessActivatesDueMaintenance(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	f.db.Create(&models.Attraction{
		Name:     "Rapids",
		Type:     models.AttractionInteractiveZone,
		Capacity: 8,
	})
	guest := createGuest(t, f.db, "ivan", "nfc-ivan", time.Date(1995, 7, 7, 0, 0, 0, 0, time.UTC))
	createGeneralTicket(t, f.db, guest.ID, "qr-ivan", now)

	if _, err := f.tracker.SchedulePreventiveMaintenance(&models.Maintenance{
		AttractionName:  "Rapids",
		ScheduledFor:    now.Add(time.Hour),
		DurationMinutes: 90,
		Description:     "pump inspection",
	}); err != nil {
		t.Fatalf("failed to schedule maintenance: %v", err)
	}

	// Before the scheduled start the gate stays open.
	if _, err := f.svc.ValidateAndRegisterAccess("Rapids", tickets.ChannelQR, "qr-ivan"); err != nil {
		t.Fatalf("entry before maintenance start failed: %v", err)
	}
	if _, err := f.svc.RegisterExit("Rapids", tickets.ChannelQR, "qr-ivan"); err != nil {
		t.Fatalf("exit failed: %v", err)
	}

	now = now.Add(2 * time.Hour)
	_, err := f.svc.ValidateAndRegisterAccess("Rapids", tickets.ChannelQR, "qr-ivan")
	if !errors.Is(err, domain.ErrOutOfService) {
		t.Fatalf("expected out of service after maintenance start, got %v", err)
	}

	snapshot, err := f.svc.GetCapacity("Rapids")
	if err != nil {
		t.Fatalf("capacity read failed: %v", err)
	}
	if !snapshot.OutOfService {
		t.Error("expected capacity snapshot to show out of service")
	}
}

func TestGetUsageReport(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	f := setupService(t, &now)

	start := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)

	if _, err := f.svc.GetUsageReport(end, start); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected invalid date range, got %v", err)
	}

	f.db.Create(&models.Visit{UserID: 1, AttractionName: "T-Rex", EnteredAt: start.Add(10 * time.Hour)})
	f.db.Create(&models.Visit{UserID: 2, AttractionName: "T-Rex", EnteredAt: start.Add(12 * time.Hour)})
	f.db.Create(&models.Visit{UserID: 1, AttractionName: "Rapids", EnteredAt: start.Add(14 * time.Hour)})
	// Outside the window.
	f.db.Create(&models.Visit{UserID: 3, AttractionName: "T-Rex", EnteredAt: start.Add(-2 * time.Hour)})

	report, err := f.svc.GetUsageReport(start, end)
	if err != nil {
		t.Fatalf("usage report failed: %v", err)
	}
	if report["T-Rex"] != 2 {
		t.Errorf("expected 2 T-Rex visits, got %d", report["T-Rex"])
	}
	if report["Rapids"] != 1 {
		t.Errorf("expected 1 Rapids visit, got %d", report["Rapids"])
	}
}
