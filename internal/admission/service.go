package admission

import (
	"errors"
	"time"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/incidents"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/scoring"
	"github.com/NBS282/themepark-api/internal/store"
	"github.com/NBS282/themepark-api/internal/tickets"
	"go.uber.org/zap"
)

// Service decides whether a ticket presented at a gate admits its holder,
// and tracks the resulting visits and occupancy.
type Service struct {
	attractions store.AttractionStore
	visits      store.VisitStore
	users       store.UserStore
	resolver    *tickets.Resolver
	tracker     *incidents.Tracker
	engine      *scoring.Engine
	tx          store.TxRunner
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	attractions store.AttractionStore,
	visits store.VisitStore,
	users store.UserStore,
	resolver *tickets.Resolver,
	tracker *incidents.Tracker,
	engine *scoring.Engine,
	tx store.TxRunner,
	logger *zap.Logger,
) *Service {
	return &Service{
		attractions: attractions,
		visits:      visits,
		users:       users,
		resolver:    resolver,
		tracker:     tracker,
		engine:      engine,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ValidateAndRegisterAccess runs the gate checks in order, each failing with
// its own error kind: attraction exists, in service, below capacity, ticket
// valid for this attraction today, user exists, old enough, no open visit
// here yet. On success it opens a visit, scores it and bumps occupancy.
func (s *Service) ValidateAndRegisterAccess(attractionName string, channel tickets.Channel, code string) (*models.Visit, error) {
	attraction, err := s.attractions.GetByName(attractionName)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.ActivateDue(attraction); err != nil {
		return nil, err
	}
	if attraction.OutOfService {
		return nil, domain.Conflict(domain.ErrOutOfService, "attraction", attractionName)
	}

	if attraction.Full() {
		return nil, &domain.CapacityError{Attraction: attractionName, Capacity: attraction.Capacity}
	}

	ticket, event, err := s.resolver.Resolve(channel, code, attractionName)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ticket.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if age := user.Age(now); age < attraction.MinimumAge {
		return nil, &domain.AgeLimitError{
			Attraction:  attractionName,
			RequiredAge: attraction.MinimumAge,
			ActualAge:   age,
		}
	}

	if _, err := s.visits.GetOpen(user.ID, attractionName); err == nil {
		return nil, domain.Conflict(domain.ErrVisitAlreadyActive, "attraction", attractionName)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	visit := &models.Visit{
		UserID:         user.ID,
		AttractionName: attractionName,
		EnteredAt:      now,
	}
	if event != nil {
		visit.EventName = event.Name
	}

	s.scoreVisit(visit, user.ID)

	// The visit, the ticket use and the occupancy bump land together or not
	// at all; a gate left half-admitted would overfill the attraction.
	err = s.tx.InTransaction(func(tx store.Stores) error {
		if err := tx.Visits.Save(visit); err != nil {
			return err
		}
		use := &models.TicketUse{
			TicketID:       ticket.ID,
			AttractionName: attractionName,
			VisitID:        visit.ID,
		}
		if err := tx.Tickets.SaveUse(use); err != nil {
			return err
		}
		attraction.Occupancy++
		return tx.Attractions.Save(attraction)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("access registered",
		zap.String("attraction", attractionName),
		zap.Uint("user_id", user.ID),
		zap.Int("points", visit.Points))

	return visit, nil
}

// RegisterExit closes the guest's open visit at the attraction and frees one
// occupancy slot. The code only identifies the guest; ticket rules are not
// re-checked on the way out.
func (s *Service) RegisterExit(attractionName string, channel tickets.Channel, code string) (*models.Visit, error) {
	attraction, err := s.attractions.GetByName(attractionName)
	if err != nil {
		return nil, err
	}

	user, err := s.resolver.ResolveUser(channel, code)
	if err != nil {
		return nil, err
	}

	visit, err := s.visits.GetOpen(user.ID, attractionName)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.Conflict(domain.ErrNoActiveVisit, "attraction", attractionName)
		}
		return nil, err
	}

	now := s.now()
	visit.ExitedAt = &now
	err = s.tx.InTransaction(func(tx store.Stores) error {
		if err := tx.Visits.Update(visit); err != nil {
			return err
		}
		if attraction.Occupancy > 0 {
			attraction.Occupancy--
		}
		return tx.Attractions.Save(attraction)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("exit registered",
		zap.String("attraction", attractionName),
		zap.Uint("user_id", user.ID))

	return visit, nil
}

// GetCapacity returns the attraction snapshot after giving due scheduled
// maintenance a chance to activate.
func (s *Service) GetCapacity(attractionName string) (*models.Attraction, error) {
	attraction, err := s.attractions.GetByName(attractionName)
	if err != nil {
		return nil, err
	}
	if err := s.tracker.ActivateDue(attraction); err != nil {
		return nil, err
	}
	return attraction, nil
}

// GetUsageReport counts visits per attraction whose entry falls in
// [start, end].
func (s *Service) GetUsageReport(start, end time.Time) (map[string]int, error) {
	if start.After(end) {
		return nil, domain.ErrInvalidDateRange
	}

	visits, err := s.visits.GetByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	report := make(map[string]int)
	for _, v := range visits {
		report[v.AttractionName]++
	}
	return report, nil
}

// scoreVisit attaches points from the active strategy. Scoring problems are
// logged and leave the visit at zero points; a misconfigured rewards program
// must not shut the gates.
func (s *Service) scoreVisit(visit *models.Visit, userID uint) {
	prior, err := s.visits.GetByUser(userID)
	if err != nil {
		s.logger.Warn("loading prior visits failed", zap.Error(err))
		return
	}

	points, strategyName, err := s.engine.CalculateVisitPoints(*visit, prior)
	if err != nil {
		if !errors.Is(err, domain.ErrNoActiveStrategy) {
			s.logger.Warn("scoring failed", zap.Error(err))
		}
		return
	}
	visit.Points = points
	visit.StrategyName = strategyName
}
