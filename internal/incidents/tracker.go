package incidents

import (
	"time"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/notifier"
	"github.com/NBS282/themepark-api/internal/store"
	"go.uber.org/zap"
)

// Tracker manages incident state per attraction. An incident is either active
// (the attraction is out of service), pending (scheduled maintenance whose
// start has not yet passed) or resolved. Pending incidents activate lazily:
// there is no scheduler, activation happens when attraction state is read.
type Tracker struct {
	attractions  store.AttractionStore
	incidents    store.IncidentStore
	maintenances store.MaintenanceStore
	notifier     notifier.Notifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewTracker(
	attractions store.AttractionStore,
	incidents store.IncidentStore,
	maintenances store.MaintenanceStore,
	n notifier.Notifier,
	logger *zap.Logger,
) *Tracker {
	return &Tracker{
		attractions:  attractions,
		incidents:    incidents,
		maintenances: maintenances,
		notifier:     n,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// CreateIncident opens an active incident and takes the attraction out of
// service. Fails while another incident is already active there.
func (t *Tracker) CreateIncident(attractionName, description string) (*models.Incident, error) {
	attraction, err := t.attractions.GetByName(attractionName)
	if err != nil {
		return nil, err
	}

	active, err := t.incidents.GetActiveByAttraction(attractionName)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, domain.Conflict(domain.ErrIncidentAlreadyActive, "attraction", attractionName)
	}

	incident := &models.Incident{
		AttractionName: attractionName,
		Description:    description,
		Active:         true,
	}
	if err := t.incidents.Save(incident); err != nil {
		return nil, err
	}

	attraction.OutOfService = true
	if err := t.attractions.Save(attraction); err != nil {
		return nil, err
	}

	t.notifyOpened(attractionName, *incident)
	t.logger.Info("incident opened",
		zap.String("attraction", attractionName),
		zap.Uint("incident_id", incident.ID))

	return incident, nil
}

// ResolveIncident closes an incident. The attraction returns to service only
// when no other active incidents remain; a linked maintenance record is
// removed together with its incident.
func (t *Tracker) ResolveIncident(attractionName string, incidentID uint) (*models.Incident, error) {
	attraction, err := t.attractions.GetByName(attractionName)
	if err != nil {
		return nil, err
	}

	incident, err := t.incidents.GetByID(incidentID)
	if err != nil {
		return nil, err
	}
	if incident.AttractionName != attractionName {
		return nil, domain.NotFound(domain.ErrIncidentNotFound, "incident", attractionName)
	}
	if incident.ResolvedAt != nil {
		return nil, domain.Conflict(domain.ErrIncidentAlreadyClosed, "incident", incident.Description)
	}

	if err := t.closeIncident(attraction, incident); err != nil {
		return nil, err
	}

	if incident.MaintenanceID != nil {
		if err := t.maintenances.Delete(*incident.MaintenanceID); err != nil && !domain.IsNotFound(err) {
			return nil, err
		}
	}

	t.notifyResolved(attractionName, *incident)
	t.logger.Info("incident resolved",
		zap.String("attraction", attractionName),
		zap.Uint("incident_id", incident.ID))

	return incident, nil
}

// SchedulePreventiveMaintenance creates the maintenance record together with
// a pending incident carrying the scheduled start. The attraction stays in
// service until the start passes.
func (t *Tracker) SchedulePreventiveMaintenance(m *models.Maintenance) (*models.Maintenance, error) {
	if _, err := t.attractions.GetByName(m.AttractionName); err != nil {
		return nil, err
	}
	if m.DurationMinutes <= 0 {
		return nil, domain.Invalid("duration_minutes", "must be positive")
	}
	if !m.ScheduledFor.After(t.now()) {
		return nil, domain.Invalid("scheduled_for", "must be in the future")
	}

	scheduledFor := m.ScheduledFor
	incident := &models.Incident{
		AttractionName: m.AttractionName,
		Description:    m.Description,
		Active:         false,
		ScheduledFor:   &scheduledFor,
	}
	if err := t.incidents.Save(incident); err != nil {
		return nil, err
	}

	m.IncidentID = incident.ID
	if err := t.maintenances.Save(m); err != nil {
		return nil, err
	}

	incident.MaintenanceID = &m.ID
	if err := t.incidents.Update(incident); err != nil {
		return nil, err
	}

	t.logger.Info("maintenance scheduled",
		zap.String("attraction", m.AttractionName),
		zap.Time("scheduled_for", m.ScheduledFor))

	return m, nil
}

// CancelPreventiveMaintenance deletes the maintenance and resolves its linked
// incident, whether or not it had already activated.
func (t *Tracker) CancelPreventiveMaintenance(attractionName string, maintenanceID uint) error {
	attraction, err := t.attractions.GetByName(attractionName)
	if err != nil {
		return err
	}

	maintenance, err := t.maintenances.GetByID(maintenanceID)
	if err != nil {
		return err
	}
	if maintenance.AttractionName != attractionName {
		return domain.NotFound(domain.ErrMaintenanceNotFound, "maintenance", attractionName)
	}

	if err := t.maintenances.Delete(maintenanceID); err != nil {
		return err
	}

	incident, err := t.incidents.GetByID(maintenance.IncidentID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if incident.ResolvedAt == nil {
		if err := t.closeIncident(attraction, incident); err != nil {
			return err
		}
	}

	t.logger.Info("maintenance cancelled",
		zap.String("attraction", attractionName),
		zap.Uint("maintenance_id", maintenanceID))

	return nil
}

// ActivateDue flips pending scheduled incidents whose start has passed into
// active ones, taking the attraction out of service. Called from every read
// path that observes attraction state.
func (t *Tracker) ActivateDue(attraction *models.Attraction) error {
	pending, err := t.incidents.GetPendingByAttraction(attraction.Name)
	if err != nil {
		return err
	}

	now := t.now()
	activated := false
	for i := range pending {
		incident := &pending[i]
		if !incident.Due(now) {
			continue
		}
		incident.Active = true
		if err := t.incidents.Update(incident); err != nil {
			return err
		}
		activated = true
		t.notifyOpened(attraction.Name, *incident)
		t.logger.Info("scheduled incident activated",
			zap.String("attraction", attraction.Name),
			zap.Uint("incident_id", incident.ID))
	}

	if activated && !attraction.OutOfService {
		attraction.OutOfService = true
		return t.attractions.Save(attraction)
	}
	return nil
}

// HasActiveIncident reports whether the attraction is out of service.
func (t *Tracker) HasActiveIncident(attractionName string) (bool, error) {
	active, err := t.incidents.GetActiveByAttraction(attractionName)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}

// CanDelete rejects attraction deletion while incidents are active or
// maintenance is still on the books.
func (t *Tracker) CanDelete(attractionName string) error {
	active, err := t.incidents.GetActiveByAttraction(attractionName)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return domain.Conflict(domain.ErrCannotDeleteAttraction, "attraction", attractionName)
	}

	maintenances, err := t.maintenances.GetByAttraction(attractionName)
	if err != nil {
		return err
	}
	if len(maintenances) > 0 {
		return domain.Conflict(domain.ErrCannotDeleteAttraction, "attraction", attractionName)
	}
	return nil
}

// ListIncidents returns every incident on record.
func (t *Tracker) ListIncidents() ([]models.Incident, error) {
	return t.incidents.GetAll()
}

// closeIncident stamps the resolution time and clears the out-of-service flag
// when no other active incidents remain.
func (t *Tracker) closeIncident(attraction *models.Attraction, incident *models.Incident) error {
	now := t.now()
	incident.Active = false
	incident.ResolvedAt = &now
	if err := t.incidents.Update(incident); err != nil {
		return err
	}

	remaining, err := t.incidents.GetActiveByAttraction(attraction.Name)
	if err != nil {
		return err
	}
	if len(remaining) == 0 && attraction.OutOfService {
		attraction.OutOfService = false
		return t.attractions.Save(attraction)
	}
	return nil
}

func (t *Tracker) notifyOpened(attraction string, incident models.Incident) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.IncidentOpened(attraction, incident); err != nil {
		t.logger.Warn("incident notification failed", zap.Error(err))
	}
}

func (t *Tracker) notifyResolved(attraction string, incident models.Incident) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.IncidentResolved(attraction, incident); err != nil {
		t.logger.Warn("incident notification failed", zap.Error(err))
	}
}
