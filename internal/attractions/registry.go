package attractions

import (
	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/incidents"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/store"
	"go.uber.org/zap"
)

// Registry owns the attraction records. Reads run pending maintenance
// through the incident tracker first so time-driven activation is never
// missed.
type Registry struct {
	attractions store.AttractionStore
	tracker     *incidents.Tracker
	logger      *zap.Logger
}

func NewRegistry(attractions store.AttractionStore, tracker *incidents.Tracker, logger *zap.Logger) *Registry {
	return &Registry{
		attractions: attractions,
		tracker:     tracker,
		logger:      logger,
	}
}

func (r *Registry) Create(attraction *models.Attraction) error {
	if attraction.Name == "" {
		return domain.Invalid("name", "is required")
	}
	if !attraction.Type.Valid() {
		return domain.Invalid("type", "unknown attraction type "+string(attraction.Type))
	}
	if attraction.Capacity <= 0 {
		return domain.Invalid("capacity", "must be positive")
	}
	if attraction.MinimumAge < 0 {
		return domain.Invalid("minimum_age", "must not be negative")
	}

	exists, err := r.attractions.ExistsByName(attraction.Name)
	if err != nil {
		return err
	}
	if exists {
		return domain.Conflict(domain.ErrDuplicateName, "attraction", attraction.Name)
	}

	attraction.Occupancy = 0
	attraction.OutOfService = false
	if err := r.attractions.Save(attraction); err != nil {
		return err
	}

	r.logger.Info("attraction created", zap.String("name", attraction.Name))
	return nil
}

func (r *Registry) Get(name string) (*models.Attraction, error) {
	attraction, err := r.attractions.GetByName(name)
	if err != nil {
		return nil, err
	}
	if err := r.tracker.ActivateDue(attraction); err != nil {
		return nil, err
	}
	return attraction, nil
}

func (r *Registry) List() ([]models.Attraction, error) {
	attractions, err := r.attractions.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range attractions {
		if err := r.tracker.ActivateDue(&attractions[i]); err != nil {
			return nil, err
		}
	}
	return attractions, nil
}

// Delete removes an attraction, unless incidents are active or maintenance is
// still scheduled for it.
func (r *Registry) Delete(name string) error {
	if _, err := r.attractions.GetByName(name); err != nil {
		return err
	}
	if err := r.tracker.CanDelete(name); err != nil {
		return err
	}
	if err := r.attractions.Delete(name); err != nil {
		return err
	}

	r.logger.Info("attraction deleted", zap.String("name", name))
	return nil
}
