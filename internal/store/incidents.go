package store

import (
	"errors"
	"strconv"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// IncidentStore is the persistence contract for incident records.
type IncidentStore interface {
	Save(incident *models.Incident) error
	Update(incident *models.Incident) error
	GetByID(id uint) (*models.Incident, error)
	GetActiveByAttraction(attractionName string) ([]models.Incident, error)
	GetPendingByAttraction(attractionName string) ([]models.Incident, error)
	GetAll() ([]models.Incident, error)
}

type gormIncidentStore struct {
	db *gorm.DB
}

func NewIncidentStore(db *gorm.DB) IncidentStore {
	return &gormIncidentStore{db: db}
}

func (s *gormIncidentStore) Save(incident *models.Incident) error {
	return s.db.Create(incident).Error
}

func (s *gormIncidentStore) Update(incident *models.Incident) error {
	return s.db.Save(incident).Error
}

func (s *gormIncidentStore) GetByID(id uint) (*models.Incident, error) {
	var incident models.Incident
	if err := s.db.First(&incident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrIncidentNotFound, "incident", strconv.Itoa(int(id)))
		}
		return nil, err
	}
	return &incident, nil
}

func (s *gormIncidentStore) GetActiveByAttraction(attractionName string) ([]models.Incident, error) {
	var incidents []models.Incident
	err := s.db.
		Where("attraction_name = ? AND active = ?", attractionName, true).
		Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

// GetPendingByAttraction returns scheduled incidents that have neither
// activated nor been resolved yet.
func (s *gormIncidentStore) GetPendingByAttraction(attractionName string) ([]models.Incident, error) {
	var incidents []models.Incident
	err := s.db.
		Where("attraction_name = ? AND active = ? AND resolved_at IS NULL AND scheduled_for IS NOT NULL",
			attractionName, false).
		Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

func (s *gormIncidentStore) GetAll() ([]models.Incident, error) {
	var incidents []models.Incident
	if err := s.db.Order("created_at desc").Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}
