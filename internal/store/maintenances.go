package store

import (
	"errors"
	"strconv"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// MaintenanceStore is the persistence contract for preventive maintenance.
type MaintenanceStore interface {
	Save(maintenance *models.Maintenance) error
	Delete(id uint) error
	GetByID(id uint) (*models.Maintenance, error)
	GetByAttraction(attractionName string) ([]models.Maintenance, error)
}

type gormMaintenanceStore struct {
	db *gorm.DB
}

func NewMaintenanceStore(db *gorm.DB) MaintenanceStore {
	return &gormMaintenanceStore{db: db}
}

func (s *gormMaintenanceStore) Save(maintenance *models.Maintenance) error {
	return s.db.Save(maintenance).Error
}

func (s *gormMaintenanceStore) Delete(id uint) error {
	res := s.db.Delete(&models.Maintenance{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.ErrMaintenanceNotFound, "maintenance", strconv.Itoa(int(id)))
	}
	return nil
}

func (s *gormMaintenanceStore) GetByID(id uint) (*models.Maintenance, error) {
	var maintenance models.Maintenance
	if err := s.db.First(&maintenance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrMaintenanceNotFound, "maintenance", strconv.Itoa(int(id)))
		}
		return nil, err
	}
	return &maintenance, nil
}

func (s *gormMaintenanceStore) GetByAttraction(attractionName string) ([]models.Maintenance, error) {
	var maintenances []models.Maintenance
	err := s.db.Where("attraction_name = ?", attractionName).Find(&maintenances).Error
	if err != nil {
		return nil, err
	}
	return maintenances, nil
}
