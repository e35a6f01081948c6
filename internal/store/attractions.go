package store

import (
	"errors"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// AttractionStore is the persistence contract for attraction records.
type AttractionStore interface {
	ExistsByName(name string) (bool, error)
	GetByName(name string) (*models.Attraction, error)
	GetAll() ([]models.Attraction, error)
	Save(attraction *models.Attraction) error
	Delete(name string) error
}

type gormAttractionStore struct {
	db *gorm.DB
}

func NewAttractionStore(db *gorm.DB) AttractionStore {
	return &gormAttractionStore{db: db}
}

func (s *gormAttractionStore) ExistsByName(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Attraction{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *gormAttractionStore) GetByName(name string) (*models.Attraction, error) {
	var attraction models.Attraction
	if err := s.db.Where("name = ?", name).First(&attraction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrAttractionNotFound, "attraction", name)
		}
		return nil, err
	}
	return &attraction, nil
}

func (s *gormAttractionStore) GetAll() ([]models.Attraction, error) {
	var attractions []models.Attraction
	if err := s.db.Order("name").Find(&attractions).Error; err != nil {
		return nil, err
	}
	return attractions, nil
}

func (s *gormAttractionStore) Save(attraction *models.Attraction) error {
	return s.db.Save(attraction).Error
}

func (s *gormAttractionStore) Delete(name string) error {
	res := s.db.Where("name = ?", name).Delete(&models.Attraction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.ErrAttractionNotFound, "attraction", name)
	}
	return nil
}
