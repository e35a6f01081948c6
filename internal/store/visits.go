package store

import (
	"errors"
	"time"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// VisitStore is the persistence contract for visit records.
type VisitStore interface {
	Save(visit *models.Visit) error
	Update(visit *models.Visit) error
	GetByID(id uint) (*models.Visit, error)
	GetOpen(userID uint, attractionName string) (*models.Visit, error)
	GetByUser(userID uint) ([]models.Visit, error)
	GetByDateRange(start, end time.Time) ([]models.Visit, error)
}

type gormVisitStore struct {
	db *gorm.DB
}

func NewVisitStore(db *gorm.DB) VisitStore {
	return &gormVisitStore{db: db}
}

func (s *gormVisitStore) Save(visit *models.Visit) error {
	return s.db.Create(visit).Error
}

func (s *gormVisitStore) Update(visit *models.Visit) error {
	return s.db.Save(visit).Error
}

func (s *gormVisitStore) GetByID(id uint) (*models.Visit, error) {
	var visit models.Visit
	if err := s.db.First(&visit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrVisitNotFound, "visit", "")
		}
		return nil, err
	}
	return &visit, nil
}

func (s *gormVisitStore) GetOpen(userID uint, attractionName string) (*models.Visit, error) {
	var visit models.Visit
	err := s.db.
		Where("user_id = ? AND attraction_name = ? AND exited_at IS NULL", userID, attractionName).
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrVisitNotFound, "open visit", attractionName)
		}
		return nil, err
	}
	return &visit, nil
}

func (s *gormVisitStore) GetByUser(userID uint) ([]models.Visit, error) {
	var visits []models.Visit
	if err := s.db.Where("user_id = ?", userID).Order("entered_at").Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

func (s *gormVisitStore) GetByDateRange(start, end time.Time) ([]models.Visit, error) {
	var visits []models.Visit
	err := s.db.
		Where("entered_at >= ? AND entered_at <= ?", start, end).
		Order("entered_at").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}
