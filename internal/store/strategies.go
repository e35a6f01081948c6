package store

import (
	"errors"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// StrategyStore is the persistence contract for scoring strategies.
type StrategyStore interface {
	Add(strategy *models.ScoringStrategy) error
	Update(strategy *models.ScoringStrategy) error
	Delete(name string) error
	GetByName(name string) (*models.ScoringStrategy, error)
	GetAll() ([]models.ScoringStrategy, error)
	GetActive() (*models.ScoringStrategy, error)
}

type gormStrategyStore struct {
	db *gorm.DB
}

func NewStrategyStore(db *gorm.DB) StrategyStore {
	return &gormStrategyStore{db: db}
}

func (s *gormStrategyStore) Add(strategy *models.ScoringStrategy) error {
	return s.db.Create(strategy).Error
}

func (s *gormStrategyStore) Update(strategy *models.ScoringStrategy) error {
	return s.db.Save(strategy).Error
}

func (s *gormStrategyStore) Delete(name string) error {
	res := s.db.Where("name = ?", name).Delete(&models.ScoringStrategy{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.ErrStrategyNotFound, "scoring strategy", name)
	}
	return nil
}

func (s *gormStrategyStore) GetByName(name string) (*models.ScoringStrategy, error) {
	var strategy models.ScoringStrategy
	if err := s.db.Where("name = ?", name).First(&strategy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrStrategyNotFound, "scoring strategy", name)
		}
		return nil, err
	}
	return &strategy, nil
}

func (s *gormStrategyStore) GetAll() ([]models.ScoringStrategy, error) {
	var strategies []models.ScoringStrategy
	if err := s.db.Order("name").Find(&strategies).Error; err != nil {
		return nil, err
	}
	return strategies, nil
}

func (s *gormStrategyStore) GetActive() (*models.ScoringStrategy, error) {
	var strategy models.ScoringStrategy
	if err := s.db.Where("active = ?", true).First(&strategy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoActiveStrategy
		}
		return nil, err
	}
	return &strategy, nil
}
