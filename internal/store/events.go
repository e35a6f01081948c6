package store

import (
	"errors"
	"strconv"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// EventStore resolves park events and their attraction line-up.
type EventStore interface {
	GetByID(id uint) (*models.Event, error)
	GetByName(name string) (*models.Event, error)
}

type gormEventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) EventStore {
	return &gormEventStore{db: db}
}

func (s *gormEventStore) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.Preload("Attractions").First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrEventNotFound, "event", strconv.Itoa(int(id)))
		}
		return nil, err
	}
	return &event, nil
}

func (s *gormEventStore) GetByName(name string) (*models.Event, error) {
	var event models.Event
	if err := s.db.Preload("Attractions").Where("name = ?", name).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrEventNotFound, "event", name)
		}
		return nil, err
	}
	return &event, nil
}
