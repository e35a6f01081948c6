package store

import (
	"errors"
	"strconv"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// UserStore resolves park guests and staff by id, NFC code or email.
type UserStore interface {
	GetByID(id uint) (*models.User, error)
	GetByCode(identificationCode string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

type gormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrUserNotFound, "user", strconv.Itoa(int(id)))
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) GetByCode(identificationCode string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("identification_code = ?", identificationCode).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrUserNotFound, "user", identificationCode)
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrUserNotFound, "user", email)
		}
		return nil, err
	}
	return &user, nil
}
