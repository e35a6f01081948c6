package store

import (
	"errors"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/gorm"
)

// TicketStore is the persistence contract for tickets and their uses.
type TicketStore interface {
	Save(ticket *models.Ticket) error
	GetByQRCode(qrCode string) (*models.Ticket, error)
	GetByUserCode(identificationCode string) ([]models.Ticket, error)
	CountForEvent(eventID uint) (int64, error)
	SaveUse(use *models.TicketUse) error
	GetUses(ticketID uint, attractionName string) ([]models.TicketUse, error)
}

type gormTicketStore struct {
	db *gorm.DB
}

func NewTicketStore(db *gorm.DB) TicketStore {
	return &gormTicketStore{db: db}
}

func (s *gormTicketStore) Save(ticket *models.Ticket) error {
	return s.db.Create(ticket).Error
}

func (s *gormTicketStore) GetByQRCode(qrCode string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.Where("qr_code = ?", qrCode).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(domain.ErrTicketInvalidCode, "ticket", qrCode)
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *gormTicketStore) GetByUserCode(identificationCode string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.
		Joins("JOIN users ON users.id = tickets.user_id").
		Where("users.identification_code = ?", identificationCode).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *gormTicketStore) CountForEvent(eventID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Ticket{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (s *gormTicketStore) SaveUse(use *models.TicketUse) error {
	return s.db.Save(use).Error
}

func (s *gormTicketStore) GetUses(ticketID uint, attractionName string) ([]models.TicketUse, error) {
	var uses []models.TicketUse
	err := s.db.
		Where("ticket_id = ? AND attraction_name = ?", ticketID, attractionName).
		Find(&uses).Error
	if err != nil {
		return nil, err
	}
	return uses, nil
}
