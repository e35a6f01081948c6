package handlers

import (
	"context"
	"time"

	"github.com/NBS282/themepark-api/internal/auth"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/tickets"
)

type TicketHandler struct {
	issuer      *tickets.Issuer
	authHandler *auth.AuthHandler
}

func NewTicketHandler(issuer *tickets.Issuer, authHandler *auth.AuthHandler) *TicketHandler {
	return &TicketHandler{issuer: issuer, authHandler: authHandler}
}

type IssueTicketRequest struct {
	auth.AuthInput
	Body struct {
		UserID    uint              `json:"user_id" doc:"Ticket holder" required:"true"`
		Kind      models.TicketKind `json:"kind" enum:"general,event" required:"true"`
		VisitDate time.Time         `json:"visit_date,omitempty" doc:"Day of the visit (general tickets)"`
		EventName string            `json:"event_name,omitempty" doc:"Event to attend (event tickets)"`
	}
}

type TicketResponse struct {
	Body struct {
		ID        uint              `json:"id"`
		QRCode    string            `json:"qr_code"`
		Kind      models.TicketKind `json:"kind"`
		VisitDate time.Time         `json:"visit_date"`
		EventID   *uint             `json:"event_id,omitempty"`
	}
}

func (h *TicketHandler) HandleIssueTicket(ctx context.Context, input *IssueTicketRequest) (*TicketResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if err := h.authHandler.RequireRole(userID, models.RoleOperator); err != nil {
		return nil, err
	}

	var ticket *models.Ticket
	switch input.Body.Kind {
	case models.TicketEvent:
		ticket, err = h.issuer.IssueEvent(input.Body.UserID, input.Body.EventName)
	default:
		ticket, err = h.issuer.IssueGeneral(input.Body.UserID, input.Body.VisitDate)
	}
	if err != nil {
		return nil, mapDomainError(err)
	}

	res := &TicketResponse{}
	res.Body.ID = ticket.ID
	res.Body.QRCode = ticket.QRCode
	res.Body.Kind = ticket.Kind
	res.Body.VisitDate = ticket.VisitDate
	res.Body.EventID = ticket.EventID
	return res, nil
}
