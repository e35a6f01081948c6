package handlers

import (
	"context"
	"time"

	"github.com/NBS282/themepark-api/internal/admission"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/tickets"
	"github.com/danielgtaylor/huma/v2"
)

type AdmissionHandler struct {
	service *admission.Service
}

func NewAdmissionHandler(service *admission.Service) *AdmissionHandler {
	return &AdmissionHandler{service: service}
}

type VisitBody struct {
	ID             uint       `json:"id"`
	UserID         uint       `json:"user_id"`
	AttractionName string     `json:"attraction_name"`
	EnteredAt      time.Time  `json:"entered_at"`
	ExitedAt       *time.Time `json:"exited_at,omitempty"`
	Points         int        `json:"points"`
	StrategyName   string     `json:"strategy_name,omitempty"`
	EventName      string     `json:"event_name,omitempty"`
}

func visitBody(v *models.Visit) VisitBody {
	return VisitBody{
		ID:             v.ID,
		UserID:         v.UserID,
		AttractionName: v.AttractionName,
		EnteredAt:      v.EnteredAt,
		ExitedAt:       v.ExitedAt,
		Points:         v.Points,
		StrategyName:   v.StrategyName,
		EventName:      v.EventName,
	}
}

type AccessRequest struct {
	Name string `path:"name" doc:"Attraction name"`
	Body struct {
		Channel string `json:"channel" enum:"nfc,qr" doc:"Entry channel" required:"true"`
		Code    string `json:"code" doc:"NFC identification code or ticket QR code" required:"true"`
	}
}

type AccessResponse struct {
	Body VisitBody
}

func (h *AdmissionHandler) HandleRegisterAccess(ctx context.Context, input *AccessRequest) (*AccessResponse, error) {
	channel := tickets.Channel(input.Body.Channel)
	if !channel.Valid() {
		return nil, huma.Error400BadRequest("channel must be nfc or qr")
	}

	visit, err := h.service.ValidateAndRegisterAccess(input.Name, channel, input.Body.Code)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &AccessResponse{Body: visitBody(visit)}, nil
}

func (h *AdmissionHandler) HandleRegisterExit(ctx context.Context, input *AccessRequest) (*AccessResponse, error) {
	channel := tickets.Channel(input.Body.Channel)
	if !channel.Valid() {
		return nil, huma.Error400BadRequest("channel must be nfc or qr")
	}

	visit, err := h.service.RegisterExit(input.Name, channel, input.Body.Code)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &AccessResponse{Body: visitBody(visit)}, nil
}

type CapacityRequest struct {
	Name string `path:"name" doc:"Attraction name"`
}

type CapacityResponse struct {
	Body struct {
		Name         string `json:"name"`
		Occupancy    int    `json:"occupancy"`
		Capacity     int    `json:"capacity"`
		OutOfService bool   `json:"out_of_service"`
	}
}

func (h *AdmissionHandler) HandleGetCapacity(ctx context.Context, input *CapacityRequest) (*CapacityResponse, error) {
	attraction, err := h.service.GetCapacity(input.Name)
	if err != nil {
		return nil, mapDomainError(err)
	}

	res := &CapacityResponse{}
	res.Body.Name = attraction.Name
	res.Body.Occupancy = attraction.Occupancy
	res.Body.Capacity = attraction.Capacity
	res.Body.OutOfService = attraction.OutOfService
	return res, nil
}

type UsageReportRequest struct {
	Start time.Time `query:"start" doc:"Range start (RFC 3339)"`
	End   time.Time `query:"end" doc:"Range end (RFC 3339)"`
}

type UsageReportResponse struct {
	Body struct {
		Visits map[string]int `json:"visits" doc:"Visit count per attraction"`
	}
}

func (h *AdmissionHandler) HandleUsageReport(ctx context.Context, input *UsageReportRequest) (*UsageReportResponse, error) {
	report, err := h.service.GetUsageReport(input.Start, input.End)
	if err != nil {
		return nil, mapDomainError(err)
	}

	res := &UsageReportResponse{}
	res.Body.Visits = report
	return res, nil
}
