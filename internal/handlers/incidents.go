package handlers

import (
	"context"
	"time"

	"github.com/NBS282/themepark-api/internal/auth"
	"github.com/NBS282/themepark-api/internal/incidents"
	"github.com/NBS282/themepark-api/internal/models"
)

type IncidentHandler struct {
	tracker     *incidents.Tracker
	authHandler *auth.AuthHandler
}

func NewIncidentHandler(tracker *incidents.Tracker, authHandler *auth.AuthHandler) *IncidentHandler {
	return &IncidentHandler{tracker: tracker, authHandler: authHandler}
}

func (h *IncidentHandler) authorizeOperator(ctx context.Context, cookie string) error {
	userID, err := h.authHandler.Authorize(ctx, cookie)
	if err != nil {
		return err
	}
	return h.authHandler.RequireRole(userID, models.RoleOperator)
}

type IncidentBody struct {
	ID             uint       `json:"id"`
	AttractionName string     `json:"attraction_name"`
	Description    string     `json:"description"`
	Active         bool       `json:"active"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	MaintenanceID  *uint      `json:"maintenance_id,omitempty"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty"`
}

func incidentBody(i *models.Incident) IncidentBody {
	return IncidentBody{
		ID:             i.ID,
		AttractionName: i.AttractionName,
		Description:    i.Description,
		Active:         i.Active,
		ResolvedAt:     i.ResolvedAt,
		MaintenanceID:  i.MaintenanceID,
		ScheduledFor:   i.ScheduledFor,
	}
}

type CreateIncidentRequest struct {
	auth.AuthInput
	Name string `path:"name" doc:"Attraction name"`
	Body struct {
		Description string `json:"description" doc:"What happened" required:"true"`
	}
}

type IncidentResponse struct {
	Body IncidentBody
}

func (h *IncidentHandler) HandleCreateIncident(ctx context.Context, input *CreateIncidentRequest) (*IncidentResponse, error) {
	if err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	incident, err := h.tracker.CreateIncident(input.Name, input.Body.Description)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &IncidentResponse{Body: incidentBody(incident)}, nil
}

type ResolveIncidentRequest struct {
	auth.AuthInput
	Name       string `path:"name" doc:"Attraction name"`
	IncidentID uint   `path:"id" doc:"Incident id"`
}

func (h *IncidentHandler) HandleResolveIncident(ctx context.Context, input *ResolveIncidentRequest) (*IncidentResponse, error) {
	if err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	incident, err := h.tracker.ResolveIncident(input.Name, input.IncidentID)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &IncidentResponse{Body: incidentBody(incident)}, nil
}

type ListIncidentsRequest struct {
	auth.AuthInput
}

type ListIncidentsResponse struct {
	Body struct {
		Incidents []IncidentBody `json:"incidents"`
	}
}

func (h *IncidentHandler) HandleListIncidents(ctx context.Context, input *ListIncidentsRequest) (*ListIncidentsResponse, error) {
	if err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	list, err := h.tracker.ListIncidents()
	if err != nil {
		return nil, mapDomainError(err)
	}

	res := &ListIncidentsResponse{}
	res.Body.Incidents = make([]IncidentBody, 0, len(list))
	for i := range list {
		res.Body.Incidents = append(res.Body.Incidents, incidentBody(&list[i]))
	}
	return res, nil
}

type ScheduleMaintenanceRequest struct {
	auth.AuthInput
	Name string `path:"name" doc:"Attraction name"`
	Body struct {
		ScheduledFor    time.Time `json:"scheduled_for" doc:"Planned start (RFC 3339)" required:"true"`
		DurationMinutes int       `json:"duration_minutes" doc:"Planned duration" required:"true"`
		Description     string    `json:"description"`
	}
}

type MaintenanceResponse struct {
	Body struct {
		ID              uint      `json:"id"`
		AttractionName  string    `json:"attraction_name"`
		ScheduledFor    time.Time `json:"scheduled_for"`
		DurationMinutes int       `json:"duration_minutes"`
		Description     string    `json:"description"`
		IncidentID      uint      `json:"incident_id"`
	}
}

func (h *IncidentHandler) HandleScheduleMaintenance(ctx context.Context, input *ScheduleMaintenanceRequest) (*MaintenanceResponse, error) {
	if err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	maintenance := &models.Maintenance{
		AttractionName:  input.Name,
		ScheduledFor:    input.Body.ScheduledFor,
		DurationMinutes: input.Body.DurationMinutes,
		Description:     input.Body.Description,
	}
	maintenance, err := h.tracker.SchedulePreventiveMaintenance(maintenance)
	if err != nil {
		return nil, mapDomainError(err)
	}

	res := &MaintenanceResponse{}
	res.Body.ID = maintenance.ID
	res.Body.AttractionName = maintenance.AttractionName
	res.Body.ScheduledFor = maintenance.ScheduledFor
	res.Body.DurationMinutes = maintenance.DurationMinutes
	res.Body.Description = maintenance.Description
	res.Body.IncidentID = maintenance.IncidentID
	return res, nil
}

type CancelMaintenanceRequest struct {
	auth.AuthInput
	Name          string `path:"name" doc:"Attraction name"`
	MaintenanceID uint   `path:"id" doc:"Maintenance id"`
}

type CancelMaintenanceResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *IncidentHandler) HandleCancelMaintenance(ctx context.Context, input *CancelMaintenanceRequest) (*CancelMaintenanceResponse, error) {
	if err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if err := h.tracker.CancelPreventiveMaintenance(input.Name, input.MaintenanceID); err != nil {
		return nil, mapDomainError(err)
	}

	res := &CancelMaintenanceResponse{}
	res.Body.Message = "Maintenance cancelled"
	return res, nil
}
