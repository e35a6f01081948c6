package handlers

import (
	"context"

	"github.com/NBS282/themepark-api/internal/attractions"
	"github.com/NBS282/themepark-api/internal/auth"
	"github.com/NBS282/themepark-api/internal/models"
)

type AttractionHandler struct {
	registry    *attractions.Registry
	authHandler *auth.AuthHandler
}

func NewAttractionHandler(registry *attractions.Registry, authHandler *auth.AuthHandler) *AttractionHandler {
	return &AttractionHandler{registry: registry, authHandler: authHandler}
}

type AttractionBody struct {
	Name         string                `json:"name"`
	Type         models.AttractionType `json:"type"`
	MinimumAge   int                   `json:"minimum_age"`
	Capacity     int                   `json:"capacity"`
	Occupancy    int                   `json:"occupancy"`
	Description  string                `json:"description"`
	OutOfService bool                  `json:"out_of_service"`
}

func attractionBody(a *models.Attraction) AttractionBody {
	return AttractionBody{
		Name:         a.Name,
		Type:         a.Type,
		MinimumAge:   a.MinimumAge,
		Capacity:     a.Capacity,
		Occupancy:    a.Occupancy,
		Description:  a.Description,
		OutOfService: a.OutOfService,
	}
}

type CreateAttractionRequest struct {
	auth.AuthInput
	Body struct {
		Name        string                `json:"name" doc:"Unique attraction name" required:"true"`
		Type        models.AttractionType `json:"type" enum:"roller_coaster,simulator,show,interactive_zone" required:"true"`
		MinimumAge  int                   `json:"minimum_age" doc:"Minimum guest age"`
		Capacity    int                   `json:"capacity" doc:"Maximum simultaneous guests" required:"true"`
		Description string                `json:"description"`
	}
}

type CreateAttractionResponse struct {
	Body AttractionBody
}

func (h *AttractionHandler) HandleCreateAttraction(ctx context.Context, input *CreateAttractionRequest) (*CreateAttractionResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if err := h.authHandler.RequireRole(userID, models.RoleAdmin); err != nil {
		return nil, err
	}

	attraction := &models.Attraction{
		Name:        input.Body.Name,
		Type:        input.Body.Type,
		MinimumAge:  input.Body.MinimumAge,
		Capacity:    input.Body.Capacity,
		Description: input.Body.Description,
	}
	if err := h.registry.Create(attraction); err != nil {
		return nil, mapDomainError(err)
	}

	return &CreateAttractionResponse{Body: attractionBody(attraction)}, nil
}

type ListAttractionsRequest struct{}

type ListAttractionsResponse struct {
	Body struct {
		Attractions []AttractionBody `json:"attractions"`
	}
}

func (h *AttractionHandler) HandleListAttractions(ctx context.Context, input *ListAttractionsRequest) (*ListAttractionsResponse, error) {
	list, err := h.registry.List()
	if err != nil {
		return nil, mapDomainError(err)
	}

	res := &ListAttractionsResponse{}
	res.Body.Attractions = make([]AttractionBody, 0, len(list))
	for i := range list {
		res.Body.Attractions = append(res.Body.Attractions, attractionBody(&list[i]))
	}
	return res, nil
}

type GetAttractionRequest struct {
	Name string `path:"name" doc:"Attraction name"`
}

type GetAttractionResponse struct {
	Body AttractionBody
}

func (h *AttractionHandler) HandleGetAttraction(ctx context.Context, input *GetAttractionRequest) (*GetAttractionResponse, error) {
	attraction, err := h.registry.Get(input.Name)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &GetAttractionResponse{Body: attractionBody(attraction)}, nil
}

type DeleteAttractionRequest struct {
	auth.AuthInput
	Name string `path:"name" doc:"Attraction name"`
}

type DeleteAttractionResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *AttractionHandler) HandleDeleteAttraction(ctx context.Context, input *DeleteAttractionRequest) (*DeleteAttractionResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if err := h.authHandler.RequireRole(userID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if err := h.registry.Delete(input.Name); err != nil {
		return nil, mapDomainError(err)
	}

	res := &DeleteAttractionResponse{}
	res.Body.Message = "Attraction deleted"
	return res, nil
}
