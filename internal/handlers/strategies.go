package handlers

import (
	"context"
	"encoding/json"

	"github.com/NBS282/themepark-api/internal/auth"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/scoring"
)

type StrategyHandler struct {
	engine      *scoring.Engine
	plugins     scoring.PluginRegistry
	authHandler *auth.AuthHandler
}

func NewStrategyHandler(engine *scoring.Engine, plugins scoring.PluginRegistry, authHandler *auth.AuthHandler) *StrategyHandler {
	return &StrategyHandler{engine: engine, plugins: plugins, authHandler: authHandler}
}

func (h *StrategyHandler) authorizeAdmin(ctx context.Context, cookie string) error {
	userID, err := h.authHandler.Authorize(ctx, cookie)
	if err != nil {
		return err
	}
	return h.authHandler.RequireRole(userID, models.RoleAdmin)
}

type StrategyBody struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Active      bool                `json:"active"`
	Kind        models.StrategyKind `json:"kind"`
	PluginID    string              `json:"plugin_id,omitempty"`
	Config      json.RawMessage     `json:"config,omitempty"`
	Available   bool                `json:"available"`
}

func strategyBody(v *scoring.StrategyView) StrategyBody {
	return StrategyBody{
		Name:        v.Name,
		Description: v.Description,
		Active:      v.Active,
		Kind:        v.Kind,
		PluginID:    v.PluginID,
		Config:      json.RawMessage(v.ConfigJSON),
		Available:   v.Available,
	}
}

type CreateStrategyRequest struct {
	auth.AuthInput
	Body struct {
		Name         string              `json:"name" doc:"Unique strategy name" required:"true"`
		Description  string              `json:"description"`
		Kind         models.StrategyKind `json:"kind,omitempty" enum:"per_attraction,combo,per_event" doc:"Built-in algorithm kind"`
		Config       json.RawMessage     `json:"config,omitempty" doc:"Typed configuration for the built-in kind"`
		PluginID     string              `json:"plugin_id,omitempty" doc:"Scoring plugin identifier"`
		PluginConfig json.RawMessage     `json:"plugin_config,omitempty" doc:"Opaque plugin configuration payload"`
	}
}

type StrategyResponse struct {
	Body StrategyBody
}

func (h *StrategyHandler) HandleCreateStrategy(ctx context.Context, input *CreateStrategyRequest) (*StrategyResponse, error) {
	if err := h.authorizeAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	strategy, err := h.engine.CreateStrategy(scoring.CreateStrategyInput{
		Name:         input.Body.Name,
		Description:  input.Body.Description,
		Kind:         input.Body.Kind,
		Config:       input.Body.Config,
		PluginID:     input.Body.PluginID,
		PluginConfig: input.Body.PluginConfig,
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	view, err := h.engine.GetStrategy(strategy.Name)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &StrategyResponse{Body: strategyBody(view)}, nil
}

type UpdateStrategyRequest struct {
	auth.AuthInput
	Name string `path:"name" doc:"Strategy name"`
	Body struct {
		Description *string         `json:"description,omitempty"`
		Config      json.RawMessage `json:"config,omitempty" doc:"Replacement configuration"`
	}
}

func (h *StrategyHandler) HandleUpdateStrategy(ctx context.Context, input *UpdateStrategyRequest) (*StrategyResponse, error) {
	if err := h.authorizeAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if _, err := h.engine.UpdateStrategy(input.Name, scoring.UpdateStrategyInput{
		Description: input.Body.Description,
		Config:      input.Body.Config,
	}); err != nil {
		return nil, mapDomainError(err)
	}

	view, err := h.engine.GetStrategy(input.Name)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &StrategyResponse{Body: strategyBody(view)}, nil
}

type StrategyNameRequest struct {
	auth.AuthInput
	Name string `path:"name" doc:"Strategy name"`
}

type DeleteStrategyResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *StrategyHandler) HandleDeleteStrategy(ctx context.Context, input *StrategyNameRequest) (*DeleteStrategyResponse, error) {
	if err := h.authorizeAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if err := h.engine.DeleteStrategy(input.Name); err != nil {
		return nil, mapDomainError(err)
	}

	res := &DeleteStrategyResponse{}
	res.Body.Message = "Strategy deleted"
	return res, nil
}

func (h *StrategyHandler) HandleToggleStrategy(ctx context.Context, input *StrategyNameRequest) (*StrategyResponse, error) {
	if err := h.authorizeAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if _, err := h.engine.ToggleActive(input.Name); err != nil {
		return nil, mapDomainError(err)
	}

	view, err := h.engine.GetStrategy(input.Name)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &StrategyResponse{Body: strategyBody(view)}, nil
}

type DeactivateStrategyRequest struct {
	auth.AuthInput
}

func (h *StrategyHandler) HandleDeactivateStrategy(ctx context.Context, input *DeactivateStrategyRequest) (*StrategyResponse, error) {
	if err := h.authorizeAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	strategy, err := h.engine.Deactivate()
	if err != nil {
		return nil, mapDomainError(err)
	}

	view, err := h.engine.GetStrategy(strategy.Name)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &StrategyResponse{Body: strategyBody(view)}, nil
}

type ListStrategiesRequest struct {
	auth.AuthInput
}

type ListStrategiesResponse struct {
	Body struct {
		Strategies []StrategyBody `json:"strategies"`
	}
}

func (h *StrategyHandler) HandleListStrategies(ctx context.Context, input *ListStrategiesRequest) (*ListStrategiesResponse, error) {
	if err := h.authorizeAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	views, err := h.engine.ListStrategies()
	if err != nil {
		return nil, mapDomainError(err)
	}

	res := &ListStrategiesResponse{}
	res.Body.Strategies = make([]StrategyBody, 0, len(views))
	for i := range views {
		res.Body.Strategies = append(res.Body.Strategies, strategyBody(&views[i]))
	}
	return res, nil
}

type ListPluginsRequest struct {
	auth.AuthInput
}

type PluginBody struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	ConfigSchema map[string]any `json:"config_schema,omitempty"`
}

type ListPluginsResponse struct {
	Body struct {
		Plugins []PluginBody `json:"plugins"`
	}
}

func (h *StrategyHandler) HandleListPlugins(ctx context.Context, input *ListPluginsRequest) (*ListPluginsResponse, error) {
	if err := h.authorizeAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	res := &ListPluginsResponse{}
	for _, plugin := range h.plugins.All() {
		res.Body.Plugins = append(res.Body.Plugins, PluginBody{
			ID:           plugin.ID(),
			Name:         plugin.Name(),
			Description:  plugin.Description(),
			ConfigSchema: plugin.ConfigSchema(),
		})
	}
	return res, nil
}
