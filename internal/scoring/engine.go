package scoring

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/store"
	"go.uber.org/zap"
)

// Engine owns the scoring strategies and dispatches point calculation to the
// algorithm behind the single active one.
type Engine struct {
	strategies  store.StrategyStore
	attractions store.AttractionStore
	plugins     PluginRegistry
	logger      *zap.Logger
}

func NewEngine(
	strategies store.StrategyStore,
	attractions store.AttractionStore,
	plugins PluginRegistry,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		strategies:  strategies,
		attractions: attractions,
		plugins:     plugins,
		logger:      logger,
	}
}

// CreateStrategyInput carries exactly one configuration arm: a built-in kind
// with its typed config, or a plugin id with an opaque payload.
type CreateStrategyInput struct {
	Name         string
	Description  string
	Kind         models.StrategyKind
	Config       json.RawMessage
	PluginID     string
	PluginConfig json.RawMessage
}

func (e *Engine) CreateStrategy(input CreateStrategyInput) (*models.ScoringStrategy, error) {
	if input.Name == "" {
		return nil, domain.Invalid("name", "is required")
	}

	builtin := input.Kind != "" || len(input.Config) > 0
	plugin := input.PluginID != "" || len(input.PluginConfig) > 0
	if builtin == plugin {
		return nil, fmt.Errorf("%w: exactly one of built-in or plugin configuration must be supplied",
			domain.ErrInvalidScoringConfig)
	}

	if _, err := e.strategies.GetByName(input.Name); err == nil {
		return nil, domain.Conflict(domain.ErrDuplicateName, "scoring strategy", input.Name)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	strategy := &models.ScoringStrategy{
		Name:        input.Name,
		Description: input.Description,
	}

	if builtin {
		if !input.Kind.BuiltIn() {
			return nil, fmt.Errorf("%w: unknown built-in kind %q", domain.ErrInvalidScoringConfig, input.Kind)
		}
		if _, err := parseBuiltinConfig(input.Kind, input.Config); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScoringConfig, err)
		}
		strategy.Kind = input.Kind
		strategy.ConfigJSON = string(input.Config)
	} else {
		if err := e.validatePluginConfig(input.PluginID, input.PluginConfig); err != nil {
			return nil, err
		}
		strategy.Kind = models.StrategyPlugin
		strategy.PluginID = input.PluginID
		strategy.ConfigJSON = string(input.PluginConfig)
	}

	if err := e.strategies.Add(strategy); err != nil {
		return nil, err
	}
	e.logger.Info("scoring strategy created",
		zap.String("name", strategy.Name),
		zap.String("kind", string(strategy.Kind)))
	return strategy, nil
}

// UpdateStrategyInput merges only the fields that are set.
type UpdateStrategyInput struct {
	Description *string
	Config      json.RawMessage
}

func (e *Engine) UpdateStrategy(name string, input UpdateStrategyInput) (*models.ScoringStrategy, error) {
	strategy, err := e.strategies.GetByName(name)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		strategy.Description = *input.Description
	}
	if len(input.Config) > 0 {
		if strategy.Kind == models.StrategyPlugin {
			if err := e.validatePluginConfig(strategy.PluginID, input.Config); err != nil {
				return nil, err
			}
		} else {
			if _, err := parseBuiltinConfig(strategy.Kind, input.Config); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScoringConfig, err)
			}
		}
		strategy.ConfigJSON = string(input.Config)
	}

	if err := e.strategies.Update(strategy); err != nil {
		return nil, err
	}
	return strategy, nil
}

func (e *Engine) DeleteStrategy(name string) error {
	strategy, err := e.strategies.GetByName(name)
	if err != nil {
		return err
	}
	if strategy.Active {
		return domain.Conflict(domain.ErrStrategyActive, "scoring strategy", name)
	}
	return e.strategies.Delete(name)
}

// ToggleActive flips a strategy's active flag. Activation fails while a
// different strategy is active; at most one strategy is active at any time.
func (e *Engine) ToggleActive(name string) (*models.ScoringStrategy, error) {
	strategy, err := e.strategies.GetByName(name)
	if err != nil {
		return nil, err
	}

	if strategy.Active {
		strategy.Active = false
		if err := e.strategies.Update(strategy); err != nil {
			return nil, err
		}
		return strategy, nil
	}

	current, err := e.strategies.GetActive()
	if err != nil && !errors.Is(err, domain.ErrNoActiveStrategy) {
		return nil, err
	}
	if current != nil && current.Name != name {
		return nil, domain.Conflict(domain.ErrStrategyAlreadyActive, "scoring strategy", current.Name)
	}

	strategy.Active = true
	if err := e.strategies.Update(strategy); err != nil {
		return nil, err
	}
	e.logger.Info("scoring strategy activated", zap.String("name", name))
	return strategy, nil
}

// Deactivate turns off the currently active strategy.
func (e *Engine) Deactivate() (*models.ScoringStrategy, error) {
	strategy, err := e.strategies.GetActive()
	if err != nil {
		return nil, err
	}
	strategy.Active = false
	if err := e.strategies.Update(strategy); err != nil {
		return nil, err
	}
	return strategy, nil
}

// StrategyView pairs a stored strategy with whether its configuration can
// actually be used. A plugin strategy whose plugin is not loaded is listed as
// unavailable rather than hidden or failing.
type StrategyView struct {
	models.ScoringStrategy
	Available bool `json:"available"`
}

func (e *Engine) ListStrategies() ([]StrategyView, error) {
	strategies, err := e.strategies.GetAll()
	if err != nil {
		return nil, err
	}

	views := make([]StrategyView, 0, len(strategies))
	for _, s := range strategies {
		views = append(views, StrategyView{
			ScoringStrategy: s,
			Available:       e.usable(&s) == nil,
		})
	}
	return views, nil
}

func (e *Engine) GetStrategy(name string) (*StrategyView, error) {
	strategy, err := e.strategies.GetByName(name)
	if err != nil {
		return nil, err
	}
	return &StrategyView{ScoringStrategy: *strategy, Available: e.usable(strategy) == nil}, nil
}

// CalculateVisitPoints runs the active strategy's algorithm over the visit
// and the guest's prior visits, returning the points and the strategy name to
// stamp on the visit record.
func (e *Engine) CalculateVisitPoints(visit models.Visit, prior []models.Visit) (int, string, error) {
	strategy, err := e.strategies.GetActive()
	if err != nil {
		return 0, "", err
	}

	switch strategy.Kind {
	case models.StrategyPerAttraction:
		cfg, err := parseBuiltinConfig(strategy.Kind, []byte(strategy.ConfigJSON))
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", domain.ErrInvalidScoringConfig, err)
		}
		attraction, err := e.attractions.GetByName(visit.AttractionName)
		if err != nil {
			return 0, "", err
		}
		return scorePerAttraction(cfg.(PerAttractionConfig), attraction.Type), strategy.Name, nil

	case models.StrategyCombo:
		cfg, err := parseBuiltinConfig(strategy.Kind, []byte(strategy.ConfigJSON))
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", domain.ErrInvalidScoringConfig, err)
		}
		return scoreCombo(cfg.(ComboConfig), visit, prior), strategy.Name, nil

	case models.StrategyPerEvent:
		cfg, err := parseBuiltinConfig(strategy.Kind, []byte(strategy.ConfigJSON))
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", domain.ErrInvalidScoringConfig, err)
		}
		return scorePerEvent(cfg.(PerEventConfig), visit), strategy.Name, nil

	case models.StrategyPlugin:
		plugin, ok := e.plugins.Get(strategy.PluginID)
		if !ok {
			return 0, "", fmt.Errorf("%w: plugin %q is not loaded",
				domain.ErrInvalidScoringConfig, strategy.PluginID)
		}
		cfg, err := plugin.ParseConfig([]byte(strategy.ConfigJSON))
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", domain.ErrInvalidScoringConfig, err)
		}
		points, err := plugin.Score(visit, cfg, prior)
		if err != nil {
			return 0, "", err
		}
		return points, strategy.Name, nil
	}
	return 0, "", fmt.Errorf("%w: unknown strategy kind %q", domain.ErrInvalidScoringConfig, strategy.Kind)
}

// usable reports whether the strategy's configuration resolves to something
// the engine could dispatch right now.
func (e *Engine) usable(strategy *models.ScoringStrategy) error {
	if strategy.Kind == models.StrategyPlugin {
		plugin, ok := e.plugins.Get(strategy.PluginID)
		if !ok {
			return domain.NotFound(domain.ErrPluginNotFound, "plugin", strategy.PluginID)
		}
		if _, err := plugin.ParseConfig([]byte(strategy.ConfigJSON)); err != nil {
			return err
		}
		return nil
	}
	_, err := parseBuiltinConfig(strategy.Kind, []byte(strategy.ConfigJSON))
	return err
}

// validatePluginConfig resolves the plugin and lets it vet the payload.
func (e *Engine) validatePluginConfig(pluginID string, payload []byte) error {
	if e.plugins == nil {
		return fmt.Errorf("%w: no plugins loaded", domain.ErrInvalidScoringConfig)
	}
	plugin, ok := e.plugins.Get(pluginID)
	if !ok {
		return fmt.Errorf("%w: plugin %q not found", domain.ErrInvalidScoringConfig, pluginID)
	}
	if _, err := plugin.ParseConfig(payload); err != nil {
		return fmt.Errorf("%w: plugin %q rejected configuration: %v",
			domain.ErrInvalidScoringConfig, pluginID, err)
	}
	return nil
}
