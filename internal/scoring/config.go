package scoring

import (
	"encoding/json"

	"github.com/NBS282/themepark-api/internal/domain"
	"github.com/NBS282/themepark-api/internal/models"
)

// PerAttractionConfig awards a flat value per attraction type. Types missing
// from the map score zero.
type PerAttractionConfig struct {
	Points map[models.AttractionType]int `json:"points"`
}

func (c PerAttractionConfig) validate() error {
	if len(c.Points) == 0 {
		return domain.Invalid("points", "at least one attraction type is required")
	}
	for attractionType, points := range c.Points {
		if !attractionType.Valid() {
			return domain.Invalid("points", "unknown attraction type "+string(attractionType))
		}
		if points < 0 {
			return domain.Invalid("points", "point values must not be negative")
		}
	}
	return nil
}

// ComboConfig multiplies the base value when the guest has visited enough
// distinct attractions inside a trailing time window.
type ComboConfig struct {
	BasePoints     int     `json:"base_points"`
	WindowMinutes  int     `json:"window_minutes"`
	Multiplier     float64 `json:"multiplier"`
	MinAttractions int     `json:"min_attractions"`
}

func (c ComboConfig) validate() error {
	if c.BasePoints < 0 {
		return domain.Invalid("base_points", "must not be negative")
	}
	if c.WindowMinutes <= 0 {
		return domain.Invalid("window_minutes", "must be positive")
	}
	if c.Multiplier < 1 {
		return domain.Invalid("multiplier", "must be at least 1")
	}
	if c.MinAttractions < 2 {
		return domain.Invalid("min_attractions", "must be at least 2")
	}
	return nil
}

// PerEventConfig awards a flat value to visits admitted on tickets of the
// configured event.
type PerEventConfig struct {
	Points    int    `json:"points"`
	EventName string `json:"event_name"`
}

func (c PerEventConfig) validate() error {
	if c.EventName == "" {
		return domain.Invalid("event_name", "is required")
	}
	if c.Points < 0 {
		return domain.Invalid("points", "must not be negative")
	}
	return nil
}

// parseBuiltinConfig decodes and validates the typed configuration matching a
// built-in strategy kind.
func parseBuiltinConfig(kind models.StrategyKind, payload []byte) (any, error) {
	switch kind {
	case models.StrategyPerAttraction:
		var cfg PerAttractionConfig
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return nil, domain.Invalid("config", err.Error())
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil

	case models.StrategyCombo:
		var cfg ComboConfig
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return nil, domain.Invalid("config", err.Error())
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil

	case models.StrategyPerEvent:
		var cfg PerEventConfig
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return nil, domain.Invalid("config", err.Error())
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, domain.Invalid("kind", "unknown built-in strategy kind "+string(kind))
}
