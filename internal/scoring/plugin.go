package scoring

import (
	"github.com/NBS282/themepark-api/internal/models"
)

// Plugin is the capability contract a scoring extension must expose. The
// configuration object returned by ParseConfig is opaque to the engine; it is
// handed back unchanged to Score.
type Plugin interface {
	ID() string
	Name() string
	Description() string
	ConfigSchema() map[string]any
	ParseConfig(payload []byte) (any, error)
	Score(visit models.Visit, config any, prior []models.Visit) (int, error)
}

// PluginRegistry holds the extensions discovered at startup. A strategy
// referencing an id the registry does not know degrades to unavailable
// instead of failing.
type PluginRegistry interface {
	Get(id string) (Plugin, bool)
	All() []Plugin
}
