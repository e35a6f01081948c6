package models

import (
	"gorm.io/gorm"
)

// StrategyKind is a tagged union discriminator: three built-in algorithms plus
// the open-ended plugin kind, whose concrete algorithm is named by PluginID.
type StrategyKind string

const (
	StrategyPerAttraction StrategyKind = "per_attraction"
	StrategyCombo         StrategyKind = "combo"
	StrategyPerEvent      StrategyKind = "per_event"
	StrategyPlugin        StrategyKind = "plugin"
)

func (k StrategyKind) BuiltIn() bool {
	switch k {
	case StrategyPerAttraction, StrategyCombo, StrategyPerEvent:
		return true
	}
	return false
}

type ScoringStrategy struct {
	gorm.Model
	Name        string       `json:"name" gorm:"uniqueIndex"`
	Description string       `json:"description"`
	Active      bool         `json:"active"`
	Kind        StrategyKind `json:"kind"`
	PluginID    string       `json:"plugin_id,omitempty"`
	ConfigJSON  string       `json:"config_json"`
}
