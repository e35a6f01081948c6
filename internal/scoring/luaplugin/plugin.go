package luaplugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/NBS282/themepark-api/internal/models"
	"github.com/Shopify/go-lua"
)

// pluginGlobal is where the loader stashes the table a plugin script returns.
const pluginGlobal = "plugin"

// Plugin wraps one Lua scoring script. Each plugin owns its interpreter
// state; calls are serialized through the mutex since a lua.State is not
// safe for concurrent use.
type Plugin struct {
	id          string
	name        string
	description string
	schema      map[string]any

	mu    sync.Mutex
	state *lua.State
}

func (p *Plugin) ID() string { return p.id }

func (p *Plugin) Name() string { return p.name }

func (p *Plugin) Description() string { return p.description }

func (p *Plugin) ConfigSchema() map[string]any { return p.schema }

// ParseConfig deserializes the JSON payload and has the script's validate
// function vet it. The returned value is the config table as a Go map, which
// Score later pushes back to Lua unchanged.
func (p *Plugin) ParseConfig(payload []byte) (any, error) {
	var config map[string]any
	if err := json.Unmarshal(payload, &config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	l := p.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(pluginGlobal)
	l.Field(-1, "validate")
	pushValue(l, config)
	if err := l.ProtectedCall(1, 2, 0); err != nil {
		return nil, fmt.Errorf("plugin %s validate: %w", p.id, err)
	}

	// validate returns ok, err
	if !l.ToBoolean(-2) {
		reason, _ := l.ToString(-1)
		if reason == "" {
			reason = "configuration rejected"
		}
		return nil, errors.New(reason)
	}
	return config, nil
}

// Score calls the script's score function with the visit, the validated
// config and the guest's prior visits.
func (p *Plugin) Score(visit models.Visit, config any, prior []models.Visit) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l := p.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(pluginGlobal)
	l.Field(-1, "score")
	pushValue(l, visitTable(visit))
	pushValue(l, config)

	priorTables := make([]any, 0, len(prior))
	for _, v := range prior {
		priorTables = append(priorTables, visitTable(v))
	}
	pushValue(l, priorTables)

	if err := l.ProtectedCall(3, 1, 0); err != nil {
		return 0, fmt.Errorf("plugin %s score: %w", p.id, err)
	}

	points, ok := l.ToNumber(-1)
	if !ok {
		return 0, fmt.Errorf("plugin %s score: result is not a number", p.id)
	}
	return int(math.Round(points)), nil
}

// visitTable flattens a visit into the shape plugin scripts see.
func visitTable(v models.Visit) map[string]any {
	table := map[string]any{
		"id":         int(v.ID),
		"user_id":    int(v.UserID),
		"attraction": v.AttractionName,
		"entered_at": v.EnteredAt.Unix(),
		"points":     v.Points,
		"event":      v.EventName,
	}
	if v.ExitedAt != nil {
		table["exited_at"] = v.ExitedAt.Unix()
	}
	return table
}
