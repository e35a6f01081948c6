package luaplugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NBS282/themepark-api/internal/scoring"
	"github.com/Shopify/go-lua"
	"go.uber.org/zap"
)

// Registry holds the plugins discovered in the configured directory.
type Registry struct {
	plugins map[string]*Plugin
}

func (r *Registry) Get(id string) (scoring.Plugin, bool) {
	p, ok := r.plugins[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (r *Registry) All() []scoring.Plugin {
	ids := make([]string, 0, len(r.plugins))
	for id := range r.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	all := make([]scoring.Plugin, 0, len(ids))
	for _, id := range ids {
		all = append(all, r.plugins[id])
	}
	return all
}

// LoadDir scans the directory for .lua scoring plugins. A script that fails
// to load is skipped with a warning; strategies referencing it stay visible
// as unavailable. A missing directory yields an empty registry.
func LoadDir(dir string, logger *zap.Logger) (*Registry, error) {
	registry := &Registry{plugins: map[string]*Plugin{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("plugin directory not found, no scoring plugins loaded", zap.String("dir", dir))
			return registry, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		plugin, err := loadFile(path)
		if err != nil {
			logger.Warn("skipping scoring plugin", zap.String("path", path), zap.Error(err))
			continue
		}
		if _, exists := registry.plugins[plugin.id]; exists {
			logger.Warn("duplicate scoring plugin id", zap.String("id", plugin.id), zap.String("path", path))
			continue
		}
		registry.plugins[plugin.id] = plugin
		logger.Info("scoring plugin loaded",
			zap.String("id", plugin.id),
			zap.String("name", plugin.name))
	}

	return registry, nil
}

// loadFile runs the script and captures the plugin table it returns. The
// table must carry id, name and the validate and score functions.
func loadFile(path string) (*Plugin, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)

	if err := lua.LoadFile(l, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("plugin script must return a table")
	}

	plugin := &Plugin{state: l}

	plugin.id = tableString(l, "id")
	plugin.name = tableString(l, "name")
	plugin.description = tableString(l, "description")
	if plugin.id == "" {
		return nil, fmt.Errorf("plugin table has no id")
	}
	if plugin.name == "" {
		plugin.name = plugin.id
	}

	l.Field(-1, "config_schema")
	if l.TypeOf(-1) == lua.TypeTable {
		if schema, ok := toGoValue(l, -1).(map[string]any); ok {
			plugin.schema = schema
		}
	}
	l.Pop(1)

	for _, fn := range []string{"validate", "score"} {
		l.Field(-1, fn)
		isFunction := l.TypeOf(-1) == lua.TypeFunction
		l.Pop(1)
		if !isFunction {
			return nil, fmt.Errorf("plugin table has no %s function", fn)
		}
	}

	// Stash the table for later calls; SetGlobal pops it.
	l.SetGlobal(pluginGlobal)

	return plugin, nil
}

func tableString(l *lua.State, field string) string {
	l.Field(-1, field)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeString {
		return ""
	}
	s, _ := l.ToString(-1)
	return s
}
