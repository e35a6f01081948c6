package luaplugin

import (
	"strings"
	"testing"
	"time"

	"github.com/NBS282/themepark-api/internal/models"
	"go.uber.org/zap"
)

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := LoadDir("testdata", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to load plugins: %v", err)
	}
	return registry
}

func TestLoadDir(t *testing.T) {
	registry := loadTestRegistry(t)

	// broken.lua must be skipped, streak_bonus.lua loaded.
	if got := len(registry.All()); got != 1 {
		t.Fatalf("expected 1 plugin, got %d", got)
	}

	plugin, ok := registry.Get("streak_bonus")
	if !ok {
		t.Fatal("expected streak_bonus to be registered")
	}
	if plugin.Name() != "Streak Bonus" {
		t.Errorf("expected name from the script, got %q", plugin.Name())
	}
	if plugin.Description() == "" {
		t.Error("expected a description from the script")
	}

	schema := plugin.ConfigSchema()
	if schema["base_points"] != "number" || schema["streak"] != "number" || schema["bonus"] != "number" {
		t.Errorf("unexpected config schema: %+v", schema)
	}

	if _, ok := registry.Get("broken"); ok {
		t.Error("expected broken script to be skipped")
	}
}

func TestLoadDirMissing(t *testing.T) {
	registry, err := LoadDir("does-not-exist", zap.NewNop())
	if err != nil {
		t.Fatalf("expected a missing directory to be tolerated: %v", err)
	}
	if len(registry.All()) != 0 {
		t.Error("expected an empty registry")
	}
}

func TestPluginParseConfig(t *testing.T) {
	registry := loadTestRegistry(t)
	plugin, _ := registry.Get("streak_bonus")

	t.Run("Valid", func(t *testing.T) {
		if _, err := plugin.ParseConfig([]byte(`{"base_points":5,"streak":3,"bonus":10}`)); err != nil {
			t.Fatalf("expected config accepted: %v", err)
		}
	})

	t.Run("RejectedByScript", func(t *testing.T) {
		_, err := plugin.ParseConfig([]byte(`{"base_points":5,"streak":1,"bonus":10}`))
		if err == nil {
			t.Fatal("expected config rejected")
		}
		if !strings.Contains(err.Error(), "streak must be at least 2") {
			t.Errorf("expected the script's reason, got %v", err)
		}
	})

	t.Run("NotJSON", func(t *testing.T) {
		if _, err := plugin.ParseConfig([]byte(`not json`)); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestPluginScore(t *testing.T) {
	registry := loadTestRegistry(t)
	plugin, _ := registry.Get("streak_bonus")

	config, err := plugin.ParseConfig([]byte(`{"base_points":5,"streak":3,"bonus":10}`))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	entered := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	visit := models.Visit{UserID: 1, AttractionName: "T-Rex", EnteredAt: entered}

	t.Run("BelowStreak", func(t *testing.T) {
		points, err := plugin.Score(visit, config, nil)
		if err != nil {
			t.Fatalf("score failed: %v", err)
		}
		if points != 5 {
			t.Errorf("expected base 5, got %d", points)
		}
	})

	t.Run("StreakReached", func(t *testing.T) {
		prior := []models.Visit{
			{UserID: 1, AttractionName: "Rapids", EnteredAt: entered.Add(-time.Hour)},
			{UserID: 1, AttractionName: "Vertigo", EnteredAt: entered.Add(-30 * time.Minute)},
		}
		points, err := plugin.Score(visit, config, prior)
		if err != nil {
			t.Fatalf("score failed: %v", err)
		}
		if points != 15 {
			t.Errorf("expected 15 with bonus, got %d", points)
		}
	})

	// Repeated calls must leave the interpreter stack balanced.
	t.Run("Repeatable", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			if _, err := plugin.Score(visit, config, nil); err != nil {
				t.Fatalf("score call %d failed: %v", i, err)
			}
		}
	})
}
