package scoring

import (
	"math"
	"time"

	"github.com/NBS282/themepark-api/internal/models"
)

func scorePerAttraction(cfg PerAttractionConfig, attractionType models.AttractionType) int {
	return cfg.Points[attractionType]
}

// scoreCombo counts distinct attractions visited in the window ending at the
// current visit's entry, the current one included. Reaching the configured
// minimum multiplies the base value.
func scoreCombo(cfg ComboConfig, visit models.Visit, prior []models.Visit) int {
	windowStart := visit.EnteredAt.Add(-time.Duration(cfg.WindowMinutes) * time.Minute)

	distinct := map[string]struct{}{visit.AttractionName: {}}
	for _, p := range prior {
		if p.EnteredAt.Before(windowStart) || p.EnteredAt.After(visit.EnteredAt) {
			continue
		}
		distinct[p.AttractionName] = struct{}{}
	}

	if len(distinct) >= cfg.MinAttractions {
		return int(math.Round(float64(cfg.BasePoints) * cfg.Multiplier))
	}
	return cfg.BasePoints
}

func scorePerEvent(cfg PerEventConfig, visit models.Visit) int {
	if visit.EventName != "" && visit.EventName == cfg.EventName {
		return cfg.Points
	}
	return 0
}
