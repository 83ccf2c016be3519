package meters

import (
	"time"

	"github.com/lox/astrometer/internal/calibration"
	"github.com/lox/astrometer/internal/scoring"
)

// Reading is one meter's computed state for a day. All scores are 0-100;
// harmony's neutral point is 50.
type Reading struct {
	MeterID        string                 `json:"meter_id"`
	Group          string                 `json:"group"`
	Label          string                 `json:"label"`
	Date           time.Time              `json:"date"`
	Intensity      float64                `json:"intensity"`
	Harmony        float64                `json:"harmony"`
	UnifiedScore   float64                `json:"unified_score"`
	Quality        string                 `json:"quality"`
	StateLabel     string                 `json:"state_label"`
	Interpretation string                 `json:"interpretation"`
	Advice         string                 `json:"advice"`
	TopAspects     []scoring.Contribution `json:"top_aspects,omitempty"`
	Raw            scoring.Score          `json:"raw_scores"`
	Calibrated     bool                   `json:"calibrated"`
	Trend          *Trend                 `json:"trend,omitempty"`
}

// Trend compares a reading to the prior day's for the same meter.
type Trend struct {
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"` // up, down, flat
	Rate      string  `json:"rate"`      // stable, slow, moderate, rapid
}

// Rate buckets for day-over-day movement of the unified score.
func rateBucket(delta float64) string {
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 5:
		return "stable"
	case abs < 10:
		return "slow"
	case abs < 20:
		return "moderate"
	default:
		return "rapid"
	}
}

// NewTrend derives the trend of today's unified score against yesterday's.
func NewTrend(today, yesterday float64) *Trend {
	delta := today - yesterday
	direction := "flat"
	if delta > 0 {
		direction = "up"
	} else if delta < 0 {
		direction = "down"
	}
	return &Trend{Delta: delta, Direction: direction, Rate: rateBucket(delta)}
}

// Calculator derives meter readings from a day's scored contributions.
type Calculator struct {
	registry   *Registry
	labels     *Labels
	normalizer *calibration.Normalizer

	// intensityStat selects which raw statistic calibrates intensity.
	intensityStat calibration.Statistic
}

// NewCalculator wires a registry, its label matrix and a normalizer.
// Intensity is calibrated from DTI.
func NewCalculator(registry *Registry, labels *Labels, normalizer *calibration.Normalizer) *Calculator {
	return &Calculator{
		registry:      registry,
		labels:        labels,
		normalizer:    normalizer,
		intensityStat: calibration.StatDTI,
	}
}

// UseStatistic switches the intensity statistic (StatDTI or StatPowerSum).
func (c *Calculator) UseStatistic(stat calibration.Statistic) {
	c.intensityStat = stat
}

// Filter keeps the contributions whose natal side matches a meter's config
// and applies the meter's retrograde dampeners. The input is never mutated;
// dampened contributions are copies with quality and HQS rescaled.
func (c *Calculator) Filter(cfg *Config, contributions []scoring.Contribution) []scoring.Contribution {
	var kept []scoring.Contribution
	for _, contrib := range contributions {
		a := contrib.Aspect
		if !cfg.Matches(a.NatalPlanet, a.NatalHouse) {
			continue
		}
		if a.TransitRetrograde {
			if d, ok := cfg.RetrogradeDampeners[a.TransitPlanet]; ok {
				contrib.Quality *= d
				contrib.HQS = contrib.DTI * contrib.Quality
			}
		}
		kept = append(kept, contrib)
	}
	return kept
}

// Reading computes a meter's full reading from the day's contributions.
// A meter whose filter matches nothing returns the neutral reading
// (intensity 0, harmony 50, unified 50); that is not an error.
func (c *Calculator) Reading(cfg *Config, date time.Time, contributions []scoring.Contribution) Reading {
	filtered := c.Filter(cfg, contributions)
	raw := scoring.Aggregate(filtered)

	var intensityRaw float64
	switch c.intensityStat {
	case calibration.StatPowerSum:
		intensityRaw = raw.PowerSum
	default:
		intensityRaw = raw.DTI
	}

	intensity := c.normalizer.Intensity(cfg.ID, c.intensityStat, intensityRaw)
	harmony := c.normalizer.Harmony(cfg.ID, raw.HQS)

	r := Reading{
		MeterID:      cfg.ID,
		Group:        cfg.Group,
		Label:        cfg.Label,
		Date:         date,
		Intensity:    intensity,
		Harmony:      harmony,
		UnifiedScore: UnifiedScore(intensity, harmony),
		TopAspects:   scoring.TopContributions(filtered),
		Raw:          raw,
		Calibrated:   c.normalizer.Calibrated(cfg.ID, c.intensityStat),
	}

	if entry, ok := c.labels.Lookup(cfg.ID, BandIntensity(intensity), BandHarmony(harmony)); ok {
		r.Quality = entry.Quality
		r.StateLabel = entry.State
		r.Interpretation = entry.Interpretation
		r.Advice = entry.Advice
	}
	return r
}

// UnifiedScore blends intensity and harmony. Harmony sets the direction away
// from 50 and intensity gates how far the score moves: with nothing
// happening the score stays neutral regardless of how pleasant or difficult
// the few aspects are.
func UnifiedScore(intensity, harmony float64) float64 {
	return 50 + (harmony-50)*(intensity/100)
}
