package meters

import (
	"fmt"
	"time"

	"github.com/lox/astrometer/internal/calibration"
	"github.com/lox/astrometer/internal/chart"
	"github.com/lox/astrometer/internal/scoring"
)

// DayReading is the full bundle for one (natal, transit, date) computation.
type DayReading struct {
	Date        time.Time      `json:"date"`
	AspectCount int            `json:"aspect_count"`
	Meters      []Reading      `json:"meters"`
	Groups      []GroupReading `json:"groups"`
}

// Engine is the top-level meter computation: aspect detection, scoring,
// per-meter filtering and normalization, group aggregation. It is pure and
// stateless across calls; everything it references is read-only after
// construction, so an Engine is safe for unsynchronized concurrent use.
type Engine struct {
	registry   *Registry
	calculator *Calculator
	scorer     *scoring.Scorer
}

// NewEngine wires the registry, labels and calibration into an engine.
func NewEngine(registry *Registry, labels *Labels, set *calibration.Set) *Engine {
	return &Engine{
		registry:   registry,
		calculator: NewCalculator(registry, labels, calibration.NewNormalizer(set)),
		scorer:     scoring.NewScorer(),
	}
}

// Calculator exposes the engine's calculator for tuning.
func (e *Engine) Calculator() *Calculator {
	return e.calculator
}

// Registry exposes the engine's meter registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// ComputeDay validates the charts, scores every aspect once and derives all
// meter and group readings. yesterday, when non-nil, supplies the prior
// day's readings keyed by meter id for trend derivation.
func (e *Engine) ComputeDay(natal *chart.NatalChart, transit *chart.TransitChart, yesterday []Reading) (*DayReading, error) {
	if err := natal.Validate(); err != nil {
		return nil, fmt.Errorf("compute day: %w", err)
	}
	if err := transit.Validate(); err != nil {
		return nil, fmt.Errorf("compute day: %w", err)
	}

	aspects := scoring.FindAspects(natal, transit)
	contributions := e.scorer.ScoreAspects(natal, aspects)

	prior := make(map[string]float64, len(yesterday))
	for _, r := range yesterday {
		prior[r.MeterID] = r.UnifiedScore
	}

	day := &DayReading{Date: transit.Date, AspectCount: len(aspects)}
	byID := make(map[string]Reading)
	for _, cfg := range e.registry.Configs() {
		r := e.calculator.Reading(&cfg, transit.Date, contributions)
		if prev, ok := prior[r.MeterID]; ok {
			r.Trend = NewTrend(r.UnifiedScore, prev)
		}
		day.Meters = append(day.Meters, r)
		byID[r.MeterID] = r
	}

	for _, group := range e.registry.Groups() {
		var members []Reading
		for _, id := range e.registry.GroupMembers(group) {
			if r, ok := byID[id]; ok {
				members = append(members, r)
			}
		}
		g := CalculateGroupScore(group, members)
		e.calculator.labelGroup(&g, members)
		day.Groups = append(day.Groups, g)
	}

	return day, nil
}

// RawScores computes the unnormalized per-meter statistics for one
// (natal, transit) pair. The calibration generator uses this to sample raw
// distributions without touching the normalization path.
func (e *Engine) RawScores(natal *chart.NatalChart, transit *chart.TransitChart) (map[string]calibration.RawSample, error) {
	if err := natal.Validate(); err != nil {
		return nil, err
	}
	if err := transit.Validate(); err != nil {
		return nil, err
	}
	aspects := scoring.FindAspects(natal, transit)
	contributions := e.scorer.ScoreAspects(natal, aspects)

	out := make(map[string]calibration.RawSample, len(e.registry.Configs()))
	for _, cfg := range e.registry.Configs() {
		raw := scoring.Aggregate(e.calculator.Filter(&cfg, contributions))
		out[cfg.ID] = calibration.RawSample{DTI: raw.DTI, PowerSum: raw.PowerSum, HQS: raw.HQS}
	}
	return out, nil
}
