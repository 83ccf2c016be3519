package scoring

import "github.com/lox/astrometer/internal/chart"

// Planet base importance, classical ordering: luminaries > personal planets >
// social planets > outer planets.
var planetBase = map[chart.Planet]float64{
	chart.Sun:     10,
	chart.Moon:    10,
	chart.Mercury: 8,
	chart.Venus:   8,
	chart.Mars:    8,
	chart.Jupiter: 6,
	chart.Saturn:  6,
	chart.Uranus:  4,
	chart.Neptune: 4,
	chart.Pluto:   4,
}

const chartRulerBonus = 3.0

// House multipliers: angular houses carry the most weight, then succedent,
// then cadent. House 0 (unknown birth time) falls through to 1.0.
func houseMultiplier(house int) float64 {
	switch house {
	case 1, 4, 7, 10:
		return 1.5
	case 2, 5, 8, 11:
		return 1.2
	default:
		return 1.0
	}
}

// Weigher computes W for natal placements. Sensitivity is a global tunable
// scalar, 1.0 by default.
type Weigher struct {
	Sensitivity float64
}

// NewWeigher returns a Weigher with default sensitivity.
func NewWeigher() *Weigher {
	return &Weigher{Sensitivity: 1.0}
}

// Weight computes W = (planetBase + dignity + rulerBonus) × houseMult ×
// sensitivity for a natal placement. The ruler bonus applies when the planet
// rules the chart's ascendant sign; house-less charts never receive it.
func (w *Weigher) Weight(pos chart.Position, natal *chart.NatalChart) float64 {
	base := planetBase[pos.Planet]
	base += DignityScore(pos.Planet, pos.Sign)
	if natal != nil && natal.AscendantKnown && chart.Ruler(natal.AscendantSign) == pos.Planet {
		base += chartRulerBonus
	}
	return base * houseMultiplier(pos.House) * w.Sensitivity
}

// PlanetBase exposes the base importance score for a planet.
func PlanetBase(p chart.Planet) float64 {
	return planetBase[p]
}
