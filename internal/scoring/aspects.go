package scoring

import (
	"math"

	"github.com/lox/astrometer/internal/chart"
)

// AspectType is a recognized angular relationship between two bodies.
type AspectType string

const (
	Conjunction AspectType = "conjunction"
	Sextile     AspectType = "sextile"
	Square      AspectType = "square"
	Trine       AspectType = "trine"
	Opposition  AspectType = "opposition"
)

type aspectDef struct {
	Angle         float64
	MaxOrb        float64
	BaseIntensity float64
}

// Hard aspects (conjunction, square, opposition) carry higher base intensity
// than soft ones; orbs follow common practice (wider for majors).
var aspectDefs = map[AspectType]aspectDef{
	Conjunction: {Angle: 0, MaxOrb: 8, BaseIntensity: 10},
	Opposition:  {Angle: 180, MaxOrb: 8, BaseIntensity: 9},
	Square:      {Angle: 90, MaxOrb: 7, BaseIntensity: 9},
	Trine:       {Angle: 120, MaxOrb: 7, BaseIntensity: 7},
	Sextile:     {Angle: 60, MaxOrb: 5, BaseIntensity: 5},
}

// aspectOrder is the match order: tightest-angle families first so a
// separation near 0° never matches a wide sextile orb by accident.
var aspectOrder = []AspectType{Conjunction, Sextile, Square, Trine, Opposition}

// minOrbFactor is the decayed strength at the orb boundary. The factor decays
// linearly from 1.0 at exact alignment to this value at MaxOrb.
const minOrbFactor = 0.25

// Aspect is a detected angular relationship between a natal and a transiting
// body. Orb is the deviation from the exact angle, always >= 0.
type Aspect struct {
	NatalPlanet   chart.Planet `json:"natal_planet"`
	TransitPlanet chart.Planet `json:"transit_planet"`
	Type          AspectType   `json:"type"`
	Angle         float64      `json:"angle"`
	Orb           float64      `json:"orb"`
	Applying      bool         `json:"applying"`

	// Natal-side context carried for filtering and weighting.
	NatalHouse        int        `json:"natal_house,omitempty"`
	NatalSign         chart.Sign `json:"natal_sign"`
	TransitRetrograde bool       `json:"transit_retrograde,omitempty"`
}

// Separation returns the angular separation of two longitudes in [0,180].
func Separation(lon1, lon2 float64) float64 {
	d := math.Abs(lon1 - lon2)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// DetectAspect matches the separation of two longitudes against the
// recognized aspect angles. It returns the aspect type and orb, or ok=false
// when the separation falls outside every aspect's orb.
func DetectAspect(natalLon, transitLon float64) (AspectType, float64, bool) {
	sep := Separation(natalLon, transitLon)
	for _, t := range aspectOrder {
		def := aspectDefs[t]
		orb := math.Abs(sep - def.Angle)
		if orb <= def.MaxOrb {
			return t, orb, true
		}
	}
	return "", 0, false
}

// OrbFactor converts an orb to a strength factor: 1.0 at exact alignment,
// decaying linearly to minOrbFactor at the aspect's orb boundary. Orbs past
// the boundary return 0 (no aspect).
func OrbFactor(t AspectType, orb float64) float64 {
	def, ok := aspectDefs[t]
	if !ok || orb < 0 || orb > def.MaxOrb {
		return 0
	}
	if def.MaxOrb == 0 {
		return 1
	}
	return 1 - (1-minOrbFactor)*(orb/def.MaxOrb)
}

// Power computes P for a detected aspect: base intensity scaled by the
// orb-decay factor.
func Power(t AspectType, orb float64) float64 {
	def, ok := aspectDefs[t]
	if !ok {
		return 0
	}
	return def.BaseIntensity * OrbFactor(t, orb)
}

// ExactAngle returns the exact angle for an aspect type.
func ExactAngle(t AspectType) float64 {
	return aspectDefs[t].Angle
}

// MaxOrb returns the orb boundary for an aspect type.
func MaxOrb(t AspectType) float64 {
	return aspectDefs[t].MaxOrb
}

// meanDailyMotion is the approximate daily longitudinal motion per planet in
// degrees, used only to tag aspects applying/separating.
var meanDailyMotion = map[chart.Planet]float64{
	chart.Sun:     0.9856,
	chart.Moon:    13.1764,
	chart.Mercury: 1.383,
	chart.Venus:   1.2,
	chart.Mars:    0.524,
	chart.Jupiter: 0.083,
	chart.Saturn:  0.0335,
	chart.Uranus:  0.0117,
	chart.Neptune: 0.006,
	chart.Pluto:   0.004,
}

// isApplying reports whether the transiting planet is moving toward the exact
// aspect angle. Retrograde motion reverses the direction of travel.
func isApplying(t AspectType, natalLon, transitLon float64, transit chart.Position) bool {
	motion := meanDailyMotion[transit.Planet]
	if transit.Retrograde {
		motion = -motion
	}
	now := math.Abs(Separation(natalLon, transitLon) - aspectDefs[t].Angle)
	next := math.Abs(Separation(natalLon, math.Mod(transitLon+motion+360, 360)) - aspectDefs[t].Angle)
	return next < now
}

// FindAspects computes every aspect between natal and transit positions. The
// result order is natal-position major, transit-position minor, so identical
// charts always produce an identical list.
func FindAspects(natal *chart.NatalChart, transit *chart.TransitChart) []Aspect {
	var aspects []Aspect
	for _, np := range natal.Positions {
		for _, tp := range transit.Positions {
			t, orb, ok := DetectAspect(np.Longitude, tp.Longitude)
			if !ok {
				continue
			}
			aspects = append(aspects, Aspect{
				NatalPlanet:       np.Planet,
				TransitPlanet:     tp.Planet,
				Type:              t,
				Angle:             aspectDefs[t].Angle,
				Orb:               orb,
				Applying:          isApplying(t, np.Longitude, tp.Longitude, tp),
				NatalHouse:        np.House,
				NatalSign:         np.Sign,
				TransitRetrograde: tp.Retrograde,
			})
		}
	}
	return aspects
}
