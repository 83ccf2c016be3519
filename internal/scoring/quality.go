package scoring

import "github.com/lox/astrometer/internal/chart"

// Fixed quality constants per aspect type. Trines and sextiles are harmonious,
// squares and oppositions challenging. Conjunctions are resolved dynamically
// from the planet natures involved.
const (
	qualityTrine      = 1.0
	qualitySextile    = 0.8
	qualitySquare     = -1.0
	qualityOpposition = -0.9

	conjunctionBenefic   = 1.2  // benefic + benefic
	conjunctionMalefic   = -1.2 // malefic + malefic
	conjunctionMixed     = 0.3  // benefic + malefic, mildly positive-leaning
	conjunctionTransform = 0.15 // everything else (luminaries, outers)

	// Harmonic boost shifts the quality distribution when enabled: positives
	// are amplified, negatives dampened. Off by default.
	beneficMultiplier = 1.3
	maleficDampener   = 0.7
)

type planetNature int

const (
	natureNeutral planetNature = iota
	natureBenefic
	natureMalefic
)

var natures = map[chart.Planet]planetNature{
	chart.Venus:   natureBenefic,
	chart.Jupiter: natureBenefic,
	chart.Mars:    natureMalefic,
	chart.Saturn:  natureMalefic,
}

// QualityOptions tunes quality resolution per call.
type QualityOptions struct {
	HarmonicBoost bool
}

// Quality resolves the signed Q for an aspect between two planets.
func Quality(t AspectType, natalPlanet, transitPlanet chart.Planet, opts QualityOptions) float64 {
	var q float64
	switch t {
	case Trine:
		q = qualityTrine
	case Sextile:
		q = qualitySextile
	case Square:
		q = qualitySquare
	case Opposition:
		q = qualityOpposition
	case Conjunction:
		q = conjunctionQuality(natalPlanet, transitPlanet)
	}
	if opts.HarmonicBoost {
		if q > 0 {
			q *= beneficMultiplier
		} else if q < 0 {
			q *= maleficDampener
		}
	}
	return q
}

func conjunctionQuality(a, b chart.Planet) float64 {
	na, nb := natures[a], natures[b]
	switch {
	case na == natureBenefic && nb == natureBenefic:
		return conjunctionBenefic
	case na == natureMalefic && nb == natureMalefic:
		return conjunctionMalefic
	case (na == natureBenefic && nb == natureMalefic) || (na == natureMalefic && nb == natureBenefic):
		return conjunctionMixed
	default:
		return conjunctionTransform
	}
}
