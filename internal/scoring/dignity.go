package scoring

import "github.com/lox/astrometer/internal/chart"

// Essential dignity scores. Domicile and exaltation strengthen a planet,
// detriment and fall weaken it; everything else is neutral. Outer planets
// (Uranus, Neptune, Pluto) have no classical dignities and score 0 in every
// sign.
const (
	dignityDomicile  = 5.0
	dignityExalted   = 4.0
	dignityDetriment = -4.0
	dignityFall      = -5.0
)

type dignityPlacements struct {
	Domicile  []chart.Sign
	Exalted   []chart.Sign
	Detriment []chart.Sign
	Fall      []chart.Sign
}

// The classical seven-planet dignity table.
var dignities = map[chart.Planet]dignityPlacements{
	chart.Sun: {
		Domicile:  []chart.Sign{chart.Leo},
		Exalted:   []chart.Sign{chart.Aries},
		Detriment: []chart.Sign{chart.Aquarius},
		Fall:      []chart.Sign{chart.Libra},
	},
	chart.Moon: {
		Domicile:  []chart.Sign{chart.Cancer},
		Exalted:   []chart.Sign{chart.Taurus},
		Detriment: []chart.Sign{chart.Capricorn},
		Fall:      []chart.Sign{chart.Scorpio},
	},
	chart.Mercury: {
		Domicile:  []chart.Sign{chart.Gemini, chart.Virgo},
		Exalted:   []chart.Sign{chart.Virgo},
		Detriment: []chart.Sign{chart.Sagittarius, chart.Pisces},
		Fall:      []chart.Sign{chart.Pisces},
	},
	chart.Venus: {
		Domicile:  []chart.Sign{chart.Taurus, chart.Libra},
		Exalted:   []chart.Sign{chart.Pisces},
		Detriment: []chart.Sign{chart.Scorpio, chart.Aries},
		Fall:      []chart.Sign{chart.Virgo},
	},
	chart.Mars: {
		Domicile:  []chart.Sign{chart.Aries, chart.Scorpio},
		Exalted:   []chart.Sign{chart.Capricorn},
		Detriment: []chart.Sign{chart.Libra, chart.Taurus},
		Fall:      []chart.Sign{chart.Cancer},
	},
	chart.Jupiter: {
		Domicile:  []chart.Sign{chart.Sagittarius, chart.Pisces},
		Exalted:   []chart.Sign{chart.Cancer},
		Detriment: []chart.Sign{chart.Gemini, chart.Virgo},
		Fall:      []chart.Sign{chart.Capricorn},
	},
	chart.Saturn: {
		Domicile:  []chart.Sign{chart.Capricorn, chart.Aquarius},
		Exalted:   []chart.Sign{chart.Libra},
		Detriment: []chart.Sign{chart.Cancer, chart.Leo},
		Fall:      []chart.Sign{chart.Aries},
	},
}

// DignityScore looks up the essential dignity of a planet in a sign.
// Domicile takes precedence over fall for Mercury in Virgo and similar
// double placements: the check order is domicile, exaltation, detriment, fall.
func DignityScore(p chart.Planet, s chart.Sign) float64 {
	d, ok := dignities[p]
	if !ok {
		return 0
	}
	if containsSign(d.Domicile, s) {
		return dignityDomicile
	}
	if containsSign(d.Exalted, s) {
		return dignityExalted
	}
	if containsSign(d.Detriment, s) {
		return dignityDetriment
	}
	if containsSign(d.Fall, s) {
		return dignityFall
	}
	return 0
}

func containsSign(signs []chart.Sign, s chart.Sign) bool {
	for _, v := range signs {
		if v == s {
			return true
		}
	}
	return false
}
