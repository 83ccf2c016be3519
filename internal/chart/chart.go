package chart

import (
	"fmt"
	"time"
)

// Planet identifies a chart body. The engine scores the ten classical-to-modern
// planets; anything else in an input chart is rejected at validation.
type Planet string

const (
	Sun     Planet = "sun"
	Moon    Planet = "moon"
	Mercury Planet = "mercury"
	Venus   Planet = "venus"
	Mars    Planet = "mars"
	Jupiter Planet = "jupiter"
	Saturn  Planet = "saturn"
	Uranus  Planet = "uranus"
	Neptune Planet = "neptune"
	Pluto   Planet = "pluto"
)

// Planets lists every recognized planet in classical importance order.
var Planets = []Planet{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

var planetSet = func() map[Planet]bool {
	m := make(map[Planet]bool, len(Planets))
	for _, p := range Planets {
		m[p] = true
	}
	return m
}()

// Known reports whether p is a recognized planet.
func (p Planet) Known() bool {
	return planetSet[p]
}

// Sign is a zodiac sign, 0 = Aries through 11 = Pisces.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [...]string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

func (s Sign) String() string {
	if s < 0 || int(s) >= len(signNames) {
		return fmt.Sprintf("sign(%d)", int(s))
	}
	return signNames[s]
}

// SignFromLongitude maps an ecliptic longitude in [0,360) to its sign.
func SignFromLongitude(lon float64) Sign {
	return Sign(int(lon/30) % 12)
}

// rulers maps each sign to its traditional ruling planet, used for the
// chart-ruler bonus. Modern co-rulers are deliberately not used; the bonus
// follows the traditional rulership table.
var rulers = [...]Planet{
	Aries:       Mars,
	Taurus:      Venus,
	Gemini:      Mercury,
	Cancer:      Moon,
	Leo:         Sun,
	Virgo:       Mercury,
	Libra:       Venus,
	Scorpio:     Mars,
	Sagittarius: Jupiter,
	Capricorn:   Saturn,
	Aquarius:    Saturn,
	Pisces:      Jupiter,
}

// Ruler returns the traditional ruling planet of a sign.
func Ruler(s Sign) Planet {
	if s < 0 || int(s) >= len(rulers) {
		return ""
	}
	return rulers[s]
}

// Position is one body's placement in a chart. House 0 means the house is
// unknown (birth time not supplied); valid houses are 1..12.
type Position struct {
	Planet     Planet  `json:"planet"`
	Longitude  float64 `json:"longitude"`
	House      int     `json:"house,omitempty"`
	Sign       Sign    `json:"sign"`
	Retrograde bool    `json:"retrograde,omitempty"`
}

// NatalChart is the fixed reference chart for one person. AscendantKnown is
// false for house-less charts (unknown birth time); the ascendant sign and all
// house filters/bonuses are skipped in that case.
type NatalChart struct {
	Positions      []Position `json:"positions"`
	AscendantSign  Sign       `json:"ascendant_sign"`
	AscendantKnown bool       `json:"ascendant_known"`
}

// TransitChart holds planet positions for the evaluation date.
type TransitChart struct {
	Date      time.Time  `json:"date"`
	Positions []Position `json:"positions"`
}

// Position returns the position for a planet, or nil if absent.
func (c *NatalChart) Position(p Planet) *Position {
	return findPosition(c.Positions, p)
}

// Position returns the position for a planet, or nil if absent.
func (c *TransitChart) Position(p Planet) *Position {
	return findPosition(c.Positions, p)
}

func findPosition(positions []Position, p Planet) *Position {
	for i := range positions {
		if positions[i].Planet == p {
			return &positions[i]
		}
	}
	return nil
}
