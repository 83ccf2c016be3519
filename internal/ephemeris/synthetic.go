package ephemeris

import (
	"math"
	"math/rand"
	"time"

	"github.com/lox/astrometer/internal/chart"
)

// Mean-motion approximation anchored at J2000 (2000-01-01 12:00 UTC).
// Good enough for sampling score distributions during calibration; real
// charts come from the chart service.
var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

type meanElements struct {
	LongitudeAtEpoch float64 // degrees
	DailyMotion      float64 // degrees per day
	SynodicDays      float64 // synodic period, 0 = never retrograde
	RetroFraction    float64 // fraction of the synodic cycle spent retrograde
}

var elements = map[chart.Planet]meanElements{
	chart.Sun:     {280.46, 0.98565, 0, 0},
	chart.Moon:    {218.32, 13.17640, 0, 0},
	chart.Mercury: {252.25, 4.09234, 115.88, 0.19},
	chart.Venus:   {181.98, 1.60213, 583.92, 0.07},
	chart.Mars:    {355.45, 0.52403, 779.94, 0.09},
	chart.Jupiter: {34.35, 0.08309, 398.88, 0.30},
	chart.Saturn:  {50.08, 0.03346, 378.09, 0.36},
	chart.Uranus:  {314.05, 0.01173, 369.66, 0.41},
	chart.Neptune: {304.35, 0.00602, 367.49, 0.43},
	chart.Pluto:   {238.93, 0.00397, 366.73, 0.44},
}

// PositionAt returns the approximate position of a planet on a date.
func PositionAt(p chart.Planet, t time.Time) chart.Position {
	el := elements[p]
	days := t.Sub(j2000).Hours() / 24
	lon := math.Mod(el.LongitudeAtEpoch+el.DailyMotion*days, 360)
	if lon < 0 {
		lon += 360
	}
	retro := false
	if el.SynodicDays > 0 {
		phase := math.Mod(days/el.SynodicDays, 1)
		if phase < 0 {
			phase++
		}
		// The retrograde arc is centered on opposition/inferior conjunction,
		// i.e. mid-cycle in this parameterization.
		retro = math.Abs(phase-0.5) < el.RetroFraction/2
	}
	return chart.Position{
		Planet:     p,
		Longitude:  lon,
		Sign:       chart.SignFromLongitude(lon),
		Retrograde: retro,
	}
}

// TransitAt builds the full transit chart for a date from mean motions.
func TransitAt(date time.Time) *chart.TransitChart {
	transit := &chart.TransitChart{Date: date}
	for _, p := range chart.Planets {
		transit.Positions = append(transit.Positions, PositionAt(p, date))
	}
	return transit
}

// SyntheticNatal builds a deterministic natal chart from a seed: a birth
// moment spread across spanYears decades ending at endYear, positions by
// mean motion, and whole-sign houses from a seeded ascendant. Identical
// seeds always produce identical charts.
func SyntheticNatal(seed int64, endYear, spanYears int) *chart.NatalChart {
	rng := rand.New(rand.NewSource(seed))

	startYear := endYear - spanYears
	birthDays := rng.Int63n(int64(spanYears) * 365)
	birth := time.Date(startYear, 1, 1, rng.Intn(24), rng.Intn(60), 0, 0, time.UTC).
		AddDate(0, 0, int(birthDays))

	asc := chart.Sign(rng.Intn(12))
	natal := &chart.NatalChart{AscendantSign: asc, AscendantKnown: true}
	for _, p := range chart.Planets {
		pos := PositionAt(p, birth)
		// Whole-sign houses: the ascendant sign is house 1.
		pos.House = (int(pos.Sign)-int(asc)+12)%12 + 1
		natal.Positions = append(natal.Positions, pos)
	}
	return natal
}

// SyntheticTransitDate picks a deterministic evaluation date for a seed,
// spread across the same span the natal charts cover.
func SyntheticTransitDate(seed int64, endYear, spanYears int) time.Time {
	rng := rand.New(rand.NewSource(seed ^ 0x5f3759df))
	startYear := endYear - spanYears
	days := rng.Int63n(int64(spanYears) * 365)
	return time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days))
}
