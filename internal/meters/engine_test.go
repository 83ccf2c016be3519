package meters

import (
	"testing"
	"time"

	"github.com/lox/astrometer/internal/chart"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	r, err := NewRegistry(DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	labels, err := LoadLabels(r)
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(r, labels, nil)
}

func fullNatal() *chart.NatalChart {
	positions := []chart.Position{
		{Planet: chart.Sun, Longitude: 5, House: 1},
		{Planet: chart.Moon, Longitude: 95, House: 4},
		{Planet: chart.Mercury, Longitude: 20, House: 1},
		{Planet: chart.Venus, Longitude: 40, House: 2},
		{Planet: chart.Mars, Longitude: 125, House: 5},
		{Planet: chart.Jupiter, Longitude: 185, House: 7},
		{Planet: chart.Saturn, Longitude: 275, House: 10},
		{Planet: chart.Uranus, Longitude: 310, House: 11},
		{Planet: chart.Neptune, Longitude: 340, House: 12},
		{Planet: chart.Pluto, Longitude: 215, House: 8},
	}
	for i := range positions {
		positions[i].Sign = chart.SignFromLongitude(positions[i].Longitude)
	}
	return &chart.NatalChart{Positions: positions, AscendantSign: chart.Aries, AscendantKnown: true}
}

func fullTransit(date time.Time) *chart.TransitChart {
	positions := []chart.Position{
		{Planet: chart.Sun, Longitude: 95},
		{Planet: chart.Moon, Longitude: 185},
		{Planet: chart.Mercury, Longitude: 110, Retrograde: true},
		{Planet: chart.Venus, Longitude: 65},
		{Planet: chart.Mars, Longitude: 5},
		{Planet: chart.Jupiter, Longitude: 245},
		{Planet: chart.Saturn, Longitude: 155},
		{Planet: chart.Uranus, Longitude: 130},
		{Planet: chart.Neptune, Longitude: 355},
		{Planet: chart.Pluto, Longitude: 35},
	}
	for i := range positions {
		positions[i].Sign = chart.SignFromLongitude(positions[i].Longitude)
	}
	return &chart.TransitChart{Date: date, Positions: positions}
}

func TestComputeDay(t *testing.T) {
	engine := testEngine(t)
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	day, err := engine.ComputeDay(fullNatal(), fullTransit(date), nil)
	if err != nil {
		t.Fatalf("ComputeDay: %v", err)
	}

	if len(day.Meters) != 16 {
		t.Errorf("got %d meters, want 16", len(day.Meters))
	}
	if len(day.Groups) != 5 {
		t.Errorf("got %d groups, want 5", len(day.Groups))
	}
	if day.AspectCount == 0 {
		t.Error("expected some aspects between the test charts")
	}

	for _, m := range day.Meters {
		if m.Intensity < 0 || m.Intensity > 100 {
			t.Errorf("%s intensity %v outside [0,100]", m.MeterID, m.Intensity)
		}
		if m.Harmony < 0 || m.Harmony > 100 {
			t.Errorf("%s harmony %v outside [0,100]", m.MeterID, m.Harmony)
		}
		if m.UnifiedScore < 0 || m.UnifiedScore > 100 {
			t.Errorf("%s unified %v outside [0,100]", m.MeterID, m.UnifiedScore)
		}
		if m.Trend != nil {
			t.Errorf("%s has a trend without yesterday readings", m.MeterID)
		}
		if len(m.TopAspects) > 5 {
			t.Errorf("%s has %d top aspects, want <= 5", m.MeterID, len(m.TopAspects))
		}
	}
	for _, g := range day.Groups {
		if g.UnifiedScore < 0 || g.UnifiedScore > 100 {
			t.Errorf("group %s unified %v outside [0,100]", g.Group, g.UnifiedScore)
		}
	}
}

func TestComputeDayDeterministic(t *testing.T) {
	engine := testEngine(t)
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	first, err := engine.ComputeDay(fullNatal(), fullTransit(date), nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.ComputeDay(fullNatal(), fullTransit(date), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Meters {
		a, b := first.Meters[i], second.Meters[i]
		if a.MeterID != b.MeterID || a.Intensity != b.Intensity || a.Harmony != b.Harmony || a.UnifiedScore != b.UnifiedScore {
			t.Errorf("meter %s differs between identical calls", a.MeterID)
		}
	}
}

func TestComputeDayTrend(t *testing.T) {
	engine := testEngine(t)
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	yesterday := []Reading{{MeterID: "focus", UnifiedScore: 10}}
	day, err := engine.ComputeDay(fullNatal(), fullTransit(date), yesterday)
	if err != nil {
		t.Fatal(err)
	}

	for _, m := range day.Meters {
		if m.MeterID == "focus" {
			if m.Trend == nil {
				t.Fatal("focus has no trend despite yesterday reading")
			}
			if m.Trend.Delta != m.UnifiedScore-10 {
				t.Errorf("trend delta = %v, want %v", m.Trend.Delta, m.UnifiedScore-10)
			}
		} else if m.Trend != nil {
			t.Errorf("%s has a trend without a yesterday reading", m.MeterID)
		}
	}
}

func TestComputeDayRejectsInvalidCharts(t *testing.T) {
	engine := testEngine(t)
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	bad := fullNatal()
	bad.Positions[0].Longitude = 400
	if _, err := engine.ComputeDay(bad, fullTransit(date), nil); err == nil {
		t.Error("natal chart with longitude 400 accepted")
	}

	if _, err := engine.ComputeDay(fullNatal(), &chart.TransitChart{Date: date}, nil); err == nil {
		t.Error("transit chart with no positions accepted")
	}
}

func TestRawScores(t *testing.T) {
	engine := testEngine(t)
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	raw, err := engine.RawScores(fullNatal(), fullTransit(date))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 16 {
		t.Fatalf("got raw scores for %d meters, want 16", len(raw))
	}
	for id, r := range raw {
		if r.DTI < 0 || r.PowerSum < 0 {
			t.Errorf("%s: negative intensity statistic %+v", id, r)
		}
	}
}
