package chart

import (
	"testing"
	"time"
)

func TestSignFromLongitude(t *testing.T) {
	tests := []struct {
		lon  float64
		want Sign
	}{
		{0, Aries},
		{29.99, Aries},
		{30, Taurus},
		{95, Cancer},
		{180, Libra},
		{215, Scorpio},
		{359.99, Pisces},
	}
	for _, tt := range tests {
		if got := SignFromLongitude(tt.lon); got != tt.want {
			t.Errorf("SignFromLongitude(%v) = %v, want %v", tt.lon, got, tt.want)
		}
	}
}

func TestRuler(t *testing.T) {
	tests := []struct {
		sign Sign
		want Planet
	}{
		{Aries, Mars},
		{Cancer, Moon},
		{Leo, Sun},
		{Virgo, Mercury},
		{Scorpio, Mars},
		{Aquarius, Saturn},
		{Pisces, Jupiter},
	}
	for _, tt := range tests {
		if got := Ruler(tt.sign); got != tt.want {
			t.Errorf("Ruler(%v) = %v, want %v", tt.sign, got, tt.want)
		}
	}
	if got := Ruler(Sign(12)); got != "" {
		t.Errorf("Ruler(out of range) = %q, want empty", got)
	}
}

func TestPlanetKnown(t *testing.T) {
	for _, p := range Planets {
		if !p.Known() {
			t.Errorf("%s not recognized", p)
		}
	}
	if Planet("vulcan").Known() {
		t.Error("vulcan recognized")
	}
	if Planet("").Known() {
		t.Error("empty planet recognized")
	}
}

func validPositions() []Position {
	return []Position{
		{Planet: Sun, Longitude: 5, House: 1, Sign: Aries},
		{Planet: Moon, Longitude: 95, House: 4, Sign: Cancer},
	}
}

func TestValidatePositions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Position) []Position
		wantErr bool
	}{
		{name: "valid", mutate: func(p []Position) []Position { return p }},
		{name: "empty", mutate: func(p []Position) []Position { return nil }, wantErr: true},
		{name: "unknown planet", mutate: func(p []Position) []Position {
			p[0].Planet = "vulcan"
			return p
		}, wantErr: true},
		{name: "duplicate planet", mutate: func(p []Position) []Position {
			p[1].Planet = Sun
			return p
		}, wantErr: true},
		{name: "longitude too high", mutate: func(p []Position) []Position {
			p[0].Longitude = 360
			return p
		}, wantErr: true},
		{name: "negative longitude", mutate: func(p []Position) []Position {
			p[0].Longitude = -1
			return p
		}, wantErr: true},
		{name: "house thirteen", mutate: func(p []Position) []Position {
			p[0].House = 13
			return p
		}, wantErr: true},
		{name: "house zero is unknown not invalid", mutate: func(p []Position) []Position {
			p[0].House = 0
			return p
		}},
		{name: "sign out of range", mutate: func(p []Position) []Position {
			p[0].Sign = Sign(12)
			return p
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositions("test", tt.mutate(validPositions()))
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNatalChartValidate(t *testing.T) {
	c := &NatalChart{Positions: validPositions(), AscendantSign: Leo, AscendantKnown: true}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid chart rejected: %v", err)
	}

	c.AscendantSign = Sign(15)
	if err := c.Validate(); err == nil {
		t.Error("out of range ascendant accepted")
	}

	// Unknown ascendant skips the range check entirely.
	c.AscendantKnown = false
	if err := c.Validate(); err != nil {
		t.Errorf("houseless chart rejected: %v", err)
	}
}

func TestTransitChartValidate(t *testing.T) {
	c := &TransitChart{Positions: validPositions()}
	if err := c.Validate(); err == nil {
		t.Error("missing date accepted")
	}

	c.Date = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if err := c.Validate(); err != nil {
		t.Errorf("valid transit chart rejected: %v", err)
	}
}

func TestPositionLookup(t *testing.T) {
	natal := &NatalChart{Positions: validPositions()}
	if p := natal.Position(Moon); p == nil || p.House != 4 {
		t.Errorf("Moon lookup = %+v", p)
	}
	if p := natal.Position(Pluto); p != nil {
		t.Errorf("absent planet lookup = %+v, want nil", p)
	}
}
