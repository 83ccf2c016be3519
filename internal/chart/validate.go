package chart

import "fmt"

// ValidatePositions checks structural validity of a position list. Invalid
// input is rejected before any scoring runs; there is no partial computation
// on a malformed chart.
func ValidatePositions(kind string, positions []Position) error {
	if len(positions) == 0 {
		return fmt.Errorf("%s chart: no positions", kind)
	}
	seen := make(map[Planet]bool, len(positions))
	for _, pos := range positions {
		if !pos.Planet.Known() {
			return fmt.Errorf("%s chart: unrecognized planet %q", kind, pos.Planet)
		}
		if seen[pos.Planet] {
			return fmt.Errorf("%s chart: duplicate planet %q", kind, pos.Planet)
		}
		seen[pos.Planet] = true
		if pos.Longitude < 0 || pos.Longitude >= 360 {
			return fmt.Errorf("%s chart: planet %q longitude %.4f out of [0,360)", kind, pos.Planet, pos.Longitude)
		}
		if pos.House < 0 || pos.House > 12 {
			return fmt.Errorf("%s chart: planet %q house %d out of 0..12", kind, pos.Planet, pos.House)
		}
		if pos.Sign < Aries || pos.Sign > Pisces {
			return fmt.Errorf("%s chart: planet %q sign %d out of range", kind, pos.Planet, pos.Sign)
		}
	}
	return nil
}

// Validate checks a natal chart.
func (c *NatalChart) Validate() error {
	if err := ValidatePositions("natal", c.Positions); err != nil {
		return err
	}
	if c.AscendantKnown && (c.AscendantSign < Aries || c.AscendantSign > Pisces) {
		return fmt.Errorf("natal chart: ascendant sign %d out of range", c.AscendantSign)
	}
	return nil
}

// Validate checks a transit chart.
func (c *TransitChart) Validate() error {
	if c.Date.IsZero() {
		return fmt.Errorf("transit chart: missing date")
	}
	return ValidatePositions("transit", c.Positions)
}
