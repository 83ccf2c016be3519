package calibration

import "math"

// Fallback compression scales, tuned to typical raw magnitudes of a full-size
// filtered aspect set. Used only when a meter has no calibration table; the
// tanh soft ceiling keeps every output finite, monotonic and inside [0,100].
const (
	fallbackScaleDTI      = 600
	fallbackScalePowerSum = 2000
	fallbackScaleHQS      = 500
)

// Normalizer converts raw statistics to 0-100 readings against a calibration
// Set. The zero-value-with-nil-set Normalizer is usable and always takes the
// fallback path.
type Normalizer struct {
	set *Set
}

// NewNormalizer wraps a calibration set. set may be nil.
func NewNormalizer(set *Set) *Normalizer {
	return &Normalizer{set: set}
}

// Calibrated reports whether a meter has a table for the given statistic.
func (n *Normalizer) Calibrated(meter string, stat Statistic) bool {
	_, ok := n.set.Lookup(meter, stat)
	return ok
}

// Intensity maps a raw intensity statistic (DTI or power-sum) to [0,100].
// Raw 0 maps to 0; raw at the p50 breakpoint maps to ~50, at p99 to ~99;
// values beyond p99 clamp.
func (n *Normalizer) Intensity(meter string, stat Statistic, raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	if t, ok := n.set.Lookup(meter, stat); ok {
		return interpolate(t.Points, raw)
	}
	return fallbackIntensity(stat, raw)
}

// Harmony maps a signed raw HQS to [0,100] with 50 as the exact neutral
// point. Negative raws rank against the negative-half table and land in
// [0,50); positive raws rank against the positive-half table and land in
// (50,100]. The halves are calibrated independently.
func (n *Normalizer) Harmony(meter string, raw float64) float64 {
	if raw == 0 {
		return 50
	}
	if raw > 0 {
		if t, ok := n.set.Lookup(meter, StatHQSPos); ok {
			return 50 + interpolate(t.Points, raw)/2
		}
		return 50 + 50*math.Tanh(raw/fallbackScaleHQS)
	}
	if t, ok := n.set.Lookup(meter, StatHQSNeg); ok {
		return 50 - interpolate(t.Points, -raw)/2
	}
	return 50 + 50*math.Tanh(raw/fallbackScaleHQS)
}

// interpolate places raw on the percentile scale described by 99 breakpoints,
// returning a value in [0,100]. Below p01 it interpolates linearly between
// (0,0) and (p01,1); between breakpoints it interpolates linearly; at or
// beyond p99 it clamps to 99 plus a bounded overshoot so extreme raws stay
// inside [99,100). Flat breakpoint runs (repeated values) resolve to the
// highest percentile of the run, keeping the mapping monotonic.
func interpolate(points [Breakpoints]float64, raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	if raw < points[0] {
		if points[0] == 0 {
			return 1
		}
		return raw / points[0]
	}
	last := points[Breakpoints-1]
	if raw >= last {
		if last <= 0 {
			return 99
		}
		// Bounded overshoot: approaches 100 but never reaches it.
		over := (raw - last) / last
		return 99 + math.Min(over, 0.99)
	}
	// Binary search for the bracketing pair.
	lo, hi := 0, Breakpoints-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if points[mid] <= raw {
			lo = mid
		} else {
			hi = mid
		}
	}
	// Walk lo forward through any flat run so equal raws map to the top of it.
	for lo+1 < Breakpoints-1 && points[lo+1] == points[lo] {
		lo++
	}
	hi = lo + 1
	p0, p1 := points[lo], points[hi]
	frac := 0.0
	if p1 > p0 {
		frac = (raw - p0) / (p1 - p0)
	}
	return float64(lo+1) + frac
}

func fallbackIntensity(stat Statistic, raw float64) float64 {
	scale := float64(fallbackScaleDTI)
	if stat == StatPowerSum {
		scale = fallbackScalePowerSum
	}
	return 100 * math.Tanh(raw/scale)
}
