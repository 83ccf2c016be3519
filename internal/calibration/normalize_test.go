package calibration

import (
	"math"
	"testing"
)

// linearTable builds breakpoints p01..p99 spaced evenly from lo to hi.
func linearTable(meter string, stat Statistic, lo, hi float64) Table {
	t := Table{Meter: meter, Stat: stat, Version: "test"}
	for i := 0; i < Breakpoints; i++ {
		t.Points[i] = lo + (hi-lo)*float64(i)/float64(Breakpoints-1)
	}
	return t
}

func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	set, err := NewSet("test", []Table{
		linearTable("focus", StatDTI, 10, 1000),
		linearTable("focus", StatHQSPos, 5, 800),
		linearTable("focus", StatHQSNeg, 8, 1200),
	})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return NewNormalizer(set)
}

func TestIntensityRangeAndMonotonic(t *testing.T) {
	n := testNormalizer(t)
	prev := -1.0
	for raw := 0.0; raw <= 3000; raw += 7.3 {
		got := n.Intensity("focus", StatDTI, raw)
		if got < 0 || got > 100 {
			t.Fatalf("Intensity(%v) = %v, outside [0,100]", raw, got)
		}
		if got < prev {
			t.Fatalf("Intensity not non-decreasing at raw %v: %v < %v", raw, got, prev)
		}
		if math.IsNaN(got) {
			t.Fatalf("Intensity(%v) is NaN", raw)
		}
		prev = got
	}
}

func TestIntensityPercentileAnchors(t *testing.T) {
	n := testNormalizer(t)
	set := n.set
	table, _ := set.Lookup("focus", StatDTI)

	p50 := table.Points[49]
	if got := n.Intensity("focus", StatDTI, p50); got < 48 || got > 52 {
		t.Errorf("Intensity(p50 raw %v) = %v, want in [48,52]", p50, got)
	}

	p99 := table.Points[98]
	if got := n.Intensity("focus", StatDTI, p99); got < 98 || got > 100 {
		t.Errorf("Intensity(p99 raw %v) = %v, want in [98,100]", p99, got)
	}

	if got := n.Intensity("focus", StatDTI, 0); got != 0 {
		t.Errorf("Intensity(0) = %v, want 0", got)
	}
}

func TestHarmonyNeutralPoint(t *testing.T) {
	n := testNormalizer(t)
	if got := n.Harmony("focus", 0); got != 50 {
		t.Errorf("Harmony(0) = %v, want exactly 50", got)
	}
	// Fallback path too.
	if got := n.Harmony("unknown-meter", 0); got != 50 {
		t.Errorf("fallback Harmony(0) = %v, want exactly 50", got)
	}
}

func TestHarmonySignedHalves(t *testing.T) {
	n := testNormalizer(t)
	tests := []struct {
		raw       float64
		wantAbove bool
	}{
		{raw: 100, wantAbove: true},
		{raw: 790, wantAbove: true},
		{raw: -100, wantAbove: false},
		{raw: -1190, wantAbove: false},
	}
	for _, tt := range tests {
		got := n.Harmony("focus", tt.raw)
		if got < 0 || got > 100 {
			t.Errorf("Harmony(%v) = %v, outside [0,100]", tt.raw, got)
		}
		if tt.wantAbove && got <= 50 {
			t.Errorf("Harmony(%v) = %v, want above 50", tt.raw, got)
		}
		if !tt.wantAbove && got >= 50 {
			t.Errorf("Harmony(%v) = %v, want below 50", tt.raw, got)
		}
	}

	// The halves are independent: an asymmetric pair must not mirror.
	up := n.Harmony("focus", 400)
	down := n.Harmony("focus", -400)
	if math.Abs((up-50)-(50-down)) < 1e-9 {
		t.Logf("halves happened to mirror at 400; acceptable but tables are asymmetric")
	}
}

func TestHarmonyMonotonic(t *testing.T) {
	n := testNormalizer(t)
	prev := -1.0
	for raw := -2000.0; raw <= 2000; raw += 11 {
		got := n.Harmony("focus", raw)
		if got < prev {
			t.Fatalf("Harmony not non-decreasing at raw %v: %v < %v", raw, got, prev)
		}
		prev = got
	}
}

func TestFallbackWithoutCalibration(t *testing.T) {
	n := NewNormalizer(nil)

	prev := -1.0
	for raw := 0.0; raw <= 100000; raw += 97 {
		got := n.Intensity("anything", StatDTI, raw)
		if got < 0 || got > 100 || math.IsNaN(got) {
			t.Fatalf("fallback Intensity(%v) = %v", raw, got)
		}
		if got < prev {
			t.Fatalf("fallback not monotonic at %v", raw)
		}
		prev = got
	}

	if got := n.Harmony("anything", -1e9); got < 0 || got >= 50 || math.IsNaN(got) {
		t.Errorf("fallback Harmony(-1e9) = %v, want finite in [0,50)", got)
	}
	if got := n.Harmony("anything", 1e9); got <= 50 || got > 100 || math.IsNaN(got) {
		t.Errorf("fallback Harmony(1e9) = %v, want finite in (50,100]", got)
	}
}

func TestFlatBreakpointRuns(t *testing.T) {
	// Repeated breakpoint values (common for sparse meters) must not divide
	// by zero or break monotonicity.
	table := Table{Meter: "sparse", Stat: StatDTI, Version: "test"}
	for i := 0; i < Breakpoints; i++ {
		switch {
		case i < 30:
			table.Points[i] = 0
		case i < 60:
			table.Points[i] = 50
		default:
			table.Points[i] = 50 + float64(i-59)*10
		}
	}
	set, err := NewSet("test", []Table{table})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	n := NewNormalizer(set)

	prev := -1.0
	for raw := 0.0; raw <= 1000; raw += 1.7 {
		got := n.Intensity("sparse", StatDTI, raw)
		if math.IsNaN(got) || got < 0 || got > 100 {
			t.Fatalf("Intensity(%v) = %v", raw, got)
		}
		if got < prev {
			t.Fatalf("not monotonic across flat run at %v: %v < %v", raw, got, prev)
		}
		prev = got
	}
}

func TestTableValidate(t *testing.T) {
	good := linearTable("m", StatDTI, 0, 10)
	if err := good.Validate(); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}

	bad := good
	bad.Points[50] = bad.Points[49] - 1
	if err := bad.Validate(); err == nil {
		t.Error("decreasing breakpoints accepted")
	}
}
