// Package calibration maps raw aspect-score statistics onto percentile-ranked
// 0-100 readings using empirically generated breakpoint tables, with a
// theoretical fallback when no table exists.
package calibration

import "fmt"

// Statistic names a raw aggregate a table calibrates. HQS is split into
// signed halves because the empirical distribution skews negative and the two
// halves need not be symmetric.
type Statistic string

const (
	StatDTI      Statistic = "dti"
	StatPowerSum Statistic = "power_sum"
	StatHQSPos   Statistic = "hqs_pos"
	StatHQSNeg   Statistic = "hqs_neg"
)

// Statistics lists every calibrated statistic.
var Statistics = []Statistic{StatDTI, StatPowerSum, StatHQSPos, StatHQSNeg}

// Breakpoints is the number of percentile breakpoints per table, p01..p99.
const Breakpoints = 99

// Table holds one meter's percentile breakpoints for one statistic.
// Points[0] is p01, Points[98] is p99.
type Table struct {
	Meter   string
	Stat    Statistic
	Version string
	Points  [Breakpoints]float64
}

// Validate checks the breakpoints are monotonically non-decreasing and
// non-negative. Tables are validated at load and after generation.
func (t *Table) Validate() error {
	if t.Points[0] < 0 {
		return fmt.Errorf("calibration %s/%s: negative p01 %.4f", t.Meter, t.Stat, t.Points[0])
	}
	for i := 1; i < Breakpoints; i++ {
		if t.Points[i] < t.Points[i-1] {
			return fmt.Errorf("calibration %s/%s: breakpoints decrease at p%02d (%.4f -> %.4f)",
				t.Meter, t.Stat, i+1, t.Points[i-1], t.Points[i])
		}
	}
	return nil
}

// Set is the full calibration artifact for one version, loaded once at
// startup and read-only afterwards. A nil or empty Set is valid: every lookup
// misses and normalization uses the fallback path.
type Set struct {
	Version string
	tables  map[string]map[Statistic]Table
}

// NewSet builds a Set from validated tables.
func NewSet(version string, tables []Table) (*Set, error) {
	s := &Set{Version: version, tables: make(map[string]map[Statistic]Table)}
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		byStat, ok := s.tables[t.Meter]
		if !ok {
			byStat = make(map[Statistic]Table)
			s.tables[t.Meter] = byStat
		}
		byStat[t.Stat] = t
	}
	return s, nil
}

// Lookup returns the table for a meter and statistic, if present.
func (s *Set) Lookup(meter string, stat Statistic) (Table, bool) {
	if s == nil {
		return Table{}, false
	}
	t, ok := s.tables[meter][stat]
	return t, ok
}

// Meters returns the number of meters the set covers.
func (s *Set) Meters() int {
	if s == nil {
		return 0
	}
	return len(s.tables)
}
