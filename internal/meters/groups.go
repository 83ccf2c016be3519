package meters

import "sort"

// GroupReading combines 3-4 member meters into one life-domain reading.
// The median (not a distance-from-50 sum) is used deliberately: a single
// extreme member cannot flip the group's apparent direction.
type GroupReading struct {
	Group          string   `json:"group"`
	UnifiedScore   float64  `json:"unified_score"`
	Driver         string   `json:"driver,omitempty"`
	Members        []string `json:"members"`
	Quality        string   `json:"quality,omitempty"`
	StateLabel     string   `json:"state_label,omitempty"`
	Interpretation string   `json:"interpretation,omitempty"`
}

// CalculateGroupScore aggregates member readings. The group score is the
// median of member unified scores (mean of the middle two when even). The
// driver is the highest-scoring member when the median is at or above 50,
// otherwise the lowest; ties at exactly 50 resolve to the positive branch.
// An empty group returns the neutral default: 50, no driver.
func CalculateGroupScore(group string, members []Reading) GroupReading {
	g := GroupReading{Group: group, UnifiedScore: 50}
	if len(members) == 0 {
		return g
	}

	scores := make([]float64, len(members))
	for i, m := range members {
		scores[i] = m.UnifiedScore
		g.Members = append(g.Members, m.MeterID)
	}
	sort.Float64s(scores)

	n := len(scores)
	if n%2 == 1 {
		g.UnifiedScore = scores[n/2]
	} else {
		g.UnifiedScore = (scores[n/2-1] + scores[n/2]) / 2
	}

	driver := members[0]
	if g.UnifiedScore >= 50 {
		for _, m := range members[1:] {
			if m.UnifiedScore > driver.UnifiedScore {
				driver = m
			}
		}
	} else {
		for _, m := range members[1:] {
			if m.UnifiedScore < driver.UnifiedScore {
				driver = m
			}
		}
	}
	g.Driver = driver.MeterID

	return g
}

// labelGroup attaches banded quality text to a group reading, reusing the
// driver meter's label matrix at the median intensity and harmony of the
// members.
func (c *Calculator) labelGroup(g *GroupReading, members []Reading) {
	if g.Driver == "" || len(members) == 0 {
		return
	}
	intensity := medianOf(members, func(r Reading) float64 { return r.Intensity })
	harmony := medianOf(members, func(r Reading) float64 { return r.Harmony })
	if entry, ok := c.labels.Lookup(g.Driver, BandIntensity(intensity), BandHarmony(harmony)); ok {
		g.Quality = entry.Quality
		g.StateLabel = entry.State
		g.Interpretation = entry.Interpretation
	}
}

func medianOf(members []Reading, value func(Reading) float64) float64 {
	vals := make([]float64, len(members))
	for i, m := range members {
		vals[i] = value(m)
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
