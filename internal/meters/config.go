// Package meters turns a day's scored aspects into named 0-100 readings and
// life-domain group readings.
package meters

import (
	"fmt"

	"github.com/lox/astrometer/internal/chart"
)

// Config declares one meter: which natal placements feed it and how
// retrograde transits modify its harmony. Planet and house filters combine
// with OR semantics; both empty means every aspect feeds the meter.
// There is no transit-side filtering.
type Config struct {
	ID      string
	Group   string
	Label   string
	Planets []chart.Planet
	Houses  []int

	// RetrogradeDampeners scale the quality of contributions whose transiting
	// planet is retrograde. Values are in (0,1]; absent planets are unscaled.
	RetrogradeDampeners map[chart.Planet]float64
}

// Matches reports whether an aspect's natal side passes the filter.
func (c *Config) Matches(natalPlanet chart.Planet, natalHouse int) bool {
	if len(c.Planets) == 0 && len(c.Houses) == 0 {
		return true
	}
	for _, p := range c.Planets {
		if p == natalPlanet {
			return true
		}
	}
	for _, h := range c.Houses {
		if h == natalHouse {
			return true
		}
	}
	return false
}

// Registry is a versioned, read-only meter set, loaded once at startup.
type Registry struct {
	Version string
	configs []Config
	byID    map[string]*Config
	groups  []string
}

// Group identifiers, in presentation order.
const (
	GroupMind   = "mind"
	GroupHeart  = "heart"
	GroupBody   = "body"
	GroupCareer = "career"
	GroupSpirit = "spirit"
)

var groupOrder = []string{GroupMind, GroupHeart, GroupBody, GroupCareer, GroupSpirit}

// DefaultVersion is the validated-distinct meter set.
const DefaultVersion = "v2"

// metersV2 is the validated-distinct set: 16 meters across 5 groups, each
// shown to rank-correlate below 0.85 with every other on the calibration
// corpus.
var metersV2 = []Config{
	{ID: "focus", Group: GroupMind, Label: "Focus",
		Planets: []chart.Planet{chart.Mercury, chart.Saturn}, Houses: []int{3, 6},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Mercury: 0.7}},
	{ID: "communication", Group: GroupMind, Label: "Communication",
		Planets: []chart.Planet{chart.Mercury}, Houses: []int{3, 9},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Mercury: 0.6}},
	{ID: "insight", Group: GroupMind, Label: "Insight",
		Planets: []chart.Planet{chart.Mercury, chart.Uranus}, Houses: []int{9, 12}},
	{ID: "creativity", Group: GroupMind, Label: "Creativity",
		Planets: []chart.Planet{chart.Venus, chart.Neptune}, Houses: []int{5},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Venus: 0.85}},

	{ID: "relationships", Group: GroupHeart, Label: "Relationships",
		Planets: []chart.Planet{chart.Venus, chart.Moon}, Houses: []int{7},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Venus: 0.75}},
	{ID: "passion", Group: GroupHeart, Label: "Passion",
		Planets: []chart.Planet{chart.Mars, chart.Venus}, Houses: []int{5, 8},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Mars: 0.8}},
	{ID: "harmony", Group: GroupHeart, Label: "Harmony",
		Planets: []chart.Planet{chart.Moon, chart.Venus}, Houses: []int{4}},

	{ID: "energy", Group: GroupBody, Label: "Energy",
		Planets: []chart.Planet{chart.Sun, chart.Mars}, Houses: []int{1},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Mars: 0.75}},
	{ID: "wellness", Group: GroupBody, Label: "Wellness",
		Planets: []chart.Planet{chart.Sun, chart.Moon}, Houses: []int{6}},
	{ID: "resilience", Group: GroupBody, Label: "Resilience",
		Planets: []chart.Planet{chart.Saturn, chart.Mars}, Houses: []int{1, 8},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Saturn: 0.85}},

	{ID: "ambition", Group: GroupCareer, Label: "Ambition",
		Planets: []chart.Planet{chart.Sun, chart.Saturn}, Houses: []int{10}},
	{ID: "discipline", Group: GroupCareer, Label: "Discipline",
		Planets: []chart.Planet{chart.Saturn}, Houses: []int{6, 10},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Saturn: 0.8}},
	{ID: "finances", Group: GroupCareer, Label: "Finances",
		Planets: []chart.Planet{chart.Venus, chart.Jupiter}, Houses: []int{2, 8},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Venus: 0.8, chart.Jupiter: 0.9}},

	{ID: "intuition", Group: GroupSpirit, Label: "Intuition",
		Planets: []chart.Planet{chart.Moon, chart.Neptune}, Houses: []int{12}},
	{ID: "luck", Group: GroupSpirit, Label: "Luck",
		Planets: []chart.Planet{chart.Jupiter}, Houses: []int{5, 9},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Jupiter: 0.85}},
	{ID: "adventure", Group: GroupSpirit, Label: "Adventure",
		Planets: []chart.Planet{chart.Jupiter, chart.Uranus}, Houses: []int{9}},
}

// metersV1 is the legacy set: the v2 meters plus two since retired as
// redundant with focus and energy.
var metersV1 = append(append([]Config{}, metersV2...),
	Config{ID: "clarity", Group: GroupMind, Label: "Clarity",
		Planets: []chart.Planet{chart.Mercury, chart.Moon}, Houses: []int{3},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Mercury: 0.7}},
	Config{ID: "momentum", Group: GroupBody, Label: "Momentum",
		Planets: []chart.Planet{chart.Mars}, Houses: []int{1, 10},
		RetrogradeDampeners: map[chart.Planet]float64{chart.Mars: 0.8}},
)

var registryVersions = map[string][]Config{
	"v1": metersV1,
	"v2": metersV2,
}

// NewRegistry loads and validates the meter set for a version. Validation
// failures are process-start failures, never per-request ones.
func NewRegistry(version string) (*Registry, error) {
	configs, ok := registryVersions[version]
	if !ok {
		return nil, fmt.Errorf("meters: unknown registry version %q", version)
	}
	r := &Registry{Version: version, configs: configs, byID: make(map[string]*Config), groups: groupOrder}
	members := make(map[string]int)
	for i := range configs {
		c := &configs[i]
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("meters: duplicate meter id %q", c.ID)
		}
		if err := validateConfig(c); err != nil {
			return nil, err
		}
		r.byID[c.ID] = c
		members[c.Group]++
	}
	for _, g := range groupOrder {
		if members[g] < 3 {
			return nil, fmt.Errorf("meters: group %q has %d members, want at least 3", g, members[g])
		}
	}
	return r, nil
}

func validateConfig(c *Config) error {
	validGroup := false
	for _, g := range groupOrder {
		if c.Group == g {
			validGroup = true
		}
	}
	if !validGroup {
		return fmt.Errorf("meters: meter %q references unknown group %q", c.ID, c.Group)
	}
	for _, p := range c.Planets {
		if !p.Known() {
			return fmt.Errorf("meters: meter %q references unrecognized planet %q", c.ID, p)
		}
	}
	for _, h := range c.Houses {
		if h < 1 || h > 12 {
			return fmt.Errorf("meters: meter %q references house %d out of 1..12", c.ID, h)
		}
	}
	for p, d := range c.RetrogradeDampeners {
		if !p.Known() {
			return fmt.Errorf("meters: meter %q retrograde modifier references unrecognized planet %q", c.ID, p)
		}
		if d <= 0 || d > 1 {
			return fmt.Errorf("meters: meter %q retrograde dampener for %q is %.2f, want (0,1]", c.ID, p, d)
		}
	}
	return nil
}

// Configs returns the meter configs in registration order.
func (r *Registry) Configs() []Config {
	return r.configs
}

// Get returns the config for a meter id.
func (r *Registry) Get(id string) (*Config, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Groups returns the group ids in presentation order.
func (r *Registry) Groups() []string {
	return r.groups
}

// GroupMembers returns the meter ids belonging to a group, in registration
// order.
func (r *Registry) GroupMembers(group string) []string {
	var ids []string
	for i := range r.configs {
		if r.configs[i].Group == group {
			ids = append(ids, r.configs[i].ID)
		}
	}
	return ids
}
