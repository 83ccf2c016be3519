package meters

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// IntensityBand buckets a 0-100 intensity into five levels.
type IntensityBand string

const (
	IntensityDormant  IntensityBand = "dormant"
	IntensityQuiet    IntensityBand = "quiet"
	IntensityModerate IntensityBand = "moderate"
	IntensityActive   IntensityBand = "active"
	IntensityPeak     IntensityBand = "peak"
)

// HarmonyBand buckets a 0-100 harmony into three levels around the neutral
// point at 50.
type HarmonyBand string

const (
	HarmonyChallenging HarmonyBand = "challenging"
	HarmonyMixed       HarmonyBand = "mixed"
	HarmonyFlowing     HarmonyBand = "flowing"
)

var intensityBands = []IntensityBand{IntensityDormant, IntensityQuiet, IntensityModerate, IntensityActive, IntensityPeak}
var harmonyBands = []HarmonyBand{HarmonyChallenging, HarmonyMixed, HarmonyFlowing}

// BandIntensity maps an intensity score to its band.
func BandIntensity(score float64) IntensityBand {
	switch {
	case score < 20:
		return IntensityDormant
	case score < 40:
		return IntensityQuiet
	case score < 60:
		return IntensityModerate
	case score < 80:
		return IntensityActive
	default:
		return IntensityPeak
	}
}

// BandHarmony maps a harmony score to its band.
func BandHarmony(score float64) HarmonyBand {
	switch {
	case score < 40:
		return HarmonyChallenging
	case score <= 60:
		return HarmonyMixed
	default:
		return HarmonyFlowing
	}
}

// LabelEntry is the static text for one (meter, intensity band, harmony band)
// cell. Labels are looked up, never generated.
type LabelEntry struct {
	Quality        string `json:"quality"`
	State          string `json:"state"`
	Interpretation string `json:"interpretation"`
	Advice         string `json:"advice"`
}

// Length limits enforced at load so UI layers can rely on them.
const (
	maxQualityLen        = 24
	maxStateLen          = 40
	maxInterpretationLen = 220
	maxAdviceLen         = 180
)

//go:embed labels.json
var labelsJSON []byte

type labelsFile struct {
	Meters map[string]map[string]LabelEntry `json:"meters"`
}

// Labels is the loaded 5x3 label matrix for every meter, read-only after
// load.
type Labels struct {
	entries map[string]map[string]LabelEntry
}

// LoadLabels parses the embedded label matrix and validates it against a
// registry: every meter needs all 15 cells, texts respect length limits, and
// no interpretation is reused across meters. Failures are process-start
// failures.
func LoadLabels(registry *Registry) (*Labels, error) {
	var file labelsFile
	if err := json.Unmarshal(labelsJSON, &file); err != nil {
		return nil, fmt.Errorf("labels: parse: %w", err)
	}
	seen := make(map[string]string)
	for _, c := range registry.Configs() {
		cells, ok := file.Meters[c.ID]
		if !ok {
			return nil, fmt.Errorf("labels: meter %q has no label matrix", c.ID)
		}
		for _, ib := range intensityBands {
			for _, hb := range harmonyBands {
				key := cellKey(ib, hb)
				entry, ok := cells[key]
				if !ok {
					return nil, fmt.Errorf("labels: meter %q missing cell %s", c.ID, key)
				}
				if err := validateEntry(c.ID, key, entry); err != nil {
					return nil, err
				}
				if prev, dup := seen[entry.Interpretation]; dup {
					return nil, fmt.Errorf("labels: meters %q and %q share interpretation %q", prev, c.ID, entry.Interpretation)
				}
				seen[entry.Interpretation] = c.ID
			}
		}
	}
	return &Labels{entries: file.Meters}, nil
}

func validateEntry(meter, cell string, e LabelEntry) error {
	switch {
	case e.Quality == "" || len(e.Quality) > maxQualityLen:
		return fmt.Errorf("labels: meter %q cell %s: bad quality %q", meter, cell, e.Quality)
	case e.State == "" || len(e.State) > maxStateLen:
		return fmt.Errorf("labels: meter %q cell %s: bad state %q", meter, cell, e.State)
	case e.Interpretation == "" || len(e.Interpretation) > maxInterpretationLen:
		return fmt.Errorf("labels: meter %q cell %s: bad interpretation", meter, cell)
	case e.Advice == "" || len(e.Advice) > maxAdviceLen:
		return fmt.Errorf("labels: meter %q cell %s: bad advice", meter, cell)
	}
	return nil
}

func cellKey(ib IntensityBand, hb HarmonyBand) string {
	return string(ib) + "|" + string(hb)
}

// Lookup returns the label entry for a meter at the given bands.
func (l *Labels) Lookup(meter string, ib IntensityBand, hb HarmonyBand) (LabelEntry, bool) {
	entry, ok := l.entries[meter][cellKey(ib, hb)]
	return entry, ok
}
