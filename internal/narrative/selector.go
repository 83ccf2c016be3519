// Package narrative deterministically selects which meters headline a day's
// text. All "randomness" derives from a stable hash of (user, date) so
// identical inputs always produce identical selections, independent of call
// order and process lifetime.
package narrative

import (
	"hash/fnv"
	"math"
	"sort"
)

// Voice is the tone the headline copy is written in.
type Voice string

const (
	VoiceDirect     Voice = "direct"
	VoiceWarm       Voice = "warm"
	VoicePlayful    Voice = "playful"
	VoiceReflective Voice = "reflective"
)

var voices = []Voice{VoiceDirect, VoiceWarm, VoicePlayful, VoiceReflective}

// Pattern describes the shape of the headline.
type Pattern string

const (
	OnePositive Pattern = "one_positive"
	TwoPositive Pattern = "two_positive"
	OneNegative Pattern = "one_negative"
	TwoNegative Pattern = "two_negative"
	Contrast    Pattern = "contrast"
)

// Score band edges for pattern selection.
const (
	bandLow     = 25
	bandNeutral = 50
	bandHigh    = 75
)

// MeterScore is the minimal input the selector needs per meter.
type MeterScore struct {
	MeterID string
	Value   float64
}

// Selection is the chosen narrative shape for one (user, date).
type Selection struct {
	Voice       Voice    `json:"voice"`
	Pattern     Pattern  `json:"pattern"`
	Featured    []string `json:"featured"`
	Conjunction string   `json:"conjunction,omitempty"`
}

// SelectFeatured picks the voice, pattern and 1-2 featured meters for a user
// and date. yesterday, when supplied, suppresses re-featuring the same meter
// on consecutive days as long as an alternative candidate exists.
func SelectFeatured(scores []MeterScore, userID, date string, yesterday *Selection) Selection {
	seed := hashSeed(userID, date)

	positives, negatives := splitCandidates(scores)

	avoid := make(map[string]bool)
	if yesterday != nil {
		for _, id := range yesterday.Featured {
			avoid[id] = true
		}
	}

	pattern := choosePattern(seed, positives, negatives)
	sel := Selection{
		Voice:   voices[seed%uint64(len(voices))],
		Pattern: pattern,
	}

	pick := func(pool []MeterScore, n int, salt uint64) []string {
		return pickMeters(pool, n, seed+salt, avoid)
	}

	switch pattern {
	case TwoPositive:
		sel.Featured = pick(positives, 2, 1)
		sel.Conjunction = "and"
	case TwoNegative:
		sel.Featured = pick(negatives, 2, 2)
		sel.Conjunction = "and"
	case Contrast:
		sel.Featured = append(pick(positives, 1, 3), pick(negatives, 1, 4)...)
		sel.Conjunction = "but"
	case OnePositive:
		sel.Featured = pick(positives, 1, 5)
	case OneNegative:
		sel.Featured = pick(negatives, 1, 6)
	}
	return sel
}

func hashSeed(userID, date string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte("|"))
	h.Write([]byte(date))
	return h.Sum64()
}

// splitCandidates buckets meters into positive and negative headline
// candidates, each sorted by distance from neutral (ties broken by id so the
// ordering is total and stable).
func splitCandidates(scores []MeterScore) (positives, negatives []MeterScore) {
	for _, s := range scores {
		if s.Value >= bandNeutral {
			positives = append(positives, s)
		} else {
			negatives = append(negatives, s)
		}
	}
	byExtremity := func(pool []MeterScore) func(i, j int) bool {
		return func(i, j int) bool {
			di := math.Abs(pool[i].Value - bandNeutral)
			dj := math.Abs(pool[j].Value - bandNeutral)
			if di != dj {
				return di > dj
			}
			return pool[i].MeterID < pool[j].MeterID
		}
	}
	sort.Slice(positives, byExtremity(positives))
	sort.Slice(negatives, byExtremity(negatives))
	return positives, negatives
}

// choosePattern derives the headline shape from what the day actually offers:
// strong meters on both sides force a contrast choice into the mix, one-sided
// days select among same-direction shapes. The seed breaks remaining ties.
func choosePattern(seed uint64, positives, negatives []MeterScore) Pattern {
	strongPos := countBeyond(positives, bandHigh, false)
	strongNeg := countBeyond(negatives, bandLow, true)

	var eligible []Pattern
	if strongPos >= 1 && strongNeg >= 1 {
		eligible = append(eligible, Contrast)
	}
	if strongPos >= 2 {
		eligible = append(eligible, TwoPositive)
	}
	if strongNeg >= 2 {
		eligible = append(eligible, TwoNegative)
	}
	if strongPos >= 1 {
		eligible = append(eligible, OnePositive)
	}
	if strongNeg >= 1 {
		eligible = append(eligible, OneNegative)
	}
	if len(eligible) == 0 {
		// No meter beyond the outer bands: feature the most extreme side.
		if len(positives) == 0 && len(negatives) > 0 {
			return OneNegative
		}
		if len(negatives) == 0 {
			return OnePositive
		}
		if math.Abs(negatives[0].Value-bandNeutral) > math.Abs(positives[0].Value-bandNeutral) {
			return OneNegative
		}
		return OnePositive
	}
	return eligible[(seed>>8)%uint64(len(eligible))]
}

func countBeyond(pool []MeterScore, edge float64, below bool) int {
	n := 0
	for _, s := range pool {
		if (below && s.Value < edge) || (!below && s.Value >= edge) {
			n++
		}
	}
	return n
}

// pickMeters selects n meters from a pre-sorted candidate pool, rotating by
// the seed and skipping yesterday's featured meters when alternatives remain.
func pickMeters(pool []MeterScore, n int, seed uint64, avoid map[string]bool) []string {
	if len(pool) == 0 {
		return nil
	}
	preferred := make([]MeterScore, 0, len(pool))
	for _, s := range pool {
		if !avoid[s.MeterID] {
			preferred = append(preferred, s)
		}
	}
	// Fall back to the full pool when avoiding yesterday leaves too few.
	if len(preferred) < n {
		preferred = pool
	}
	if n > len(preferred) {
		n = len(preferred)
	}

	// The pool is sorted most-extreme first; rotate the starting point within
	// the top half so different seeds surface different meters without
	// featuring weak ones.
	window := (len(preferred) + 1) / 2
	if window < n {
		window = n
	}
	start := int(seed % uint64(window))

	out := make([]string, 0, n)
	for i := 0; len(out) < n && i < len(preferred); i++ {
		out = append(out, preferred[(start+i)%len(preferred)].MeterID)
	}
	return out
}
