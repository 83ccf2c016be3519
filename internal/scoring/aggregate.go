package scoring

import (
	"math"
	"sort"

	"github.com/lox/astrometer/internal/chart"
)

// powerSumExponent shapes the alternate intensity statistic. A sum of
// (W·P)^1.2 grows slower in aspect count than the plain DTI sum, so days with
// many weak aspects and days with a few strong ones calibrate differently.
const powerSumExponent = 1.2

// topAspectCap bounds the explainability list.
const topAspectCap = 5

// Contribution is one aspect's fully scored share of the day.
type Contribution struct {
	Aspect  Aspect  `json:"aspect"`
	Weight  float64 `json:"weight"`
	Power   float64 `json:"power"`
	Quality float64 `json:"quality"`
	DTI     float64 `json:"dti"`
	HQS     float64 `json:"hqs"`
}

// Score holds the raw aggregate statistics for a set of scored aspects.
// DTI measures how much is happening, HQS how pleasant or difficult it is,
// PowerSum is the non-linear intensity alternative to DTI.
type Score struct {
	DTI         float64 `json:"dti"`
	HQS         float64 `json:"hqs"`
	PowerSum    float64 `json:"power_sum"`
	AspectCount int     `json:"aspect_count"`
}

// Scorer turns detected aspects into contributions and aggregate scores.
type Scorer struct {
	weigher *Weigher
	opts    QualityOptions
}

// NewScorer builds a Scorer with default sensitivity and no harmonic boost.
func NewScorer() *Scorer {
	return &Scorer{weigher: NewWeigher()}
}

// NewScorerWith builds a Scorer with explicit tuning.
func NewScorerWith(sensitivity float64, opts QualityOptions) *Scorer {
	return &Scorer{weigher: &Weigher{Sensitivity: sensitivity}, opts: opts}
}

// ScoreAspects computes W, P, Q and the derived contributions for each aspect.
// Identical inputs always produce identical output; nothing is cached or
// mutated.
func (s *Scorer) ScoreAspects(natal *chart.NatalChart, aspects []Aspect) []Contribution {
	contributions := make([]Contribution, 0, len(aspects))
	for _, a := range aspects {
		pos := natal.Position(a.NatalPlanet)
		if pos == nil {
			continue
		}
		w := s.weigher.Weight(*pos, natal)
		p := Power(a.Type, a.Orb)
		q := Quality(a.Type, a.NatalPlanet, a.TransitPlanet, s.opts)
		dti := w * p
		contributions = append(contributions, Contribution{
			Aspect:  a,
			Weight:  w,
			Power:   p,
			Quality: q,
			DTI:     dti,
			HQS:     dti * q,
		})
	}
	return contributions
}

// Aggregate sums contributions into a Score.
func Aggregate(contributions []Contribution) Score {
	var score Score
	for _, c := range contributions {
		score.DTI += c.DTI
		score.HQS += c.HQS
		score.PowerSum += math.Pow(c.DTI, powerSumExponent)
	}
	score.AspectCount = len(contributions)
	return score
}

// TopContributions returns the strongest contributions by |DTI|, descending,
// capped for the explainability list. The input is not modified.
func TopContributions(contributions []Contribution) []Contribution {
	top := make([]Contribution, len(contributions))
	copy(top, contributions)
	sort.SliceStable(top, func(i, j int) bool {
		return math.Abs(top[i].DTI) > math.Abs(top[j].DTI)
	})
	if len(top) > topAspectCap {
		top = top[:topAspectCap]
	}
	return top
}
