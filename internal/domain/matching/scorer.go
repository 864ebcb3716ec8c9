package matching

import (
	"fmt"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

// Weights tune the composite score. Name and Code are the additive shares of
// the base score; each matching context factor multiplies by 1+Context.
type Weights struct {
	Name    float64
	Code    float64
	Context float64
}

func DefaultWeights() Weights {
	return Weights{Name: 0.5, Code: 0.3, Context: 0.15}
}

func (w Weights) Validate() error {
	if w.Name < 0.4 || w.Name > 0.5 {
		return fmt.Errorf("name weight must be within 0.4..0.5")
	}
	if w.Code < 0.2 || w.Code > 0.3 {
		return fmt.Errorf("code weight must be within 0.2..0.3")
	}
	if w.Context < 0.1 || w.Context > 0.2 {
		return fmt.Errorf("context weight must be within 0.1..0.2")
	}
	return nil
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights}, nil
}

// Score is the composite similarity of two same-kind entities in [0,1]. It is
// symmetric in its arguments.
func (s *Scorer) Score(target, candidate canonical.Entity) float64 {
	name := bestNameScore(target.Names(), candidate.Names())

	base := name
	if code, ok := codeEqual(target.ShortCode, candidate.ShortCode); ok {
		base = (s.weights.Name*name + s.weights.Code*code) / (s.weights.Name + s.weights.Code)
	}

	score := base
	for i := 0; i < contextMatches(target, candidate); i++ {
		score *= 1 + s.weights.Context
	}
	return clamp(score)
}

// codeEqual reports 1 or 0 for an exact short-code comparison; ok is false
// when either side has no code.
func codeEqual(a, b string) (float64, bool) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0, false
	}
	if strings.EqualFold(a, b) {
		return 1, true
	}
	return 0, true
}

func contextMatches(a, b canonical.Entity) int {
	matches := 0
	switch a.Kind {
	case canonical.KindLeague, canonical.KindTeam:
		if sameText(a.Country, b.Country) {
			matches++
		}
	case canonical.KindPlayer:
		if a.ShirtNumber != nil && b.ShirtNumber != nil && *a.ShirtNumber == *b.ShirtNumber {
			matches++
		}
		if sameText(a.Country, b.Country) {
			matches++
		}
		if sameText(a.BirthDate, b.BirthDate) {
			matches++
		}
	case canonical.KindFixture:
		if a.KickoffAt != nil && b.KickoffAt != nil &&
			a.KickoffAt.UTC().Format("2006-01-02") == b.KickoffAt.UTC().Format("2006-01-02") {
			matches++
		}
	}
	return matches
}

func sameText(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	return na != "" && na == nb
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
