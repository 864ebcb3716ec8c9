package matching

import (
	"fmt"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

type Reason string

const (
	ReasonExactName Reason = "exact_name"
	ReasonExactCode Reason = "exact_code"
	ReasonComposite Reason = "composite"
)

const DefaultCodeScore = 0.92

// DefaultThreshold is the acceptance floor per kind. A score must be strictly
// above it.
func DefaultThreshold(kind canonical.Kind) float64 {
	switch kind {
	case canonical.KindLeague:
		return 0.75
	default:
		return 0.8
	}
}

type Result struct {
	Candidate canonical.Entity
	Index     int
	Score     float64
	Reason    Reason
}

type Matcher struct {
	scorer    *Scorer
	codeScore float64
}

// NewMatcher builds a matcher. codeScore is what an exact short-code match is
// worth and must sit within 0.9..0.95; zero selects DefaultCodeScore.
func NewMatcher(scorer *Scorer, codeScore float64) (*Matcher, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if codeScore == 0 {
		codeScore = DefaultCodeScore
	}
	if codeScore < 0.9 || codeScore > 0.95 {
		return nil, fmt.Errorf("code score must be within 0.9..0.95")
	}
	return &Matcher{scorer: scorer, codeScore: codeScore}, nil
}

// Default returns a matcher with default weights.
func Default() *Matcher {
	return &Matcher{scorer: &Scorer{weights: DefaultWeights()}, codeScore: DefaultCodeScore}
}

// Match returns the best same-kind candidate for target. ok is false when no
// candidate scores strictly above threshold. Equal scores keep the earlier
// candidate, so callers fix the order first.
func (m *Matcher) Match(target canonical.Entity, candidates []canonical.Entity, threshold float64) (Result, bool) {
	best := Result{Index: -1}
	targetNames := normalizedNames(target)

	for i, candidate := range candidates {
		if candidate.Kind != target.Kind {
			continue
		}

		if sharesName(targetNames, normalizedNames(candidate)) {
			best = Result{Candidate: candidate, Index: i, Score: 1, Reason: ReasonExactName}
			break
		}

		var (
			score  float64
			reason Reason
		)
		if code, ok := codeEqual(target.ShortCode, candidate.ShortCode); ok && code == 1 {
			score, reason = m.codeScore, ReasonExactCode
		} else {
			score, reason = m.scorer.Score(target, candidate), ReasonComposite
		}
		if best.Index < 0 || score > best.Score {
			best = Result{Candidate: candidate, Index: i, Score: score, Reason: reason}
		}
	}

	if best.Index < 0 || best.Score <= threshold {
		return best, false
	}
	return best, true
}

func normalizedNames(entity canonical.Entity) []string {
	names := entity.Names()
	out := make([]string, 0, len(names))
	for _, name := range names {
		if normalized := NormalizeName(name); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

func sharesName(left, right []string) bool {
	for _, a := range left {
		for _, b := range right {
			if strings.EqualFold(a, b) {
				return true
			}
		}
	}
	return false
}
