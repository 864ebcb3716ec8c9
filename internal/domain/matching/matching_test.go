package matching

import (
	"math"
	"testing"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

func TestSimilarity_Bounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{a: "seoul", b: "seoul", want: 1},
		{a: "", b: "", want: 1},
		{a: "abc", b: "xyz", want: 0},
		{a: "ulsan", b: "ulsan hd", want: 1 - 3.0/8.0},
		{a: "", b: "pohang", want: 0},
	}
	for _, tc := range cases {
		if got := Similarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Similarity(%q,%q) got=%v want=%v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"jeonbuk hyundai motors", "jeonbuk motors"},
		{"fc seoul", "seoul"},
		{"daegu", "daejeon citizen"},
		{"münchen", "munchen"},
	}
	for _, p := range pairs {
		if Similarity(p[0], p[1]) != Similarity(p[1], p[0]) {
			t.Fatalf("Similarity not symmetric for %q / %q", p[0], p[1])
		}
		if NameScore(p[0], p[1]) != NameScore(p[1], p[0]) {
			t.Fatalf("NameScore not symmetric for %q / %q", p[0], p[1])
		}
		if Similarity(p[0], p[0]) != 1 {
			t.Fatalf("Similarity(%q,%q) should be 1", p[0], p[0])
		}
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Atlético-Madrid":  "atletico madrid",
		"  FC   Seoul ":    "fc seoul",
		"Gwangju F.C.":     "gwangju f c",
		"Bayern München":   "bayern munchen",
		"Jeju United (KR)": "jeju united kr",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) got=%q want=%q", in, got, want)
		}
	}
}

func TestNameScore_StripsClubAffixes(t *testing.T) {
	t.Parallel()

	if got := NameScore("FC Seoul", "Seoul"); got != 1 {
		t.Fatalf("expected affix-stripped names to match fully, got=%v", got)
	}
	if got := NameScore("Jeonbuk Hyundai Motors", "Jeonbuk Motors"); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected token overlap 0.8, got=%v", got)
	}
}

func TestScorer_CountryBoostAndClamp(t *testing.T) {
	t.Parallel()

	scorer, err := NewScorer(DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := canonical.Entity{Kind: canonical.KindTeam, Name: "Jeonbuk Hyundai Motors", Country: "South Korea"}
	b := canonical.Entity{Kind: canonical.KindTeam, Name: "Jeonbuk Motors", Country: "south korea"}

	got := scorer.Score(a, b)
	if math.Abs(got-0.92) > 1e-9 {
		t.Fatalf("expected 0.8 * 1.15, got=%v", got)
	}
	if scorer.Score(b, a) != got {
		t.Fatalf("composite score should be symmetric")
	}

	a.Name, b.Name = "Ulsan HD", "Ulsan HD"
	if got := scorer.Score(a, b); got != 1 {
		t.Fatalf("expected clamp to 1, got=%v", got)
	}
}

func TestScorer_CodeWeight(t *testing.T) {
	t.Parallel()

	scorer, _ := NewScorer(DefaultWeights())
	a := canonical.Entity{Kind: canonical.KindTeam, Name: "Abc", ShortCode: "ABC"}
	b := canonical.Entity{Kind: canonical.KindTeam, Name: "Xyz", ShortCode: "XYZ"}
	if got := scorer.Score(a, b); got != 0 {
		t.Fatalf("expected 0 for different names and codes, got=%v", got)
	}
	b.ShortCode = "abc"
	if got := scorer.Score(a, b); math.Abs(got-0.3/0.8) > 1e-9 {
		t.Fatalf("expected code share only, got=%v", got)
	}
}

func TestScorer_PlayerAndFixtureContext(t *testing.T) {
	t.Parallel()

	scorer, _ := NewScorer(DefaultWeights())
	shirt := 10
	a := canonical.Entity{Kind: canonical.KindPlayer, Name: "Lee Seung-woo", ShirtNumber: &shirt, Country: "Korea Republic", BirthDate: "1998-01-06"}
	b := canonical.Entity{Kind: canonical.KindPlayer, Name: "Seung-woo Lee", ShirtNumber: &shirt, Country: "Korea Republic", BirthDate: "1998-01-06"}
	if got := scorer.Score(a, b); got != 1 {
		t.Fatalf("expected token match boosted to 1, got=%v", got)
	}

	day := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	other := day.Add(2 * time.Hour)
	fa := canonical.Entity{Kind: canonical.KindFixture, Name: "Ulsan vs Pohang", KickoffAt: &day}
	fb := canonical.Entity{Kind: canonical.KindFixture, Name: "Ulsan HD vs Pohang Steelers", KickoffAt: &other}
	plain := NameScore(fa.Name, fb.Name)
	if got := scorer.Score(fa, fb); math.Abs(got-clamp(plain*1.15)) > 1e-9 {
		t.Fatalf("expected kickoff date boost, got=%v name=%v", got, plain)
	}
}

func TestNewScorer_RejectsOutOfRangeWeights(t *testing.T) {
	t.Parallel()

	if _, err := NewScorer(Weights{Name: 0.7, Code: 0.3, Context: 0.15}); err == nil {
		t.Fatalf("expected weight validation error")
	}
}

func TestMatcher_ScenarioAcceptsCloseTeam(t *testing.T) {
	t.Parallel()

	target := canonical.Entity{Kind: canonical.KindTeam, Name: "Jeonbuk Hyundai Motors", Country: "South Korea"}
	candidates := []canonical.Entity{
		{Kind: canonical.KindTeam, Name: "Jeju United", Country: "South Korea"},
		{Kind: canonical.KindTeam, Name: "Jeonbuk Motors", Country: "South Korea"},
	}
	got, ok := Default().Match(target, candidates, DefaultThreshold(canonical.KindTeam))
	if !ok {
		t.Fatalf("expected match, best=%+v", got)
	}
	if got.Index != 1 || got.Score < 0.85 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestMatcher_ScenarioRejectsUnknown(t *testing.T) {
	t.Parallel()

	target := canonical.Entity{Kind: canonical.KindTeam, Name: "Unknown FC"}
	candidates := []canonical.Entity{
		{Kind: canonical.KindTeam, Name: "Ulsan HD"},
		{Kind: canonical.KindTeam, Name: "Pohang Steelers"},
		{Kind: canonical.KindTeam, Name: "Gangwon FC"},
	}
	if got, ok := Default().Match(target, candidates, DefaultThreshold(canonical.KindTeam)); ok {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestMatcher_ExactNameWinsImmediately(t *testing.T) {
	t.Parallel()

	target := canonical.Entity{Kind: canonical.KindTeam, Name: "Suwon FC", ShortCode: "SUW"}
	candidates := []canonical.Entity{
		{Kind: canonical.KindTeam, Name: "Suwon Samsung Bluewings", ShortCode: "SUW"},
		{Kind: canonical.KindTeam, Name: "Seoul", AltNames: []string{"suwon fc"}},
	}
	got, ok := Default().Match(target, candidates, 0.8)
	if !ok || got.Index != 1 || got.Score != 1 || got.Reason != ReasonExactName {
		t.Fatalf("expected exact alt-name hit, got %+v ok=%v", got, ok)
	}
}

func TestMatcher_ExactCodeShortCircuits(t *testing.T) {
	t.Parallel()

	target := canonical.Entity{Kind: canonical.KindFixture, Name: "A vs B", ShortCode: "133-134@2026-03-01"}
	candidates := []canonical.Entity{
		{Kind: canonical.KindFixture, Name: "C vs D", ShortCode: "133-134@2026-03-01"},
	}
	got, ok := Default().Match(target, candidates, DefaultThreshold(canonical.KindFixture))
	if !ok || got.Score != DefaultCodeScore || got.Reason != ReasonExactCode {
		t.Fatalf("expected code match, got %+v ok=%v", got, ok)
	}
}

func TestMatcher_ThresholdIsStrict(t *testing.T) {
	t.Parallel()

	target := canonical.Entity{Kind: canonical.KindTeam, Name: "Jeonbuk Hyundai Motors"}
	candidates := []canonical.Entity{{Kind: canonical.KindTeam, Name: "Jeonbuk Motors"}}

	got, ok := Default().Match(target, candidates, 0.8)
	if ok {
		t.Fatalf("score equal to threshold must not match, got %+v", got)
	}
	if math.Abs(got.Score-0.8) > 1e-9 {
		t.Fatalf("unexpected best score: %v", got.Score)
	}
	if _, ok := Default().Match(target, candidates, 0.79); !ok {
		t.Fatalf("expected match just under the score")
	}
}

func TestMatcher_TiesKeepFirstAndSkipOtherKinds(t *testing.T) {
	t.Parallel()

	target := canonical.Entity{Kind: canonical.KindTeam, Name: "Daegu"}
	candidates := []canonical.Entity{
		{Kind: canonical.KindLeague, Name: "Daegu"},
		{Kind: canonical.KindTeam, Name: "Daegux", SourceIDs: canonical.SourceIDs{canonical.ProviderTheSportsDB: "1"}},
		{Kind: canonical.KindTeam, Name: "Daeguy", SourceIDs: canonical.SourceIDs{canonical.ProviderTheSportsDB: "2"}},
	}
	got, ok := Default().Match(target, candidates, 0.8)
	if !ok || got.Index != 1 {
		t.Fatalf("expected first tied candidate, got %+v ok=%v", got, ok)
	}
}

func TestMatcher_EmptyCandidates(t *testing.T) {
	t.Parallel()

	if _, ok := Default().Match(canonical.Entity{Kind: canonical.KindTeam, Name: "X"}, nil, 0.8); ok {
		t.Fatalf("expected no match")
	}
}

func TestNewMatcher_Validation(t *testing.T) {
	t.Parallel()

	scorer, _ := NewScorer(DefaultWeights())
	if _, err := NewMatcher(scorer, 0.99); err == nil {
		t.Fatalf("expected code score range error")
	}
	if _, err := NewMatcher(nil, 0); err == nil {
		t.Fatalf("expected scorer required error")
	}
	m, err := NewMatcher(scorer, 0)
	if err != nil || m.codeScore != DefaultCodeScore {
		t.Fatalf("unexpected matcher: %+v %v", m, err)
	}
}
