package canonical

import (
	"strings"
	"testing"
	"time"
)

func TestEntity_Validate(t *testing.T) {
	t.Parallel()

	team := Entity{
		ID:        "team_1",
		Kind:      KindTeam,
		Name:      "Jeonbuk Hyundai Motors",
		SourceIDs: SourceIDs{ProviderSportMonks: "2930"},
	}
	if err := team.Validate(); err == nil {
		t.Fatalf("expected team without parent to be rejected")
	}

	team.ParentID = "league_1"
	if err := team.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	league := Entity{ID: "league_1", Kind: KindLeague, Name: "K League 1"}
	if err := league.Validate(); err == nil || !strings.Contains(err.Error(), "source id") {
		t.Fatalf("expected missing source id error, got %v", err)
	}

	number := 120
	player := Entity{
		ID:          "player_1",
		Kind:        KindPlayer,
		Name:        "Song Min-kyu",
		ParentID:    "team_1",
		ShirtNumber: &number,
		SourceIDs:   SourceIDs{ProviderSportMonks: "1"},
	}
	if err := player.Validate(); err == nil {
		t.Fatalf("expected shirt number above 99 to be rejected")
	}
}

func TestEntity_MergeKeepsIdentity(t *testing.T) {
	t.Parallel()

	existing := Entity{
		ID:        "team_1",
		Kind:      KindTeam,
		Name:      "Jeonbuk Motors",
		Country:   "South Korea",
		ParentID:  "league_1",
		SourceIDs: SourceIDs{ProviderSportMonks: "2930", ProviderTheSportsDB: "138109"},
	}
	incoming := Entity{
		ID:        "ignored",
		Kind:      KindTeam,
		Name:      "Jeonbuk Hyundai Motors",
		ShortCode: "JEO",
		SourceIDs: SourceIDs{ProviderSportMonks: "2930"},
	}

	merged := existing.Merge(incoming)
	if merged.ID != "team_1" {
		t.Fatalf("identity replaced: %q", merged.ID)
	}
	if merged.Name != "Jeonbuk Hyundai Motors" || merged.ShortCode != "JEO" {
		t.Fatalf("descriptive fields not updated: %+v", merged)
	}
	if merged.Country != "South Korea" {
		t.Fatalf("expected country to survive merge, got %q", merged.Country)
	}
	if merged.SourceID(ProviderTheSportsDB) != "138109" {
		t.Fatalf("expected secondary source id to be kept")
	}
	if existing.SourceIDs[ProviderSportMonks] != "2930" || len(existing.SourceIDs) != 2 {
		t.Fatalf("merge mutated the receiver's source ids")
	}
}

func TestEntity_MergeParent(t *testing.T) {
	t.Parallel()

	team := Entity{ID: "team_1", Kind: KindTeam, Name: "Jeonbuk Motors", ParentID: "league_1", SourceIDs: SourceIDs{ProviderSportMonks: "2930"}}
	merged := team.Merge(Entity{Kind: KindTeam, Name: "Jeonbuk Motors", ParentID: "league_2", SourceIDs: SourceIDs{ProviderSportMonks: "2930"}})
	if merged.ParentID != "league_1" {
		t.Fatalf("team moved to league %q", merged.ParentID)
	}

	orphan := Entity{ID: "team_2", Kind: KindTeam, Name: "Ulsan HD", SourceIDs: SourceIDs{ProviderSportMonks: "7"}}
	if got := orphan.Merge(Entity{Kind: KindTeam, Name: "Ulsan HD", ParentID: "league_2"}).ParentID; got != "league_2" {
		t.Fatalf("expected empty parent to be filled, got %q", got)
	}

	player := Entity{ID: "player_1", Kind: KindPlayer, Name: "Song Min-kyu", ParentID: "team_1", SourceIDs: SourceIDs{ProviderSportMonks: "501"}}
	if got := player.Merge(Entity{Kind: KindPlayer, Name: "Song Min-kyu", ParentID: "team_2"}).ParentID; got != "team_2" {
		t.Fatalf("expected player transfer to follow the sighting, got %q", got)
	}
}

func TestEntity_EnrichOnlyFillsGaps(t *testing.T) {
	t.Parallel()

	base := Entity{ID: "team_1", Kind: KindTeam, Name: "Ulsan HD", Country: "Korea Republic", SourceIDs: SourceIDs{ProviderSportMonks: "7"}}
	candidate := Entity{
		Kind:      KindTeam,
		Name:      "Ulsan Hyundai",
		Country:   "South Korea",
		ImageURL:  "https://example.test/ulsan.png",
		SourceIDs: SourceIDs{ProviderTheSportsDB: "138111"},
	}

	out := base.Enrich(ProviderTheSportsDB, candidate)
	if out.Country != "Korea Republic" {
		t.Fatalf("enrich overwrote existing country: %q", out.Country)
	}
	if out.ImageURL == "" {
		t.Fatalf("expected image url to be filled")
	}
	if out.SourceID(ProviderTheSportsDB) != "138111" {
		t.Fatalf("expected secondary source id to be recorded")
	}
	if len(out.AltNames) != 1 || out.AltNames[0] != "Ulsan Hyundai" {
		t.Fatalf("expected candidate name as alt name, got %v", out.AltNames)
	}
}

func TestSortBySource_NumericAware(t *testing.T) {
	t.Parallel()

	records := []Entity{
		{Name: "c", SourceIDs: SourceIDs{ProviderTheSportsDB: "100"}},
		{Name: "x", SourceIDs: SourceIDs{ProviderTheSportsDB: "abc"}},
		{Name: "a", SourceIDs: SourceIDs{ProviderTheSportsDB: "9"}},
		{Name: "b", SourceIDs: SourceIDs{ProviderTheSportsDB: "20"}},
	}
	SortBySource(records, ProviderTheSportsDB)

	got := []string{records[0].Name, records[1].Name, records[2].Name, records[3].Name}
	want := []string{"a", "b", "c", "x"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got=%v want=%v", got, want)
		}
	}
}

func TestNormalizePosition(t *testing.T) {
	t.Parallel()

	cases := map[string]Position{
		"Goalkeeper":         PositionGoalkeeper,
		"Centre-Back":        PositionDefender,
		"Left Wing":          PositionForward,
		"Left Wing-Back":     PositionDefender,
		"Defensive Midfield": PositionMidfielder,
		"Attacker":           PositionForward,
		"Manager":            "",
	}
	for raw, want := range cases {
		if got := NormalizePosition(raw); got != want {
			t.Fatalf("NormalizePosition(%q)=%q want %q", raw, got, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseKind("Teams")
	if err != nil || kind != KindTeam {
		t.Fatalf("unexpected parse result: kind=%q err=%v", kind, err)
	}
	if _, err := ParseKind("venue"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestFixtureCode(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-9", -9*3600))
	if got := FixtureCode(" 133", "134 ", kickoff); got != "133-134@2026-03-02" {
		t.Fatalf("unexpected fixture code: %s", got)
	}
}
