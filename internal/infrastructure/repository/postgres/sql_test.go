package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("wrap: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(errors.New("pq: relation canonical_entities does not exist")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	if nullableString("") != nil {
		t.Fatalf("expected empty string to map to NULL")
	}
	if got := nullableString("tm_1"); got == nil || *got != "tm_1" {
		t.Fatalf("unexpected nullable string: %v", got)
	}
	if nullInt64ToIntPtr(sql.NullInt64{}) != nil {
		t.Fatalf("expected invalid int to map to nil")
	}
	if got := nullInt64ToIntPtr(sql.NullInt64{Int64: 7, Valid: true}); got == nil || *got != 7 {
		t.Fatalf("unexpected int pointer: %v", got)
	}
}

func TestCanonicalRowRoundTrip(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	home, away := 2, 1
	item := canonical.Entity{
		ID:          "ent_fx",
		Kind:        canonical.KindFixture,
		Name:        "Jeonbuk vs Ulsan",
		ParentID:    "ent_lg",
		HomeTeamID:  "ent_home",
		AwayTeamID:  "ent_away",
		HomeTeamRef: "2930",
		AwayTeamRef: "7",
		HomeName:    "Jeonbuk",
		AwayName:    "Ulsan",
		KickoffAt:   &kickoff,
		HomeScore:   &home,
		AwayScore:   &away,
		Status:      canonical.StatusFinished,
	}

	model, err := canonicalInsertModel(item, kickoff)
	if err != nil {
		t.Fatalf("canonicalInsertModel error: %v", err)
	}
	if model.ParentID == nil || *model.ParentID != "ent_lg" {
		t.Fatalf("unexpected parent id: %v", model.ParentID)
	}

	row := canonicalEntityTableModel{
		ID:         model.ID,
		Kind:       model.Kind,
		Name:       model.Name,
		ParentID:   sql.NullString{String: "ent_lg", Valid: true},
		HomeTeamID: sql.NullString{String: "ent_home", Valid: true},
		AwayTeamID: sql.NullString{String: "ent_away", Valid: true},
		KickoffAt:  sql.NullTime{Time: kickoff, Valid: true},
		HomeScore:  sql.NullInt64{Int64: 2, Valid: true},
		AwayScore:  sql.NullInt64{Int64: 1, Valid: true},
		Status:     model.Status,
		Attributes: model.Attributes,
	}
	got := canonicalFromRow(row, canonical.SourceIDs{canonical.ProviderSportMonks: "9001"})
	if got.HomeTeamRef != "2930" || got.AwayName != "Ulsan" {
		t.Fatalf("attributes not restored: %+v", got)
	}
	if got.KickoffAt == nil || !got.KickoffAt.Equal(kickoff) {
		t.Fatalf("unexpected kickoff: %v", got.KickoffAt)
	}
	if got.SourceID(canonical.ProviderSportMonks) != "9001" {
		t.Fatalf("unexpected source ids: %+v", got.SourceIDs)
	}
}

func TestDedupeEntitiesKeepsLastWrite(t *testing.T) {
	t.Parallel()

	out := dedupeEntities([]canonical.Entity{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "other"},
		{ID: "a", Name: "second"},
	})
	if len(out) != 2 || out[0].Name != "second" || out[1].ID != "b" {
		t.Fatalf("unexpected dedupe result: %+v", out)
	}
}
