package mapping

import (
	"testing"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

func TestRecord_Validate(t *testing.T) {
	t.Parallel()

	record := Record{
		EntityType:  canonical.KindTeam,
		ProviderA:   canonical.ProviderSportMonks,
		ProviderB:   canonical.ProviderTheSportsDB,
		ProviderAID: "2930",
		ProviderBID: "138109",
		EntityName:  "Jeonbuk Hyundai Motors",
		Confidence:  0.92,
		VerifiedAt:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := record.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	tooHigh := record
	tooHigh.Confidence = 1.2
	if err := tooHigh.Validate(); err == nil {
		t.Fatalf("expected confidence above 1 to be rejected")
	}

	sameProvider := record
	sameProvider.ProviderB = canonical.ProviderSportMonks
	if err := sameProvider.Validate(); err == nil {
		t.Fatalf("expected mapping between the same provider to be rejected")
	}
}

func TestRecord_KeyTrimsIDs(t *testing.T) {
	t.Parallel()

	key := Record{EntityType: canonical.KindLeague, ProviderAID: " 8 ", ProviderBID: "4689 "}.Key()
	if key.String() != "league:8:4689" {
		t.Fatalf("unexpected key: %s", key)
	}
}
