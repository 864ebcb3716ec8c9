package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
	"github.com/systic2/allleaguesfans-sub001/internal/infrastructure/repository/memory"
	canonicalmock "github.com/systic2/allleaguesfans-sub001/internal/mocks/domain/canonical"
	mappingmock "github.com/systic2/allleaguesfans-sub001/internal/mocks/domain/mapping"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func teamMapping(aID, bID string, confidence float64) mapping.Record {
	return mapping.Record{
		EntityType:  canonical.KindTeam,
		ProviderA:   canonical.ProviderSportMonks,
		ProviderB:   canonical.ProviderTheSportsDB,
		ProviderAID: aID,
		ProviderBID: bID,
		EntityName:  "team " + aID,
		Confidence:  confidence,
		VerifiedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMappingService_PruneUnbindsLowConfidence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	entities := memory.NewCanonicalRepository([]canonical.Entity{
		{ID: "tm_1", Kind: canonical.KindTeam, Name: "Jeonbuk", ParentID: "lg_1", SourceIDs: canonical.SourceIDs{canonical.ProviderSportMonks: "2930", canonical.ProviderTheSportsDB: "138109"}},
		{ID: "tm_2", Kind: canonical.KindTeam, Name: "Ulsan", ParentID: "lg_1", SourceIDs: canonical.SourceIDs{canonical.ProviderSportMonks: "7", canonical.ProviderTheSportsDB: "138111"}},
	})
	mappings := memory.NewMappingRepository()
	if err := mappings.Upsert(ctx, []mapping.Record{teamMapping("2930", "138109", 0.81), teamMapping("7", "138111", 1)}); err != nil {
		t.Fatalf("seed mappings: %v", err)
	}
	service := NewMappingService(mappings, entities, logging.NewNop())

	dry, err := service.Prune(ctx, PruneInput{Kind: canonical.KindTeam, MinConfidence: 0.85, DryRun: true})
	if err != nil || len(dry.Records) != 1 || dry.Deleted != 0 {
		t.Fatalf("unexpected dry prune: %+v err=%v", dry, err)
	}

	live, err := service.Prune(ctx, PruneInput{Kind: canonical.KindTeam, MinConfidence: 0.85})
	if err != nil || live.Deleted != 1 {
		t.Fatalf("unexpected prune: %+v err=%v", live, err)
	}
	if _, found, _ := entities.FindBySource(ctx, canonical.KindTeam, canonical.ProviderTheSportsDB, "138109"); found {
		t.Fatalf("expected secondary id to be unbound")
	}
	kept, found, _ := entities.FindBySource(ctx, canonical.KindTeam, canonical.ProviderSportMonks, "2930")
	if !found || kept.SourceID(canonical.ProviderTheSportsDB) != "" {
		t.Fatalf("expected canonical row without secondary id, got %+v", kept)
	}
	left, _ := mappings.List(ctx, mapping.Filter{})
	if len(left) != 1 || left[0].ProviderAID != "7" {
		t.Fatalf("unexpected remaining mappings: %+v", left)
	}
}

func TestMappingService_PruneValidatesInput(t *testing.T) {
	t.Parallel()

	service := NewMappingService(memory.NewMappingRepository(), memory.NewCanonicalRepository(nil), nil)
	if _, err := service.Prune(context.Background(), PruneInput{Kind: "venue", MinConfidence: 0.5}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid kind error, got %v", err)
	}
	if _, err := service.Prune(context.Background(), PruneInput{Kind: canonical.KindTeam}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid floor error, got %v", err)
	}
}

func TestMappingService_PruneStopsOnUnbindFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mappings := mappingmock.NewRepository(t)
	entities := canonicalmock.NewRepository(t)
	service := NewMappingService(mappings, entities, logging.NewNop())

	mappings.
		On("List", mock.Anything, mock.MatchedBy(func(f mapping.Filter) bool {
			return f.EntityType == canonical.KindTeam && f.MaxConfidence != nil && *f.MaxConfidence == 0.9
		})).
		Return([]mapping.Record{teamMapping("2930", "138109", 0.82)}, nil).
		Once()
	entities.
		On("RemoveSource", mock.Anything, canonical.KindTeam, canonical.ProviderTheSportsDB, "138109").
		Return(errors.New("db down")).
		Once()

	if _, err := service.Prune(ctx, PruneInput{Kind: canonical.KindTeam, MinConfidence: 0.9}); err == nil {
		t.Fatalf("expected unbind error")
	}
	mappings.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
