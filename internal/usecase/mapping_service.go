package usecase

import (
	"context"
	"fmt"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type PruneInput struct {
	Kind          canonical.Kind `validate:"required,oneof=league team player fixture"`
	MinConfidence float64        `validate:"gt=0,lte=1"`
	DryRun        bool
}

type PruneResult struct {
	Kind    canonical.Kind   `json:"kind"`
	Floor   float64          `json:"floor"`
	Records []mapping.Record `json:"records"`
	Deleted int              `json:"deleted"`
	DryRun  bool             `json:"dry_run"`
}

type MappingService struct {
	mappings mapping.Repository
	entities canonical.Repository
	logger   *logging.Logger
}

func NewMappingService(mappings mapping.Repository, entities canonical.Repository, logger *logging.Logger) *MappingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MappingService{mappings: mappings, entities: entities, logger: logger}
}

// Prune drops mappings at or below the confidence floor and unbinds the
// secondary id from the canonical row, so the next pass matches it afresh.
func (s *MappingService) Prune(ctx context.Context, input PruneInput) (result PruneResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MappingService.Prune", attribute.String("mapping.kind", string(input.Kind)))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if err := validateInput(ctx, input); err != nil {
		return PruneResult{}, err
	}

	floor := input.MinConfidence
	records, err := s.mappings.List(ctx, mapping.Filter{EntityType: input.Kind, MaxConfidence: &floor})
	if err != nil {
		return PruneResult{}, fmt.Errorf("list mappings kind=%s: %w", input.Kind, err)
	}

	result = PruneResult{Kind: input.Kind, Floor: floor, Records: records, DryRun: input.DryRun}
	for _, record := range records {
		s.logger.InfoContext(ctx, "mapping below floor",
			"kind", string(record.EntityType),
			"provider_a_id", record.ProviderAID,
			"provider_b_id", record.ProviderBID,
			"name", record.EntityName,
			"confidence", record.Confidence,
		)
	}
	if input.DryRun || len(records) == 0 {
		return result, nil
	}

	for _, record := range records {
		if err := s.entities.RemoveSource(ctx, record.EntityType, record.ProviderB, record.ProviderBID); err != nil {
			return result, fmt.Errorf("unbind %s %s id=%s: %w", record.EntityType, record.ProviderB, record.ProviderBID, err)
		}
	}
	keys := make([]mapping.Key, 0, len(records))
	for _, record := range records {
		keys = append(keys, record.Key())
	}
	deleted, err := s.mappings.Delete(ctx, keys)
	if err != nil {
		return result, fmt.Errorf("delete mappings kind=%s: %w", input.Kind, err)
	}
	result.Deleted = deleted
	s.logger.InfoContext(ctx, "mappings pruned", "kind", string(input.Kind), "deleted", deleted)
	return result, nil
}
