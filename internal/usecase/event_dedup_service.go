package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const defaultDedupDeleteBatch = 500

type DedupInput struct {
	// FixtureIDs narrows the scan; empty scans every stored event.
	FixtureIDs []string
	DryRun     bool
}

type DedupFixtureReport struct {
	FixtureID string  `json:"fixture_id"`
	Rows      int     `json:"rows"`
	Groups    int     `json:"groups"`
	DeleteIDs []int64 `json:"delete_ids"`
}

type DedupResult struct {
	Scanned  int                  `json:"scanned"`
	Fixtures []DedupFixtureReport `json:"fixtures"`
	Planned  int                  `json:"planned"`
	Deleted  int                  `json:"deleted"`
	DryRun   bool                 `json:"dry_run"`
}

type EventDedupService struct {
	events    event.Repository
	batchSize int
	logger    *logging.Logger
}

func NewEventDedupService(events event.Repository, batchSize int, logger *logging.Logger) *EventDedupService {
	if logger == nil {
		logger = logging.Default()
	}
	if batchSize <= 0 {
		batchSize = defaultDedupDeleteBatch
	}
	return &EventDedupService{events: events, batchSize: batchSize, logger: logger}
}

// Run collapses duplicate event rows, keeping the earliest insert of each
// group. The whole plan is logged before anything is deleted.
func (s *EventDedupService) Run(ctx context.Context, input DedupInput) (result DedupResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventDedupService.Run",
		attribute.Int("dedup.fixtures", len(input.FixtureIDs)),
		attribute.Bool("dedup.dry_run", input.DryRun),
	)
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	fixtureIDs := make([]string, 0, len(input.FixtureIDs))
	for _, id := range input.FixtureIDs {
		if id = strings.TrimSpace(id); id != "" {
			fixtureIDs = append(fixtureIDs, id)
		}
	}

	var rows []event.Row
	if len(fixtureIDs) > 0 {
		rows, err = s.events.ListByFixtures(ctx, fixtureIDs)
	} else {
		rows, err = s.events.ListAll(ctx)
	}
	if err != nil {
		return DedupResult{}, fmt.Errorf("list events: %w", err)
	}

	plans := event.PlanDedup(rows)
	result = DedupResult{Scanned: len(rows), DryRun: input.DryRun, Fixtures: make([]DedupFixtureReport, 0, len(plans))}
	deleteIDs := make([]int64, 0)
	for _, plan := range plans {
		ids := plan.DeleteIDs()
		result.Fixtures = append(result.Fixtures, DedupFixtureReport{
			FixtureID: plan.FixtureID,
			Rows:      plan.Rows,
			Groups:    len(plan.Groups),
			DeleteIDs: ids,
		})
		deleteIDs = append(deleteIDs, ids...)
		for _, group := range plan.Groups {
			s.logger.InfoContext(ctx, "duplicate event group",
				"fixture_id", plan.FixtureID,
				"type", group.Key.Type,
				"minute", group.Key.Minute,
				"player_id", group.Key.PlayerID,
				"keep_id", group.KeepID,
				"drop_ids", group.DropIDs,
			)
		}
	}
	result.Planned = len(deleteIDs)
	s.logger.InfoContext(ctx, "event dedup plan",
		"scanned", result.Scanned,
		"fixtures", len(result.Fixtures),
		"planned", result.Planned,
		"dry_run", input.DryRun,
	)

	if input.DryRun || len(deleteIDs) == 0 {
		return result, nil
	}

	for start := 0; start < len(deleteIDs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(deleteIDs) {
			end = len(deleteIDs)
		}
		deleted, err := s.events.Delete(ctx, deleteIDs[start:end])
		if err != nil {
			return result, fmt.Errorf("delete duplicate events batch %d-%d: %w", start, end, err)
		}
		result.Deleted += deleted
	}
	s.logger.InfoContext(ctx, "event dedup finished", "deleted", result.Deleted)
	return result, nil
}
