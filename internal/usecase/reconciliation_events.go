package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
)

// runEventIngest pulls in-match events for finished fixtures from the primary
// provider. Rows already stored under the same dedup key are skipped, so the
// ingest never creates the duplicates the dedup job removes.
func (s *ReconciliationService) runEventIngest(ctx context.Context, run *reconcileRun, leagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.runEventIngest")
	defer span.End()

	source, ok := s.primary.(EventSource)
	if !ok {
		return fmt.Errorf("%w: provider %s does not report events", ErrInvalidInput, s.primary.Name())
	}

	leagues, err := s.eventLeagues(ctx, leagueID)
	if err != nil {
		return err
	}

	res := &EventIngestResult{}
	lookups := newRefLookup(s.entities, s.primary.Name())
	for _, league := range leagues {
		run.addLeague(league.ID)
		fixtures, err := s.entities.Find(ctx, canonical.Filter{Kind: canonical.KindFixture, ParentID: league.ID})
		if err != nil {
			return fmt.Errorf("list fixtures league_id=%s: %w", league.ID, err)
		}
		canonical.SortBySource(fixtures, s.primary.Name())

		for _, fixture := range fixtures {
			if err := ctx.Err(); err != nil {
				return err
			}
			if fixture.Status != canonical.StatusFinished {
				continue
			}
			ref := fixture.SourceID(s.primary.Name())
			if ref == "" {
				continue
			}
			res.Fixtures++
			s.ingestFixtureEvents(ctx, run, source, lookups, fixture, ref, res)
		}
	}

	run.mu.Lock()
	run.events = res
	run.mu.Unlock()
	run.logger.InfoContext(ctx, "event ingest finished",
		"fixtures", res.Fixtures,
		"fetched", res.Fetched,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)
	return nil
}

func (s *ReconciliationService) ingestFixtureEvents(
	ctx context.Context,
	run *reconcileRun,
	source EventSource,
	lookups *refLookup,
	fixture canonical.Entity,
	ref string,
	res *EventIngestResult,
) {
	provider := s.primary.Name()
	incoming, err := source.FetchFixtureEvents(ctx, ref)
	if err != nil {
		res.Errors = append(res.Errors, ItemError{Kind: canonical.KindFixture, Provider: provider, Ref: ref, Message: err.Error()})
		run.logger.WarnContext(ctx, "fixture events fetch failed", "fixture_id", fixture.ID, "ref", ref, "error", err)
		return
	}
	res.Fetched += len(incoming)

	existing, err := s.events.ListByFixtures(ctx, []string{fixture.ID})
	if err != nil {
		res.Errors = append(res.Errors, ItemError{Kind: canonical.KindFixture, Provider: provider, Ref: ref, Message: fmt.Sprintf("list stored events: %v", err)})
		return
	}
	seen := make(map[event.DedupKey]struct{}, len(existing)+len(incoming))
	for _, row := range existing {
		seen[event.KeyOf(row)] = struct{}{}
	}

	rows := make([]event.Row, 0, len(incoming))
	for _, item := range incoming {
		row, err := lookups.resolveEvent(ctx, fixture.ID, item)
		if err == nil {
			err = row.Validate()
		}
		if err != nil {
			res.Errors = append(res.Errors, ItemError{Kind: canonical.KindFixture, Provider: provider, Ref: ref, Message: err.Error()})
			continue
		}
		key := event.KeyOf(row)
		if _, dup := seen[key]; dup {
			res.Skipped++
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return
	}
	if run.dryRun {
		res.Inserted += len(rows)
		return
	}
	if err := s.events.Insert(ctx, rows); err != nil {
		res.Errors = append(res.Errors, ItemError{Kind: canonical.KindFixture, Provider: provider, Ref: ref, Message: fmt.Sprintf("%v: insert events: %v", ErrPersistenceConflict, err)})
		return
	}
	res.Inserted += len(rows)
}

func (s *ReconciliationService) eventLeagues(ctx context.Context, leagueID string) ([]canonical.Entity, error) {
	filter := canonical.Filter{Kind: canonical.KindLeague}
	if leagueID = strings.TrimSpace(leagueID); leagueID != "" {
		filter.IDs = []string{leagueID}
	}
	leagues, err := s.entities.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	if len(leagues) == 0 && leagueID != "" {
		league, found, err := s.entities.FindBySource(ctx, canonical.KindLeague, s.primary.Name(), leagueID)
		if err != nil {
			return nil, fmt.Errorf("find league by %s id=%s: %w", s.primary.Name(), leagueID, err)
		}
		if !found {
			return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
		}
		leagues = []canonical.Entity{league}
	}
	return leagues, nil
}

// refLookup memoizes primary-id to canonical-id lookups for teams and players.
type refLookup struct {
	entities canonical.Repository
	provider canonical.Provider
	ids      map[canonical.Kind]map[string]string
}

func newRefLookup(entities canonical.Repository, provider canonical.Provider) *refLookup {
	return &refLookup{
		entities: entities,
		provider: provider,
		ids:      make(map[canonical.Kind]map[string]string),
	}
}

func (l *refLookup) canonicalID(ctx context.Context, kind canonical.Kind, ref string) (string, error) {
	if cached, ok := l.ids[kind][ref]; ok {
		if cached == "" {
			return "", fmt.Errorf("%w: %s %s", ErrNotFound, kind, ref)
		}
		return cached, nil
	}
	entity, found, err := l.entities.FindBySource(ctx, kind, l.provider, ref)
	if err != nil {
		return "", fmt.Errorf("find %s by %s id=%s: %w", kind, l.provider, ref, err)
	}
	if l.ids[kind] == nil {
		l.ids[kind] = make(map[string]string)
	}
	if !found {
		l.ids[kind][ref] = ""
		return "", fmt.Errorf("%w: %s %s", ErrNotFound, kind, ref)
	}
	l.ids[kind][ref] = entity.ID
	return entity.ID, nil
}

func (l *refLookup) resolveEvent(ctx context.Context, fixtureID string, item event.Incoming) (event.Row, error) {
	row := event.Row{
		FixtureID:    fixtureID,
		Minute:       item.Minute,
		ExtraMinutes: item.ExtraMinutes,
		Type:         strings.TrimSpace(item.Type),
		Comments:     item.Comments,
	}
	if detail := strings.TrimSpace(item.Detail); detail != "" {
		row.Detail = &detail
	}

	var err error
	if ref := strings.TrimSpace(item.TeamRef); ref != "" {
		if row.TeamID, err = l.canonicalID(ctx, canonical.KindTeam, ref); err != nil {
			return event.Row{}, err
		}
	}
	if ref := strings.TrimSpace(item.PlayerRef); ref != "" {
		if row.PlayerID, err = l.canonicalID(ctx, canonical.KindPlayer, ref); err != nil {
			return event.Row{}, err
		}
	}
	if ref := strings.TrimSpace(item.AssistRef); ref != "" {
		assistID, err := l.canonicalID(ctx, canonical.KindPlayer, ref)
		if err != nil {
			return event.Row{}, err
		}
		row.AssistPlayerID = &assistID
	}
	return row, nil
}
