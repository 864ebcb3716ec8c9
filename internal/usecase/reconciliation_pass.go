package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sourcegraph/conc"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
)

// leagueTarget is a reconciled league plus the secondary provider's matching
// record, which carries that provider's own season label.
type leagueTarget struct {
	league    canonical.Entity
	secondary *canonical.Entity
}

// passCache holds what one run has already resolved, keyed by primary
// provider id. Every league pipeline of the run reads and fills it.
type passCache struct {
	entities map[canonical.Kind]map[string]canonical.Entity
	// claimed maps a secondary id to the canonical id that took it this run.
	claimed map[canonical.Kind]map[string]string
}

func newPassCache() *passCache {
	return &passCache{
		entities: make(map[canonical.Kind]map[string]canonical.Entity),
		claimed:  make(map[canonical.Kind]map[string]string),
	}
}

func (c *passCache) get(kind canonical.Kind, ref string) (canonical.Entity, bool) {
	entity, ok := c.entities[kind][ref]
	return entity, ok
}

func (c *passCache) put(kind canonical.Kind, ref string, entity canonical.Entity) {
	if c.entities[kind] == nil {
		c.entities[kind] = make(map[string]canonical.Entity)
	}
	c.entities[kind][ref] = entity
}

func (c *passCache) drop(kind canonical.Kind, ref string) {
	delete(c.entities[kind], ref)
}

// all returns the cached entities of a kind ordered by primary id.
func (c *passCache) all(kind canonical.Kind, provider canonical.Provider) []canonical.Entity {
	out := make([]canonical.Entity, 0, len(c.entities[kind]))
	for _, entity := range c.entities[kind] {
		out = append(out, entity)
	}
	canonical.SortBySource(out, provider)
	return out
}

func (c *passCache) claim(kind canonical.Kind, secondaryRef, canonicalID string) {
	if c.claimed[kind] == nil {
		c.claimed[kind] = make(map[string]string)
	}
	c.claimed[kind][secondaryRef] = canonicalID
}

func (c *passCache) claimedBy(kind canonical.Kind, secondaryRef string) string {
	return c.claimed[kind][secondaryRef]
}

type leaguePass struct {
	svc    *ReconciliationService
	run    *reconcileRun
	cache  *passCache
	writer *batchWriter
	delay  bool
}

func (s *ReconciliationService) newPass(run *reconcileRun, delay bool) *leaguePass {
	p := &leaguePass{svc: s, run: run, cache: run.cache, delay: delay}
	p.writer = &batchWriter{pass: p, size: s.cfg.BatchSize}
	return p
}

// lookup resolves a primary provider id to its canonical entity, first from
// this run and then from the store.
func (p *leaguePass) lookup(ctx context.Context, kind canonical.Kind, ref string) (canonical.Entity, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return canonical.Entity{}, false, nil
	}
	if entity, ok := p.cache.get(kind, ref); ok {
		return entity, true, nil
	}
	entity, found, err := p.svc.entities.FindBySource(ctx, kind, p.svc.primary.Name(), ref)
	if err != nil {
		return canonical.Entity{}, false, fmt.Errorf("find %s by %s id=%s: %w", kind, p.svc.primary.Name(), ref, err)
	}
	if found {
		p.cache.put(kind, ref, entity)
	}
	return entity, found, nil
}

type fetchResult struct {
	batch canonical.Batch
	err   error
}

type fetchFunc func(ctx context.Context) (canonical.Batch, error)

// fetchBoth queries both providers at once. Calls to one provider stay
// sequential, so each provider's rate limiter sees one caller.
func fetchBoth(ctx context.Context, primary, secondary fetchFunc) (fetchResult, fetchResult) {
	var (
		wg      conc.WaitGroup
		pResult fetchResult
		sResult fetchResult
	)
	wg.Go(func() {
		pResult.batch, pResult.err = primary(ctx)
	})
	if secondary != nil {
		wg.Go(func() {
			sResult.batch, sResult.err = secondary(ctx)
		})
	}
	wg.Wait()
	return pResult, sResult
}

// kindStage is one matching round: one primary batch against one secondary
// candidate pool.
type kindStage struct {
	kind      canonical.Kind
	scopeRef  string
	primary   fetchResult
	secondary fetchResult
	// prepare fills canonical references on a primary record before it is staged.
	prepare func(ctx context.Context, record *canonical.Entity) error
	// probe adapts the staged entity for matching against secondary records.
	probe func(entity canonical.Entity) canonical.Entity
	// rosterFor returns the roster row to write alongside a player.
	rosterFor func(entity canonical.Entity) *roster.Entry
}

func (p *leaguePass) reconcile(ctx context.Context, stage kindStage, res *KindResult) {
	svc := p.svc
	primaryName, secondaryName := svc.primary.Name(), svc.secondary.Name()

	if stage.primary.err != nil {
		res.addError(stage.kind, primaryName, stage.scopeRef, fmt.Errorf("%w: fetch %s: %v", ErrDependencyUnavailable, stage.kind, stage.primary.err))
		p.run.logger.WarnContext(ctx, "primary fetch failed", "kind", string(stage.kind), "scope", stage.scopeRef, "error", stage.primary.err)
		return
	}
	if stage.secondary.err != nil {
		res.addError(stage.kind, secondaryName, stage.scopeRef, fmt.Errorf("%w: fetch %s: %v", ErrDependencyUnavailable, stage.kind, stage.secondary.err))
		p.run.logger.WarnContext(ctx, "secondary fetch failed, matching against an empty pool", "kind", string(stage.kind), "scope", stage.scopeRef, "error", stage.secondary.err)
	}

	for _, rejected := range stage.primary.batch.Rejected {
		res.Processed++
		res.addError(stage.kind, rejected.Provider, rejected.Ref, fmt.Errorf("%w: %s", ErrMalformedPayload, rejected.Reason))
		p.run.logger.WarnContext(ctx, "record rejected", "kind", string(stage.kind), "provider", string(rejected.Provider), "ref", rejected.Ref, "reason", rejected.Reason)
	}
	for _, rejected := range stage.secondary.batch.Rejected {
		res.addError(stage.kind, rejected.Provider, rejected.Ref, fmt.Errorf("%w: %s", ErrMalformedPayload, rejected.Reason))
		p.run.logger.WarnContext(ctx, "record rejected", "kind", string(stage.kind), "provider", string(rejected.Provider), "ref", rejected.Ref, "reason", rejected.Reason)
	}

	pool := sameKind(stage.secondary.batch.Records, stage.kind)
	canonical.SortBySource(pool, secondaryName)
	owners, err := p.loadOwners(ctx, stage.kind, pool)
	if err != nil {
		res.addError(stage.kind, secondaryName, stage.scopeRef, err)
		pool, owners = nil, nil
	}

	records := sameKind(stage.primary.batch.Records, stage.kind)
	canonical.SortBySource(records, primaryName)

	for _, record := range records {
		if ctx.Err() != nil {
			return
		}
		res.Processed++
		ref := record.SourceID(primaryName)

		entity, created, err := p.stagePrimary(ctx, stage, record)
		if err != nil {
			res.addError(stage.kind, primaryName, ref, err)
			p.run.logger.WarnContext(ctx, "record skipped", "kind", string(stage.kind), "provider", string(primaryName), "ref", ref, "error", err)
			continue
		}

		item := stagedEntity{kind: stage.kind, ref: ref, entity: entity, created: created}
		decision, err := p.matchSecondary(ctx, stage, entity, ref, pool, owners)
		if err != nil {
			res.addError(stage.kind, primaryName, ref, err)
		}
		if decision.accepted {
			item.entity = entity.Enrich(secondaryName, decision.candidate)
			item.mapping = &mapping.Record{
				EntityType:  stage.kind,
				ProviderA:   primaryName,
				ProviderB:   secondaryName,
				ProviderAID: ref,
				ProviderBID: decision.candidate.SourceID(secondaryName),
				EntityName:  item.entity.Name,
				Confidence:  roundScore(decision.score),
				VerifiedAt:  svc.now().UTC(),
			}
			item.staleMappings = decision.stale
			p.cache.claim(stage.kind, item.mapping.ProviderBID, entity.ID)
		} else {
			res.Unmapped = append(res.Unmapped, UnmappedEntity{
				ID:            entity.ID,
				Ref:           ref,
				Name:          entity.Name,
				BestScore:     roundScore(decision.score),
				BestCandidate: decision.candidate.Name,
			})
			p.run.logger.InfoContext(ctx, "entity unmapped",
				"kind", string(stage.kind),
				"id", entity.ID,
				"name", entity.Name,
				"best_score", roundScore(decision.score),
				"best_candidate", decision.candidate.Name,
			)
		}
		if stage.rosterFor != nil {
			item.roster = stage.rosterFor(item.entity)
		}

		p.cache.put(stage.kind, ref, item.entity)
		p.writer.stage(ctx, res, item)
	}
}

// stagePrimary turns a primary record into the canonical row to write: the
// stored row merged with the sighting, or a fresh row on first sighting.
func (p *leaguePass) stagePrimary(ctx context.Context, stage kindStage, record canonical.Entity) (canonical.Entity, bool, error) {
	primaryName := p.svc.primary.Name()
	ref := record.SourceID(primaryName)
	if ref == "" {
		return canonical.Entity{}, false, fmt.Errorf("%w: record without %s id", ErrMalformedPayload, primaryName)
	}

	record.Kind = stage.kind
	if stage.prepare != nil {
		if err := stage.prepare(ctx, &record); err != nil {
			return canonical.Entity{}, false, err
		}
	}

	existing, found, err := p.lookup(ctx, stage.kind, ref)
	if err != nil {
		return canonical.Entity{}, false, err
	}

	var entity canonical.Entity
	if found {
		entity = existing.Merge(record)
	} else {
		newID, err := p.svc.ids.NewID()
		if err != nil {
			return canonical.Entity{}, false, fmt.Errorf("generate %s id: %w", stage.kind, err)
		}
		entity = record
		entity.ID = entityIDPrefix(stage.kind) + newID
		entity.SourceIDs = record.SourceIDs.Clone()
	}
	if err := entity.Validate(); err != nil {
		return canonical.Entity{}, false, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return entity, !found, nil
}

type matchDecision struct {
	accepted  bool
	candidate canonical.Entity
	score     float64
	stale     []mapping.Key
}

// matchSecondary picks the secondary record for entity. A stored mapping whose
// secondary id is still offered wins without rescoring; otherwise the matcher
// runs over the candidates nobody else has claimed.
func (p *leaguePass) matchSecondary(
	ctx context.Context,
	stage kindStage,
	entity canonical.Entity,
	ref string,
	pool []canonical.Entity,
	owners map[string]string,
) (matchDecision, error) {
	secondaryName := p.svc.secondary.Name()

	available := make([]canonical.Entity, 0, len(pool))
	for _, candidate := range pool {
		candidateRef := candidate.SourceID(secondaryName)
		if owner := owners[candidateRef]; owner != "" && owner != entity.ID {
			continue
		}
		if owner := p.cache.claimedBy(stage.kind, candidateRef); owner != "" && owner != entity.ID {
			continue
		}
		available = append(available, candidate)
	}

	existing, err := p.svc.mappings.FindByProviderA(ctx, stage.kind, ref)
	if err != nil {
		existing = nil
		err = fmt.Errorf("load mappings for %s id=%s: %w", stage.kind, ref, err)
	}

	decision := matchDecision{}
	for _, record := range existing {
		for _, candidate := range available {
			if candidate.SourceID(secondaryName) == record.ProviderBID {
				decision = matchDecision{accepted: true, candidate: candidate, score: record.Confidence}
				break
			}
		}
		if decision.accepted {
			break
		}
	}

	if !decision.accepted && len(available) > 0 {
		probe := entity
		if stage.probe != nil {
			probe = stage.probe(entity)
		}
		result, ok := p.svc.matcher.Match(probe, available, p.svc.cfg.Thresholds[stage.kind])
		decision.score = result.Score
		if result.Index >= 0 {
			decision.candidate = result.Candidate
		}
		decision.accepted = ok
	}

	if decision.accepted {
		chosen := decision.candidate.SourceID(secondaryName)
		for _, record := range existing {
			if record.ProviderBID != chosen {
				decision.stale = append(decision.stale, record.Key())
			}
		}
	}
	return decision, err
}

// loadOwners reports which canonical entity already holds each candidate's
// secondary id in the store.
func (p *leaguePass) loadOwners(ctx context.Context, kind canonical.Kind, pool []canonical.Entity) (map[string]string, error) {
	secondaryName := p.svc.secondary.Name()
	owners := make(map[string]string, len(pool))
	for _, candidate := range pool {
		ref := candidate.SourceID(secondaryName)
		if ref == "" {
			continue
		}
		owner, found, err := p.svc.entities.FindBySource(ctx, kind, secondaryName, ref)
		if err != nil {
			return nil, fmt.Errorf("find %s by %s id=%s: %w", kind, secondaryName, ref, err)
		}
		if found {
			owners[ref] = owner.ID
		}
	}
	return owners, nil
}

func sameKind(records []canonical.Entity, kind canonical.Kind) []canonical.Entity {
	out := make([]canonical.Entity, 0, len(records))
	for _, record := range records {
		if record.Kind == "" || record.Kind == kind {
			record.Kind = kind
			out = append(out, record)
		}
	}
	return out
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// runLeagueStage reconciles the given primary league ids and returns every
// league that now has a canonical row.
func (s *ReconciliationService) runLeagueStage(ctx context.Context, run *reconcileRun, refs []string) ([]leagueTarget, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.runLeagueStage")
	defer span.End()

	refs = uniqueRefs(refs)
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no leagues configured for %s", ErrInvalidInput, s.primary.Name())
	}

	secondaryRefs := make([]string, 0, len(refs))
	needsFullList := false
	for _, ref := range refs {
		if mapped := strings.TrimSpace(s.cfg.SecondaryLeagueRefs[ref]); mapped != "" {
			secondaryRefs = append(secondaryRefs, mapped)
		} else {
			needsFullList = true
		}
	}

	pass := s.newPass(run, false)
	primaryFetch := func(ctx context.Context) (canonical.Batch, error) {
		out := canonical.Batch{Provider: s.primary.Name(), Kind: canonical.KindLeague}
		for _, ref := range refs {
			batch, err := s.primary.FetchEntities(ctx, canonical.KindLeague, canonical.Scope{LeagueRef: ref})
			if err != nil {
				return out, fmt.Errorf("league %s: %w", ref, err)
			}
			out.Append(batch)
		}
		return out, nil
	}
	secondaryFetch := func(ctx context.Context) (canonical.Batch, error) {
		out := canonical.Batch{Provider: s.secondary.Name(), Kind: canonical.KindLeague}
		for _, ref := range uniqueRefs(secondaryRefs) {
			batch, err := s.secondary.FetchEntities(ctx, canonical.KindLeague, canonical.Scope{LeagueRef: ref})
			if err != nil {
				return out, fmt.Errorf("league %s: %w", ref, err)
			}
			out.Append(batch)
		}
		if needsFullList {
			batch, err := s.secondary.FetchEntities(ctx, canonical.KindLeague, canonical.Scope{})
			if err != nil {
				return out, fmt.Errorf("league list: %w", err)
			}
			out.Append(batch)
		}
		return out, nil
	}

	primaryResult, secondaryResult := fetchBoth(ctx, primaryFetch, secondaryFetch)
	secondaryPool := dedupeBySource(secondaryResult.batch.Records, s.secondary.Name())
	secondaryResult.batch.Records = secondaryPool

	res := KindResult{Kind: canonical.KindLeague}
	pass.reconcile(ctx, kindStage{
		kind:      canonical.KindLeague,
		scopeRef:  strings.Join(refs, ","),
		primary:   primaryResult,
		secondary: secondaryResult,
	}, &res)
	pass.writer.flush(ctx, &res)
	run.report(res)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bySecondaryRef := make(map[string]canonical.Entity, len(secondaryPool))
	for _, candidate := range secondaryPool {
		bySecondaryRef[candidate.SourceID(s.secondary.Name())] = candidate
	}
	targets := make([]leagueTarget, 0, len(refs))
	for _, league := range pass.cache.all(canonical.KindLeague, s.primary.Name()) {
		target := leagueTarget{league: league}
		if candidate, ok := bySecondaryRef[league.SourceID(s.secondary.Name())]; ok {
			candidate := candidate
			target.secondary = &candidate
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// runLeaguePipeline reconciles teams, players and fixtures of one league.
func (s *ReconciliationService) runLeaguePipeline(ctx context.Context, run *reconcileRun, target leagueTarget, delay bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.runLeaguePipeline")
	defer span.End()

	league := target.league
	pass := s.newPass(run, delay)
	pass.cache.put(canonical.KindLeague, league.SourceID(s.primary.Name()), league)
	run.addLeague(league.ID)

	logger := run.logger.With("league_id", league.ID, "league", league.Name)
	logger.InfoContext(ctx, "league pipeline started")

	primaryLeagueRef := league.SourceID(s.primary.Name())
	secondaryLeagueRef := league.SourceID(s.secondary.Name())
	secondarySeason := ""
	if target.secondary != nil {
		secondarySeason = target.secondary.Season
	}

	parentResolver := func(parentKind canonical.Kind, fallback canonical.Entity) func(ctx context.Context, record *canonical.Entity) error {
		return func(ctx context.Context, record *canonical.Entity) error {
			if strings.TrimSpace(record.ParentRef) == "" {
				record.ParentID = fallback.ID
				return nil
			}
			parent, found, err := pass.lookup(ctx, parentKind, record.ParentRef)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: parent %s %s not found", ErrNotFound, parentKind, record.ParentRef)
			}
			record.ParentID = parent.ID
			return nil
		}
	}

	// teams
	teams := KindResult{Kind: canonical.KindTeam}
	var secondaryTeams fetchFunc
	if secondaryLeagueRef != "" {
		secondaryTeams = func(ctx context.Context) (canonical.Batch, error) {
			return s.secondary.FetchEntities(ctx, canonical.KindTeam, canonical.Scope{LeagueRef: secondaryLeagueRef, Season: secondarySeason})
		}
	}
	pTeams, sTeams := fetchBoth(ctx,
		func(ctx context.Context) (canonical.Batch, error) {
			return s.primary.FetchEntities(ctx, canonical.KindTeam, canonical.Scope{LeagueRef: primaryLeagueRef, Season: league.Season})
		},
		secondaryTeams,
	)
	pass.reconcile(ctx, kindStage{
		kind:      canonical.KindTeam,
		scopeRef:  primaryLeagueRef,
		primary:   pTeams,
		secondary: sTeams,
		prepare:   parentResolver(canonical.KindLeague, league),
	}, &teams)
	pass.writer.flush(ctx, &teams)
	run.report(teams)
	if err := ctx.Err(); err != nil {
		return err
	}

	// players, one pool per team this league lists
	teamRefs := make([]string, 0, len(pTeams.batch.Records))
	for _, record := range pTeams.batch.Records {
		teamRefs = append(teamRefs, record.SourceID(s.primary.Name()))
	}
	players := KindResult{Kind: canonical.KindPlayer}
	for _, teamRef := range uniqueRefs(teamRefs) {
		team, ok := pass.cache.get(canonical.KindTeam, teamRef)
		if !ok {
			continue
		}
		secondaryTeamRef := team.SourceID(s.secondary.Name())

		var secondaryPlayers fetchFunc
		if secondaryTeamRef != "" {
			secondaryPlayers = func(ctx context.Context) (canonical.Batch, error) {
				return s.secondary.FetchEntities(ctx, canonical.KindPlayer, canonical.Scope{LeagueRef: secondaryLeagueRef, TeamRef: secondaryTeamRef, Season: secondarySeason})
			}
		}
		pPlayers, sPlayers := fetchBoth(ctx,
			func(ctx context.Context) (canonical.Batch, error) {
				return s.primary.FetchEntities(ctx, canonical.KindPlayer, canonical.Scope{LeagueRef: primaryLeagueRef, TeamRef: teamRef, Season: league.Season})
			},
			secondaryPlayers,
		)
		pass.reconcile(ctx, kindStage{
			kind:      canonical.KindPlayer,
			scopeRef:  teamRef,
			primary:   pPlayers,
			secondary: sPlayers,
			prepare:   parentResolver(canonical.KindTeam, team),
			rosterFor: rosterEntryFor,
		}, &players)
		if ctx.Err() != nil {
			break
		}
	}
	pass.writer.flush(ctx, &players)
	run.report(players)
	if err := ctx.Err(); err != nil {
		return err
	}

	// fixtures
	fixtures := KindResult{Kind: canonical.KindFixture}
	var secondaryFixtures fetchFunc
	if secondaryLeagueRef != "" {
		secondaryFixtures = func(ctx context.Context) (canonical.Batch, error) {
			return s.secondary.FetchEntities(ctx, canonical.KindFixture, canonical.Scope{LeagueRef: secondaryLeagueRef, Season: secondarySeason})
		}
	}
	pFixtures, sFixtures := fetchBoth(ctx,
		func(ctx context.Context) (canonical.Batch, error) {
			return s.primary.FetchEntities(ctx, canonical.KindFixture, canonical.Scope{LeagueRef: primaryLeagueRef, Season: league.Season})
		},
		secondaryFixtures,
	)
	pass.reconcile(ctx, kindStage{
		kind:      canonical.KindFixture,
		scopeRef:  primaryLeagueRef,
		primary:   pFixtures,
		secondary: sFixtures,
		prepare:   pass.fixtureResolver(league),
		probe:     pass.fixtureProbe,
	}, &fixtures)
	pass.writer.flush(ctx, &fixtures)
	run.report(fixtures)

	logger.InfoContext(ctx, "league pipeline finished",
		"teams", teams.Processed,
		"players", players.Processed,
		"fixtures", fixtures.Processed,
	)
	return ctx.Err()
}

// fixtureResolver binds both participants to canonical teams.
func (p *leaguePass) fixtureResolver(league canonical.Entity) func(ctx context.Context, record *canonical.Entity) error {
	return func(ctx context.Context, record *canonical.Entity) error {
		record.ParentID = league.ID
		home, found, err := p.lookup(ctx, canonical.KindTeam, record.HomeTeamRef)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: home team %s not found", ErrNotFound, record.HomeTeamRef)
		}
		away, found, err := p.lookup(ctx, canonical.KindTeam, record.AwayTeamRef)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: away team %s not found", ErrNotFound, record.AwayTeamRef)
		}
		record.HomeTeamID, record.AwayTeamID = home.ID, away.ID
		if strings.TrimSpace(record.Name) == "" {
			record.Name = home.Name + " vs " + away.Name
		}
		return nil
	}
}

// fixtureProbe rewrites the fixture code into the secondary provider's team
// ids so an exact code hit means same teams on the same day.
func (p *leaguePass) fixtureProbe(entity canonical.Entity) canonical.Entity {
	secondaryName := p.svc.secondary.Name()
	home, okHome := p.cache.get(canonical.KindTeam, entity.HomeTeamRef)
	away, okAway := p.cache.get(canonical.KindTeam, entity.AwayTeamRef)
	entity.ShortCode = ""
	if okHome && okAway && entity.KickoffAt != nil {
		homeRef, awayRef := home.SourceID(secondaryName), away.SourceID(secondaryName)
		if homeRef != "" && awayRef != "" {
			entity.ShortCode = canonical.FixtureCode(homeRef, awayRef, *entity.KickoffAt)
		}
	}
	return entity
}

func rosterEntryFor(player canonical.Entity) *roster.Entry {
	return &roster.Entry{
		TeamID:       player.ParentID,
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		JerseyNumber: player.ShirtNumber,
		Position:     player.Position,
	}
}

func uniqueRefs(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	sort.SliceStable(out, func(i, j int) bool { return canonical.CompareRefs(out[i], out[j]) < 0 })
	return out
}

func dedupeBySource(records []canonical.Entity, provider canonical.Provider) []canonical.Entity {
	seen := make(map[string]struct{}, len(records))
	out := make([]canonical.Entity, 0, len(records))
	for _, record := range records {
		ref := record.SourceID(provider)
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, record)
	}
	return out
}
