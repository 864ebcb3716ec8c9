package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type JerseyInput struct {
	LeagueID string
	TeamIDs  []string
	Strategy string
	Keeper   string
	DryRun   bool
}

type JerseyTeamResult struct {
	TeamID  string          `json:"team_id"`
	Players int             `json:"players"`
	Changes []roster.Change `json:"changes"`
}

type JerseyResult struct {
	Strategy   roster.Strategy    `json:"strategy"`
	Keeper     roster.Keeper      `json:"keeper"`
	DryRun     bool               `json:"dry_run"`
	Teams      []JerseyTeamResult `json:"teams"`
	Changed    int                `json:"changed"`
	Unassigned int                `json:"unassigned"`
	// Violations is read back from the store after a live run. A dry run
	// reports the rosters as they would look with the changes applied.
	Violations []roster.Violation `json:"violations,omitempty"`
}

type JerseyService struct {
	rosters  roster.Repository
	entities canonical.Repository
	defaults roster.Options
	logger   *logging.Logger
}

func NewJerseyService(rosters roster.Repository, entities canonical.Repository, defaults roster.Options, logger *logging.Logger) *JerseyService {
	if logger == nil {
		logger = logging.Default()
	}
	return &JerseyService{rosters: rosters, entities: entities, defaults: defaults, logger: logger}
}

// Resolve removes jersey collisions team by team. Each team is read, resolved
// and written on its own so a failure leaves other teams untouched.
func (s *JerseyService) Resolve(ctx context.Context, input JerseyInput) (result JerseyResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JerseyService.Resolve",
		attribute.String("jersey.league_id", input.LeagueID),
		attribute.Bool("jersey.dry_run", input.DryRun),
	)
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	opts, err := s.options(input)
	if err != nil {
		return JerseyResult{}, err
	}
	teamIDs, err := s.selectTeams(ctx, input.LeagueID, input.TeamIDs)
	if err != nil {
		return JerseyResult{}, err
	}

	result = JerseyResult{Strategy: opts.Strategy, Keeper: opts.Keeper, DryRun: input.DryRun}
	var projected []roster.Entry
	for _, teamID := range teamIDs {
		entries, err := s.rosters.ListByTeam(ctx, teamID)
		if err != nil {
			return result, fmt.Errorf("list roster team_id=%s: %w", teamID, err)
		}
		resolution := roster.Resolve(teamID, entries, opts)
		result.Teams = append(result.Teams, JerseyTeamResult{TeamID: teamID, Players: len(entries), Changes: resolution.Changes})
		result.Changed += len(resolution.Changes)
		for _, change := range resolution.Changes {
			if change.After == nil {
				result.Unassigned++
			}
			s.logger.InfoContext(ctx, "jersey change", "change", change.String())
		}

		if input.DryRun {
			projected = append(projected, roster.Apply(entries, resolution.Changes)...)
			continue
		}
		if len(resolution.Changes) == 0 {
			continue
		}
		if err := s.rosters.ApplyChanges(ctx, teamID, resolution.Changes); err != nil {
			return result, fmt.Errorf("apply jersey changes team_id=%s: %w", teamID, err)
		}
	}

	if input.DryRun {
		result.Violations = roster.Verify(projected)
	} else {
		violations, err := s.verifyTeams(ctx, teamIDs)
		if err != nil {
			return result, err
		}
		result.Violations = violations
	}
	if len(result.Violations) > 0 {
		s.logger.WarnContext(ctx, "jersey collisions remain after resolve", "teams", len(result.Violations))
	}

	s.logger.InfoContext(ctx, "jersey resolve finished",
		"teams", len(result.Teams),
		"changed", result.Changed,
		"unassigned", result.Unassigned,
		"dry_run", input.DryRun,
	)
	return result, nil
}

// Verify scans rosters and reports every team still holding a duplicate number.
func (s *JerseyService) Verify(ctx context.Context, leagueID string, teamIDs []string) ([]roster.Violation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JerseyService.Verify")
	defer span.End()

	selected, err := s.selectTeams(ctx, leagueID, teamIDs)
	if err != nil {
		return nil, err
	}
	return s.verifyTeams(ctx, selected)
}

func (s *JerseyService) verifyTeams(ctx context.Context, teamIDs []string) ([]roster.Violation, error) {
	all := make([]roster.Entry, 0)
	for _, teamID := range teamIDs {
		entries, err := s.rosters.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("list roster team_id=%s: %w", teamID, err)
		}
		all = append(all, entries...)
	}
	return roster.Verify(all), nil
}

func (s *JerseyService) options(input JerseyInput) (roster.Options, error) {
	opts := s.defaults
	if strings.TrimSpace(input.Strategy) != "" {
		strategy, err := roster.ParseStrategy(input.Strategy)
		if err != nil {
			return roster.Options{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		opts.Strategy = strategy
	}
	if strings.TrimSpace(input.Keeper) != "" {
		keeper, err := roster.ParseKeeper(input.Keeper)
		if err != nil {
			return roster.Options{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		opts.Keeper = keeper
	}
	if opts.Strategy == "" {
		opts.Strategy = roster.StrategyMinimalChange
	}
	if opts.Keeper == "" {
		opts.Keeper = roster.KeeperLowestID
	}
	return opts, nil
}

func (s *JerseyService) selectTeams(ctx context.Context, leagueID string, teamIDs []string) ([]string, error) {
	selected := make([]string, 0, len(teamIDs))
	seen := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		selected = append(selected, id)
	}

	switch {
	case len(selected) > 0:
	case strings.TrimSpace(leagueID) != "":
		if s.entities == nil {
			return nil, fmt.Errorf("%w: league selection needs the canonical store", ErrInvalidInput)
		}
		teams, err := s.entities.Find(ctx, canonical.Filter{Kind: canonical.KindTeam, ParentID: strings.TrimSpace(leagueID)})
		if err != nil {
			return nil, fmt.Errorf("list teams league_id=%s: %w", leagueID, err)
		}
		if len(teams) == 0 {
			return nil, fmt.Errorf("%w: no teams for league %s", ErrNotFound, leagueID)
		}
		for _, team := range teams {
			selected = append(selected, team.ID)
		}
	default:
		ids, err := s.rosters.ListTeamIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list roster teams: %w", err)
		}
		selected = append(selected, ids...)
	}
	sort.Strings(selected)
	return selected, nil
}
