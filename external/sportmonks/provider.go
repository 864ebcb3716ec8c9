package sportmonks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

const (
	includeLeague  = "country;currentSeason"
	includeTeam    = "country"
	includeSquad   = "player.nationality;player.position"
	includeFixture = "participants;scores;venue"
	includeEvents  = "events.type"
)

func (c *Client) Name() canonical.Provider {
	return provider
}

// FetchEntities fetches one kind inside scope. Leagues need LeagueRef, teams
// and fixtures need Season, players need TeamRef.
func (c *Client) FetchEntities(ctx context.Context, kind canonical.Kind, scope canonical.Scope) (canonical.Batch, error) {
	switch kind {
	case canonical.KindLeague:
		ref := strings.TrimSpace(scope.LeagueRef)
		if ref == "" {
			return canonical.Batch{}, fmt.Errorf("%w: sportmonks league fetch needs a league id", usecase.ErrInvalidInput)
		}
		return c.fetchPages(ctx, kind, "/leagues/"+ref, map[string]string{"include": includeLeague}, false)
	case canonical.KindTeam:
		season := strings.TrimSpace(scope.Season)
		if season == "" {
			return canonical.Batch{}, fmt.Errorf("%w: sportmonks team fetch needs a season id", usecase.ErrInvalidInput)
		}
		return c.fetchPages(ctx, kind, "/teams/seasons/"+season, map[string]string{"include": includeTeam}, true)
	case canonical.KindPlayer:
		team := strings.TrimSpace(scope.TeamRef)
		if team == "" {
			return canonical.Batch{}, fmt.Errorf("%w: sportmonks squad fetch needs a team id", usecase.ErrInvalidInput)
		}
		return c.fetchPages(ctx, kind, "/squads/teams/"+team, map[string]string{"include": includeSquad}, false)
	case canonical.KindFixture:
		season := strings.TrimSpace(scope.Season)
		if season == "" {
			return canonical.Batch{}, fmt.Errorf("%w: sportmonks schedule fetch needs a season id", usecase.ErrInvalidInput)
		}
		return c.fetchPages(ctx, kind, "/schedules/seasons/"+season, map[string]string{"include": includeFixture}, false)
	default:
		return canonical.Batch{}, fmt.Errorf("%w: unknown kind %q", usecase.ErrInvalidInput, kind)
	}
}

func (c *Client) FetchFixtureEvents(ctx context.Context, fixtureRef string) ([]event.Incoming, error) {
	fixtureRef = strings.TrimSpace(fixtureRef)
	if fixtureRef == "" {
		return nil, fmt.Errorf("%w: fixture id is required", usecase.ErrInvalidInput)
	}
	raw, err := c.getRaw(ctx, "/fixtures/"+fixtureRef, map[string]string{"include": includeEvents})
	if err != nil {
		return nil, fmt.Errorf("fetch fixture events fixture_id=%s: %w", fixtureRef, err)
	}
	return NormalizeEvents(fixtureRef, raw)
}

func (c *Client) fetchPages(ctx context.Context, kind canonical.Kind, path string, query map[string]string, paged bool) (canonical.Batch, error) {
	out := canonical.Batch{Provider: provider, Kind: kind}
	for page := 1; page <= defaultMaxPages; page++ {
		pageQuery := make(map[string]string, len(query)+2)
		for key, value := range query {
			pageQuery[key] = value
		}
		if paged {
			pageQuery["page"] = strconv.Itoa(page)
			pageQuery["per_page"] = strconv.Itoa(c.perPage)
		}

		raw, err := c.getRaw(ctx, path, pageQuery)
		if err != nil {
			return out, fmt.Errorf("fetch sportmonks %s path=%s page=%d: %w", kind, path, page, err)
		}
		batch, err := Normalize(kind, raw)
		if err != nil {
			return out, err
		}
		out.Append(batch)

		if !paged || !hasMore(raw) {
			return out, nil
		}
	}
	c.logger.WarnContext(ctx, "sportmonks pagination cut off", "kind", string(kind), "path", path, "max_pages", defaultMaxPages)
	return out, nil
}

func hasMore(raw []byte) bool {
	var env struct {
		Pagination *Pagination `json:"pagination"`
	}
	if err := sonic.Unmarshal(raw, &env); err != nil || env.Pagination == nil {
		return false
	}
	return env.Pagination.HasMore
}
