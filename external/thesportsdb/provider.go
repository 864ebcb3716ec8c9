package thesportsdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

func (c *Client) Name() canonical.Provider {
	return provider
}

// FetchEntities maps a scope onto the v1 lookup endpoints. An empty league
// scope lists every soccer league.
func (c *Client) FetchEntities(ctx context.Context, kind canonical.Kind, scope canonical.Scope) (canonical.Batch, error) {
	leagueRef := strings.TrimSpace(scope.LeagueRef)
	var (
		endpoint string
		query    map[string]string
	)
	switch kind {
	case canonical.KindLeague:
		if leagueRef == "" {
			endpoint = "all_leagues.php"
		} else {
			endpoint, query = "lookupleague.php", map[string]string{"id": leagueRef}
		}
	case canonical.KindTeam:
		if leagueRef == "" {
			return canonical.Batch{}, fmt.Errorf("%w: thesportsdb team fetch needs a league id", usecase.ErrInvalidInput)
		}
		endpoint, query = "lookup_all_teams.php", map[string]string{"id": leagueRef}
	case canonical.KindPlayer:
		teamRef := strings.TrimSpace(scope.TeamRef)
		if teamRef == "" {
			return canonical.Batch{}, fmt.Errorf("%w: thesportsdb player fetch needs a team id", usecase.ErrInvalidInput)
		}
		endpoint, query = "lookup_all_players.php", map[string]string{"id": teamRef}
	case canonical.KindFixture:
		if leagueRef == "" {
			return canonical.Batch{}, fmt.Errorf("%w: thesportsdb event fetch needs a league id", usecase.ErrInvalidInput)
		}
		if season := strings.TrimSpace(scope.Season); season != "" {
			endpoint, query = "eventsseason.php", map[string]string{"id": leagueRef, "s": season}
		} else {
			endpoint, query = "eventspastleague.php", map[string]string{"id": leagueRef}
		}
	default:
		return canonical.Batch{}, fmt.Errorf("%w: unknown kind %q", usecase.ErrInvalidInput, kind)
	}

	raw, err := c.getRaw(ctx, endpoint, query)
	if err != nil {
		return canonical.Batch{Provider: provider, Kind: kind}, fmt.Errorf("fetch thesportsdb %s endpoint=%s: %w", kind, endpoint, err)
	}
	return Normalize(kind, raw)
}
