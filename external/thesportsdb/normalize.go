package thesportsdb

import (
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

const provider = canonical.ProviderTheSportsDB

// Normalize turns one thesportsdb response body into canonical records.
func Normalize(kind canonical.Kind, raw []byte) (canonical.Batch, error) {
	batch := canonical.Batch{Provider: provider, Kind: kind}
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return batch, fmt.Errorf("%w: thesportsdb %s payload: %v", usecase.ErrMalformedPayload, kind, err)
	}

	switch kind {
	case canonical.KindLeague:
		for _, item := range env.Leagues {
			normalizeLeague(&batch, item)
		}
	case canonical.KindTeam:
		for _, item := range env.Teams {
			normalizeTeam(&batch, item)
		}
	case canonical.KindPlayer:
		for _, item := range append(env.Player, env.Players...) {
			normalizePlayer(&batch, item)
		}
	case canonical.KindFixture:
		for _, item := range env.Events {
			normalizeEvent(&batch, item)
		}
	default:
		return batch, fmt.Errorf("%w: unknown kind %q", usecase.ErrInvalidInput, kind)
	}
	return batch, nil
}

func normalizeLeague(batch *canonical.Batch, item rawItem) {
	var league League
	if err := sonic.Unmarshal(item, &league); err != nil {
		batch.Reject(refOf(item, "idLeague"), fmt.Sprintf("decode league: %v", err))
		return
	}
	ref, name := league.ID.String(), league.Name.String()
	if ref == "" || name == "" {
		batch.Reject(ref, "league id and name are required")
		return
	}
	if sport := league.Sport.String(); sport != "" && !strings.EqualFold(sport, "soccer") {
		return
	}

	batch.Records = append(batch.Records, canonical.Entity{
		Kind:      canonical.KindLeague,
		Name:      name,
		AltNames:  splitAlternates(league.Alternate.String(), name),
		ShortCode: league.ShortLeagueTag.String(),
		Country:   league.Country.String(),
		ImageURL:  firstNonEmpty(league.Badge.String(), league.Logo.String()),
		Season:    league.CurrentSeason.String(),
		SourceIDs: canonical.SourceIDs{provider: ref},
	})
}

func normalizeTeam(batch *canonical.Batch, item rawItem) {
	var team Team
	if err := sonic.Unmarshal(item, &team); err != nil {
		batch.Reject(refOf(item, "idTeam"), fmt.Sprintf("decode team: %v", err))
		return
	}
	ref, name := team.ID.String(), team.Name.String()
	if ref == "" || name == "" {
		batch.Reject(ref, "team id and name are required")
		return
	}

	batch.Records = append(batch.Records, canonical.Entity{
		Kind:      canonical.KindTeam,
		Name:      name,
		AltNames:  splitAlternates(team.Alternate.String(), name),
		ShortCode: strings.ToUpper(team.Short.String()),
		Country:   team.Country.String(),
		ImageURL:  team.Badge.String(),
		ParentRef: team.LeagueID.String(),
		SourceIDs: canonical.SourceIDs{provider: ref},
	})
}

func normalizePlayer(batch *canonical.Batch, item rawItem) {
	var player Player
	if err := sonic.Unmarshal(item, &player); err != nil {
		batch.Reject(refOf(item, "idPlayer"), fmt.Sprintf("decode player: %v", err))
		return
	}
	ref, name := player.ID.String(), player.Name.String()
	if ref == "" || name == "" {
		batch.Reject(ref, "player id and name are required")
		return
	}
	if strings.EqualFold(player.Position.String(), "manager") || strings.EqualFold(player.Status.String(), "retired") {
		return
	}

	entity := canonical.Entity{
		Kind:      canonical.KindPlayer,
		Name:      name,
		AltNames:  splitAlternates(player.Alternate.String(), name),
		ParentRef: player.TeamID.String(),
		Country:   player.Nationality.String(),
		ImageURL:  player.Thumb.String(),
		BirthDate: player.Born.String(),
		Position:  canonical.NormalizePosition(player.Position.String()),
		SourceIDs: canonical.SourceIDs{provider: ref},
	}
	if number, ok := player.Number.Int(); ok && number >= 0 && number <= 99 {
		entity.ShirtNumber = &number
	}
	batch.Records = append(batch.Records, entity)
}

func normalizeEvent(batch *canonical.Batch, item rawItem) {
	var ev Event
	if err := sonic.Unmarshal(item, &ev); err != nil {
		batch.Reject(refOf(item, "idEvent"), fmt.Sprintf("decode event: %v", err))
		return
	}
	ref := ev.ID.String()
	homeRef, awayRef := ev.HomeID.String(), ev.AwayID.String()
	if ref == "" {
		batch.Reject("", "event id is required")
		return
	}
	if homeRef == "" || awayRef == "" {
		batch.Reject(ref, "event needs both team ids")
		return
	}

	entity := canonical.Entity{
		Kind:        canonical.KindFixture,
		Name:        firstNonEmpty(ev.Name.String(), ev.HomeName.String()+" vs "+ev.AwayName.String()),
		ParentRef:   ev.LeagueID.String(),
		Season:      ev.Season.String(),
		HomeTeamRef: homeRef,
		AwayTeamRef: awayRef,
		HomeName:    ev.HomeName.String(),
		AwayName:    ev.AwayName.String(),
		Venue:       ev.Venue.String(),
		SourceIDs:   canonical.SourceIDs{provider: ref},
	}
	if home, ok := ev.HomeScore.Int(); ok {
		entity.HomeScore = &home
	}
	if away, ok := ev.AwayScore.Int(); ok {
		entity.AwayScore = &away
	}
	if kickoff := parseKickoff(ev); kickoff != nil {
		entity.KickoffAt = kickoff
		entity.ShortCode = canonical.FixtureCode(homeRef, awayRef, *kickoff)
	} else if ev.Timestamp != "" || ev.Date != "" {
		batch.Reject(ref, fmt.Sprintf("unparseable kickoff %q %q", ev.Timestamp, ev.Date))
		return
	}
	entity.Status = mapStatus(ev.Status.String(), ev.Postponed.String(), entity.HomeScore != nil && entity.AwayScore != nil)
	batch.Records = append(batch.Records, entity)
}

// parseKickoff prefers strTimestamp and falls back to dateEvent + strTime.
// Times without a zone are UTC.
func parseKickoff(ev Event) *time.Time {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	candidates := []string{ev.Timestamp.String()}
	if date := ev.Date.String(); date != "" {
		clock := strings.TrimSuffix(ev.Time.String(), "+00:00")
		if clock == "" {
			clock = "00:00:00"
		}
		candidates = append(candidates, date+"T"+clock, date+"T00:00:00")
	}
	for _, value := range candidates {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, value); err == nil {
				v := parsed.UTC()
				return &v
			}
		}
	}
	return nil
}

func mapStatus(status, postponed string, scored bool) string {
	value := strings.ToLower(strings.TrimSpace(status))
	switch {
	case strings.EqualFold(strings.TrimSpace(postponed), "yes"), strings.Contains(value, "postpon"):
		return canonical.StatusPostponed
	case strings.Contains(value, "cancel"), strings.Contains(value, "abandon"):
		return canonical.StatusCancelled
	case value == "ft", value == "aet", value == "pen", strings.Contains(value, "finished"):
		return canonical.StatusFinished
	case value == "1h", value == "2h", value == "ht", value == "et", value == "live", strings.Contains(value, "half"):
		return canonical.StatusLive
	case value == "ns", strings.Contains(value, "not started"):
		return canonical.StatusScheduled
	case value == "" && scored:
		return canonical.StatusFinished
	default:
		return canonical.StatusScheduled
	}
}

// splitAlternates reads the comma separated alternate-name field.
func splitAlternates(raw, name string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, name) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func refOf(item rawItem, field string) string {
	var probe map[string]flexString
	if err := sonic.Unmarshal(item, &probe); err != nil {
		var loose map[string]any
		if err := sonic.Unmarshal(item, &loose); err != nil {
			return ""
		}
		if value, ok := loose[field]; ok && value != nil {
			return strings.TrimSpace(fmt.Sprint(value))
		}
		return ""
	}
	return probe[field].String()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
