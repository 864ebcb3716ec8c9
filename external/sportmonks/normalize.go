package sportmonks

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

const provider = canonical.ProviderSportMonks

// Normalize turns one sportmonks response body into canonical records. Items
// that cannot be read are rejected one by one; only an unreadable envelope is
// an error.
func Normalize(kind canonical.Kind, raw []byte) (canonical.Batch, error) {
	batch := canonical.Batch{Provider: provider, Kind: kind}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return batch, fmt.Errorf("%w: sportmonks %s payload: %v", usecase.ErrMalformedPayload, kind, err)
	}

	switch kind {
	case canonical.KindLeague:
		for _, item := range env.Data {
			normalizeLeague(&batch, item)
		}
	case canonical.KindTeam:
		for _, item := range env.Data {
			normalizeTeam(&batch, item)
		}
	case canonical.KindPlayer:
		for _, item := range env.Data {
			normalizeSquadEntry(&batch, item)
		}
	case canonical.KindFixture:
		seen := make(map[int64]struct{})
		for _, item := range env.Data {
			for _, fixture := range flattenSchedule(&batch, item) {
				if _, dup := seen[fixture.ID]; dup {
					continue
				}
				seen[fixture.ID] = struct{}{}
				normalizeFixture(&batch, fixture)
			}
		}
	default:
		return batch, fmt.Errorf("%w: unknown kind %q", usecase.ErrInvalidInput, kind)
	}
	return batch, nil
}

// NormalizeEvents reads the events include of a fixture response.
func NormalizeEvents(fixtureRef string, raw []byte) ([]event.Incoming, error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: sportmonks fixture events payload: %v", usecase.ErrMalformedPayload, err)
	}

	out := make([]event.Incoming, 0)
	for _, item := range env.Data {
		var fixture ScheduleFixture
		if err := sonic.Unmarshal(item, &fixture); err != nil {
			return nil, fmt.Errorf("%w: sportmonks fixture %s: %v", usecase.ErrMalformedPayload, fixtureRef, err)
		}
		for _, source := range fixture.Events {
			out = append(out, mapFixtureEvent(fixtureRef, source))
		}
	}
	return out, nil
}

func decodeEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return envelope{}, err
	}
	return env, nil
}

func normalizeLeague(batch *canonical.Batch, item sonicRaw) {
	var league League
	if err := sonic.Unmarshal(item, &league); err != nil {
		batch.Reject(refOf(item), fmt.Sprintf("decode league: %v", err))
		return
	}
	ref, name := formatID(league.ID), strings.TrimSpace(league.Name)
	if ref == "" || name == "" {
		batch.Reject(ref, "league id and name are required")
		return
	}

	entity := canonical.Entity{
		Kind:      canonical.KindLeague,
		Name:      name,
		ShortCode: strings.TrimSpace(derefString(league.ShortCode)),
		ImageURL:  strings.TrimSpace(league.ImagePath),
		SourceIDs: canonical.SourceIDs{provider: ref},
	}
	if league.Country.Set {
		entity.Country = strings.TrimSpace(league.Country.Data.Name)
	}
	if league.CurrentSeason.Set {
		entity.Season = formatID(league.CurrentSeason.Data.ID)
	} else if league.Seasons.Set {
		for _, season := range league.Seasons.Data {
			if season.IsCurrent {
				entity.Season = formatID(season.ID)
				break
			}
		}
	}
	batch.Records = append(batch.Records, entity)
}

func normalizeTeam(batch *canonical.Batch, item sonicRaw) {
	var team Team
	if err := sonic.Unmarshal(item, &team); err != nil {
		batch.Reject(refOf(item), fmt.Sprintf("decode team: %v", err))
		return
	}
	ref, name := formatID(team.ID), strings.TrimSpace(team.Name)
	if ref == "" || name == "" {
		batch.Reject(ref, "team id and name are required")
		return
	}

	entity := canonical.Entity{
		Kind:      canonical.KindTeam,
		Name:      name,
		ShortCode: strings.ToUpper(strings.TrimSpace(derefString(team.ShortCode))),
		ImageURL:  strings.TrimSpace(team.ImagePath),
		SourceIDs: canonical.SourceIDs{provider: ref},
	}
	if team.Country.Set {
		entity.Country = strings.TrimSpace(team.Country.Data.Name)
	}
	batch.Records = append(batch.Records, entity)
}

func normalizeSquadEntry(batch *canonical.Batch, item sonicRaw) {
	var entry SquadEntry
	if err := sonic.Unmarshal(item, &entry); err != nil {
		batch.Reject(refOf(item), fmt.Sprintf("decode squad entry: %v", err))
		return
	}
	playerID := entry.PlayerID
	if playerID <= 0 && entry.Player.Set {
		playerID = entry.Player.Data.ID
	}
	ref := formatID(playerID)
	if ref == "" {
		batch.Reject("", "player id is required")
		return
	}
	if !entry.Player.Set {
		batch.Reject(ref, "player include is missing")
		return
	}

	player := entry.Player.Data
	name := firstNonEmpty(player.DisplayName, player.CommonName, player.Name)
	if name == "" {
		batch.Reject(ref, "player name is required")
		return
	}

	entity := canonical.Entity{
		Kind:      canonical.KindPlayer,
		Name:      name,
		ParentRef: formatID(entry.TeamID),
		ImageURL:  strings.TrimSpace(player.ImagePath),
		BirthDate: strings.TrimSpace(player.DateOfBirth),
		Position:  positionOf(entry.PositionID, player),
		SourceIDs: canonical.SourceIDs{provider: ref},
	}
	for _, alt := range []string{player.Name, strings.TrimSpace(player.Firstname + " " + player.Lastname), player.CommonName} {
		alt = strings.TrimSpace(alt)
		if alt != "" && !strings.EqualFold(alt, name) && !containsFold(entity.AltNames, alt) {
			entity.AltNames = append(entity.AltNames, alt)
		}
	}
	if player.Nationality.Set {
		entity.Country = strings.TrimSpace(player.Nationality.Data.Name)
	}
	if entry.JerseyNumber != nil && *entry.JerseyNumber >= 0 && *entry.JerseyNumber <= 99 {
		number := *entry.JerseyNumber
		entity.ShirtNumber = &number
	}
	batch.Records = append(batch.Records, entity)
}

// flattenSchedule accepts either a schedule stage (rounds of fixtures) or a
// bare fixture object.
func flattenSchedule(batch *canonical.Batch, item sonicRaw) []ScheduleFixture {
	var stage ScheduleStage
	if err := sonic.Unmarshal(item, &stage); err != nil {
		batch.Reject(refOf(item), fmt.Sprintf("decode schedule: %v", err))
		return nil
	}
	if len(stage.Rounds) == 0 && len(stage.Fixtures) == 0 {
		var fixture ScheduleFixture
		if err := sonic.Unmarshal(item, &fixture); err != nil {
			batch.Reject(refOf(item), fmt.Sprintf("decode fixture: %v", err))
			return nil
		}
		return []ScheduleFixture{fixture}
	}

	out := append([]ScheduleFixture(nil), stage.Fixtures...)
	for _, round := range stage.Rounds {
		out = append(out, round.Fixtures...)
	}
	return out
}

func normalizeFixture(batch *canonical.Batch, fixture ScheduleFixture) {
	ref := formatID(fixture.ID)
	if ref == "" {
		batch.Reject("", "fixture id is required")
		return
	}

	var home, away *FixtureParticipant
	for i := range fixture.Participants {
		switch strings.ToLower(strings.TrimSpace(fixture.Participants[i].Meta.Location)) {
		case "home":
			home = &fixture.Participants[i]
		case "away":
			away = &fixture.Participants[i]
		}
	}
	if home == nil || away == nil || home.ID <= 0 || away.ID <= 0 {
		batch.Reject(ref, "fixture needs a home and an away participant")
		return
	}

	homeRef, awayRef := formatID(home.ID), formatID(away.ID)
	entity := canonical.Entity{
		Kind:        canonical.KindFixture,
		Name:        firstNonEmpty(fixture.Name, strings.TrimSpace(home.Name)+" vs "+strings.TrimSpace(away.Name)),
		ParentRef:   formatID(fixture.LeagueID),
		Season:      formatID(fixture.SeasonID),
		HomeTeamRef: homeRef,
		AwayTeamRef: awayRef,
		HomeName:    strings.TrimSpace(home.Name),
		AwayName:    strings.TrimSpace(away.Name),
		Status:      mapFixtureStatus(fixture.StateID, fixture.ResultInfo),
		SourceIDs:   canonical.SourceIDs{provider: ref},
	}
	if strings.TrimSpace(fixture.StartingAt) != "" {
		kickoff := parseProviderDateTime(fixture.StartingAt)
		if kickoff == nil {
			batch.Reject(ref, fmt.Sprintf("unparseable kickoff %q", fixture.StartingAt))
			return
		}
		entity.KickoffAt = kickoff
		entity.ShortCode = canonical.FixtureCode(homeRef, awayRef, *kickoff)
	}
	if fixture.Venue.Set {
		entity.Venue = strings.TrimSpace(fixture.Venue.Data.Name)
	}
	entity.HomeScore, entity.AwayScore = resolveFixtureScores(fixture.Scores, home.ID, away.ID)
	batch.Records = append(batch.Records, entity)
}

func mapFixtureEvent(fixtureRef string, source FixtureEvent) event.Incoming {
	item := event.Incoming{
		FixtureRef: fixtureRef,
		TeamRef:    formatID(source.ParticipantID),
		Type:       source.typeName(),
		Detail:     strings.TrimSpace(source.Addition),
		Comments:   strings.TrimSpace(source.Info),
	}
	if source.PlayerID != nil {
		item.PlayerRef = formatID(*source.PlayerID)
	}
	if source.RelatedPlayerID != nil {
		item.AssistRef = formatID(*source.RelatedPlayerID)
	}
	if source.Minute != nil && *source.Minute > 0 {
		item.Minute = *source.Minute
	}
	if source.ExtraMinute != nil && *source.ExtraMinute > 0 {
		extra := *source.ExtraMinute
		item.ExtraMinutes = &extra
	}
	return item
}

// resolveFixtureScores reads the CURRENT score entries; fixtures that have not
// kicked off carry none.
func resolveFixtureScores(scores []FixtureScore, homeID, awayID int64) (*int, *int) {
	var home, away *int
	for _, score := range scores {
		if !strings.EqualFold(strings.TrimSpace(score.Description), "current") || score.Score.Goals == nil {
			continue
		}
		goals := *score.Score.Goals
		switch {
		case score.ParticipantID == homeID || strings.EqualFold(score.Score.Participant, "home"):
			home = &goals
		case score.ParticipantID == awayID || strings.EqualFold(score.Score.Participant, "away"):
			away = &goals
		}
	}
	return home, away
}

func mapFixtureStatus(stateID int64, resultInfo string) string {
	switch stateID {
	case 2, 3, 4, 6, 7, 8, 9:
		return canonical.StatusLive
	case 5, 13, 14:
		return canonical.StatusFinished
	case 10:
		return canonical.StatusPostponed
	case 11, 12:
		return canonical.StatusCancelled
	case 1:
		return canonical.StatusScheduled
	}

	info := strings.ToLower(strings.TrimSpace(resultInfo))
	switch {
	case strings.Contains(info, "postpon"):
		return canonical.StatusPostponed
	case strings.Contains(info, "cancel"), strings.Contains(info, "abandon"):
		return canonical.StatusCancelled
	case strings.Contains(info, "won"), strings.Contains(info, "draw"), strings.Contains(info, "finish"):
		return canonical.StatusFinished
	default:
		return canonical.StatusScheduled
	}
}

func positionOf(positionID int64, player Player) canonical.Position {
	for _, id := range []int64{positionID, player.PositionID} {
		switch id {
		case 24:
			return canonical.PositionGoalkeeper
		case 25:
			return canonical.PositionDefender
		case 26:
			return canonical.PositionMidfielder
		case 27:
			return canonical.PositionForward
		}
	}
	if player.Position.Set {
		return canonical.NormalizePosition(firstNonEmpty(player.Position.Data.Name, player.Position.Data.DeveloperName))
	}
	return ""
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

// refOf pulls the id out of an item that failed to decode, for the rejection.
func refOf(item sonicRaw) string {
	var probe struct {
		ID any `json:"id"`
	}
	if err := sonic.Unmarshal(item, &probe); err != nil || probe.ID == nil {
		return ""
	}
	switch v := probe.ID.(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}
