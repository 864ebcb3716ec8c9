package sportmonks

import (
	"errors"
	"testing"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

func TestNormalize_League(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"data":{"id":8,"name":"K League 1","short_code":"KOR K1","image_path":"https://cdn/k1.png",
		"country":{"data":{"id":1,"name":"Korea Republic"}},
		"currentseason":{"id":23614,"name":"2025","is_current":true}}}`)

	batch, err := Normalize(canonical.KindLeague, raw)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(batch.Records) != 1 || len(batch.Rejected) != 0 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	league := batch.Records[0]
	if league.SourceID(canonical.ProviderSportMonks) != "8" || league.Name != "K League 1" {
		t.Fatalf("unexpected league: %+v", league)
	}
	if league.Country != "Korea Republic" || league.Season != "23614" {
		t.Fatalf("unexpected country/season: %q %q", league.Country, league.Season)
	}
}

func TestNormalize_TeamsRejectsBadRecordsOnly(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"data":[
		{"id":2930,"name":"Jeonbuk Hyundai Motors","short_code":"jbh","country":{"name":"Korea Republic"}},
		{"id":7,"name":""},
		{"id":"oops","name":42}
	],"pagination":{"has_more":false}}`)

	batch, err := Normalize(canonical.KindTeam, raw)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("expected one team, got=%d", len(batch.Records))
	}
	if batch.Records[0].ShortCode != "JBH" {
		t.Fatalf("expected upper-cased short code, got=%q", batch.Records[0].ShortCode)
	}
	if len(batch.Rejected) != 2 {
		t.Fatalf("expected two rejections, got=%+v", batch.Rejected)
	}
	if batch.Rejected[0].Ref != "7" || batch.Rejected[1].Ref != "oops" {
		t.Fatalf("unexpected rejection refs: %+v", batch.Rejected)
	}
}

func TestNormalize_SquadEntry(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"data":[
		{"id":1,"player_id":501,"team_id":2930,"position_id":24,"jersey_number":1,
		 "player":{"data":{"id":501,"display_name":"Song Bum-Keun","firstname":"Bum-Keun","lastname":"Song","name":"Bum-Keun Song",
		  "date_of_birth":"1997-10-15","nationality":{"data":{"name":"Korea Republic"}}}}},
		{"id":2,"player_id":502,"team_id":2930,"jersey_number":150,
		 "player":{"id":502,"name":"Kim Jin-su","position":{"name":"Defender"}}},
		{"id":3,"player_id":503,"team_id":2930}
	]}`)

	batch, err := Normalize(canonical.KindPlayer, raw)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(batch.Records) != 2 || len(batch.Rejected) != 1 {
		t.Fatalf("unexpected batch: records=%d rejected=%+v", len(batch.Records), batch.Rejected)
	}

	keeper := batch.Records[0]
	if keeper.ParentRef != "2930" || keeper.Position != canonical.PositionGoalkeeper {
		t.Fatalf("unexpected keeper: %+v", keeper)
	}
	if keeper.ShirtNumber == nil || *keeper.ShirtNumber != 1 {
		t.Fatalf("unexpected shirt number: %v", keeper.ShirtNumber)
	}
	if keeper.Country != "Korea Republic" || keeper.BirthDate != "1997-10-15" {
		t.Fatalf("unexpected keeper context: %+v", keeper)
	}
	if len(keeper.AltNames) != 1 || keeper.AltNames[0] != "Bum-Keun Song" {
		t.Fatalf("unexpected alt names: %v", keeper.AltNames)
	}

	defender := batch.Records[1]
	if defender.Position != canonical.PositionDefender {
		t.Fatalf("expected position from include name, got=%q", defender.Position)
	}
	if defender.ShirtNumber != nil {
		t.Fatalf("expected out-of-range jersey to be dropped, got=%d", *defender.ShirtNumber)
	}
	if batch.Rejected[0].Ref != "503" {
		t.Fatalf("unexpected rejection: %+v", batch.Rejected[0])
	}
}

func TestNormalize_ScheduleFixtures(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"data":[{"id":77,"name":"Regular Season","rounds":[
		{"name":"1","fixtures":[
			{"id":9001,"league_id":8,"season_id":23614,"state_id":5,"starting_at":"2026-03-01 05:00:00",
			 "participants":[{"id":2930,"name":"Jeonbuk","meta":{"location":"home"}},{"id":7,"name":"Ulsan","meta":{"location":"away"}}],
			 "scores":[
				{"participant_id":2930,"description":"1ST_HALF","score":{"goals":1,"participant":"home"}},
				{"participant_id":2930,"description":"CURRENT","score":{"goals":2,"participant":"home"}},
				{"participant_id":7,"description":"CURRENT","score":{"goals":1,"participant":"away"}}
			 ]},
			{"id":9002,"starting_at":"2026-03-08 05:00:00","participants":[{"id":7,"meta":{"location":"home"}}]}
		]},
		{"name":"2","fixtures":[
			{"id":9001,"state_id":5,"starting_at":"2026-03-01 05:00:00",
			 "participants":[{"id":2930,"meta":{"location":"home"}},{"id":7,"meta":{"location":"away"}}]}
		]}
	]}]}`)

	batch, err := Normalize(canonical.KindFixture, raw)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(batch.Records) != 1 || len(batch.Rejected) != 1 {
		t.Fatalf("unexpected batch: records=%d rejected=%+v", len(batch.Records), batch.Rejected)
	}

	fixture := batch.Records[0]
	if fixture.Status != canonical.StatusFinished {
		t.Fatalf("unexpected status: %q", fixture.Status)
	}
	if fixture.HomeScore == nil || *fixture.HomeScore != 2 || fixture.AwayScore == nil || *fixture.AwayScore != 1 {
		t.Fatalf("unexpected scores: %v %v", fixture.HomeScore, fixture.AwayScore)
	}
	want := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	if fixture.KickoffAt == nil || !fixture.KickoffAt.Equal(want) {
		t.Fatalf("unexpected kickoff: %v", fixture.KickoffAt)
	}
	if fixture.ShortCode != "2930-7@2026-03-01" || fixture.Name != "Jeonbuk vs Ulsan" {
		t.Fatalf("unexpected code/name: %q %q", fixture.ShortCode, fixture.Name)
	}
}

func TestNormalize_MalformedEnvelope(t *testing.T) {
	t.Parallel()

	_, err := Normalize(canonical.KindTeam, []byte(`<html>rate limited</html>`))
	if !errors.Is(err, usecase.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got=%v", err)
	}
}

func TestNormalizeEvents(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"data":{"id":9001,"events":[
		{"id":1,"participant_id":2930,"type_id":14,"player_id":501,"related_player_id":502,"minute":45,"extra_minute":2,
		 "addition":"1st Goal","info":"Header","type":{"data":{"developer_name":"GOAL"}}},
		{"id":2,"participant_id":7,"type_id":19,"player_id":null,"minute":60}
	]}}`)

	items, err := NormalizeEvents("9001", raw)
	if err != nil {
		t.Fatalf("NormalizeEvents error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two events, got=%d", len(items))
	}
	goal := items[0]
	if goal.Type != "GOAL" || goal.PlayerRef != "501" || goal.AssistRef != "502" || goal.Detail != "1st Goal" {
		t.Fatalf("unexpected goal: %+v", goal)
	}
	if goal.ExtraMinutes == nil || *goal.ExtraMinutes != 2 {
		t.Fatalf("unexpected extra minutes: %v", goal.ExtraMinutes)
	}
	if items[1].Type != "type-19" || items[1].PlayerRef != "" {
		t.Fatalf("unexpected card: %+v", items[1])
	}
}
