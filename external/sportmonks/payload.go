package sportmonks

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type Pagination struct {
	Count       int  `json:"count"`
	PerPage     int  `json:"per_page"`
	CurrentPage int  `json:"current_page"`
	HasMore     bool `json:"has_more"`
}

type envelope struct {
	Data       oneOrMany[sonicRaw] `json:"data"`
	Pagination *Pagination         `json:"pagination"`
}

type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	ISO2 string `json:"iso2"`
	ISO3 string `json:"iso3"`
}

type Season struct {
	ID        int64  `json:"id"`
	LeagueID  int64  `json:"league_id"`
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
}

type League struct {
	ID            int64              `json:"id"`
	CountryID     int64              `json:"country_id"`
	Name          string             `json:"name"`
	ShortCode     *string            `json:"short_code"`
	ImagePath     string             `json:"image_path"`
	Type          string             `json:"type"`
	Country       relation[Country]  `json:"country"`
	CurrentSeason relation[Season]   `json:"currentseason"`
	Seasons       relation[[]Season] `json:"seasons"`
}

type Team struct {
	ID        int64             `json:"id"`
	CountryID int64             `json:"country_id"`
	Name      string            `json:"name"`
	ShortCode *string           `json:"short_code"`
	ImagePath string            `json:"image_path"`
	Founded   *int              `json:"founded"`
	Country   relation[Country] `json:"country"`
}

type Position struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	DeveloperName string `json:"developer_name"`
}

type Player struct {
	ID          int64              `json:"id"`
	CommonName  string             `json:"common_name"`
	Firstname   string             `json:"firstname"`
	Lastname    string             `json:"lastname"`
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	ImagePath   string             `json:"image_path"`
	PositionID  int64              `json:"position_id"`
	DateOfBirth string             `json:"date_of_birth"`
	Nationality relation[Country]  `json:"nationality"`
	Position    relation[Position] `json:"position"`
}

type SquadEntry struct {
	ID           int64            `json:"id"`
	PlayerID     int64            `json:"player_id"`
	TeamID       int64            `json:"team_id"`
	PositionID   int64            `json:"position_id"`
	JerseyNumber *int             `json:"jersey_number"`
	Player       relation[Player] `json:"player"`
}

type ScheduleStage struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Rounds   []ScheduleRound   `json:"rounds"`
	Fixtures []ScheduleFixture `json:"fixtures"`
}

type ScheduleRound struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Fixtures []ScheduleFixture `json:"fixtures"`
}

type ScheduleFixture struct {
	ID           int64                `json:"id"`
	LeagueID     int64                `json:"league_id"`
	SeasonID     int64                `json:"season_id"`
	StateID      int64                `json:"state_id"`
	Name         string               `json:"name"`
	StartingAt   string               `json:"starting_at"`
	ResultInfo   string               `json:"result_info"`
	Participants []FixtureParticipant `json:"participants"`
	Scores       []FixtureScore       `json:"scores"`
	Venue        relation[Venue]      `json:"venue"`
	Events       []FixtureEvent       `json:"events"`
}

type FixtureParticipant struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortCode string `json:"short_code"`
	Meta      struct {
		Location string `json:"location"`
	} `json:"meta"`
}

type FixtureScore struct {
	ParticipantID int64  `json:"participant_id"`
	Description   string `json:"description"`
	Score         struct {
		Goals       *int   `json:"goals"`
		Participant string `json:"participant"`
	} `json:"score"`
}

type Venue struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type EventType struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	DeveloperName string `json:"developer_name"`
}

type FixtureEvent struct {
	ID              int64               `json:"id"`
	FixtureID       int64               `json:"fixture_id"`
	ParticipantID   int64               `json:"participant_id"`
	TypeID          int64               `json:"type_id"`
	PlayerID        *int64              `json:"player_id"`
	RelatedPlayerID *int64              `json:"related_player_id"`
	Info            string              `json:"info"`
	Addition        string              `json:"addition"`
	Minute          *int                `json:"minute"`
	ExtraMinute     *int                `json:"extra_minute"`
	Type            relation[EventType] `json:"type"`
}

func (e FixtureEvent) typeName() string {
	if e.Type.Set {
		if name := strings.TrimSpace(e.Type.Data.DeveloperName); name != "" {
			return name
		}
		if name := strings.TrimSpace(e.Type.Data.Name); name != "" {
			return name
		}
	}
	if e.TypeID > 0 {
		return "type-" + strconv.FormatInt(e.TypeID, 10)
	}
	return ""
}

// sonicRaw keeps one element of a data array undecoded so a bad record can be
// rejected without failing its siblings.
type sonicRaw []byte

func (r *sonicRaw) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// oneOrMany decodes either a single object or an array of them.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = nil
		return nil
	}
	if trimmed[0] == '[' {
		var many []T
		if err := sonic.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := sonic.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*o = []T{one}
	return nil
}

// relation accepts an include either wrapped in {"data": ...} or inline.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}
