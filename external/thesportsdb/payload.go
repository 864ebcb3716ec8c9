package thesportsdb

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// envelope covers every list key the v1 endpoints answer with. A missing key
// and an explicit null both mean "no rows".
type envelope struct {
	Leagues []rawItem `json:"leagues"`
	Teams   []rawItem `json:"teams"`
	Player  []rawItem `json:"player"`
	Players []rawItem `json:"players"`
	Events  []rawItem `json:"events"`
}

type rawItem []byte

func (r *rawItem) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// flexString reads a JSON string, number or null; the API is not consistent
// about which one it sends for ids and scores.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := sonic.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(strings.TrimSpace(string(trimmed)))
	return nil
}

func (f flexString) String() string { return string(f) }

func (f flexString) Int() (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return 0, false
	}
	return value, true
}

type League struct {
	ID             flexString `json:"idLeague"`
	Name           flexString `json:"strLeague"`
	Alternate      flexString `json:"strLeagueAlternate"`
	Sport          flexString `json:"strSport"`
	Country        flexString `json:"strCountry"`
	CurrentSeason  flexString `json:"strCurrentSeason"`
	Badge          flexString `json:"strBadge"`
	Logo           flexString `json:"strLogo"`
	ShortLeagueTag flexString `json:"strLeagueShort"`
}

type Team struct {
	ID        flexString `json:"idTeam"`
	Name      flexString `json:"strTeam"`
	Short     flexString `json:"strTeamShort"`
	Alternate flexString `json:"strTeamAlternate"`
	Country   flexString `json:"strCountry"`
	Badge     flexString `json:"strBadge"`
	LeagueID  flexString `json:"idLeague"`
}

type Player struct {
	ID          flexString `json:"idPlayer"`
	TeamID      flexString `json:"idTeam"`
	Name        flexString `json:"strPlayer"`
	Alternate   flexString `json:"strPlayerAlternate"`
	Nationality flexString `json:"strNationality"`
	Position    flexString `json:"strPosition"`
	Number      flexString `json:"strNumber"`
	Born        flexString `json:"dateBorn"`
	Thumb       flexString `json:"strThumb"`
	Status      flexString `json:"strStatus"`
}

type Event struct {
	ID        flexString `json:"idEvent"`
	Name      flexString `json:"strEvent"`
	LeagueID  flexString `json:"idLeague"`
	Season    flexString `json:"strSeason"`
	HomeID    flexString `json:"idHomeTeam"`
	AwayID    flexString `json:"idAwayTeam"`
	HomeName  flexString `json:"strHomeTeam"`
	AwayName  flexString `json:"strAwayTeam"`
	HomeScore flexString `json:"intHomeScore"`
	AwayScore flexString `json:"intAwayScore"`
	Timestamp flexString `json:"strTimestamp"`
	Date      flexString `json:"dateEvent"`
	Time      flexString `json:"strTime"`
	Status    flexString `json:"strStatus"`
	Postponed flexString `json:"strPostponed"`
	Venue     flexString `json:"strVenue"`
}
