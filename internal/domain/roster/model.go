package roster

import (
	"fmt"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

// Entry is one player's place on one team's roster.
type Entry struct {
	TeamID       string
	PlayerID     string
	PlayerName   string
	JerseyNumber *int
	Position     canonical.Position
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.TeamID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(e.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}
	if e.JerseyNumber != nil && (*e.JerseyNumber < 0 || *e.JerseyNumber > 99) {
		return fmt.Errorf("jersey number must be within 0..99")
	}
	return nil
}

// Change is one jersey reassignment. After == nil clears the number.
type Change struct {
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Before   *int   `json:"before"`
	After    *int   `json:"after"`
	Reason   string `json:"reason"`
}

func (c Change) String() string {
	return fmt.Sprintf("team=%s player=%s %s -> %s (%s)", c.TeamID, c.PlayerID, formatNumber(c.Before), formatNumber(c.After), c.Reason)
}

func formatNumber(v *int) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("#%d", *v)
}
