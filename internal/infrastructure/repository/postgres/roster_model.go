package postgres

import (
	"database/sql"
	"time"
)

type teamRosterTableModel struct {
	TeamID       string        `db:"team_id"`
	PlayerID     string        `db:"player_id"`
	PlayerName   string        `db:"player_name"`
	JerseyNumber sql.NullInt64 `db:"jersey_number"`
	Position     string        `db:"position"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

type teamRosterInsertModel struct {
	TeamID       string    `db:"team_id"`
	PlayerID     string    `db:"player_id"`
	PlayerName   string    `db:"player_name"`
	JerseyNumber *int      `db:"jersey_number"`
	Position     string    `db:"position"`
	UpdatedAt    time.Time `db:"updated_at"`
}
