package postgres

import (
	"database/sql"
	"time"
)

type fixtureEventTableModel struct {
	ID             int64          `db:"id"`
	FixtureID      string         `db:"fixture_id"`
	TeamID         string         `db:"team_id"`
	PlayerID       string         `db:"player_id"`
	AssistPlayerID sql.NullString `db:"assist_player_id"`
	Minute         int            `db:"minute"`
	ExtraMinutes   sql.NullInt64  `db:"extra_minutes"`
	Type           string         `db:"type"`
	Detail         sql.NullString `db:"detail"`
	Comments       string         `db:"comments"`
	CreatedAt      time.Time      `db:"created_at"`
}

type fixtureEventInsertModel struct {
	FixtureID      string  `db:"fixture_id"`
	TeamID         string  `db:"team_id"`
	PlayerID       string  `db:"player_id"`
	AssistPlayerID *string `db:"assist_player_id"`
	Minute         int     `db:"minute"`
	ExtraMinutes   *int    `db:"extra_minutes"`
	Type           string  `db:"type"`
	Detail         *string `db:"detail"`
	Comments       string  `db:"comments"`
}
