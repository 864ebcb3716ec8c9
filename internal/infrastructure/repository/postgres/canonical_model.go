package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type canonicalEntityTableModel struct {
	ID          string         `db:"id"`
	Kind        string         `db:"kind"`
	Name        string         `db:"name"`
	AltNames    pq.StringArray `db:"alt_names"`
	ShortCode   string         `db:"short_code"`
	Country     string         `db:"country"`
	ImageURL    string         `db:"image_url"`
	Season      string         `db:"season"`
	ParentID    sql.NullString `db:"parent_id"`
	Position    string         `db:"position"`
	ShirtNumber sql.NullInt64  `db:"shirt_number"`
	BirthDate   string         `db:"birth_date"`
	HomeTeamID  sql.NullString `db:"home_team_id"`
	AwayTeamID  sql.NullString `db:"away_team_id"`
	KickoffAt   sql.NullTime   `db:"kickoff_at"`
	HomeScore   sql.NullInt64  `db:"home_score"`
	AwayScore   sql.NullInt64  `db:"away_score"`
	Status      string         `db:"status"`
	Venue       string         `db:"venue"`
	Attributes  string         `db:"attributes"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type canonicalEntityInsertModel struct {
	ID          string     `db:"id"`
	Kind        string     `db:"kind"`
	Name        string     `db:"name"`
	AltNames    any        `db:"alt_names"`
	ShortCode   string     `db:"short_code"`
	Country     string     `db:"country"`
	ImageURL    string     `db:"image_url"`
	Season      string     `db:"season"`
	ParentID    *string    `db:"parent_id"`
	Position    string     `db:"position"`
	ShirtNumber *int       `db:"shirt_number"`
	BirthDate   string     `db:"birth_date"`
	HomeTeamID  *string    `db:"home_team_id"`
	AwayTeamID  *string    `db:"away_team_id"`
	KickoffAt   *time.Time `db:"kickoff_at"`
	HomeScore   *int       `db:"home_score"`
	AwayScore   *int       `db:"away_score"`
	Status      string     `db:"status"`
	Venue       string     `db:"venue"`
	Attributes  string     `db:"attributes"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// canonicalAttributes holds the descriptive fields that are never filtered on.
type canonicalAttributes struct {
	ParentRef   string `json:"parent_ref,omitempty"`
	HomeTeamRef string `json:"home_team_ref,omitempty"`
	AwayTeamRef string `json:"away_team_ref,omitempty"`
	HomeName    string `json:"home_name,omitempty"`
	AwayName    string `json:"away_name,omitempty"`
}

type canonicalSourceTableModel struct {
	Kind     string `db:"kind"`
	Provider string `db:"provider"`
	Ref      string `db:"ref"`
	EntityID string `db:"entity_id"`
}

type canonicalSourceInsertModel struct {
	Kind     string `db:"kind"`
	Provider string `db:"provider"`
	Ref      string `db:"ref"`
	EntityID string `db:"entity_id"`
}
