package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
	qb "github.com/systic2/allleaguesfans-sub001/internal/platform/querybuilder"
)

type RosterRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db, now: time.Now}
}

func (r *RosterRepository) Upsert(ctx context.Context, entries []roster.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	now := r.now().UTC()
	type rosterKey struct{ team, player string }
	index := make(map[rosterKey]int, len(entries))
	models := make([]teamRosterInsertModel, 0, len(entries))
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
		model := teamRosterInsertModel{
			TeamID:       entry.TeamID,
			PlayerID:     entry.PlayerID,
			PlayerName:   entry.PlayerName,
			JerseyNumber: entry.JerseyNumber,
			Position:     string(entry.Position),
			UpdatedAt:    now,
		}
		key := rosterKey{team: entry.TeamID, player: entry.PlayerID}
		if i, ok := index[key]; ok {
			models[i] = model
			continue
		}
		index[key] = len(models)
		models = append(models, model)
	}

	query, args, err := qb.InsertModels("team_rosters", models, qb.OnConflictUpdate(
		[]string{"team_id", "player_id"},
		"player_name", "jersey_number", "position", "updated_at",
	))
	if err != nil {
		return fmt.Errorf("build upsert team rosters query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team rosters: %w", err)
	}
	return nil
}

func (r *RosterRepository) ListByTeam(ctx context.Context, teamID string) ([]roster.Entry, error) {
	query, args, err := qb.Select("*").From("team_rosters").
		Where(qb.Eq("team_id", teamID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team roster query: %w", err)
	}

	var rows []teamRosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team roster: %w", err)
	}
	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Entry{
			TeamID:       row.TeamID,
			PlayerID:     row.PlayerID,
			PlayerName:   row.PlayerName,
			JerseyNumber: nullInt64ToIntPtr(row.JerseyNumber),
			Position:     canonical.Position(row.Position),
		})
	}
	return out, nil
}

func (r *RosterRepository) ListTeamIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("team_id").From("team_rosters").
		GroupBy("team_id").
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster team ids query: %w", err)
	}
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select roster team ids: %w", err)
	}
	return ids, nil
}

// ApplyChanges writes every change in one transaction. A change that does not
// match exactly one roster row rolls back the team.
func (r *RosterRepository) ApplyChanges(ctx context.Context, teamID string, changes []roster.Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply jersey changes: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := r.now().UTC()
	for _, change := range changes {
		if change.TeamID != teamID {
			return fmt.Errorf("jersey change for team %s applied to team %s", change.TeamID, teamID)
		}
		var number any
		if change.After != nil {
			number = *change.After
		}
		query, args, err := qb.Update("team_rosters").
			Set("jersey_number", number).
			Set("updated_at", now).
			Where(qb.Eq("team_id", teamID), qb.Eq("player_id", change.PlayerID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update jersey number query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update jersey number team_id=%s player_id=%s: %w", teamID, change.PlayerID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected update jersey number: %w", err)
		}
		if affected != 1 {
			return fmt.Errorf("update jersey number team_id=%s player_id=%s: %d rows affected", teamID, change.PlayerID, affected)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply jersey changes tx: %w", err)
	}
	return nil
}
