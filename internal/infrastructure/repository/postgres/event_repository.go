package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
	qb "github.com/systic2/allleaguesfans-sub001/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Insert(ctx context.Context, rows []event.Row) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]fixtureEventInsertModel, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
		models = append(models, fixtureEventInsertModel{
			FixtureID:      row.FixtureID,
			TeamID:         row.TeamID,
			PlayerID:       row.PlayerID,
			AssistPlayerID: row.AssistPlayerID,
			Minute:         row.Minute,
			ExtraMinutes:   row.ExtraMinutes,
			Type:           row.Type,
			Detail:         row.Detail,
			Comments:       row.Comments,
		})
	}
	query, args, err := qb.InsertModels("fixture_events", models, "")
	if err != nil {
		return fmt.Errorf("build insert fixture events query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fixture events: %w", err)
	}
	return nil
}

func (r *EventRepository) ListByFixtures(ctx context.Context, fixtureIDs []string) ([]event.Row, error) {
	if len(fixtureIDs) == 0 {
		return []event.Row{}, nil
	}
	query, args, err := qb.Select("*").From("fixture_events").
		Where(qb.In("fixture_id", anySlice(fixtureIDs))).
		OrderBy("fixture_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixture events query: %w", err)
	}
	return r.selectRows(ctx, query, args)
}

func (r *EventRepository) ListAll(ctx context.Context) ([]event.Row, error) {
	query, args, err := qb.Select("*").From("fixture_events").OrderBy("fixture_id", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select all fixture events query: %w", err)
	}
	return r.selectRows(ctx, query, args)
}

func (r *EventRepository) Delete(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := qb.DeleteFrom("fixture_events").Where(qb.In("id", anySlice(ids))).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete fixture events query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete fixture events: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected delete fixture events: %w", err)
	}
	return int(affected), nil
}

func (r *EventRepository) selectRows(ctx context.Context, query string, args []any) ([]event.Row, error) {
	var rows []fixtureEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixture events: %w", err)
	}
	out := make([]event.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, event.Row{
			ID:             row.ID,
			FixtureID:      row.FixtureID,
			TeamID:         row.TeamID,
			PlayerID:       row.PlayerID,
			AssistPlayerID: nullStringToPtr(row.AssistPlayerID),
			Minute:         row.Minute,
			ExtraMinutes:   nullInt64ToIntPtr(row.ExtraMinutes),
			Type:           row.Type,
			Detail:         nullStringToPtr(row.Detail),
			Comments:       row.Comments,
		})
	}
	return out, nil
}
