package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	qb "github.com/systic2/allleaguesfans-sub001/internal/platform/querybuilder"
)

var canonicalEntityUpdateColumns = []string{
	"name", "alt_names", "short_code", "country", "image_url", "season", "parent_id",
	"position", "shirt_number", "birth_date", "home_team_id", "away_team_id", "kickoff_at",
	"home_score", "away_score", "status", "venue", "attributes", "updated_at",
}

type CanonicalRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewCanonicalRepository(db *sqlx.DB) *CanonicalRepository {
	return &CanonicalRepository{db: db, now: time.Now}
}

// Upsert writes the entities and replaces their source id bindings in one
// transaction. A provider id held by another entity fails the whole call.
func (r *CanonicalRepository) Upsert(ctx context.Context, items []canonical.Entity) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert canonical entities: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := r.now().UTC()
	models := make([]canonicalEntityInsertModel, 0, len(items))
	for _, item := range dedupeEntities(items) {
		model, err := canonicalInsertModel(item, now)
		if err != nil {
			return err
		}
		models = append(models, model)
	}
	query, args, err := qb.InsertModels("canonical_entities", models, qb.OnConflictUpdate([]string{"id"}, canonicalEntityUpdateColumns...))
	if err != nil {
		return fmt.Errorf("build upsert canonical entities query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert canonical entities: %w", err)
	}

	ids := make([]any, 0, len(models))
	sources := make([]canonicalSourceInsertModel, 0, len(models))
	for _, item := range dedupeEntities(items) {
		ids = append(ids, item.ID)
		for provider, ref := range item.SourceIDs {
			if ref = strings.TrimSpace(ref); ref == "" {
				continue
			}
			sources = append(sources, canonicalSourceInsertModel{
				Kind:     string(item.Kind),
				Provider: string(provider),
				Ref:      ref,
				EntityID: item.ID,
			})
		}
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("canonical_source_ids").Where(qb.In("entity_id", ids)).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear canonical source ids query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("clear canonical source ids: %w", err)
	}

	if len(sources) > 0 {
		sort.Slice(sources, func(i, j int) bool {
			return sources[i].EntityID+sources[i].Provider < sources[j].EntityID+sources[j].Provider
		})
		sourceQuery, sourceArgs, err := qb.InsertModels("canonical_source_ids", sources, "")
		if err != nil {
			return fmt.Errorf("build insert canonical source ids query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sourceQuery, sourceArgs...); err != nil {
			return fmt.Errorf("insert canonical source ids: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert canonical entities tx: %w", err)
	}
	return nil
}

func (r *CanonicalRepository) Find(ctx context.Context, filter canonical.Filter) ([]canonical.Entity, error) {
	conditions := make([]qb.Condition, 0, 3)
	if filter.Kind != "" {
		conditions = append(conditions, qb.Eq("kind", string(filter.Kind)))
	}
	if strings.TrimSpace(filter.ParentID) != "" {
		conditions = append(conditions, qb.Eq("parent_id", strings.TrimSpace(filter.ParentID)))
	}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, qb.In("id", anySlice(filter.IDs)))
	}

	query, args, err := qb.Select("*").From("canonical_entities").
		Where(conditions...).
		OrderBy("kind", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select canonical entities query: %w", err)
	}

	var rows []canonicalEntityTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select canonical entities: %w", err)
	}
	return r.withSources(ctx, rows)
}

func (r *CanonicalRepository) FindBySource(ctx context.Context, kind canonical.Kind, provider canonical.Provider, ref string) (canonical.Entity, bool, error) {
	query, args, err := qb.Select("e.*").
		From("canonical_entities e JOIN canonical_source_ids s ON s.entity_id = e.id").
		Where(
			qb.Eq("s.kind", string(kind)),
			qb.Eq("s.provider", string(provider)),
			qb.Eq("s.ref", strings.TrimSpace(ref)),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return canonical.Entity{}, false, fmt.Errorf("build select canonical entity by source query: %w", err)
	}

	var row canonicalEntityTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return canonical.Entity{}, false, nil
		}
		return canonical.Entity{}, false, fmt.Errorf("select canonical entity by source: %w", err)
	}

	out, err := r.withSources(ctx, []canonicalEntityTableModel{row})
	if err != nil {
		return canonical.Entity{}, false, err
	}
	return out[0], true, nil
}

func (r *CanonicalRepository) RemoveSource(ctx context.Context, kind canonical.Kind, provider canonical.Provider, ref string) error {
	query, args, err := qb.DeleteFrom("canonical_source_ids").
		Where(
			qb.Eq("kind", string(kind)),
			qb.Eq("provider", string(provider)),
			qb.Eq("ref", strings.TrimSpace(ref)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete canonical source id query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete canonical source id: %w", err)
	}
	return nil
}

func (r *CanonicalRepository) Delete(ctx context.Context, kind canonical.Kind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := qb.DeleteFrom("canonical_entities").
		Where(qb.Eq("kind", string(kind)), qb.In("id", anySlice(ids))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete canonical entities query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete canonical entities: %w", err)
	}
	return nil
}

func (r *CanonicalRepository) withSources(ctx context.Context, rows []canonicalEntityTableModel) ([]canonical.Entity, error) {
	out := make([]canonical.Entity, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := qb.Select("kind", "provider", "ref", "entity_id").
		From("canonical_source_ids").
		Where(qb.In("entity_id", ids)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select canonical source ids query: %w", err)
	}
	var sources []canonicalSourceTableModel
	if err := r.db.SelectContext(ctx, &sources, query, args...); err != nil {
		return nil, fmt.Errorf("select canonical source ids: %w", err)
	}

	byEntity := make(map[string]canonical.SourceIDs, len(rows))
	for _, source := range sources {
		if byEntity[source.EntityID] == nil {
			byEntity[source.EntityID] = canonical.SourceIDs{}
		}
		byEntity[source.EntityID][canonical.Provider(source.Provider)] = source.Ref
	}
	for _, row := range rows {
		out = append(out, canonicalFromRow(row, byEntity[row.ID]))
	}
	return out, nil
}

func canonicalInsertModel(item canonical.Entity, now time.Time) (canonicalEntityInsertModel, error) {
	attrs, err := sonic.MarshalString(canonicalAttributes{
		ParentRef:   item.ParentRef,
		HomeTeamRef: item.HomeTeamRef,
		AwayTeamRef: item.AwayTeamRef,
		HomeName:    item.HomeName,
		AwayName:    item.AwayName,
	})
	if err != nil {
		return canonicalEntityInsertModel{}, fmt.Errorf("encode attributes for %s %s: %w", item.Kind, item.ID, err)
	}
	altNames := item.AltNames
	if altNames == nil {
		altNames = []string{}
	}
	var kickoff *time.Time
	if item.KickoffAt != nil {
		v := item.KickoffAt.UTC()
		kickoff = &v
	}
	return canonicalEntityInsertModel{
		ID:          item.ID,
		Kind:        string(item.Kind),
		Name:        item.Name,
		AltNames:    pq.Array(altNames),
		ShortCode:   item.ShortCode,
		Country:     item.Country,
		ImageURL:    item.ImageURL,
		Season:      item.Season,
		ParentID:    nullableString(item.ParentID),
		Position:    string(item.Position),
		ShirtNumber: item.ShirtNumber,
		BirthDate:   item.BirthDate,
		HomeTeamID:  nullableString(item.HomeTeamID),
		AwayTeamID:  nullableString(item.AwayTeamID),
		KickoffAt:   kickoff,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		Status:      item.Status,
		Venue:       item.Venue,
		Attributes:  attrs,
		UpdatedAt:   now,
	}, nil
}

func canonicalFromRow(row canonicalEntityTableModel, sources canonical.SourceIDs) canonical.Entity {
	var attrs canonicalAttributes
	if strings.TrimSpace(row.Attributes) != "" {
		_ = sonic.UnmarshalString(row.Attributes, &attrs)
	}
	out := canonical.Entity{
		ID:          row.ID,
		Kind:        canonical.Kind(row.Kind),
		Name:        row.Name,
		AltNames:    []string(row.AltNames),
		ShortCode:   row.ShortCode,
		Country:     row.Country,
		ImageURL:    row.ImageURL,
		Season:      row.Season,
		ParentID:    row.ParentID.String,
		ParentRef:   attrs.ParentRef,
		Position:    canonical.Position(row.Position),
		ShirtNumber: nullInt64ToIntPtr(row.ShirtNumber),
		BirthDate:   row.BirthDate,
		HomeTeamID:  row.HomeTeamID.String,
		AwayTeamID:  row.AwayTeamID.String,
		HomeTeamRef: attrs.HomeTeamRef,
		AwayTeamRef: attrs.AwayTeamRef,
		HomeName:    attrs.HomeName,
		AwayName:    attrs.AwayName,
		HomeScore:   nullInt64ToIntPtr(row.HomeScore),
		AwayScore:   nullInt64ToIntPtr(row.AwayScore),
		Status:      row.Status,
		Venue:       row.Venue,
		SourceIDs:   sources,
	}
	if out.SourceIDs == nil {
		out.SourceIDs = canonical.SourceIDs{}
	}
	if row.KickoffAt.Valid {
		kickoff := row.KickoffAt.Time.UTC()
		out.KickoffAt = &kickoff
	}
	return out
}

// dedupeEntities keeps the last write per id; one multi-row upsert cannot touch
// a row twice.
func dedupeEntities(items []canonical.Entity) []canonical.Entity {
	index := make(map[string]int, len(items))
	out := make([]canonical.Entity, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			out[i] = item
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
