package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
	qb "github.com/systic2/allleaguesfans-sub001/internal/platform/querybuilder"
)

type MappingRepository struct {
	db *sqlx.DB
}

func NewMappingRepository(db *sqlx.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) Upsert(ctx context.Context, records []mapping.Record) error {
	if len(records) == 0 {
		return nil
	}

	index := make(map[mapping.Key]int, len(records))
	models := make([]entityMappingTableModel, 0, len(records))
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
		key := record.Key()
		model := entityMappingTableModel{
			EntityType:  string(key.EntityType),
			ProviderA:   string(record.ProviderA),
			ProviderB:   string(record.ProviderB),
			ProviderAID: key.ProviderAID,
			ProviderBID: key.ProviderBID,
			EntityName:  record.EntityName,
			Confidence:  record.Confidence,
			VerifiedAt:  record.VerifiedAt.UTC(),
		}
		if i, ok := index[key]; ok {
			models[i] = model
			continue
		}
		index[key] = len(models)
		models = append(models, model)
	}

	query, args, err := qb.InsertModels("entity_mappings", models, qb.OnConflictUpdate(
		[]string{"entity_type", "provider_a_id", "provider_b_id"},
		"provider_a", "provider_b", "entity_name", "mapping_confidence", "verified_at",
	))
	if err != nil {
		return fmt.Errorf("build upsert entity mappings query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert entity mappings: %w", err)
	}
	return nil
}

func (r *MappingRepository) FindByProviderA(ctx context.Context, kind canonical.Kind, providerAID string) ([]mapping.Record, error) {
	query, args, err := qb.Select("*").From("entity_mappings").
		Where(qb.Eq("entity_type", string(kind)), qb.Eq("provider_a_id", strings.TrimSpace(providerAID))).
		OrderBy("provider_b_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select entity mappings by provider a query: %w", err)
	}
	return r.selectRecords(ctx, query, args)
}

func (r *MappingRepository) List(ctx context.Context, filter mapping.Filter) ([]mapping.Record, error) {
	conditions := make([]qb.Condition, 0, 3)
	if filter.EntityType != "" {
		conditions = append(conditions, qb.Eq("entity_type", string(filter.EntityType)))
	}
	if filter.ProviderA != "" {
		conditions = append(conditions, qb.Eq("provider_a", string(filter.ProviderA)))
	}
	if filter.MaxConfidence != nil {
		conditions = append(conditions, qb.Lte("mapping_confidence", *filter.MaxConfidence))
	}

	query, args, err := qb.Select("*").From("entity_mappings").
		Where(conditions...).
		OrderBy("entity_type", "provider_a_id", "provider_b_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select entity mappings query: %w", err)
	}
	return r.selectRecords(ctx, query, args)
}

func (r *MappingRepository) Delete(ctx context.Context, keys []mapping.Key) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx delete entity mappings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleted := 0
	for _, key := range keys {
		query, args, err := qb.DeleteFrom("entity_mappings").
			Where(
				qb.Eq("entity_type", string(key.EntityType)),
				qb.Eq("provider_a_id", key.ProviderAID),
				qb.Eq("provider_b_id", key.ProviderBID),
			).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build delete entity mapping query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("delete entity mapping %s: %w", key, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected delete entity mapping %s: %w", key, err)
		}
		deleted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete entity mappings tx: %w", err)
	}
	return deleted, nil
}

func (r *MappingRepository) selectRecords(ctx context.Context, query string, args []any) ([]mapping.Record, error) {
	var rows []entityMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select entity mappings: %w", err)
	}
	out := make([]mapping.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapping.Record{
			EntityType:  canonical.Kind(row.EntityType),
			ProviderA:   canonical.Provider(row.ProviderA),
			ProviderB:   canonical.Provider(row.ProviderB),
			ProviderAID: row.ProviderAID,
			ProviderBID: row.ProviderBID,
			EntityName:  row.EntityName,
			Confidence:  row.Confidence,
			VerifiedAt:  row.VerifiedAt.UTC(),
		})
	}
	return out, nil
}
