package usecase

import (
	"context"
	"fmt"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
)

// stagedEntity is one reconciled record waiting for the next flush.
type stagedEntity struct {
	kind          canonical.Kind
	ref           string
	entity        canonical.Entity
	created       bool
	mapping       *mapping.Record
	staleMappings []mapping.Key
	roster        *roster.Entry
}

// batchWriter buffers a pass's writes and flushes them every size records.
// Entities go first so mappings and roster rows never point at a missing row.
type batchWriter struct {
	pass    *leaguePass
	size    int
	pending []stagedEntity
}

func (w *batchWriter) stage(ctx context.Context, res *KindResult, item stagedEntity) {
	w.pending = append(w.pending, item)
	if len(w.pending) >= w.size {
		w.flush(ctx, res)
	}
}

func (w *batchWriter) flush(ctx context.Context, res *KindResult) {
	if len(w.pending) == 0 {
		return
	}
	items := w.pending
	w.pending = nil

	run := w.pass.run
	svc := w.pass.svc

	if run.dryRun {
		for _, item := range items {
			countStaged(res, item)
		}
		return
	}

	written := w.writeEntities(ctx, res, items)
	if len(written) == 0 {
		return
	}

	var (
		stale    []mapping.Key
		mappings []mapping.Record
		entries  []roster.Entry
	)
	for _, item := range written {
		stale = append(stale, item.staleMappings...)
		if item.mapping != nil {
			mappings = append(mappings, *item.mapping)
		}
		if item.roster != nil {
			entries = append(entries, *item.roster)
		}
	}

	// Stale rows go only once their replacements are stored.
	mappingsWritten := true
	if len(mappings) > 0 {
		if err := svc.mappings.Upsert(ctx, mappings); err != nil {
			mappingsWritten = false
			res.addError(written[0].kind, svc.primary.Name(), "", fmt.Errorf("%w: upsert mappings: %v", ErrPersistenceConflict, err))
			run.logger.WarnContext(ctx, "mapping upsert failed", "kind", string(written[0].kind), "count", len(mappings), "error", err)
		}
	}
	if mappingsWritten && len(stale) > 0 {
		if _, err := svc.mappings.Delete(ctx, stale); err != nil {
			res.addError(written[0].kind, svc.primary.Name(), "", fmt.Errorf("delete stale mappings: %w", err))
			run.logger.WarnContext(ctx, "stale mapping delete failed", "kind", string(written[0].kind), "count", len(stale), "error", err)
		}
	}
	if len(entries) > 0 {
		if err := svc.rosters.Upsert(ctx, entries); err != nil {
			res.addError(written[0].kind, svc.primary.Name(), "", fmt.Errorf("upsert roster entries: %w", err))
			run.logger.WarnContext(ctx, "roster upsert failed", "count", len(entries), "error", err)
		}
	}

	for _, item := range written {
		if item.created {
			res.Created++
		} else {
			res.Updated++
		}
		if item.mapping != nil && mappingsWritten {
			res.Matched++
		}
	}

	run.logger.DebugContext(ctx, "batch flushed",
		"kind", string(written[0].kind),
		"entities", len(written),
		"mappings", len(mappings),
		"roster_entries", len(entries),
	)
	if w.pass.delay && svc.cfg.BatchDelay > 0 {
		if err := svc.sleep(ctx, svc.cfg.BatchDelay); err != nil {
			return
		}
	}
}

// writeEntities upserts the batch and falls back to one record at a time when
// the batch fails, so one bad row does not sink its neighbours.
func (w *batchWriter) writeEntities(ctx context.Context, res *KindResult, items []stagedEntity) []stagedEntity {
	svc := w.pass.svc
	entities := make([]canonical.Entity, 0, len(items))
	for _, item := range items {
		entities = append(entities, item.entity)
	}
	err := svc.entities.Upsert(ctx, entities)
	if err == nil {
		return items
	}
	w.pass.run.logger.WarnContext(ctx, "entity batch failed, retrying per record", "kind", string(items[0].kind), "count", len(items), "error", err)

	written := make([]stagedEntity, 0, len(items))
	for _, item := range items {
		if err := svc.entities.Upsert(ctx, []canonical.Entity{item.entity}); err != nil {
			res.addError(item.kind, svc.primary.Name(), item.ref, fmt.Errorf("%w: upsert %s: %v", ErrPersistenceConflict, item.kind, err))
			if item.created {
				w.pass.cache.drop(item.kind, item.ref)
			}
			continue
		}
		written = append(written, item)
	}
	return written
}

func countStaged(res *KindResult, item stagedEntity) {
	if item.created {
		res.Created++
	} else {
		res.Updated++
	}
	if item.mapping != nil {
		res.Matched++
	}
}
