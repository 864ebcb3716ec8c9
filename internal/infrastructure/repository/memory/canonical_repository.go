package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

type sourceKey struct {
	kind     canonical.Kind
	provider canonical.Provider
	ref      string
}

type entityKey struct {
	kind canonical.Kind
	id   string
}

type CanonicalRepository struct {
	mu       sync.RWMutex
	entities map[entityKey]canonical.Entity
	sources  map[sourceKey]string
}

func NewCanonicalRepository(items []canonical.Entity) *CanonicalRepository {
	repo := &CanonicalRepository{
		entities: make(map[entityKey]canonical.Entity),
		sources:  make(map[sourceKey]string),
	}
	_ = repo.Upsert(context.Background(), items)
	return repo
}

// Upsert rejects the whole batch when any provider id is already bound to a
// different entity, mirroring the unique key of the postgres store.
func (r *CanonicalRepository) Upsert(_ context.Context, items []canonical.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	claimed := make(map[sourceKey]string)
	for _, item := range items {
		for provider, ref := range item.SourceIDs {
			key := sourceKey{kind: item.Kind, provider: provider, ref: strings.TrimSpace(ref)}
			if key.ref == "" {
				continue
			}
			owner, ok := claimed[key]
			if !ok {
				owner, ok = r.sources[key]
			}
			if ok && owner != item.ID {
				return fmt.Errorf("%s %s id=%s already bound to %s", item.Kind, provider, key.ref, owner)
			}
			claimed[key] = item.ID
		}
	}

	for _, item := range items {
		key := entityKey{kind: item.Kind, id: item.ID}
		if previous, ok := r.entities[key]; ok {
			for provider, ref := range previous.SourceIDs {
				delete(r.sources, sourceKey{kind: item.Kind, provider: provider, ref: ref})
			}
		}
		r.entities[key] = cloneEntity(item)
		for provider, ref := range item.SourceIDs {
			if ref = strings.TrimSpace(ref); ref != "" {
				r.sources[sourceKey{kind: item.Kind, provider: provider, ref: ref}] = item.ID
			}
		}
	}
	return nil
}

func (r *CanonicalRepository) Find(_ context.Context, filter canonical.Filter) ([]canonical.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make(map[string]struct{}, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = struct{}{}
	}

	out := make([]canonical.Entity, 0)
	for key, item := range r.entities {
		if filter.Kind != "" && key.kind != filter.Kind {
			continue
		}
		if filter.ParentID != "" && item.ParentID != filter.ParentID {
			continue
		}
		if len(ids) > 0 {
			if _, ok := ids[item.ID]; !ok {
				continue
			}
		}
		out = append(out, cloneEntity(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CanonicalRepository) FindBySource(_ context.Context, kind canonical.Kind, provider canonical.Provider, ref string) (canonical.Entity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.sources[sourceKey{kind: kind, provider: provider, ref: strings.TrimSpace(ref)}]
	if !ok {
		return canonical.Entity{}, false, nil
	}
	item, ok := r.entities[entityKey{kind: kind, id: id}]
	if !ok {
		return canonical.Entity{}, false, nil
	}
	return cloneEntity(item), true, nil
}

func (r *CanonicalRepository) RemoveSource(_ context.Context, kind canonical.Kind, provider canonical.Provider, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sourceKey{kind: kind, provider: provider, ref: strings.TrimSpace(ref)}
	id, ok := r.sources[key]
	if !ok {
		return nil
	}
	delete(r.sources, key)
	ekey := entityKey{kind: kind, id: id}
	if item, ok := r.entities[ekey]; ok {
		item.SourceIDs = item.SourceIDs.Clone()
		delete(item.SourceIDs, provider)
		r.entities[ekey] = item
	}
	return nil
}

func (r *CanonicalRepository) Delete(_ context.Context, kind canonical.Kind, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		key := entityKey{kind: kind, id: id}
		item, ok := r.entities[key]
		if !ok {
			continue
		}
		for provider, ref := range item.SourceIDs {
			delete(r.sources, sourceKey{kind: kind, provider: provider, ref: ref})
		}
		delete(r.entities, key)
	}
	return nil
}

// Len counts stored entities of one kind.
func (r *CanonicalRepository) Len(kind canonical.Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for key := range r.entities {
		if key.kind == kind {
			n++
		}
	}
	return n
}

func cloneEntity(item canonical.Entity) canonical.Entity {
	out := item
	out.AltNames = append([]string(nil), item.AltNames...)
	out.SourceIDs = item.SourceIDs.Clone()
	out.ShirtNumber = cloneIntPtr(item.ShirtNumber)
	out.HomeScore = cloneIntPtr(item.HomeScore)
	out.AwayScore = cloneIntPtr(item.AwayScore)
	if item.KickoffAt != nil {
		kickoff := *item.KickoffAt
		out.KickoffAt = &kickoff
	}
	return out
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
