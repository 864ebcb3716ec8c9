package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
)

// EventRepository assigns ids in insert order like a serial column.
type EventRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]event.Row
}

func NewEventRepository(rows []event.Row) *EventRepository {
	repo := &EventRepository{rows: make(map[int64]event.Row)}
	for _, row := range rows {
		if row.ID > repo.nextID {
			repo.nextID = row.ID
		}
		repo.rows[row.ID] = row
	}
	return repo
}

func (r *EventRepository) Insert(_ context.Context, rows []event.Row) error {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		r.nextID++
		row.ID = r.nextID
		r.rows[row.ID] = row
	}
	return nil
}

func (r *EventRepository) ListByFixtures(_ context.Context, fixtureIDs []string) ([]event.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(fixtureIDs))
	for _, id := range fixtureIDs {
		wanted[id] = struct{}{}
	}
	out := make([]event.Row, 0)
	for _, row := range r.rows {
		if _, ok := wanted[row.FixtureID]; ok {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EventRepository) ListAll(_ context.Context) ([]event.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Row, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EventRepository) Delete(_ context.Context, ids []int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			deleted++
		}
	}
	return deleted, nil
}
