package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
)

type RosterRepository struct {
	mu     sync.RWMutex
	byTeam map[string]map[string]roster.Entry
}

func NewRosterRepository(entries []roster.Entry) *RosterRepository {
	repo := &RosterRepository{byTeam: make(map[string]map[string]roster.Entry)}
	_ = repo.Upsert(context.Background(), entries)
	return repo
}

func (r *RosterRepository) Upsert(_ context.Context, entries []roster.Entry) error {
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		teamID := strings.TrimSpace(entry.TeamID)
		if r.byTeam[teamID] == nil {
			r.byTeam[teamID] = make(map[string]roster.Entry)
		}
		entry.JerseyNumber = cloneIntPtr(entry.JerseyNumber)
		r.byTeam[teamID][entry.PlayerID] = entry
	}
	return nil
}

func (r *RosterRepository) ListByTeam(_ context.Context, teamID string) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Entry, 0, len(r.byTeam[teamID]))
	for _, entry := range r.byTeam[teamID] {
		entry.JerseyNumber = cloneIntPtr(entry.JerseyNumber)
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *RosterRepository) ListTeamIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byTeam))
	for teamID := range r.byTeam {
		out = append(out, teamID)
	}
	sort.Strings(out)
	return out, nil
}

// ApplyChanges is all-or-nothing: an unknown player aborts before any write.
func (r *RosterRepository) ApplyChanges(_ context.Context, teamID string, changes []roster.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team := r.byTeam[teamID]
	for _, change := range changes {
		if _, ok := team[change.PlayerID]; !ok {
			return fmt.Errorf("player %s is not on team %s", change.PlayerID, teamID)
		}
	}
	for _, change := range changes {
		entry := team[change.PlayerID]
		entry.JerseyNumber = cloneIntPtr(change.After)
		team[change.PlayerID] = entry
	}
	return nil
}
