package roster

import "context"

type Repository interface {
	Upsert(ctx context.Context, entries []Entry) error
	ListByTeam(ctx context.Context, teamID string) ([]Entry, error)
	ListTeamIDs(ctx context.Context) ([]string, error)
	// ApplyChanges writes one team's reassignments atomically.
	ApplyChanges(ctx context.Context, teamID string, changes []Change) error
}
