package usecase

import (
	"context"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
)

// Provider is one external sports-data feed. FetchEntities returns the records
// of one kind inside scope, already normalized into canonical shape and keyed
// by the provider's own ids.
type Provider interface {
	Name() canonical.Provider
	FetchEntities(ctx context.Context, kind canonical.Kind, scope canonical.Scope) (canonical.Batch, error)
}

// EventSource is implemented by providers that report in-match events.
type EventSource interface {
	FetchFixtureEvents(ctx context.Context, fixtureRef string) ([]event.Incoming, error)
}
