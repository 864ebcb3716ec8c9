package mapping

import (
	"context"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

type Repository interface {
	Upsert(ctx context.Context, records []Record) error
	FindByProviderA(ctx context.Context, kind canonical.Kind, providerAID string) ([]Record, error)
	List(ctx context.Context, filter Filter) ([]Record, error)
	Delete(ctx context.Context, keys []Key) (int, error)
}
