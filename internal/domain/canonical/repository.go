package canonical

import "context"

type Filter struct {
	Kind     Kind
	ParentID string
	IDs      []string
}

// Repository stores canonical entities and the provider ids bound to them. A
// (kind, provider, ref) triple belongs to at most one entity.
type Repository interface {
	Upsert(ctx context.Context, items []Entity) error
	Find(ctx context.Context, filter Filter) ([]Entity, error)
	FindBySource(ctx context.Context, kind Kind, provider Provider, ref string) (Entity, bool, error)
	RemoveSource(ctx context.Context, kind Kind, provider Provider, ref string) error
	Delete(ctx context.Context, kind Kind, ids []string) error
}
