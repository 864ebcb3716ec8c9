package event

import "context"

type Repository interface {
	Insert(ctx context.Context, rows []Row) error
	ListByFixtures(ctx context.Context, fixtureIDs []string) ([]Row, error)
	ListAll(ctx context.Context) ([]Row, error)
	Delete(ctx context.Context, ids []int64) (int, error)
}
