package fixture

import "context"

// Repository describes fixture persistence needs from use cases. Binding
// and clearing a fixture's match id happens inside the match transaction,
// not through this interface.
type Repository interface {
	BulkInsert(ctx context.Context, items []Fixture) error
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Fixture, error)
}
