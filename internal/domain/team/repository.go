package team

import "context"

// Repository describes team persistence needs from use cases. Create must
// fail with ErrDuplicateMembers when the season already holds a team with
// the same canonical key. Rating writes belong to the match transaction.
type Repository interface {
	Create(ctx context.Context, item Team) error
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	GetByKey(ctx context.Context, seasonID, key string) (Team, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Team, error)
}
