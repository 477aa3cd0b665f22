package match

import "context"

// Repository persists matches and their audit lines. Apply and Revert are
// single storage transactions: on any failure the store is left exactly as
// it was before the call.
//
// Apply writes the match row, every line, and the live-rating updates.
// When the match fills a fixture it also binds the fixture's match id,
// failing with ErrFixtureTaken if another match got there first.
//
// Revert restores every line's RatingBefore onto the live participant and
// team ratings, deletes the lines and the match row, and clears any fixture
// binding that pointed at the match.
type Repository interface {
	Apply(ctx context.Context, rec ApplyRecord) error
	Revert(ctx context.Context, matchID string) error
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Match, error)
	CountBySeason(ctx context.Context, seasonID string) (int, error)
	ListParticipantLines(ctx context.Context, matchID string) ([]ParticipantLine, error)
	ListTeamLines(ctx context.Context, matchID string) ([]TeamLine, error)
	ListParticipantLinesBySeason(ctx context.Context, seasonID string) ([]ParticipantLine, error)
	ListTeamLinesBySeason(ctx context.Context, seasonID string) ([]TeamLine, error)
}
