package participant

import "context"

// Repository describes participant persistence needs from use cases.
// Rating writes are deliberately absent: the live rating is owned by the
// match apply/revert transaction and only moves inside it.
type Repository interface {
	Create(ctx context.Context, item Participant) error
	GetByID(ctx context.Context, participantID string) (Participant, bool, error)
	ListByIDs(ctx context.Context, seasonID string, participantIDs []string) ([]Participant, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Participant, error)
	SetDisabled(ctx context.Context, participantID string, disabled bool) error
}
