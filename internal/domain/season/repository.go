package season

import "context"

// Scoring is the subset of season configuration that becomes immutable once
// a match exists.
type Scoring struct {
	Regime               string
	KFactor              float64
	InitialRating        float64
	CyclesPerParticipant int
}

// Repository describes season persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Season) error
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	List(ctx context.Context) ([]Season, error)
	SetClosed(ctx context.Context, seasonID string, closed bool) error
	UpdateScoring(ctx context.Context, seasonID string, scoring Scoring) error
}
