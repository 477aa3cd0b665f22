package season

import (
	"fmt"
	"time"

	"github.com/klubhaus/season-engine/internal/domain/rating"
)

// Season is one time-boxed competition. Scoring configuration is immutable
// once any match has been recorded; only the closed flag toggles afterward.
type Season struct {
	ID                   string
	Name                 string
	Regime               rating.Regime
	KFactor              float64
	InitialRating        float64
	CyclesPerParticipant int
	Closed               bool
	CreatedAt            time.Time
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("season name is required")
	}
	if _, err := rating.ParseRegime(string(s.Regime)); err != nil {
		return err
	}
	if s.Regime.IsElo() && s.KFactor <= 0 {
		return fmt.Errorf("season k-factor must be positive for regime %s", s.Regime)
	}
	if s.CyclesPerParticipant < 0 {
		return fmt.Errorf("season cycle count cannot be negative")
	}
	if s.CyclesPerParticipant > 0 && s.Regime != rating.RegimeWinDrawLoss {
		return fmt.Errorf("round-based scheduling is only available for regime %s", rating.RegimeWinDrawLoss)
	}

	return nil
}

// RoundBased reports whether the season carries a pre-generated fixture plan.
func (s Season) RoundBased() bool {
	return s.Regime == rating.RegimeWinDrawLoss && s.CyclesPerParticipant > 0
}
