package participant

import (
	"fmt"
	"time"
)

// Participant is a season-scoped competitor wrapping one real-world player
// or, in team formats, one standing team. Its rating starts at the season's
// initial rating and is mutated only by match application and reversal.
// Disabled participants are excluded from new fixtures but keep history.
type Participant struct {
	ID          string
	SeasonID    string
	PlayerID    string
	DisplayName string
	Rating      float64
	Disabled    bool
	CreatedAt   time.Time
}

func (p Participant) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("participant id is required")
	}
	if p.SeasonID == "" {
		return fmt.Errorf("participant season id is required")
	}
	if p.PlayerID == "" {
		return fmt.Errorf("participant player id is required")
	}

	return nil
}
