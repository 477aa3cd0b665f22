package fixture

import (
	"errors"
	"fmt"
)

// ErrAlreadyBooked marks an attempt to attach a second match to a fixture.
var ErrAlreadyBooked = errors.New("fixture already has a match")

// Fixture is one scheduled, not-yet-played pairing inside a round-based
// season. MatchID stays nil until a result is recorded against it; at most
// one match may ever fill a fixture.
type Fixture struct {
	ID                string
	SeasonID          string
	Round             int
	HomeParticipantID string
	AwayParticipantID string
	MatchID           *string
}

func (f Fixture) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("fixture id is required")
	}
	if f.SeasonID == "" {
		return fmt.Errorf("fixture season id is required")
	}
	if f.Round < 1 {
		return fmt.Errorf("fixture round must be positive")
	}
	if f.HomeParticipantID == "" || f.AwayParticipantID == "" {
		return fmt.Errorf("fixture needs both participants")
	}
	if f.HomeParticipantID == f.AwayParticipantID {
		return fmt.Errorf("fixture cannot pair a participant against itself")
	}

	return nil
}
