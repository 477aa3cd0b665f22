package match

import (
	"errors"
	"time"
)

// ErrFixtureTaken marks an apply that found its fixture already bound to
// another match at commit time.
var ErrFixtureTaken = errors.New("fixture is already bound to a match")

// Side is the home or away grouping of one or more participants.
type Side string

const (
	SideHome Side = "HOME"
	SideAway Side = "AWAY"
)

// Match is one recorded result. Immutable once created; deletion is the
// only mutation and it reverses every rating movement the match caused.
// Expected outcomes are probability-like values in [0,1], present only for
// Elo regimes.
type Match struct {
	ID           string
	SeasonID     string
	FixtureID    *string
	HomeScore    int
	AwayScore    int
	ExpectedHome *float64
	ExpectedAway *float64
	CreatedBy    string
	CreatedAt    time.Time
}

// ParticipantLine is the per-participant audit row of one match: the rating
// snapshot before and after. Reversal restores Before verbatim, never a
// recomputed inverse, so out-of-order deletions cannot drift.
type ParticipantLine struct {
	MatchID       string
	ParticipantID string
	Side          Side
	RatingBefore  float64
	RatingAfter   float64
}

// TeamLine is the team-granularity audit row, written when both sides of a
// match fielded more than one participant.
type TeamLine struct {
	MatchID      string
	TeamID       string
	Side         Side
	RatingBefore float64
	RatingAfter  float64
}

// RatingUpdate is one live-rating write carried by the apply transaction.
type RatingUpdate struct {
	ID     string
	Rating float64
}

// ApplyRecord is everything one match application persists atomically:
// the match row, its audit lines, the live-rating updates they imply, and
// the optional fixture binding. Readers must never observe a subset.
type ApplyRecord struct {
	Match              Match
	ParticipantLines   []ParticipantLine
	TeamLines          []TeamLine
	ParticipantRatings []RatingUpdate
	TeamRatings        []RatingUpdate
}
