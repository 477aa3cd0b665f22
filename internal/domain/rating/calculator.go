package rating

import (
	"fmt"
	"math"
	"strings"
)

// Regime selects how post-match ratings are derived from a result.
type Regime string

const (
	RegimeEloTeam             Regime = "elo-team"
	RegimeEloIndividualVsTeam Regime = "elo-individual-vs-team"
	RegimeWinDrawLoss         Regime = "win-draw-loss"
)

// Win-draw-loss point awards. Fixed additions, independent of prior rating.
const (
	PointsWin  = 3.0
	PointsDraw = 1.0
	PointsLoss = 0.0
)

const eloSpread = 400.0

func ParseRegime(value string) (Regime, error) {
	switch Regime(strings.ToLower(strings.TrimSpace(value))) {
	case RegimeEloTeam:
		return RegimeEloTeam, nil
	case RegimeEloIndividualVsTeam:
		return RegimeEloIndividualVsTeam, nil
	case RegimeWinDrawLoss:
		return RegimeWinDrawLoss, nil
	default:
		return "", fmt.Errorf("unknown scoring regime %q", value)
	}
}

// IsElo reports whether the regime produces an expected-outcome probability.
func (r Regime) IsElo() bool {
	return r == RegimeEloTeam || r == RegimeEloIndividualVsTeam
}

// Entity is one rated competitor on a side: a participant, or a team acting
// as an aggregate with its own tracked rating.
type Entity struct {
	ID     string
	Rating float64
}

// Change records the rating movement of one entity.
type Change struct {
	ID     string
	Before float64
	After  float64
}

type Input struct {
	Regime    Regime
	KFactor   float64
	HomeScore int
	AwayScore int
	Home      []Entity
	Away      []Entity
}

// Result carries the side-level expected outcomes and per-entity rating
// changes for one match. ExpectedHome and ExpectedAway always sum to 1;
// both are 0.5 under the win-draw-loss regime where no expectation exists.
type Result struct {
	ExpectedHome float64
	ExpectedAway float64
	Home         []Change
	Away         []Change
}

// Compute derives post-match ratings from pre-match ratings and the score.
// It is pure: no I/O, no randomness, no clock. Identical inputs always yield
// identical outputs, which is what makes snapshot-based reversal exact.
// Malformed input (empty side, negative score, unknown regime) is a
// precondition violation reported as an error.
func Compute(in Input) (Result, error) {
	if len(in.Home) == 0 || len(in.Away) == 0 {
		return Result{}, fmt.Errorf("rating: both sides need at least one entity")
	}
	if in.HomeScore < 0 || in.AwayScore < 0 {
		return Result{}, fmt.Errorf("rating: scores cannot be negative")
	}

	switch in.Regime {
	case RegimeWinDrawLoss:
		return computeWinDrawLoss(in), nil
	case RegimeEloTeam:
		return computeElo(in)
	case RegimeEloIndividualVsTeam:
		// One side acts as a single aggregate pseudo-entity carrying its own
		// tracked rating; the other side is the literal list of individuals.
		if len(in.Home) > 1 && len(in.Away) > 1 {
			return Result{}, fmt.Errorf("rating: regime %s needs one side to be a single aggregate entity", in.Regime)
		}
		return computeElo(in)
	default:
		return Result{}, fmt.Errorf("rating: unknown regime %q", in.Regime)
	}
}

func computeElo(in Input) (Result, error) {
	if in.KFactor <= 0 {
		return Result{}, fmt.Errorf("rating: k-factor must be positive for regime %s", in.Regime)
	}

	homeRating := meanRating(in.Home)
	awayRating := meanRating(in.Away)

	expectedHome := 1 / (1 + math.Pow(10, (awayRating-homeRating)/eloSpread))
	expectedAway := 1 - expectedHome

	actualHome := actualOutcome(in.HomeScore, in.AwayScore)
	actualAway := 1 - actualHome

	// The delta basis (actual minus expected) is shared across a side; the
	// arithmetic stays per-entity since each entity keeps its own rating.
	return Result{
		ExpectedHome: expectedHome,
		ExpectedAway: expectedAway,
		Home:         applyDelta(in.Home, in.KFactor*(actualHome-expectedHome)),
		Away:         applyDelta(in.Away, in.KFactor*(actualAway-expectedAway)),
	}, nil
}

func computeWinDrawLoss(in Input) Result {
	homePoints, awayPoints := PointsWin, PointsLoss
	switch {
	case in.HomeScore == in.AwayScore:
		homePoints, awayPoints = PointsDraw, PointsDraw
	case in.HomeScore < in.AwayScore:
		homePoints, awayPoints = PointsLoss, PointsWin
	}

	return Result{
		ExpectedHome: 0.5,
		ExpectedAway: 0.5,
		Home:         applyDelta(in.Home, homePoints),
		Away:         applyDelta(in.Away, awayPoints),
	}
}

func applyDelta(entities []Entity, delta float64) []Change {
	out := make([]Change, 0, len(entities))
	for _, e := range entities {
		out = append(out, Change{ID: e.ID, Before: e.Rating, After: e.Rating + delta})
	}
	return out
}

func meanRating(entities []Entity) float64 {
	sum := 0.0
	for _, e := range entities {
		sum += e.Rating
	}
	return sum / float64(len(entities))
}

func actualOutcome(homeScore, awayScore int) float64 {
	switch {
	case homeScore > awayScore:
		return 1
	case homeScore < awayScore:
		return 0
	default:
		return 0.5
	}
}
