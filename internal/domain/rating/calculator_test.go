package rating

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestCompute_EloTeam_EqualRatings(t *testing.T) {
	t.Parallel()

	result, err := Compute(Input{
		Regime:    RegimeEloTeam,
		KFactor:   32,
		HomeScore: 3,
		AwayScore: 1,
		Home:      []Entity{{ID: "a", Rating: 1000}, {ID: "b", Rating: 1000}},
		Away:      []Entity{{ID: "c", Rating: 1000}, {ID: "d", Rating: 1000}},
	})
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if result.ExpectedHome != 0.5 {
		t.Fatalf("expected home odds 0.5 for equal ratings, got %v", result.ExpectedHome)
	}
	for _, change := range result.Home {
		if change.After != 1016 {
			t.Fatalf("home entity %s: expected 1016, got %v", change.ID, change.After)
		}
	}
	for _, change := range result.Away {
		if change.After != 984 {
			t.Fatalf("away entity %s: expected 984, got %v", change.ID, change.After)
		}
	}
}

func TestCompute_EloTeam_ZeroSumForEqualSides(t *testing.T) {
	t.Parallel()

	result, err := Compute(Input{
		Regime:    RegimeEloTeam,
		KFactor:   24,
		HomeScore: 2,
		AwayScore: 2,
		Home:      []Entity{{ID: "a", Rating: 1180}, {ID: "b", Rating: 940}},
		Away:      []Entity{{ID: "c", Rating: 1010}, {ID: "d", Rating: 1100}},
	})
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	sum := 0.0
	for _, change := range append(result.Home, result.Away...) {
		sum += change.After - change.Before
	}
	if math.Abs(sum) > tolerance {
		t.Fatalf("expected zero-sum rating deltas for equal side sizes, got %v", sum)
	}
}

func TestCompute_Elo_ExpectationsSumToOne(t *testing.T) {
	t.Parallel()

	inputs := []Input{
		{
			Regime:  RegimeEloTeam,
			KFactor: 32, HomeScore: 1, AwayScore: 0,
			Home: []Entity{{ID: "a", Rating: 1312}},
			Away: []Entity{{ID: "b", Rating: 987}},
		},
		{
			Regime:  RegimeEloIndividualVsTeam,
			KFactor: 16, HomeScore: 0, AwayScore: 4,
			Home: []Entity{{ID: "team-1", Rating: 1500}},
			Away: []Entity{{ID: "a", Rating: 1100}, {ID: "b", Rating: 1250}, {ID: "c", Rating: 990}},
		},
	}

	for _, in := range inputs {
		result, err := Compute(in)
		if err != nil {
			t.Fatalf("Compute(%s) error: %v", in.Regime, err)
		}
		if math.Abs(result.ExpectedHome+result.ExpectedAway-1) > tolerance {
			t.Fatalf("regime %s: expectations do not sum to 1: %v + %v",
				in.Regime, result.ExpectedHome, result.ExpectedAway)
		}
	}
}

func TestCompute_EloIndividualVsTeam_UsesMeanOfIndividuals(t *testing.T) {
	t.Parallel()

	result, err := Compute(Input{
		Regime:    RegimeEloIndividualVsTeam,
		KFactor:   32,
		HomeScore: 2,
		AwayScore: 1,
		Home:      []Entity{{ID: "team-1", Rating: 1000}},
		Away:      []Entity{{ID: "a", Rating: 900}, {ID: "b", Rating: 1100}},
	})
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	// Mean of individuals is 1000, equal to the aggregate rating.
	if result.ExpectedHome != 0.5 {
		t.Fatalf("expected 0.5, got %v", result.ExpectedHome)
	}
	if got := result.Home[0].After; got != 1016 {
		t.Fatalf("aggregate side: expected 1016, got %v", got)
	}
	// Both individuals lose the same delta despite different ratings.
	if got := result.Away[0].After; got != 884 {
		t.Fatalf("away entity a: expected 884, got %v", got)
	}
	if got := result.Away[1].After; got != 1084 {
		t.Fatalf("away entity b: expected 1084, got %v", got)
	}
}

func TestCompute_EloIndividualVsTeam_RejectsTwoMultiSides(t *testing.T) {
	t.Parallel()

	_, err := Compute(Input{
		Regime:    RegimeEloIndividualVsTeam,
		KFactor:   32,
		HomeScore: 1,
		AwayScore: 0,
		Home:      []Entity{{ID: "a", Rating: 1000}, {ID: "b", Rating: 1000}},
		Away:      []Entity{{ID: "c", Rating: 1000}, {ID: "d", Rating: 1000}},
	})
	if err == nil {
		t.Fatal("expected error when neither side is a single aggregate entity")
	}
}

func TestCompute_WinDrawLoss_FixedDeltas(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		homeScore int
		awayScore int
		homeDelta float64
		awayDelta float64
	}{
		{name: "home win", homeScore: 5, awayScore: 2, homeDelta: 3, awayDelta: 0},
		{name: "away win", homeScore: 0, awayScore: 1, homeDelta: 0, awayDelta: 3},
		{name: "draw", homeScore: 2, awayScore: 2, homeDelta: 1, awayDelta: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Compute(Input{
				Regime:    RegimeWinDrawLoss,
				HomeScore: tc.homeScore,
				AwayScore: tc.awayScore,
				Home:      []Entity{{ID: "a", Rating: 7}, {ID: "b", Rating: 12}},
				Away:      []Entity{{ID: "c", Rating: 0}, {ID: "d", Rating: 3}},
			})
			if err != nil {
				t.Fatalf("Compute error: %v", err)
			}
			if result.ExpectedHome != 0.5 || result.ExpectedAway != 0.5 {
				t.Fatalf("win-draw-loss should report 0.5 expectations, got %v / %v",
					result.ExpectedHome, result.ExpectedAway)
			}
			for _, change := range result.Home {
				if got := change.After - change.Before; got != tc.homeDelta {
					t.Fatalf("home entity %s: expected delta %v, got %v", change.ID, tc.homeDelta, got)
				}
			}
			for _, change := range result.Away {
				if got := change.After - change.Before; got != tc.awayDelta {
					t.Fatalf("away entity %s: expected delta %v, got %v", change.ID, tc.awayDelta, got)
				}
			}
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	t.Parallel()

	in := Input{
		Regime:    RegimeEloTeam,
		KFactor:   32,
		HomeScore: 7,
		AwayScore: 3,
		Home:      []Entity{{ID: "a", Rating: 1033.25}, {ID: "b", Rating: 998.5}},
		Away:      []Entity{{ID: "c", Rating: 1120}, {ID: "d", Rating: 895.75}},
	}

	first, err := Compute(in)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Compute(in)
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if again.ExpectedHome != first.ExpectedHome || again.ExpectedAway != first.ExpectedAway {
			t.Fatal("expected outcome drifted between identical calls")
		}
		for j := range first.Home {
			if again.Home[j] != first.Home[j] {
				t.Fatal("home change drifted between identical calls")
			}
		}
		for j := range first.Away {
			if again.Away[j] != first.Away[j] {
				t.Fatal("away change drifted between identical calls")
			}
		}
	}
}

func TestCompute_RejectsMalformedInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   Input
	}{
		{name: "empty home side", in: Input{Regime: RegimeEloTeam, KFactor: 32, Away: []Entity{{ID: "a"}}}},
		{name: "empty away side", in: Input{Regime: RegimeEloTeam, KFactor: 32, Home: []Entity{{ID: "a"}}}},
		{
			name: "negative score",
			in: Input{
				Regime: RegimeEloTeam, KFactor: 32, HomeScore: -1,
				Home: []Entity{{ID: "a"}}, Away: []Entity{{ID: "b"}},
			},
		},
		{
			name: "unknown regime",
			in: Input{
				Regime: "swiss", KFactor: 32,
				Home: []Entity{{ID: "a"}}, Away: []Entity{{ID: "b"}},
			},
		},
		{
			name: "zero k-factor on elo",
			in: Input{
				Regime: RegimeEloTeam,
				Home:   []Entity{{ID: "a"}}, Away: []Entity{{ID: "b"}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Compute(tc.in); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRegime(t *testing.T) {
	t.Parallel()

	regime, err := ParseRegime(" Elo-Team ")
	if err != nil {
		t.Fatalf("ParseRegime error: %v", err)
	}
	if regime != RegimeEloTeam {
		t.Fatalf("unexpected regime %q", regime)
	}

	if _, err := ParseRegime("glicko"); err == nil {
		t.Fatal("expected error for unknown regime")
	}
}
