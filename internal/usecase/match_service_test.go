package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/klubhaus/season-engine/internal/domain/match"
	"github.com/klubhaus/season-engine/internal/infrastructure/repository/memory"
	"github.com/klubhaus/season-engine/internal/platform/id"
	"github.com/klubhaus/season-engine/internal/platform/logging"
)

type testEnv struct {
	stores    *memory.Stores
	seasons   *SeasonService
	teams     *TeamService
	matches   *MatchService
	standings *StandingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stores := memory.NewStores()
	ids := id.NewRandomGenerator()
	logger := logging.NewNop()

	teams := NewTeamService(stores.Seasons, stores.Participants, stores.Teams, ids)
	return &testEnv{
		stores:    stores,
		seasons:   NewSeasonService(stores.Seasons, stores.Participants, stores.Fixtures, stores.Matches, ids, logger),
		teams:     teams,
		matches:   NewMatchService(stores.Seasons, stores.Participants, stores.Fixtures, stores.Matches, teams, ids, logger),
		standings: NewStandingService(stores.Seasons, stores.Participants, stores.Matches),
	}
}

func (e *testEnv) createSeason(t *testing.T, in CreateSeasonInput) CreatedSeason {
	t.Helper()

	created, err := e.seasons.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create season failed: %v", err)
	}
	return created
}

func eloDuelSeason(players ...string) CreateSeasonInput {
	in := CreateSeasonInput{
		Name:          "Club Ladder",
		Regime:        "elo-team",
		KFactor:       32,
		InitialRating: 1000,
	}
	for _, p := range players {
		in.Players = append(in.Players, SeasonPlayerInput{PlayerID: p, DisplayName: p})
	}
	return in
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMatchService_Apply_EloHeadToHead(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("alice", "bob"))
	alice, bob := created.Participants[0], created.Participants[1]

	applied, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{alice.ID},
		AwayParticipantIDs: []string{bob.ID},
		HomeScore:          3,
		AwayScore:          1,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if applied.ExpectedHome == nil || !almostEqual(*applied.ExpectedHome, 0.5) {
		t.Fatalf("expected home outcome 0.5, got %v", applied.ExpectedHome)
	}

	gotAlice, _, err := env.stores.Participants.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	gotBob, _, _ := env.stores.Participants.GetByID(context.Background(), bob.ID)
	if !almostEqual(gotAlice.Rating, 1016) {
		t.Fatalf("winner rating = %v, want 1016", gotAlice.Rating)
	}
	if !almostEqual(gotBob.Rating, 984) {
		t.Fatalf("loser rating = %v, want 984", gotBob.Rating)
	}

	lines, err := env.matches.ListParticipantLines(context.Background(), applied.ID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	for _, line := range lines {
		if !almostEqual(line.RatingBefore, 1000) {
			t.Fatalf("line before = %v, want 1000", line.RatingBefore)
		}
	}
}

func TestMatchService_Revert_RestoresSnapshots(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("alice", "bob"))
	alice, bob := created.Participants[0], created.Participants[1]

	applied, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{alice.ID},
		AwayParticipantIDs: []string{bob.ID},
		HomeScore:          2,
		AwayScore:          0,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if err := env.matches.Revert(context.Background(), applied.ID); err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	gotAlice, _, _ := env.stores.Participants.GetByID(context.Background(), alice.ID)
	gotBob, _, _ := env.stores.Participants.GetByID(context.Background(), bob.ID)
	if !almostEqual(gotAlice.Rating, 1000) || !almostEqual(gotBob.Rating, 1000) {
		t.Fatalf("ratings after revert = %v / %v, want 1000 / 1000", gotAlice.Rating, gotBob.Rating)
	}

	if _, err := env.matches.Get(context.Background(), applied.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revert, got %v", err)
	}
	if err := env.matches.Revert(context.Background(), applied.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double revert should be ErrNotFound, got %v", err)
	}
}

func TestMatchService_Revert_OutOfOrderUsesVerbatimSnapshot(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("alice", "bob"))
	alice, bob := created.Participants[0], created.Participants[1]

	first, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{alice.ID},
		AwayParticipantIDs: []string{bob.ID},
		HomeScore:          1,
		AwayScore:          0,
	})
	if err != nil {
		t.Fatalf("apply first: %v", err)
	}
	if _, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{bob.ID},
		AwayParticipantIDs: []string{alice.ID},
		HomeScore:          1,
		AwayScore:          0,
	}); err != nil {
		t.Fatalf("apply second: %v", err)
	}

	// Reverting the older match restores its stored before-snapshot, not a
	// recomputed value.
	if err := env.matches.Revert(context.Background(), first.ID); err != nil {
		t.Fatalf("revert first: %v", err)
	}

	gotAlice, _, _ := env.stores.Participants.GetByID(context.Background(), alice.ID)
	gotBob, _, _ := env.stores.Participants.GetByID(context.Background(), bob.ID)
	if !almostEqual(gotAlice.Rating, 1000) || !almostEqual(gotBob.Rating, 1000) {
		t.Fatalf("ratings = %v / %v, want the first match's before-snapshots (1000 / 1000)", gotAlice.Rating, gotBob.Rating)
	}
}

func TestMatchService_Apply_TeamGranularity(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("a", "b", "c", "d"))
	ids := make([]string, 0, 4)
	for _, p := range created.Participants {
		ids = append(ids, p.ID)
	}

	applied, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{ids[0], ids[1]},
		AwayParticipantIDs: []string{ids[2], ids[3]},
		HomeScore:          2,
		AwayScore:          1,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	teamLines, err := env.matches.ListTeamLines(context.Background(), applied.ID)
	if err != nil {
		t.Fatalf("list team lines: %v", err)
	}
	if len(teamLines) != 2 {
		t.Fatalf("team line count = %d, want 2", len(teamLines))
	}

	// The same member set in a different order must resolve to the same team.
	second, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{ids[1], ids[0]},
		AwayParticipantIDs: []string{ids[3], ids[2]},
		HomeScore:          0,
		AwayScore:          3,
	})
	if err != nil {
		t.Fatalf("apply second failed: %v", err)
	}
	secondLines, _ := env.matches.ListTeamLines(context.Background(), second.ID)

	teams, err := env.teams.ListBySeason(context.Background(), created.Season.ID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("team count = %d, want 2 (identity must be stable across matches)", len(teams))
	}

	firstIDs := map[string]bool{teamLines[0].TeamID: true, teamLines[1].TeamID: true}
	for _, line := range secondLines {
		if !firstIDs[line.TeamID] {
			t.Fatalf("second match used unknown team %s", line.TeamID)
		}
	}
}

func TestMatchService_Apply_FixtureConflict(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, CreateSeasonInput{
		Name:                 "Winter Rounds",
		Regime:               "win-draw-loss",
		CyclesPerParticipant: 1,
		Players: []SeasonPlayerInput{
			{PlayerID: "p1"}, {PlayerID: "p2"}, {PlayerID: "p3"}, {PlayerID: "p4"},
		},
	})
	if len(created.Fixtures) == 0 {
		t.Fatalf("expected a fixture plan")
	}
	target := created.Fixtures[0]

	input := ApplyMatchInput{
		SeasonID:           created.Season.ID,
		FixtureID:          target.ID,
		HomeParticipantIDs: []string{target.HomeParticipantID},
		AwayParticipantIDs: []string{target.AwayParticipantID},
		HomeScore:          1,
		AwayScore:          0,
	}
	if _, err := env.matches.Apply(context.Background(), input); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := env.matches.Apply(context.Background(), input); !errors.Is(err, ErrConflict) {
		t.Fatalf("second result for the same fixture should be ErrConflict, got %v", err)
	}
}

func TestMatchService_Apply_FixtureSideMismatch(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, CreateSeasonInput{
		Name:                 "Winter Rounds",
		Regime:               "win-draw-loss",
		CyclesPerParticipant: 1,
		Players: []SeasonPlayerInput{
			{PlayerID: "p1"}, {PlayerID: "p2"}, {PlayerID: "p3"}, {PlayerID: "p4"},
		},
	})
	target := created.Fixtures[0]

	// Swapped sides do not match the fixture's planned orientation.
	_, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		FixtureID:          target.ID,
		HomeParticipantIDs: []string{target.AwayParticipantID},
		AwayParticipantIDs: []string{target.HomeParticipantID},
		HomeScore:          1,
		AwayScore:          0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_Apply_ClosedSeason(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("alice", "bob"))

	if err := env.seasons.Close(context.Background(), created.Season.ID); err != nil {
		t.Fatalf("close season: %v", err)
	}

	_, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{created.Participants[0].ID},
		AwayParticipantIDs: []string{created.Participants[1].ID},
		HomeScore:          1,
		AwayScore:          0,
	})
	if !errors.Is(err, ErrSeasonClosed) {
		t.Fatalf("expected ErrSeasonClosed, got %v", err)
	}

	if err := env.seasons.Reopen(context.Background(), created.Season.ID); err != nil {
		t.Fatalf("reopen season: %v", err)
	}
	if _, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{created.Participants[0].ID},
		AwayParticipantIDs: []string{created.Participants[1].ID},
		HomeScore:          1,
		AwayScore:          0,
	}); err != nil {
		t.Fatalf("apply after reopen failed: %v", err)
	}
}

func TestMatchService_Apply_RejectsOverlap(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("a", "b", "c"))
	ids := []string{created.Participants[0].ID, created.Participants[1].ID, created.Participants[2].ID}

	cases := []struct {
		name string
		home []string
		away []string
	}{
		{"both sides", []string{ids[0]}, []string{ids[0]}},
		{"twice on home", []string{ids[0], ids[0]}, []string{ids[1], ids[2]}},
		{"twice on away", []string{ids[0], ids[1]}, []string{ids[2], ids[2]}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.matches.Apply(context.Background(), ApplyMatchInput{
				SeasonID:           created.Season.ID,
				HomeParticipantIDs: tc.home,
				AwayParticipantIDs: tc.away,
				HomeScore:          1,
				AwayScore:          0,
			})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestMatchService_Apply_SideSizeRules(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("a", "b", "c"))
	ids := []string{created.Participants[0].ID, created.Participants[1].ID, created.Participants[2].ID}

	// elo-team requires equal side sizes.
	_, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{ids[0]},
		AwayParticipantIDs: []string{ids[1], ids[2]},
		HomeScore:          1,
		AwayScore:          0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unequal sides under elo-team should be ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_Apply_IndividualVsTeam(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, CreateSeasonInput{
		Name:          "Gauntlet",
		Regime:        "elo-individual-vs-team",
		KFactor:       24,
		InitialRating: 1200,
		Players: []SeasonPlayerInput{
			{PlayerID: "solo"}, {PlayerID: "m1"}, {PlayerID: "m2"}, {PlayerID: "m3"},
		},
	})
	ids := make([]string, 0, 4)
	for _, p := range created.Participants {
		ids = append(ids, p.ID)
	}

	applied, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{ids[0]},
		AwayParticipantIDs: []string{ids[1], ids[2], ids[3]},
		HomeScore:          2,
		AwayScore:          1,
	})
	if err != nil {
		t.Fatalf("solo vs team apply failed: %v", err)
	}
	lines, _ := env.matches.ListParticipantLines(context.Background(), applied.ID)
	if len(lines) != 4 {
		t.Fatalf("line count = %d, want 4", len(lines))
	}
	teamLines, _ := env.matches.ListTeamLines(context.Background(), applied.ID)
	if len(teamLines) != 0 {
		t.Fatalf("no team lines expected when one side is a single participant, got %d", len(teamLines))
	}

	// Two multi-participant sides have no single aggregate, so the regime
	// rejects them.
	_, err = env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{ids[0], ids[1]},
		AwayParticipantIDs: []string{ids[2], ids[3]},
		HomeScore:          1,
		AwayScore:          0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for two multi sides, got %v", err)
	}
}

func TestMatchService_Apply_WinDrawLossPoints(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, CreateSeasonInput{
		Name:   "Points League",
		Regime: "win-draw-loss",
		Players: []SeasonPlayerInput{
			{PlayerID: "p1"}, {PlayerID: "p2"},
		},
	})
	p1, p2 := created.Participants[0], created.Participants[1]

	applied, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{p1.ID},
		AwayParticipantIDs: []string{p2.ID},
		HomeScore:          2,
		AwayScore:          0,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if applied.ExpectedHome != nil || applied.ExpectedAway != nil {
		t.Fatalf("expected outcomes must be absent outside elo regimes")
	}

	if _, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{p1.ID},
		AwayParticipantIDs: []string{p2.ID},
		HomeScore:          1,
		AwayScore:          1,
	}); err != nil {
		t.Fatalf("apply draw failed: %v", err)
	}

	got1, _, _ := env.stores.Participants.GetByID(context.Background(), p1.ID)
	got2, _, _ := env.stores.Participants.GetByID(context.Background(), p2.ID)
	if !almostEqual(got1.Rating, 4) {
		t.Fatalf("p1 points = %v, want 4 (win + draw)", got1.Rating)
	}
	if !almostEqual(got2.Rating, 1) {
		t.Fatalf("p2 points = %v, want 1 (loss + draw)", got2.Rating)
	}
}

func TestMatchService_Apply_UnknownParticipant(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("alice", "bob"))

	_, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{created.Participants[0].ID},
		AwayParticipantIDs: []string{"ghost"},
		HomeScore:          1,
		AwayScore:          0,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchService_Apply_TeamRevertRestoresTeamRating(t *testing.T) {
	env := newTestEnv(t)
	created := env.createSeason(t, eloDuelSeason("a", "b", "c", "d"))
	ids := make([]string, 0, 4)
	for _, p := range created.Participants {
		ids = append(ids, p.ID)
	}

	applied, err := env.matches.Apply(context.Background(), ApplyMatchInput{
		SeasonID:           created.Season.ID,
		HomeParticipantIDs: []string{ids[0], ids[1]},
		AwayParticipantIDs: []string{ids[2], ids[3]},
		HomeScore:          2,
		AwayScore:          0,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if err := env.matches.Revert(context.Background(), applied.ID); err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	teams, _ := env.teams.ListBySeason(context.Background(), created.Season.ID)
	for _, item := range teams {
		if !almostEqual(item.Rating, 1000) {
			t.Fatalf("team %s rating = %v after revert, want 1000", item.ID, item.Rating)
		}
	}

	var present match.Match
	matches, _ := env.matches.ListBySeason(context.Background(), created.Season.ID)
	for _, m := range matches {
		if m.ID == applied.ID {
			present = m
		}
	}
	if present.ID != "" {
		t.Fatalf("reverted match still listed")
	}
}
