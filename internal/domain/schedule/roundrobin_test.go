package schedule

import (
	"fmt"
	"testing"
)

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func TestRoundRobin_SingleCycleEvenCount(t *testing.T) {
	t.Parallel()

	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	pairings := RoundRobin(ids, 1)

	want := len(ids) * (len(ids) - 1) / 2
	if len(pairings) != want {
		t.Fatalf("expected %d pairings, got %d", want, len(pairings))
	}

	seen := make(map[string]int)
	for _, p := range pairings {
		if p.HomeID == p.AwayID {
			t.Fatalf("participant paired against itself in round %d", p.Round)
		}
		seen[pairKey(p.HomeID, p.AwayID)]++
	}
	for key, count := range seen {
		if count != 1 {
			t.Fatalf("pair %s appears %d times, expected once", key, count)
		}
	}
}

func TestRoundRobin_SingleCycleOddCountHasByes(t *testing.T) {
	t.Parallel()

	ids := []string{"p1", "p2", "p3"}
	pairings := RoundRobin(ids, 1)

	if len(pairings) != 3 {
		t.Fatalf("expected 3 pairings for 3 participants, got %d", len(pairings))
	}

	// One bye per round: each round holds exactly one pairing, rounds 1..3.
	byRound := make(map[int]int)
	seen := make(map[string]int)
	for _, p := range pairings {
		byRound[p.Round]++
		seen[pairKey(p.HomeID, p.AwayID)]++
	}
	for round := 1; round <= 3; round++ {
		if byRound[round] != 1 {
			t.Fatalf("round %d has %d pairings, expected 1", round, byRound[round])
		}
	}
	for key, count := range seen {
		if count != 1 {
			t.Fatalf("pair %s appears %d times, expected once", key, count)
		}
	}
}

func TestRoundRobin_TwoCyclesSwapOrientation(t *testing.T) {
	t.Parallel()

	ids := []string{"p1", "p2", "p3", "p4", "p5"}
	pairings := RoundRobin(ids, 2)

	unordered := make(map[string]int)
	ordered := make(map[string]int)
	for _, p := range pairings {
		unordered[pairKey(p.HomeID, p.AwayID)]++
		ordered[p.HomeID+">"+p.AwayID]++
	}

	for key, count := range unordered {
		if count != 2 {
			t.Fatalf("pair %s appears %d times across 2 cycles, expected twice", key, count)
		}
	}
	// Each occurrence must carry a distinct orientation.
	for key, count := range ordered {
		if count != 1 {
			t.Fatalf("oriented pairing %s appears %d times, expected once", key, count)
		}
	}
}

func TestRoundRobin_RoundNumbersMonotonicAcrossCycles(t *testing.T) {
	t.Parallel()

	ids := []string{"p1", "p2", "p3", "p4"}
	pairings := RoundRobin(ids, 3)

	// 4 participants: 3 rounds per cycle, 9 rounds total, 2 pairings per round.
	if len(pairings) != 18 {
		t.Fatalf("expected 18 pairings, got %d", len(pairings))
	}
	lastRound := 0
	perRound := make(map[int]int)
	for _, p := range pairings {
		if p.Round < lastRound {
			t.Fatalf("round numbers not monotonic: %d after %d", p.Round, lastRound)
		}
		lastRound = p.Round
		perRound[p.Round]++
	}
	if lastRound != 9 {
		t.Fatalf("expected final round 9, got %d", lastRound)
	}
	for round := 1; round <= 9; round++ {
		if perRound[round] != 2 {
			t.Fatalf("round %d has %d pairings, expected 2", round, perRound[round])
		}
	}
}

func TestRoundRobin_EachParticipantPlaysOncePerRound(t *testing.T) {
	t.Parallel()

	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}
	pairings := RoundRobin(ids, 1)

	playing := make(map[string]map[string]bool)
	for _, p := range pairings {
		key := fmt.Sprintf("r%d", p.Round)
		if playing[key] == nil {
			playing[key] = make(map[string]bool)
		}
		for _, id := range []string{p.HomeID, p.AwayID} {
			if playing[key][id] {
				t.Fatalf("%s plays twice in round %d", id, p.Round)
			}
			playing[key][id] = true
		}
	}
}

func TestRoundRobin_DegenerateInput(t *testing.T) {
	t.Parallel()

	if got := RoundRobin(nil, 1); len(got) != 0 {
		t.Fatalf("expected empty plan for no participants, got %d", len(got))
	}
	if got := RoundRobin([]string{"p1"}, 1); len(got) != 0 {
		t.Fatalf("expected empty plan for a single participant, got %d", len(got))
	}
	if got := RoundRobin([]string{"p1", "p2"}, 0); len(got) != 0 {
		t.Fatalf("expected empty plan for zero cycles, got %d", len(got))
	}
}

func TestRoundRobin_TwoParticipants(t *testing.T) {
	t.Parallel()

	pairings := RoundRobin([]string{"p1", "p2"}, 2)
	if len(pairings) != 2 {
		t.Fatalf("expected 2 pairings, got %d", len(pairings))
	}
	if pairings[0].HomeID != "p1" || pairings[0].AwayID != "p2" {
		t.Fatalf("unexpected first leg: %+v", pairings[0])
	}
	if pairings[1].HomeID != "p2" || pairings[1].AwayID != "p1" {
		t.Fatalf("unexpected return leg: %+v", pairings[1])
	}
}
