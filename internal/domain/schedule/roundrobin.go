package schedule

// Pairing is one scheduled meeting inside a round-robin plan. Rounds are
// 1-indexed and increase monotonically across repeated cycles.
type Pairing struct {
	Round  int
	HomeID string
	AwayID string
}

// byeID marks the sentinel slot appended when the participant count is odd.
// Pairings touching it are dropped, which is how byes surface: the leftover
// participant simply has no fixture that round.
const byeID = ""

// RoundRobin builds the complete fixture plan for the given participants
// using the circle method: index 0 stays fixed while the rest rotate one
// position between rounds. Each cycle is a full tournament of n-1 rounds
// (n rounds with a bye when the count is odd); odd cycles swap home and away
// so that across two cycles every pair meets once in each orientation.
//
// The function is pure and deterministic. Fewer than two participants or a
// non-positive cycle count yields an empty plan; rejecting such seasons is
// the caller's job.
func RoundRobin(participantIDs []string, cycles int) []Pairing {
	if len(participantIDs) < 2 || cycles < 1 {
		return nil
	}

	working := append([]string(nil), participantIDs...)
	if len(working)%2 == 1 {
		working = append(working, byeID)
	}
	n := len(working)
	roundsPerCycle := n - 1

	out := make([]Pairing, 0, cycles*roundsPerCycle*(n/2))
	for cycle := 0; cycle < cycles; cycle++ {
		arr := append([]string(nil), working...)
		for r := 0; r < roundsPerCycle; r++ {
			round := cycle*roundsPerCycle + r + 1
			for i := 0; i < n/2; i++ {
				home, away := arr[i], arr[n-1-i]
				if home == byeID || away == byeID {
					continue
				}
				if cycle%2 == 1 {
					home, away = away, home
				}
				out = append(out, Pairing{Round: round, HomeID: home, AwayID: away})
			}
			arr = rotate(arr)
		}
	}

	return out
}

func rotate(arr []string) []string {
	n := len(arr)
	next := make([]string, n)
	next[0] = arr[0]
	next[1] = arr[n-1]
	copy(next[2:], arr[1:n-1])
	return next
}
