package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/klubhaus/season-engine/internal/domain/match"
)

// MatchRepository keeps matches and their audit lines, and reaches into the
// participant, team and fixture stores so one Apply or Revert lands as a
// single atomic step, the way the SQL implementation uses one transaction.
type MatchRepository struct {
	mu               sync.RWMutex
	txMu             sync.Mutex
	items            map[string]match.Match
	orders           []string
	participantLines map[string][]match.ParticipantLine
	teamLines        map[string][]match.TeamLine

	participants *ParticipantRepository
	teams        *TeamRepository
	fixtures     *FixtureRepository
}

func NewMatchRepository(
	participants *ParticipantRepository,
	teams *TeamRepository,
	fixtures *FixtureRepository,
) *MatchRepository {
	return &MatchRepository{
		items:            make(map[string]match.Match),
		participantLines: make(map[string][]match.ParticipantLine),
		teamLines:        make(map[string][]match.TeamLine),
		participants:     participants,
		teams:            teams,
		fixtures:         fixtures,
	}
}

func (r *MatchRepository) Apply(_ context.Context, rec match.ApplyRecord) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	if _, ok := r.items[rec.Match.ID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("match %s already exists", rec.Match.ID)
	}
	r.mu.Unlock()

	if rec.Match.FixtureID != nil {
		if err := r.fixtures.bind(*rec.Match.FixtureID, rec.Match.ID); err != nil {
			return fmt.Errorf("%w: %v", match.ErrFixtureTaken, err)
		}
	}

	undo, err := r.applyRatings(rec.ParticipantRatings, rec.TeamRatings)
	if err != nil {
		undo()
		if rec.Match.FixtureID != nil {
			r.fixtures.unbind(*rec.Match.FixtureID)
		}
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rec.Match.ID] = rec.Match
	r.orders = append(r.orders, rec.Match.ID)
	r.participantLines[rec.Match.ID] = append([]match.ParticipantLine(nil), rec.ParticipantLines...)
	r.teamLines[rec.Match.ID] = append([]match.TeamLine(nil), rec.TeamLines...)

	return nil
}

func (r *MatchRepository) Revert(_ context.Context, matchID string) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	item, ok := r.items[matchID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("match %s not found", matchID)
	}
	participantLines := r.participantLines[matchID]
	teamLines := r.teamLines[matchID]
	r.mu.Unlock()

	for _, line := range participantLines {
		if err := r.participants.setRating(line.ParticipantID, line.RatingBefore); err != nil {
			return fmt.Errorf("restore participant rating: %w", err)
		}
	}
	for _, line := range teamLines {
		if err := r.teams.setRating(line.TeamID, line.RatingBefore); err != nil {
			return fmt.Errorf("restore team rating: %w", err)
		}
	}
	if item.FixtureID != nil {
		r.fixtures.unbind(*item.FixtureID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, matchID)
	delete(r.participantLines, matchID)
	delete(r.teamLines, matchID)
	for i, id := range r.orders {
		if id == matchID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}

	return m, true, nil
}

func (r *MatchRepository) ListBySeason(_ context.Context, seasonID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, id := range r.orders {
		m := r.items[id]
		if m.SeasonID != seasonID {
			continue
		}
		out = append(out, m)
	}

	return out, nil
}

func (r *MatchRepository) CountBySeason(_ context.Context, seasonID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.items {
		if m.SeasonID == seasonID {
			count++
		}
	}

	return count, nil
}

func (r *MatchRepository) ListParticipantLines(_ context.Context, matchID string) ([]match.ParticipantLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]match.ParticipantLine(nil), r.participantLines[matchID]...), nil
}

func (r *MatchRepository) ListTeamLines(_ context.Context, matchID string) ([]match.TeamLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]match.TeamLine(nil), r.teamLines[matchID]...), nil
}

func (r *MatchRepository) ListParticipantLinesBySeason(_ context.Context, seasonID string) ([]match.ParticipantLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.ParticipantLine, 0)
	for _, id := range r.orders {
		if r.items[id].SeasonID != seasonID {
			continue
		}
		out = append(out, r.participantLines[id]...)
	}

	return out, nil
}

func (r *MatchRepository) ListTeamLinesBySeason(_ context.Context, seasonID string) ([]match.TeamLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.TeamLine, 0)
	for _, id := range r.orders {
		if r.items[id].SeasonID != seasonID {
			continue
		}
		out = append(out, r.teamLines[id]...)
	}

	return out, nil
}

// applyRatings pushes the live-rating writes and returns an undo closure
// restoring whatever it managed to change before a failure.
func (r *MatchRepository) applyRatings(participantUpdates, teamUpdates []match.RatingUpdate) (func(), error) {
	type snapshot struct {
		id     string
		rating float64
		team   bool
	}
	applied := make([]snapshot, 0, len(participantUpdates)+len(teamUpdates))
	undo := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			s := applied[i]
			if s.team {
				_ = r.teams.setRating(s.id, s.rating)
				continue
			}
			_ = r.participants.setRating(s.id, s.rating)
		}
	}

	for _, update := range participantUpdates {
		current, ok, _ := r.participants.GetByID(context.Background(), update.ID)
		if !ok {
			return undo, fmt.Errorf("participant %s not found", update.ID)
		}
		if err := r.participants.setRating(update.ID, update.Rating); err != nil {
			return undo, err
		}
		applied = append(applied, snapshot{id: update.ID, rating: current.Rating})
	}
	for _, update := range teamUpdates {
		current, ok, _ := r.teams.GetByID(context.Background(), update.ID)
		if !ok {
			return undo, fmt.Errorf("team %s not found", update.ID)
		}
		if err := r.teams.setRating(update.ID, update.Rating); err != nil {
			return undo, err
		}
		applied = append(applied, snapshot{id: update.ID, rating: current.Rating})
	}

	return undo, nil
}
