package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/klubhaus/season-engine/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	items  map[string]team.Team
	byKey  map[string]string
	orders []string
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[string]team.Team, len(teams))
	byKey := make(map[string]string, len(teams))
	orders := make([]string, 0, len(teams))

	for _, t := range teams {
		items[t.ID] = t
		byKey[keyIndex(t.SeasonID, t.Key)] = t.ID
		orders = append(orders, t.ID)
	}

	return &TeamRepository{
		items:  items,
		byKey:  byKey,
		orders: orders,
	}
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("team %s already exists", item.ID)
	}
	if _, ok := r.byKey[keyIndex(item.SeasonID, item.Key)]; ok {
		return team.ErrDuplicateMembers
	}
	r.items[item.ID] = item
	r.byKey[keyIndex(item.SeasonID, item.Key)] = item.ID
	r.orders = append(r.orders, item.ID)

	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[teamID]
	if !ok {
		return team.Team{}, false, nil
	}

	return t, true, nil
}

func (r *TeamRepository) GetByKey(_ context.Context, seasonID, key string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[keyIndex(seasonID, key)]
	if !ok {
		return team.Team{}, false, nil
	}

	return r.items[id], true, nil
}

func (r *TeamRepository) ListBySeason(_ context.Context, seasonID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, id := range r.orders {
		t := r.items[id]
		if t.SeasonID != seasonID {
			continue
		}
		out = append(out, t)
	}

	return out, nil
}

// setRating is reserved for the match repository, which owns live-rating
// writes and calls it while holding its own transaction lock.
func (r *TeamRepository) setRating(teamID string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}
	t.Rating = value
	r.items[teamID] = t

	return nil
}

func keyIndex(seasonID, key string) string {
	return seasonID + "/" + key
}
