package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/klubhaus/season-engine/internal/domain/fixture"
)

type FixtureRepository struct {
	mu     sync.RWMutex
	items  map[string]fixture.Fixture
	orders []string
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	items := make(map[string]fixture.Fixture, len(fixtures))
	orders := make([]string, 0, len(fixtures))

	for _, f := range fixtures {
		items[f.ID] = f
		orders = append(orders, f.ID)
	}

	return &FixtureRepository{
		items:  items,
		orders: orders,
	}
}

func (r *FixtureRepository) BulkInsert(_ context.Context, items []fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range items {
		if _, ok := r.items[f.ID]; ok {
			return fmt.Errorf("fixture %s already exists", f.ID)
		}
	}
	for _, f := range items {
		r.items[f.ID] = f
		r.orders = append(r.orders, f.ID)
	}

	return nil
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.items[fixtureID]
	if !ok {
		return fixture.Fixture{}, false, nil
	}

	return f, true, nil
}

func (r *FixtureRepository) ListBySeason(_ context.Context, seasonID string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, id := range r.orders {
		f := r.items[id]
		if f.SeasonID != seasonID {
			continue
		}
		out = append(out, f)
	}

	return out, nil
}

// bind attaches a match to a fixture, failing when another match already
// holds it. Called by the match repository under its transaction lock.
func (r *FixtureRepository) bind(fixtureID, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.items[fixtureID]
	if !ok {
		return fmt.Errorf("fixture %s not found", fixtureID)
	}
	if f.MatchID != nil {
		return fmt.Errorf("fixture %s is already bound", fixtureID)
	}
	f.MatchID = &matchID
	r.items[fixtureID] = f

	return nil
}

// unbind clears a fixture's match binding during revert.
func (r *FixtureRepository) unbind(fixtureID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.items[fixtureID]
	if !ok {
		return
	}
	f.MatchID = nil
	r.items[fixtureID] = f
}
