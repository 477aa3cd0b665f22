package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/klubhaus/season-engine/internal/domain/participant"
)

type ParticipantRepository struct {
	mu     sync.RWMutex
	items  map[string]participant.Participant
	orders []string
}

func NewParticipantRepository(participants []participant.Participant) *ParticipantRepository {
	items := make(map[string]participant.Participant, len(participants))
	orders := make([]string, 0, len(participants))

	for _, p := range participants {
		items[p.ID] = p
		orders = append(orders, p.ID)
	}

	return &ParticipantRepository{
		items:  items,
		orders: orders,
	}
}

func (r *ParticipantRepository) Create(_ context.Context, item participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("participant %s already exists", item.ID)
	}
	r.items[item.ID] = item
	r.orders = append(r.orders, item.ID)

	return nil
}

func (r *ParticipantRepository) GetByID(_ context.Context, participantID string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[participantID]
	if !ok {
		return participant.Participant{}, false, nil
	}

	return p, true, nil
}

func (r *ParticipantRepository) ListByIDs(_ context.Context, seasonID string, participantIDs []string) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0, len(participantIDs))
	for _, id := range participantIDs {
		p, ok := r.items[id]
		if !ok || p.SeasonID != seasonID {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *ParticipantRepository) ListBySeason(_ context.Context, seasonID string) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0)
	for _, id := range r.orders {
		p := r.items[id]
		if p.SeasonID != seasonID {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *ParticipantRepository) SetDisabled(_ context.Context, participantID string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[participantID]
	if !ok {
		return fmt.Errorf("participant %s not found", participantID)
	}
	p.Disabled = disabled
	r.items[participantID] = p

	return nil
}

// setRating is reserved for the match repository, which owns live-rating
// writes and calls it while holding its own transaction lock.
func (r *ParticipantRepository) setRating(participantID string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[participantID]
	if !ok {
		return fmt.Errorf("participant %s not found", participantID)
	}
	p.Rating = value
	r.items[participantID] = p

	return nil
}
