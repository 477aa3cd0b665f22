package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/klubhaus/season-engine/internal/domain/match"
	"github.com/klubhaus/season-engine/internal/domain/participant"
	"github.com/klubhaus/season-engine/internal/domain/season"
)

// Standing is one participant's row in the season table, derived on read
// from the recorded matches rather than stored.
type Standing struct {
	ParticipantID string
	DisplayName   string
	Rating        float64
	Played        int
	Wins          int
	Draws         int
	Losses        int
}

// StandingService derives season tables from matches and their audit lines.
type StandingService struct {
	seasonRepo      season.Repository
	participantRepo participant.Repository
	matchRepo       match.Repository
}

func NewStandingService(
	seasonRepo season.Repository,
	participantRepo participant.Repository,
	matchRepo match.Repository,
) *StandingService {
	return &StandingService{
		seasonRepo:      seasonRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
	}
}

// BySeason returns the current table, sorted by rating descending with the
// participant id as a stable tiebreak.
func (s *StandingService) BySeason(ctx context.Context, seasonID string) ([]Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.BySeason")
	defer span.End()

	_, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	participants, err := s.participantRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	matches, err := s.matchRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	lines, err := s.matchRepo.ListParticipantLinesBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list match lines: %w", err)
	}

	outcomes := make(map[string]matchOutcome, len(matches))
	for _, item := range matches {
		outcomes[item.ID] = outcomeOf(item)
	}

	rows := make(map[string]*Standing, len(participants))
	for _, current := range participants {
		rows[current.ID] = &Standing{
			ParticipantID: current.ID,
			DisplayName:   current.DisplayName,
			Rating:        current.Rating,
		}
	}

	for _, line := range lines {
		row, ok := rows[line.ParticipantID]
		if !ok {
			continue
		}
		outcome, ok := outcomes[line.MatchID]
		if !ok {
			continue
		}
		row.Played++
		switch {
		case outcome.draw:
			row.Draws++
		case outcome.homeWon == (line.Side == match.SideHome):
			row.Wins++
		default:
			row.Losses++
		}
	}

	table := make([]Standing, 0, len(rows))
	for _, row := range rows {
		table = append(table, *row)
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Rating != table[j].Rating {
			return table[i].Rating > table[j].Rating
		}
		return table[i].ParticipantID < table[j].ParticipantID
	})

	return table, nil
}

type matchOutcome struct {
	draw    bool
	homeWon bool
}

func outcomeOf(item match.Match) matchOutcome {
	if item.HomeScore == item.AwayScore {
		return matchOutcome{draw: true}
	}
	return matchOutcome{homeWon: item.HomeScore > item.AwayScore}
}
