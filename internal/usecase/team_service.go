package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klubhaus/season-engine/internal/domain/participant"
	"github.com/klubhaus/season-engine/internal/domain/season"
	"github.com/klubhaus/season-engine/internal/domain/team"
	idgen "github.com/klubhaus/season-engine/internal/platform/id"
)

// TeamService resolves ad-hoc member sets to stable season-scoped teams.
// The same exact set always maps to the same team; a set differing by one
// member is a different team with its own independent rating.
type TeamService struct {
	seasonRepo      season.Repository
	participantRepo participant.Repository
	teamRepo        team.Repository
	ids             idgen.Generator
	now             func() time.Time
}

func NewTeamService(
	seasonRepo season.Repository,
	participantRepo participant.Repository,
	teamRepo team.Repository,
	ids idgen.Generator,
) *TeamService {
	return &TeamService{
		seasonRepo:      seasonRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		ids:             ids,
		now:             time.Now,
	}
}

// Resolve returns the team for the given member set, creating it seeded at
// the season's initial rating when that exact set has not played together
// before. A create that loses a race against a concurrent writer falls back
// to the winner's row.
func (s *TeamService) Resolve(ctx context.Context, seasonID string, memberIDs []string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Resolve")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return team.Team{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	key := team.CanonicalKey(memberIDs)
	members := strings.Split(key, ",")
	if key == "" || len(members) < 2 {
		return team.Team{}, fmt.Errorf("%w: a team needs at least two distinct members", ErrInvalidInput)
	}

	seasonItem, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	known, err := s.participantRepo.ListByIDs(ctx, seasonID, members)
	if err != nil {
		return team.Team{}, fmt.Errorf("list team members: %w", err)
	}
	byID := make(map[string]participant.Participant, len(known))
	for _, item := range known {
		byID[item.ID] = item
	}
	for _, memberID := range members {
		if _, ok := byID[memberID]; !ok {
			return team.Team{}, fmt.Errorf("%w: participant=%s", ErrNotFound, memberID)
		}
	}

	existing, found, err := s.teamRepo.GetByKey(ctx, seasonID, key)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team by member key: %w", err)
	}
	if found {
		return existing, nil
	}

	teamID, err := s.ids.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	created := team.Team{
		ID:        teamID,
		SeasonID:  seasonID,
		MemberIDs: members,
		Key:       key,
		Rating:    seasonItem.InitialRating,
		CreatedAt: s.now().UTC(),
	}
	if err := created.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.teamRepo.Create(ctx, created); err != nil {
		if errors.Is(err, team.ErrDuplicateMembers) {
			winner, found, refetchErr := s.teamRepo.GetByKey(ctx, seasonID, key)
			if refetchErr != nil {
				return team.Team{}, fmt.Errorf("refetch team after duplicate: %w", refetchErr)
			}
			if found {
				return winner, nil
			}
			return team.Team{}, fmt.Errorf("%w: team members=%s", ErrConflict, key)
		}
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	return created, nil
}

func (s *TeamService) Get(ctx context.Context, teamID string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Get")
	defer span.End()

	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	return item, nil
}

func (s *TeamService) ListBySeason(ctx context.Context, seasonID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListBySeason")
	defer span.End()

	items, err := s.teamRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list teams by season: %w", err)
	}

	return items, nil
}
