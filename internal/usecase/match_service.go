package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/klubhaus/season-engine/internal/domain/fixture"
	"github.com/klubhaus/season-engine/internal/domain/match"
	"github.com/klubhaus/season-engine/internal/domain/participant"
	"github.com/klubhaus/season-engine/internal/domain/rating"
	"github.com/klubhaus/season-engine/internal/domain/season"
	idgen "github.com/klubhaus/season-engine/internal/platform/id"
	"github.com/klubhaus/season-engine/internal/platform/lock"
	"github.com/klubhaus/season-engine/internal/platform/logging"
)

// MatchService applies and reverts match results. Apply loads current
// ratings, runs the calculator at individual and, when both sides field
// more than one participant, team granularity, then persists the match,
// its before/after audit lines and the live-rating updates in one storage
// transaction. Revert restores every snapshot and removes the rows.
//
// Apply and Revert for the same season are serialized through a keyed lock
// arena, so concurrent submissions cannot interleave their read-compute-
// write cycles; different seasons proceed in parallel.
type MatchService struct {
	seasonRepo      season.Repository
	participantRepo participant.Repository
	fixtureRepo     fixture.Repository
	matchRepo       match.Repository
	teams           *TeamService
	ids             idgen.Generator
	locks           *lock.Keyed
	validate        *validator.Validate
	logger          *logging.Logger
	now             func() time.Time
}

type ApplyMatchInput struct {
	SeasonID           string   `validate:"required"`
	FixtureID          string   `validate:"omitempty"`
	HomeParticipantIDs []string `validate:"required,min=1,dive,required"`
	AwayParticipantIDs []string `validate:"required,min=1,dive,required"`
	HomeScore          int      `validate:"min=0"`
	AwayScore          int      `validate:"min=0"`
	CreatedBy          string
}

func NewMatchService(
	seasonRepo season.Repository,
	participantRepo participant.Repository,
	fixtureRepo fixture.Repository,
	matchRepo match.Repository,
	teams *TeamService,
	ids idgen.Generator,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		seasonRepo:      seasonRepo,
		participantRepo: participantRepo,
		fixtureRepo:     fixtureRepo,
		matchRepo:       matchRepo,
		teams:           teams,
		ids:             ids,
		locks:           lock.NewKeyed(),
		validate:        validator.New(),
		logger:          logger,
		now:             time.Now,
	}
}

// Apply records one match result and moves every touched rating.
func (s *MatchService) Apply(ctx context.Context, in ApplyMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Apply")
	defer span.End()

	if err := s.validate.StructCtx(ctx, in); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateSides(in.HomeParticipantIDs, in.AwayParticipantIDs); err != nil {
		return match.Match{}, err
	}

	unlock := s.locks.Lock(in.SeasonID)
	defer unlock()

	seasonItem, exists, err := s.seasonRepo.GetByID(ctx, in.SeasonID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: season=%s", ErrNotFound, in.SeasonID)
	}
	if seasonItem.Closed {
		return match.Match{}, fmt.Errorf("%w: season=%s", ErrSeasonClosed, in.SeasonID)
	}
	if err := validateSideSizes(seasonItem.Regime, in.HomeParticipantIDs, in.AwayParticipantIDs); err != nil {
		return match.Match{}, err
	}

	if in.FixtureID != "" {
		if err := s.checkFixture(ctx, seasonItem.ID, in); err != nil {
			return match.Match{}, err
		}
	}

	homeEntities, err := s.loadEntities(ctx, seasonItem.ID, in.HomeParticipantIDs)
	if err != nil {
		return match.Match{}, err
	}
	awayEntities, err := s.loadEntities(ctx, seasonItem.ID, in.AwayParticipantIDs)
	if err != nil {
		return match.Match{}, err
	}

	individual, err := rating.Compute(rating.Input{
		Regime:    seasonItem.Regime,
		KFactor:   seasonItem.KFactor,
		HomeScore: in.HomeScore,
		AwayScore: in.AwayScore,
		Home:      homeEntities,
		Away:      awayEntities,
	})
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	rec := match.ApplyRecord{
		Match: match.Match{
			ID:        matchID,
			SeasonID:  seasonItem.ID,
			HomeScore: in.HomeScore,
			AwayScore: in.AwayScore,
			CreatedBy: in.CreatedBy,
			CreatedAt: s.now().UTC(),
		},
	}
	if in.FixtureID != "" {
		fixtureID := in.FixtureID
		rec.Match.FixtureID = &fixtureID
	}
	if seasonItem.Regime.IsElo() {
		expectedHome, expectedAway := individual.ExpectedHome, individual.ExpectedAway
		rec.Match.ExpectedHome = &expectedHome
		rec.Match.ExpectedAway = &expectedAway
	}
	appendParticipantChanges(&rec, matchID, match.SideHome, individual.Home)
	appendParticipantChanges(&rec, matchID, match.SideAway, individual.Away)

	// Team granularity: only when both sides are true multi-participant
	// sides. The teams exchange rating on their own track, driven by the
	// same calculator and the same score.
	if len(in.HomeParticipantIDs) > 1 && len(in.AwayParticipantIDs) > 1 {
		if err := s.resolveTeamsAndScore(ctx, &rec, seasonItem, in); err != nil {
			return match.Match{}, err
		}
	}

	if err := s.matchRepo.Apply(ctx, rec); err != nil {
		if errors.Is(err, match.ErrFixtureTaken) {
			return match.Match{}, fmt.Errorf("%w: fixture=%s", ErrConflict, in.FixtureID)
		}
		return match.Match{}, fmt.Errorf("apply match: %w", err)
	}

	s.logger.InfoContext(ctx, "match applied",
		"season_id", seasonItem.ID,
		"match_id", matchID,
		"home_score", in.HomeScore,
		"away_score", in.AwayScore,
	)

	return rec.Match, nil
}

// Revert deletes a match and restores every touched rating to the snapshot
// taken before the match applied.
func (s *MatchService) Revert(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Revert")
	defer span.End()

	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	unlock := s.locks.Lock(item.SeasonID)
	defer unlock()

	// Re-check under the lock: another revert may have won the race.
	if _, exists, err = s.matchRepo.GetByID(ctx, matchID); err != nil {
		return fmt.Errorf("get match: %w", err)
	} else if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	if err := s.matchRepo.Revert(ctx, matchID); err != nil {
		return fmt.Errorf("revert match: %w", err)
	}

	s.logger.InfoContext(ctx, "match reverted", "season_id", item.SeasonID, "match_id", matchID)

	return nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	return item, nil
}

func (s *MatchService) ListBySeason(ctx context.Context, seasonID string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListBySeason")
	defer span.End()

	items, err := s.matchRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list matches by season: %w", err)
	}

	return items, nil
}

func (s *MatchService) ListParticipantLines(ctx context.Context, matchID string) ([]match.ParticipantLine, error) {
	items, err := s.matchRepo.ListParticipantLines(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list participant lines: %w", err)
	}
	return items, nil
}

func (s *MatchService) ListTeamLines(ctx context.Context, matchID string) ([]match.TeamLine, error) {
	items, err := s.matchRepo.ListTeamLines(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list team lines: %w", err)
	}
	return items, nil
}

func (s *MatchService) checkFixture(ctx context.Context, seasonID string, in ApplyMatchInput) error {
	item, exists, err := s.fixtureRepo.GetByID(ctx, in.FixtureID)
	if err != nil {
		return fmt.Errorf("get fixture: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: fixture=%s", ErrNotFound, in.FixtureID)
	}
	if item.SeasonID != seasonID {
		return fmt.Errorf("%w: fixture %s belongs to another season", ErrInvalidInput, in.FixtureID)
	}
	if item.MatchID != nil {
		return fmt.Errorf("%w: fixture=%s already has match=%s", ErrConflict, in.FixtureID, *item.MatchID)
	}
	if len(in.HomeParticipantIDs) == 1 && len(in.AwayParticipantIDs) == 1 {
		if item.HomeParticipantID != in.HomeParticipantIDs[0] || item.AwayParticipantID != in.AwayParticipantIDs[0] {
			return fmt.Errorf("%w: submitted sides do not match fixture %s", ErrInvalidInput, in.FixtureID)
		}
	}

	return nil
}

func (s *MatchService) loadEntities(ctx context.Context, seasonID string, participantIDs []string) ([]rating.Entity, error) {
	items, err := s.participantRepo.ListByIDs(ctx, seasonID, participantIDs)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	byID := make(map[string]participant.Participant, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := make([]rating.Entity, 0, len(participantIDs))
	for _, participantID := range participantIDs {
		item, ok := byID[participantID]
		if !ok {
			return nil, fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
		}
		out = append(out, rating.Entity{ID: item.ID, Rating: item.Rating})
	}

	return out, nil
}

func (s *MatchService) resolveTeamsAndScore(ctx context.Context, rec *match.ApplyRecord, seasonItem season.Season, in ApplyMatchInput) error {
	homeTeam, err := s.teams.Resolve(ctx, seasonItem.ID, in.HomeParticipantIDs)
	if err != nil {
		return fmt.Errorf("resolve home team: %w", err)
	}
	awayTeam, err := s.teams.Resolve(ctx, seasonItem.ID, in.AwayParticipantIDs)
	if err != nil {
		return fmt.Errorf("resolve away team: %w", err)
	}

	teamLevel, err := rating.Compute(rating.Input{
		Regime:    seasonItem.Regime,
		KFactor:   seasonItem.KFactor,
		HomeScore: in.HomeScore,
		AwayScore: in.AwayScore,
		Home:      []rating.Entity{{ID: homeTeam.ID, Rating: homeTeam.Rating}},
		Away:      []rating.Entity{{ID: awayTeam.ID, Rating: awayTeam.Rating}},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	appendTeamChanges(rec, rec.Match.ID, match.SideHome, teamLevel.Home)
	appendTeamChanges(rec, rec.Match.ID, match.SideAway, teamLevel.Away)

	return nil
}

func validateSides(homeIDs, awayIDs []string) error {
	seen := make(map[string]match.Side, len(homeIDs)+len(awayIDs))
	for _, id := range homeIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: participant %s listed twice on the home side", ErrInvalidInput, id)
		}
		seen[id] = match.SideHome
	}
	for _, id := range awayIDs {
		if side, ok := seen[id]; ok {
			if side == match.SideHome {
				return fmt.Errorf("%w: participant %s cannot play on both sides", ErrInvalidInput, id)
			}
			return fmt.Errorf("%w: participant %s listed twice on the away side", ErrInvalidInput, id)
		}
		seen[id] = match.SideAway
	}

	return nil
}

func validateSideSizes(regime rating.Regime, homeIDs, awayIDs []string) error {
	if regime == rating.RegimeEloIndividualVsTeam {
		// Asymmetric by construction: one side is the aggregate, so side
		// sizes may differ, but at least one side must be a single entity.
		if len(homeIDs) > 1 && len(awayIDs) > 1 {
			return fmt.Errorf("%w: regime %s needs one side to be a single aggregate participant", ErrInvalidInput, regime)
		}
		return nil
	}
	if len(homeIDs) != len(awayIDs) {
		return fmt.Errorf("%w: sides must field the same number of participants", ErrInvalidInput)
	}

	return nil
}

func appendParticipantChanges(rec *match.ApplyRecord, matchID string, side match.Side, changes []rating.Change) {
	for _, change := range changes {
		rec.ParticipantLines = append(rec.ParticipantLines, match.ParticipantLine{
			MatchID:       matchID,
			ParticipantID: change.ID,
			Side:          side,
			RatingBefore:  change.Before,
			RatingAfter:   change.After,
		})
		rec.ParticipantRatings = append(rec.ParticipantRatings, match.RatingUpdate{ID: change.ID, Rating: change.After})
	}
}

func appendTeamChanges(rec *match.ApplyRecord, matchID string, side match.Side, changes []rating.Change) {
	for _, change := range changes {
		rec.TeamLines = append(rec.TeamLines, match.TeamLine{
			MatchID:      matchID,
			TeamID:       change.ID,
			Side:         side,
			RatingBefore: change.Before,
			RatingAfter:  change.After,
		})
		rec.TeamRatings = append(rec.TeamRatings, match.RatingUpdate{ID: change.ID, Rating: change.After})
	}
}
