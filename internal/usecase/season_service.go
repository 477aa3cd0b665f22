package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/klubhaus/season-engine/internal/domain/fixture"
	"github.com/klubhaus/season-engine/internal/domain/match"
	"github.com/klubhaus/season-engine/internal/domain/participant"
	"github.com/klubhaus/season-engine/internal/domain/rating"
	"github.com/klubhaus/season-engine/internal/domain/schedule"
	"github.com/klubhaus/season-engine/internal/domain/season"
	idgen "github.com/klubhaus/season-engine/internal/platform/id"
	"github.com/klubhaus/season-engine/internal/platform/logging"
)

// SeasonService owns the season lifecycle: creation with participant
// seeding and, for round-based seasons, the one-time fixture plan; the
// closed flag; and the scoring-immutability guard.
type SeasonService struct {
	seasonRepo      season.Repository
	participantRepo participant.Repository
	fixtureRepo     fixture.Repository
	matchRepo       match.Repository
	ids             idgen.Generator
	validate        *validator.Validate
	logger          *logging.Logger
	now             func() time.Time
}

type SeasonPlayerInput struct {
	PlayerID    string `validate:"required"`
	DisplayName string
}

type CreateSeasonInput struct {
	Name                 string `validate:"required"`
	Regime               string `validate:"required"`
	KFactor              float64
	InitialRating        float64
	CyclesPerParticipant int                 `validate:"min=0"`
	Players              []SeasonPlayerInput `validate:"omitempty,dive"`
}

// CreatedSeason is the full result of season creation: the configuration,
// the seeded participants, and the generated fixture plan (empty for Elo
// seasons, which schedule nothing in advance).
type CreatedSeason struct {
	Season       season.Season
	Participants []participant.Participant
	Fixtures     []fixture.Fixture
}

type UpdateScoringInput struct {
	Regime               string `validate:"required"`
	KFactor              float64
	InitialRating        float64
	CyclesPerParticipant int `validate:"min=0"`
}

func NewSeasonService(
	seasonRepo season.Repository,
	participantRepo participant.Repository,
	fixtureRepo fixture.Repository,
	matchRepo match.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonService{
		seasonRepo:      seasonRepo,
		participantRepo: participantRepo,
		fixtureRepo:     fixtureRepo,
		matchRepo:       matchRepo,
		ids:             ids,
		validate:        validator.New(),
		logger:          logger,
		now:             time.Now,
	}
}

func (s *SeasonService) Create(ctx context.Context, in CreateSeasonInput) (CreatedSeason, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Create")
	defer span.End()

	if err := s.validate.StructCtx(ctx, in); err != nil {
		return CreatedSeason{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	regime, err := rating.ParseRegime(in.Regime)
	if err != nil {
		return CreatedSeason{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := rejectDuplicatePlayers(in.Players); err != nil {
		return CreatedSeason{}, err
	}

	seasonID, err := s.ids.NewID()
	if err != nil {
		return CreatedSeason{}, fmt.Errorf("generate season id: %w", err)
	}

	item := season.Season{
		ID:                   seasonID,
		Name:                 strings.TrimSpace(in.Name),
		Regime:               regime,
		KFactor:              in.KFactor,
		InitialRating:        in.InitialRating,
		CyclesPerParticipant: in.CyclesPerParticipant,
		CreatedAt:            s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return CreatedSeason{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if item.RoundBased() && len(in.Players) < 2 {
		return CreatedSeason{}, fmt.Errorf("%w: a round-based season needs at least two participants", ErrInvalidInput)
	}

	if err := s.seasonRepo.Create(ctx, item); err != nil {
		return CreatedSeason{}, fmt.Errorf("create season: %w", err)
	}

	participants := make([]participant.Participant, 0, len(in.Players))
	for _, player := range in.Players {
		created, err := s.createParticipant(ctx, item, player)
		if err != nil {
			return CreatedSeason{}, err
		}
		participants = append(participants, created)
	}

	var fixtures []fixture.Fixture
	if item.RoundBased() {
		fixtures, err = s.generateFixtures(ctx, item, participants)
		if err != nil {
			return CreatedSeason{}, err
		}
	}

	s.logger.InfoContext(ctx, "season created",
		"season_id", item.ID,
		"regime", string(item.Regime),
		"participants", len(participants),
		"fixtures", len(fixtures),
	)

	return CreatedSeason{Season: item, Participants: participants, Fixtures: fixtures}, nil
}

func (s *SeasonService) Get(ctx context.Context, seasonID string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Get")
	defer span.End()

	item, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	return item, nil
}

func (s *SeasonService) List(ctx context.Context) ([]season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.List")
	defer span.End()

	items, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}

	return items, nil
}

func (s *SeasonService) Close(ctx context.Context, seasonID string) error {
	return s.setClosed(ctx, seasonID, true)
}

func (s *SeasonService) Reopen(ctx context.Context, seasonID string) error {
	return s.setClosed(ctx, seasonID, false)
}

// UpdateScoring replaces the scoring configuration of a season that has not
// started yet. Once any match exists, or a fixture plan has been generated,
// the configuration is frozen.
func (s *SeasonService) UpdateScoring(ctx context.Context, seasonID string, in UpdateScoringInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.UpdateScoring")
	defer span.End()

	if err := s.validate.StructCtx(ctx, in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	item, err := s.Get(ctx, seasonID)
	if err != nil {
		return err
	}

	played, err := s.matchRepo.CountBySeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("count matches: %w", err)
	}
	if played > 0 {
		return fmt.Errorf("%w: season %s already has recorded matches", ErrConflict, seasonID)
	}
	planned, err := s.fixtureRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("list fixtures: %w", err)
	}
	if len(planned) > 0 {
		return fmt.Errorf("%w: season %s already has a fixture plan", ErrConflict, seasonID)
	}

	regime, err := rating.ParseRegime(in.Regime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item.Regime = regime
	item.KFactor = in.KFactor
	item.InitialRating = in.InitialRating
	item.CyclesPerParticipant = in.CyclesPerParticipant
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.seasonRepo.UpdateScoring(ctx, seasonID, season.Scoring{
		Regime:               string(regime),
		KFactor:              in.KFactor,
		InitialRating:        in.InitialRating,
		CyclesPerParticipant: in.CyclesPerParticipant,
	}); err != nil {
		return fmt.Errorf("update season scoring: %w", err)
	}

	return nil
}

// AddParticipant enrolls a new player into a season. Round-based seasons
// refuse late entries once their fixture plan exists; regenerating the plan
// mid-season would orphan played fixtures.
func (s *SeasonService) AddParticipant(ctx context.Context, seasonID string, player SeasonPlayerInput) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.AddParticipant")
	defer span.End()

	if err := s.validate.StructCtx(ctx, player); err != nil {
		return participant.Participant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	item, err := s.Get(ctx, seasonID)
	if err != nil {
		return participant.Participant{}, err
	}
	if item.Closed {
		return participant.Participant{}, fmt.Errorf("%w: season=%s", ErrSeasonClosed, seasonID)
	}
	if item.RoundBased() {
		planned, err := s.fixtureRepo.ListBySeason(ctx, seasonID)
		if err != nil {
			return participant.Participant{}, fmt.Errorf("list fixtures: %w", err)
		}
		if len(planned) > 0 {
			return participant.Participant{}, fmt.Errorf("%w: season %s already has a fixture plan", ErrConflict, seasonID)
		}
	}

	existing, err := s.participantRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("list participants: %w", err)
	}
	for _, current := range existing {
		if current.PlayerID == player.PlayerID {
			return participant.Participant{}, fmt.Errorf("%w: player %s already enrolled", ErrConflict, player.PlayerID)
		}
	}

	return s.createParticipant(ctx, item, player)
}

func (s *SeasonService) SetParticipantDisabled(ctx context.Context, participantID string, disabled bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.SetParticipantDisabled")
	defer span.End()

	_, exists, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}

	if err := s.participantRepo.SetDisabled(ctx, participantID, disabled); err != nil {
		return fmt.Errorf("set participant disabled: %w", err)
	}

	return nil
}

func (s *SeasonService) ListParticipants(ctx context.Context, seasonID string) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListParticipants")
	defer span.End()

	if _, err := s.Get(ctx, seasonID); err != nil {
		return nil, err
	}
	items, err := s.participantRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	return items, nil
}

func (s *SeasonService) ListFixtures(ctx context.Context, seasonID string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListFixtures")
	defer span.End()

	if _, err := s.Get(ctx, seasonID); err != nil {
		return nil, err
	}
	items, err := s.fixtureRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}

	return items, nil
}

func (s *SeasonService) setClosed(ctx context.Context, seasonID string, closed bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.setClosed")
	defer span.End()

	if _, err := s.Get(ctx, seasonID); err != nil {
		return err
	}
	if err := s.seasonRepo.SetClosed(ctx, seasonID, closed); err != nil {
		return fmt.Errorf("set season closed: %w", err)
	}

	return nil
}

func (s *SeasonService) createParticipant(ctx context.Context, item season.Season, player SeasonPlayerInput) (participant.Participant, error) {
	participantID, err := s.ids.NewID()
	if err != nil {
		return participant.Participant{}, fmt.Errorf("generate participant id: %w", err)
	}

	created := participant.Participant{
		ID:          participantID,
		SeasonID:    item.ID,
		PlayerID:    strings.TrimSpace(player.PlayerID),
		DisplayName: strings.TrimSpace(player.DisplayName),
		Rating:      item.InitialRating,
		CreatedAt:   s.now().UTC(),
	}
	if err := created.Validate(); err != nil {
		return participant.Participant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.participantRepo.Create(ctx, created); err != nil {
		return participant.Participant{}, fmt.Errorf("create participant: %w", err)
	}

	return created, nil
}

func (s *SeasonService) generateFixtures(ctx context.Context, item season.Season, participants []participant.Participant) ([]fixture.Fixture, error) {
	ids := make([]string, 0, len(participants))
	for _, current := range participants {
		if current.Disabled {
			continue
		}
		ids = append(ids, current.ID)
	}

	pairings := schedule.RoundRobin(ids, item.CyclesPerParticipant)
	fixtures := make([]fixture.Fixture, 0, len(pairings))
	for _, pairing := range pairings {
		fixtureID, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate fixture id: %w", err)
		}
		fixtures = append(fixtures, fixture.Fixture{
			ID:                fixtureID,
			SeasonID:          item.ID,
			Round:             pairing.Round,
			HomeParticipantID: pairing.HomeID,
			AwayParticipantID: pairing.AwayID,
		})
	}

	if err := s.fixtureRepo.BulkInsert(ctx, fixtures); err != nil {
		return nil, fmt.Errorf("bulk insert fixtures: %w", err)
	}

	return fixtures, nil
}

func rejectDuplicatePlayers(players []SeasonPlayerInput) error {
	seen := make(map[string]struct{}, len(players))
	for _, player := range players {
		playerID := strings.TrimSpace(player.PlayerID)
		if _, ok := seen[playerID]; ok {
			return fmt.Errorf("%w: player %s listed twice", ErrInvalidInput, playerID)
		}
		seen[playerID] = struct{}{}
	}

	return nil
}
