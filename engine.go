// Package engine is a rating and scheduling engine for competitive seasons:
// round-robin fixture generation, Elo and points-based rating updates, and
// transactional match application with exact reversal.
package engine

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/klubhaus/season-engine/internal/config"
	"github.com/klubhaus/season-engine/internal/domain/rating"
	"github.com/klubhaus/season-engine/internal/domain/schedule"
	"github.com/klubhaus/season-engine/internal/infrastructure/repository/memory"
	"github.com/klubhaus/season-engine/internal/infrastructure/repository/postgres"
	idgen "github.com/klubhaus/season-engine/internal/platform/id"
	"github.com/klubhaus/season-engine/internal/platform/logging"
	"github.com/klubhaus/season-engine/internal/usecase"
)

// Engine bundles the engine's services over a shared store.
type Engine struct {
	Seasons   *usecase.SeasonService
	Teams     *usecase.TeamService
	Matches   *usecase.MatchService
	Standings *usecase.StandingService
	Audit     *usecase.AuditService

	db     *sqlx.DB
	logger *logging.Logger
}

// New builds an engine backed by Postgres, using cfg for the connection
// and the logger. The caller owns the lifecycle and must Close it.
func New(ctx context.Context, cfg config.Config) (*Engine, error) {
	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	seasonRepo := postgres.NewSeasonRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	fixtureRepo := postgres.NewFixtureRepository(db)
	matchRepo := postgres.NewMatchRepository(db)

	ids := idgen.NewRandomGenerator()
	teams := usecase.NewTeamService(seasonRepo, participantRepo, teamRepo, ids)

	return &Engine{
		Seasons:   usecase.NewSeasonService(seasonRepo, participantRepo, fixtureRepo, matchRepo, ids, logger),
		Teams:     teams,
		Matches:   usecase.NewMatchService(seasonRepo, participantRepo, fixtureRepo, matchRepo, teams, ids, logger),
		Standings: usecase.NewStandingService(seasonRepo, participantRepo, matchRepo),
		Audit:     usecase.NewAuditService(seasonRepo, participantRepo, teamRepo, matchRepo, logger, cfg.AuditWorkerCount),
		db:        db,
		logger:    logger,
	}, nil
}

// NewMemory builds an engine over in-memory stores. Useful for tests and
// for embedding without a database.
func NewMemory() *Engine {
	logger := logging.Default()
	stores := memory.NewStores()

	ids := idgen.NewRandomGenerator()
	teams := usecase.NewTeamService(stores.Seasons, stores.Participants, stores.Teams, ids)

	return &Engine{
		Seasons:   usecase.NewSeasonService(stores.Seasons, stores.Participants, stores.Fixtures, stores.Matches, ids, logger),
		Teams:     teams,
		Matches:   usecase.NewMatchService(stores.Seasons, stores.Participants, stores.Fixtures, stores.Matches, teams, ids, logger),
		Standings: usecase.NewStandingService(stores.Seasons, stores.Participants, stores.Matches),
		Audit:     usecase.NewAuditService(stores.Seasons, stores.Participants, stores.Teams, stores.Matches, logger, 4),
		logger:    logger,
	}
}

func (e *Engine) Close() error {
	_ = e.logger.Sync()
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// GenerateFixtures runs the round-robin scheduler without touching storage.
func GenerateFixtures(participantIDs []string, cycles int) []schedule.Pairing {
	return schedule.RoundRobin(participantIDs, cycles)
}

// ComputeMatchRatings runs the rating calculator without touching storage.
func ComputeMatchRatings(in rating.Input) (rating.Result, error) {
	return rating.Compute(in)
}
