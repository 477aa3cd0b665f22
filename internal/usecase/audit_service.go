package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klubhaus/season-engine/internal/domain/match"
	"github.com/klubhaus/season-engine/internal/domain/participant"
	"github.com/klubhaus/season-engine/internal/domain/season"
	"github.com/klubhaus/season-engine/internal/domain/team"
	"github.com/klubhaus/season-engine/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

// ratingTolerance absorbs float accumulation noise when comparing a live
// rating against the replayed sum of its audit lines.
const ratingTolerance = 1e-6

const (
	auditStatusClean   = "clean"
	auditStatusDrifted = "drifted"
	auditStatusFailed  = "failed"
)

// AuditService replays the audit lines of whole seasons and flags any live
// rating that no longer equals its line history. Seasons are verified
// concurrently on a worker pool.
type AuditService struct {
	seasonRepo      season.Repository
	participantRepo participant.Repository
	teamRepo        team.Repository
	matchRepo       match.Repository
	logger          *logging.Logger
	workerCount     int
}

type VerifyInput struct {
	// SeasonIDs limits the audit; empty means every season.
	SeasonIDs  []string
	MaxWorkers int
}

// RatingDrift is one entity whose live rating disagrees with its replayed
// line history.
type RatingDrift struct {
	EntityID string
	Kind     string
	Expected float64
	Actual   float64
}

type SeasonAuditReport struct {
	SeasonID   string
	Status     string
	Message    string
	Drifts     []RatingDrift
	DurationMs int64
}

type VerifyResult struct {
	SeasonCount  int
	WorkerCount  int
	CleanCount   int
	DriftedCount int
	FailedCount  int
	Reports      []SeasonAuditReport
}

func NewAuditService(
	seasonRepo season.Repository,
	participantRepo participant.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	logger *logging.Logger,
	workerCount int,
) *AuditService {
	if logger == nil {
		logger = logging.Default()
	}
	if workerCount < 1 {
		workerCount = 4
	}
	return &AuditService{
		seasonRepo:      seasonRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		matchRepo:       matchRepo,
		logger:          logger,
		workerCount:     workerCount,
	}
}

func (s *AuditService) VerifySeasons(ctx context.Context, in VerifyInput) (VerifyResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuditService.VerifySeasons")
	defer span.End()

	seasonIDs, err := s.resolveSeasonIDs(ctx, in.SeasonIDs)
	if err != nil {
		return VerifyResult{}, err
	}

	workerCount := in.MaxWorkers
	if workerCount < 1 {
		workerCount = s.workerCount
	}
	if workerCount > len(seasonIDs) && len(seasonIDs) > 0 {
		workerCount = len(seasonIDs)
	}

	result := VerifyResult{
		SeasonCount: len(seasonIDs),
		WorkerCount: workerCount,
		Reports:     make([]SeasonAuditReport, 0, len(seasonIDs)),
	}
	if len(seasonIDs) == 0 {
		return result, nil
	}

	reports := make(chan SeasonAuditReport, len(seasonIDs))

	var cleanCount atomic.Int32
	var driftedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, seasonID := range seasonIDs {
		seasonID := seasonID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			report := s.verifySeason(ctx, seasonID)
			report.DurationMs = time.Since(start).Milliseconds()

			switch report.Status {
			case auditStatusClean:
				cleanCount.Add(1)
			case auditStatusDrifted:
				driftedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			reports <- report
		}); err != nil {
			workers.Done()
			return VerifyResult{}, fmt.Errorf("submit season to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(reports)

	for report := range reports {
		result.Reports = append(result.Reports, report)
	}
	sort.SliceStable(result.Reports, func(i, j int) bool {
		return result.Reports[i].SeasonID < result.Reports[j].SeasonID
	})

	result.CleanCount = int(cleanCount.Load())
	result.DriftedCount = int(driftedCount.Load())
	result.FailedCount = int(failedCount.Load())

	if result.DriftedCount > 0 {
		s.logger.WarnContext(ctx, "rating audit found drifted seasons",
			"seasons", result.SeasonCount,
			"drifted", result.DriftedCount,
		)
	}

	return result, nil
}

func (s *AuditService) resolveSeasonIDs(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		for _, seasonID := range requested {
			_, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
			if err != nil {
				return nil, fmt.Errorf("get season: %w", err)
			}
			if !exists {
				return nil, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
			}
		}
		return requested, nil
	}

	seasons, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	ids := make([]string, 0, len(seasons))
	for _, item := range seasons {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (s *AuditService) verifySeason(ctx context.Context, seasonID string) SeasonAuditReport {
	report := SeasonAuditReport{SeasonID: seasonID, Status: auditStatusClean}

	seasonItem, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		report.Status = auditStatusFailed
		report.Message = err.Error()
		return report
	}
	if !exists {
		report.Status = auditStatusFailed
		report.Message = "season vanished during audit"
		return report
	}

	participants, err := s.participantRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		report.Status = auditStatusFailed
		report.Message = err.Error()
		return report
	}
	teams, err := s.teamRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		report.Status = auditStatusFailed
		report.Message = err.Error()
		return report
	}
	participantLines, err := s.matchRepo.ListParticipantLinesBySeason(ctx, seasonID)
	if err != nil {
		report.Status = auditStatusFailed
		report.Message = err.Error()
		return report
	}
	teamLines, err := s.matchRepo.ListTeamLinesBySeason(ctx, seasonID)
	if err != nil {
		report.Status = auditStatusFailed
		report.Message = err.Error()
		return report
	}

	participantDeltas := make(map[string]float64, len(participants))
	for _, line := range participantLines {
		participantDeltas[line.ParticipantID] += line.RatingAfter - line.RatingBefore
	}
	teamDeltas := make(map[string]float64, len(teams))
	for _, line := range teamLines {
		teamDeltas[line.TeamID] += line.RatingAfter - line.RatingBefore
	}

	for _, current := range participants {
		expected := seasonItem.InitialRating + participantDeltas[current.ID]
		if math.Abs(expected-current.Rating) > ratingTolerance {
			report.Drifts = append(report.Drifts, RatingDrift{
				EntityID: current.ID,
				Kind:     "participant",
				Expected: expected,
				Actual:   current.Rating,
			})
		}
	}
	for _, current := range teams {
		expected := seasonItem.InitialRating + teamDeltas[current.ID]
		if math.Abs(expected-current.Rating) > ratingTolerance {
			report.Drifts = append(report.Drifts, RatingDrift{
				EntityID: current.ID,
				Kind:     "team",
				Expected: expected,
				Actual:   current.Rating,
			})
		}
	}

	if len(report.Drifts) > 0 {
		sort.SliceStable(report.Drifts, func(i, j int) bool {
			return report.Drifts[i].EntityID < report.Drifts[j].EntityID
		})
		report.Status = auditStatusDrifted
		report.Message = fmt.Sprintf("%d rating(s) disagree with their line history", len(report.Drifts))
	}

	return report
}
