package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/klubhaus/season-engine/internal/domain/match"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Apply lands the match row, its audit lines, the live-rating updates and
// the optional fixture binding in one transaction. The conditional fixture
// update doubles as the commit-time duplicate check.
func (r *MatchRepository) Apply(ctx context.Context, rec match.ApplyRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx apply match")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertMatch = `INSERT INTO matches (id, season_id, fixture_id, home_score, away_score, expected_home, expected_away, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := tx.ExecContext(ctx, insertMatch,
		rec.Match.ID,
		rec.Match.SeasonID,
		rec.Match.FixtureID,
		rec.Match.HomeScore,
		rec.Match.AwayScore,
		rec.Match.ExpectedHome,
		rec.Match.ExpectedAway,
		rec.Match.CreatedBy,
		rec.Match.CreatedAt,
	); err != nil {
		return crerr.Wrap(err, "insert match")
	}

	if rec.Match.FixtureID != nil {
		const bindFixture = `UPDATE fixtures SET match_id = $1 WHERE id = $2 AND match_id IS NULL`
		result, err := tx.ExecContext(ctx, bindFixture, rec.Match.ID, *rec.Match.FixtureID)
		if err != nil {
			return crerr.Wrap(err, "bind fixture to match")
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return crerr.Wrap(err, "rows affected bind fixture")
		}
		if affected == 0 {
			return match.ErrFixtureTaken
		}
	}

	if len(rec.ParticipantLines) > 0 {
		const insertLines = `INSERT INTO match_participant_lines (match_id, participant_id, side, rating_before, rating_after)
VALUES (:match_id, :participant_id, :side, :rating_before, :rating_after)`
		rows := make([]participantLineTableModel, 0, len(rec.ParticipantLines))
		for _, line := range rec.ParticipantLines {
			rows = append(rows, participantLineTableModel{
				MatchID:       line.MatchID,
				ParticipantID: line.ParticipantID,
				Side:          string(line.Side),
				RatingBefore:  line.RatingBefore,
				RatingAfter:   line.RatingAfter,
			})
		}
		if _, err := tx.NamedExecContext(ctx, insertLines, rows); err != nil {
			return crerr.Wrap(err, "insert match participant lines")
		}
	}

	if len(rec.TeamLines) > 0 {
		const insertLines = `INSERT INTO match_team_lines (match_id, team_id, side, rating_before, rating_after)
VALUES (:match_id, :team_id, :side, :rating_before, :rating_after)`
		rows := make([]teamLineTableModel, 0, len(rec.TeamLines))
		for _, line := range rec.TeamLines {
			rows = append(rows, teamLineTableModel{
				MatchID:      line.MatchID,
				TeamID:       line.TeamID,
				Side:         string(line.Side),
				RatingBefore: line.RatingBefore,
				RatingAfter:  line.RatingAfter,
			})
		}
		if _, err := tx.NamedExecContext(ctx, insertLines, rows); err != nil {
			return crerr.Wrap(err, "insert match team lines")
		}
	}

	if err := applyRatingUpdates(ctx, tx, "participants", rec.ParticipantRatings); err != nil {
		return err
	}
	if err := applyRatingUpdates(ctx, tx, "teams", rec.TeamRatings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit apply match tx")
	}

	return nil
}

// Revert restores every line's before-snapshot onto the live ratings, then
// removes the lines, the fixture binding and the match row.
func (r *MatchRepository) Revert(ctx context.Context, matchID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx revert match")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockMatch = `SELECT * FROM matches WHERE id = $1 FOR UPDATE`
	var row matchTableModel
	if err := tx.GetContext(ctx, &row, lockMatch, matchID); err != nil {
		if isNotFound(err) {
			return crerr.Newf("match %s not found", matchID)
		}
		return crerr.Wrap(err, "lock match for revert")
	}

	const restoreParticipants = `UPDATE participants p
SET rating = l.rating_before
FROM match_participant_lines l
WHERE l.match_id = $1 AND l.participant_id = p.id`
	if _, err := tx.ExecContext(ctx, restoreParticipants, matchID); err != nil {
		return crerr.Wrap(err, "restore participant ratings")
	}

	const restoreTeams = `UPDATE teams t
SET rating = l.rating_before
FROM match_team_lines l
WHERE l.match_id = $1 AND l.team_id = t.id`
	if _, err := tx.ExecContext(ctx, restoreTeams, matchID); err != nil {
		return crerr.Wrap(err, "restore team ratings")
	}

	const unbindFixture = `UPDATE fixtures SET match_id = NULL WHERE match_id = $1`
	if _, err := tx.ExecContext(ctx, unbindFixture, matchID); err != nil {
		return crerr.Wrap(err, "unbind fixture")
	}

	const deleteParticipantLines = `DELETE FROM match_participant_lines WHERE match_id = $1`
	if _, err := tx.ExecContext(ctx, deleteParticipantLines, matchID); err != nil {
		return crerr.Wrap(err, "delete match participant lines")
	}
	const deleteTeamLines = `DELETE FROM match_team_lines WHERE match_id = $1`
	if _, err := tx.ExecContext(ctx, deleteTeamLines, matchID); err != nil {
		return crerr.Wrap(err, "delete match team lines")
	}
	const deleteMatch = `DELETE FROM matches WHERE id = $1`
	if _, err := tx.ExecContext(ctx, deleteMatch, matchID); err != nil {
		return crerr.Wrap(err, "delete match")
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit revert match tx")
	}

	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	const query = `SELECT * FROM matches WHERE id = $1`

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, matchID); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, crerr.Wrap(err, "get match by id")
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListBySeason(ctx context.Context, seasonID string) ([]match.Match, error) {
	const query = `SELECT * FROM matches WHERE season_id = $1 ORDER BY created_at, id`

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, seasonID); err != nil {
		return nil, crerr.Wrap(err, "select matches by season")
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}

	return out, nil
}

func (r *MatchRepository) CountBySeason(ctx context.Context, seasonID string) (int, error) {
	const query = `SELECT COUNT(*) FROM matches WHERE season_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, seasonID); err != nil {
		return 0, crerr.Wrap(err, "count matches by season")
	}

	return count, nil
}

func (r *MatchRepository) ListParticipantLines(ctx context.Context, matchID string) ([]match.ParticipantLine, error) {
	const query = `SELECT * FROM match_participant_lines WHERE match_id = $1 ORDER BY participant_id`

	var rows []participantLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, crerr.Wrap(err, "select match participant lines")
	}

	out := make([]match.ParticipantLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantLineFromRow(row))
	}

	return out, nil
}

func (r *MatchRepository) ListTeamLines(ctx context.Context, matchID string) ([]match.TeamLine, error) {
	const query = `SELECT * FROM match_team_lines WHERE match_id = $1 ORDER BY team_id`

	var rows []teamLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, crerr.Wrap(err, "select match team lines")
	}

	out := make([]match.TeamLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamLineFromRow(row))
	}

	return out, nil
}

func (r *MatchRepository) ListParticipantLinesBySeason(ctx context.Context, seasonID string) ([]match.ParticipantLine, error) {
	const query = `SELECT l.* FROM match_participant_lines l
JOIN matches m ON m.id = l.match_id
WHERE m.season_id = $1
ORDER BY m.created_at, l.participant_id`

	var rows []participantLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, seasonID); err != nil {
		return nil, crerr.Wrap(err, "select match participant lines by season")
	}

	out := make([]match.ParticipantLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantLineFromRow(row))
	}

	return out, nil
}

func (r *MatchRepository) ListTeamLinesBySeason(ctx context.Context, seasonID string) ([]match.TeamLine, error) {
	const query = `SELECT l.* FROM match_team_lines l
JOIN matches m ON m.id = l.match_id
WHERE m.season_id = $1
ORDER BY m.created_at, l.team_id`

	var rows []teamLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, seasonID); err != nil {
		return nil, crerr.Wrap(err, "select match team lines by season")
	}

	out := make([]match.TeamLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamLineFromRow(row))
	}

	return out, nil
}

func applyRatingUpdates(ctx context.Context, tx *sqlx.Tx, table string, updates []match.RatingUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := `UPDATE ` + table + ` SET rating = $1 WHERE id = $2`
	for _, update := range updates {
		result, err := tx.ExecContext(ctx, query, update.Rating, update.ID)
		if err != nil {
			return crerr.Wrapf(err, "update %s rating", table)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return crerr.Wrapf(err, "rows affected update %s rating", table)
		}
		if affected == 0 {
			return crerr.Newf("%s row %s not found", table, update.ID)
		}
	}

	return nil
}
