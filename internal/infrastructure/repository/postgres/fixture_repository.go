package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/klubhaus/season-engine/internal/domain/fixture"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) BulkInsert(ctx context.Context, items []fixture.Fixture) error {
	if len(items) == 0 {
		return nil
	}

	const query = `INSERT INTO fixtures (id, season_id, round, home_participant_id, away_participant_id)
VALUES (:id, :season_id, :round, :home_participant_id, :away_participant_id)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx insert fixtures")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows := make([]fixtureTableModel, 0, len(items))
	for _, item := range items {
		rows = append(rows, fixtureTableModel{
			ID:                item.ID,
			SeasonID:          item.SeasonID,
			Round:             item.Round,
			HomeParticipantID: item.HomeParticipantID,
			AwayParticipantID: item.AwayParticipantID,
		})
	}
	if _, err := tx.NamedExecContext(ctx, query, rows); err != nil {
		return crerr.Wrap(err, "insert fixtures")
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit insert fixtures tx")
	}

	return nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	const query = `SELECT * FROM fixtures WHERE id = $1`

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, fixtureID); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, crerr.Wrap(err, "get fixture by id")
	}

	return fixtureFromRow(row), true, nil
}

func (r *FixtureRepository) ListBySeason(ctx context.Context, seasonID string) ([]fixture.Fixture, error) {
	const query = `SELECT * FROM fixtures WHERE season_id = $1 ORDER BY round, id`

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, seasonID); err != nil {
		return nil, crerr.Wrap(err, "select fixtures by season")
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromRow(row))
	}

	return out, nil
}
