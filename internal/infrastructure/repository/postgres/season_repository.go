package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/klubhaus/season-engine/internal/domain/season"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Create(ctx context.Context, item season.Season) error {
	const query = `INSERT INTO seasons (id, name, regime, k_factor, initial_rating, cycles_per_participant, closed, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		string(item.Regime),
		item.KFactor,
		item.InitialRating,
		item.CyclesPerParticipant,
		item.Closed,
		item.CreatedAt,
	)
	if err != nil {
		return crerr.Wrap(err, "insert season")
	}

	return nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	const query = `SELECT * FROM seasons WHERE id = $1`

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, seasonID); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, crerr.Wrap(err, "get season by id")
	}

	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	const query = `SELECT * FROM seasons ORDER BY created_at, id`

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, crerr.Wrap(err, "select seasons")
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}

	return out, nil
}

func (r *SeasonRepository) SetClosed(ctx context.Context, seasonID string, closed bool) error {
	const query = `UPDATE seasons SET closed = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, closed, seasonID)
	if err != nil {
		return crerr.Wrap(err, "update season closed flag")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return crerr.Wrap(err, "rows affected update season closed flag")
	}
	if affected == 0 {
		return crerr.Newf("season %s not found", seasonID)
	}

	return nil
}

func (r *SeasonRepository) UpdateScoring(ctx context.Context, seasonID string, scoring season.Scoring) error {
	const query = `UPDATE seasons
SET regime = $1, k_factor = $2, initial_rating = $3, cycles_per_participant = $4
WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		scoring.Regime,
		scoring.KFactor,
		scoring.InitialRating,
		scoring.CyclesPerParticipant,
		seasonID,
	)
	if err != nil {
		return crerr.Wrap(err, "update season scoring")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return crerr.Wrap(err, "rows affected update season scoring")
	}
	if affected == 0 {
		return crerr.Newf("season %s not found", seasonID)
	}

	return nil
}
