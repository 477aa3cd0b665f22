package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/klubhaus/season-engine/internal/domain/team"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) error {
	const query = `INSERT INTO teams (id, season_id, member_ids, member_key, rating, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	encoded, err := encodeMemberIDs(item.MemberIDs)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.SeasonID,
		encoded,
		item.Key,
		item.Rating,
		item.CreatedAt,
	); err != nil {
		// The (season_id, member_key) unique constraint is the storage-level
		// guarantee that one member set maps to exactly one team.
		if isUniqueViolation(err) {
			return team.ErrDuplicateMembers
		}
		return crerr.Wrap(err, "insert team")
	}

	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	const query = `SELECT * FROM teams WHERE id = $1`

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, teamID); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, crerr.Wrap(err, "get team by id")
	}

	item, err := teamFromRow(row)
	if err != nil {
		return team.Team{}, false, err
	}

	return item, true, nil
}

func (r *TeamRepository) GetByKey(ctx context.Context, seasonID, key string) (team.Team, bool, error) {
	const query = `SELECT * FROM teams WHERE season_id = $1 AND member_key = $2`

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, seasonID, key); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, crerr.Wrap(err, "get team by member key")
	}

	item, err := teamFromRow(row)
	if err != nil {
		return team.Team{}, false, err
	}

	return item, true, nil
}

func (r *TeamRepository) ListBySeason(ctx context.Context, seasonID string) ([]team.Team, error) {
	const query = `SELECT * FROM teams WHERE season_id = $1 ORDER BY created_at, id`

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, seasonID); err != nil {
		return nil, crerr.Wrap(err, "select teams by season")
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		item, err := teamFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}
