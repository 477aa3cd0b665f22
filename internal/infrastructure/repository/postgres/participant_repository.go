package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/klubhaus/season-engine/internal/domain/participant"
)

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, item participant.Participant) error {
	const query = `INSERT INTO participants (id, season_id, player_id, display_name, rating, disabled, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.SeasonID,
		item.PlayerID,
		item.DisplayName,
		item.Rating,
		item.Disabled,
		item.CreatedAt,
	)
	if err != nil {
		return crerr.Wrap(err, "insert participant")
	}

	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, participantID string) (participant.Participant, bool, error) {
	const query = `SELECT * FROM participants WHERE id = $1`

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, participantID); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, crerr.Wrap(err, "get participant by id")
	}

	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) ListByIDs(ctx context.Context, seasonID string, participantIDs []string) ([]participant.Participant, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT * FROM participants WHERE season_id = ? AND id IN (?)`,
		seasonID, participantIDs,
	)
	if err != nil {
		return nil, crerr.Wrap(err, "build select participants by ids query")
	}
	query = r.db.Rebind(query)

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select participants by ids")
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}

	return out, nil
}

func (r *ParticipantRepository) ListBySeason(ctx context.Context, seasonID string) ([]participant.Participant, error) {
	const query = `SELECT * FROM participants WHERE season_id = $1 ORDER BY created_at, id`

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, seasonID); err != nil {
		return nil, crerr.Wrap(err, "select participants by season")
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}

	return out, nil
}

func (r *ParticipantRepository) SetDisabled(ctx context.Context, participantID string, disabled bool) error {
	const query = `UPDATE participants SET disabled = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, disabled, participantID)
	if err != nil {
		return crerr.Wrap(err, "update participant disabled flag")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return crerr.Wrap(err, "rows affected update participant disabled flag")
	}
	if affected == 0 {
		return crerr.Newf("participant %s not found", participantID)
	}

	return nil
}
