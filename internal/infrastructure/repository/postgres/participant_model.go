package postgres

import (
	"time"

	"github.com/klubhaus/season-engine/internal/domain/participant"
)

type participantTableModel struct {
	ID          string    `db:"id"`
	SeasonID    string    `db:"season_id"`
	PlayerID    string    `db:"player_id"`
	DisplayName string    `db:"display_name"`
	Rating      float64   `db:"rating"`
	Disabled    bool      `db:"disabled"`
	CreatedAt   time.Time `db:"created_at"`
}

func participantFromRow(row participantTableModel) participant.Participant {
	return participant.Participant{
		ID:          row.ID,
		SeasonID:    row.SeasonID,
		PlayerID:    row.PlayerID,
		DisplayName: row.DisplayName,
		Rating:      row.Rating,
		Disabled:    row.Disabled,
		CreatedAt:   row.CreatedAt,
	}
}
