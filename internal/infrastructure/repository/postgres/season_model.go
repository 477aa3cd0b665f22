package postgres

import (
	"time"

	"github.com/klubhaus/season-engine/internal/domain/rating"
	"github.com/klubhaus/season-engine/internal/domain/season"
)

type seasonTableModel struct {
	ID                   string    `db:"id"`
	Name                 string    `db:"name"`
	Regime               string    `db:"regime"`
	KFactor              float64   `db:"k_factor"`
	InitialRating        float64   `db:"initial_rating"`
	CyclesPerParticipant int       `db:"cycles_per_participant"`
	Closed               bool      `db:"closed"`
	CreatedAt            time.Time `db:"created_at"`
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:                   row.ID,
		Name:                 row.Name,
		Regime:               rating.Regime(row.Regime),
		KFactor:              row.KFactor,
		InitialRating:        row.InitialRating,
		CyclesPerParticipant: row.CyclesPerParticipant,
		Closed:               row.Closed,
		CreatedAt:            row.CreatedAt,
	}
}
