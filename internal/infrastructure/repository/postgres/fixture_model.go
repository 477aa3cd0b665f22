package postgres

import (
	"github.com/klubhaus/season-engine/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID                string  `db:"id"`
	SeasonID          string  `db:"season_id"`
	Round             int     `db:"round"`
	HomeParticipantID string  `db:"home_participant_id"`
	AwayParticipantID string  `db:"away_participant_id"`
	MatchID           *string `db:"match_id"`
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	return fixture.Fixture{
		ID:                row.ID,
		SeasonID:          row.SeasonID,
		Round:             row.Round,
		HomeParticipantID: row.HomeParticipantID,
		AwayParticipantID: row.AwayParticipantID,
		MatchID:           row.MatchID,
	}
}
