package postgres

import (
	"time"

	"github.com/klubhaus/season-engine/internal/domain/match"
)

type matchTableModel struct {
	ID           string    `db:"id"`
	SeasonID     string    `db:"season_id"`
	FixtureID    *string   `db:"fixture_id"`
	HomeScore    int       `db:"home_score"`
	AwayScore    int       `db:"away_score"`
	ExpectedHome *float64  `db:"expected_home"`
	ExpectedAway *float64  `db:"expected_away"`
	CreatedBy    string    `db:"created_by"`
	CreatedAt    time.Time `db:"created_at"`
}

type participantLineTableModel struct {
	MatchID       string  `db:"match_id"`
	ParticipantID string  `db:"participant_id"`
	Side          string  `db:"side"`
	RatingBefore  float64 `db:"rating_before"`
	RatingAfter   float64 `db:"rating_after"`
}

type teamLineTableModel struct {
	MatchID      string  `db:"match_id"`
	TeamID       string  `db:"team_id"`
	Side         string  `db:"side"`
	RatingBefore float64 `db:"rating_before"`
	RatingAfter  float64 `db:"rating_after"`
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:           row.ID,
		SeasonID:     row.SeasonID,
		FixtureID:    row.FixtureID,
		HomeScore:    row.HomeScore,
		AwayScore:    row.AwayScore,
		ExpectedHome: row.ExpectedHome,
		ExpectedAway: row.ExpectedAway,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
	}
}

func participantLineFromRow(row participantLineTableModel) match.ParticipantLine {
	return match.ParticipantLine{
		MatchID:       row.MatchID,
		ParticipantID: row.ParticipantID,
		Side:          match.Side(row.Side),
		RatingBefore:  row.RatingBefore,
		RatingAfter:   row.RatingAfter,
	}
}

func teamLineFromRow(row teamLineTableModel) match.TeamLine {
	return match.TeamLine{
		MatchID:      row.MatchID,
		TeamID:       row.TeamID,
		Side:         match.Side(row.Side),
		RatingBefore: row.RatingBefore,
		RatingAfter:  row.RatingAfter,
	}
}
