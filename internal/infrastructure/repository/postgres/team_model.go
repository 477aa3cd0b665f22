package postgres

import (
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/klubhaus/season-engine/internal/domain/team"
)

type teamTableModel struct {
	ID        string    `db:"id"`
	SeasonID  string    `db:"season_id"`
	MemberIDs []byte    `db:"member_ids"`
	MemberKey string    `db:"member_key"`
	Rating    float64   `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

func teamFromRow(row teamTableModel) (team.Team, error) {
	var members []string
	if err := sonic.Unmarshal(row.MemberIDs, &members); err != nil {
		return team.Team{}, crerr.Wrapf(err, "decode member ids for team %s", row.ID)
	}

	return team.Team{
		ID:        row.ID,
		SeasonID:  row.SeasonID,
		MemberIDs: members,
		Key:       row.MemberKey,
		Rating:    row.Rating,
		CreatedAt: row.CreatedAt,
	}, nil
}

func encodeMemberIDs(memberIDs []string) ([]byte, error) {
	encoded, err := sonic.Marshal(memberIDs)
	if err != nil {
		return nil, crerr.Wrap(err, "encode member ids")
	}
	return encoded, nil
}
