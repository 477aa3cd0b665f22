package memory

// Stores bundles the in-memory repositories. The match store needs the
// participant, team and fixture stores so its apply/revert can touch all of
// them in one step.
type Stores struct {
	Seasons      *SeasonRepository
	Participants *ParticipantRepository
	Teams        *TeamRepository
	Fixtures     *FixtureRepository
	Matches      *MatchRepository
}

func NewStores() *Stores {
	participants := NewParticipantRepository(nil)
	teams := NewTeamRepository(nil)
	fixtures := NewFixtureRepository(nil)

	return &Stores{
		Seasons:      NewSeasonRepository(nil),
		Participants: participants,
		Teams:        teams,
		Fixtures:     fixtures,
		Matches:      NewMatchRepository(participants, teams, fixtures),
	}
}
