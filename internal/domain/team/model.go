package team

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrDuplicateMembers marks a create that lost the race against another
// writer inserting the same member set for the same season.
var ErrDuplicateMembers = errors.New("team with identical member set already exists")

// Team is a derived, season-scoped entity identified by the exact set of
// participant ids that compose it. Membership never changes; the team owns
// its own rating, independent of its members' individual ratings.
type Team struct {
	ID        string
	SeasonID  string
	MemberIDs []string
	Key       string
	Rating    float64
	CreatedAt time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.SeasonID == "" {
		return fmt.Errorf("team season id is required")
	}
	if len(t.MemberIDs) < 2 {
		return fmt.Errorf("team needs at least two members")
	}
	if t.Key != CanonicalKey(t.MemberIDs) {
		return fmt.Errorf("team key does not match member set")
	}

	return nil
}

// CanonicalKey normalizes a member set into a stable lookup key: duplicates
// collapsed, order ignored. Two teams in a season may never share a key.
func CanonicalKey(memberIDs []string) string {
	unique := make([]string, 0, len(memberIDs))
	seen := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	return strings.Join(unique, ",")
}
