// Package codenames implements the rules of a team word-guessing game for any
// number of teams, and the per-viewer projection of its state.
//
// A Game is not safe for concurrent use. The session layer owns exactly one
// Game per room and applies every mutation from a single goroutine.
package codenames

// ViewerID is an opaque per-viewer identifier.
type ViewerID string

// TeamID numbers teams from 1 to the game's team count.
type TeamID int

// Role is the hidden allegiance of a card: RoleAssassin, RoleNeutral, or a
// positive team number.
type Role int

const (
	RoleAssassin Role = -1
	RoleNeutral  Role = 0
)

// TeamRole returns the role of cards belonging to team.
func TeamRole(team TeamID) Role {
	return Role(team)
}

// Team reports the owning team of a team card.
func (r Role) Team() (TeamID, bool) {
	if r <= RoleNeutral {
		return 0, false
	}
	return TeamID(r), true
}

// Card is one word on the board.
type Card struct {
	Word       string
	Role       Role
	Revealed   bool
	Suggesters []ViewerID
}

func (c *Card) suggestedBy(viewer ViewerID) bool {
	for _, v := range c.Suggesters {
		if v == viewer {
			return true
		}
	}
	return false
}

// Assignment is a viewer's seat in the game.
type Assignment struct {
	Team      TeamID
	Spymaster bool
}

// Hint is a spymaster's clue. Neither field is checked against the board.
type Hint struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}
