package codenames

import "slices"

// CardView is a card as one viewer may see it. Role is nil while hidden.
type CardView struct {
	Key         int        `json:"key"`
	Word        string     `json:"word"`
	Role        *Role      `json:"role"`
	SuggestedBy []ViewerID `json:"suggested_by"`
}

// TeamView lists a team's members and its rank, nil until resolved.
type TeamView struct {
	Rank       *int       `json:"rank"`
	Operatives []ViewerID `json:"operatives"`
	Spymasters []ViewerID `json:"spymasters"`
}

// Snapshot is a redacted copy of a game for one viewer. It shares no memory
// with the game, so it may be sent after the game has moved on.
type Snapshot struct {
	End         bool       `json:"end"`
	CurrentHint *Hint      `json:"current_hint"`
	CurrentTurn TeamID     `json:"current_turn"`
	Deck        []CardView `json:"deck"`
	Teams       []TeamView `json:"teams"`
	History     []Event    `json:"-"`
}

// CanSeeRoles reports whether viewer is a spymaster of any team.
func (g *Game) CanSeeRoles(viewer ViewerID) bool {
	a, ok := g.assigned[viewer]
	return ok && a.Spymaster
}

// Project builds viewer's snapshot. Card roles are withheld from anyone but
// spymasters until the card is revealed; history is not redacted.
func Project(g *Game, viewer ViewerID) Snapshot {
	seesRoles := g.CanSeeRoles(viewer)

	s := Snapshot{
		End:         g.ended,
		CurrentTurn: g.turn,
		Deck:        make([]CardView, len(g.deck)),
		Teams:       make([]TeamView, g.teams),
		History:     slices.Clone(g.history),
	}

	if g.hint != nil {
		hint := *g.hint
		s.CurrentHint = &hint
	}

	for i, c := range g.deck {
		view := CardView{
			Key:         i,
			Word:        c.Word,
			SuggestedBy: append([]ViewerID{}, c.Suggesters...),
		}
		if seesRoles || c.Revealed {
			role := c.Role
			view.Role = &role
		}
		s.Deck[i] = view
	}

	for i := range s.Teams {
		team := TeamID(i + 1)
		view := TeamView{
			Operatives: []ViewerID{},
			Spymasters: []ViewerID{},
		}
		if rank, ok := g.Rank(team); ok {
			view.Rank = &rank
		}
		s.Teams[i] = view
	}

	for _, v := range g.joinOrder {
		a := g.assigned[v]
		team := &s.Teams[a.Team-1]
		if a.Spymaster {
			team.Spymasters = append(team.Spymasters, v)
		} else {
			team.Operatives = append(team.Operatives, v)
		}
	}

	return s
}

// Viewers returns every seated viewer in join order.
func (g *Game) Viewers() []ViewerID {
	return slices.Clone(g.joinOrder)
}
