package codenames

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/Seednode/codenames/games/deck"
)

// Rules are the deal parameters of a START_GAME request.
type Rules struct {
	WordsCount  int
	WordsAssign []int
	DeadWords   int
}

// Teams is the number of teams the rules describe.
func (r Rules) Teams() int {
	return len(r.WordsAssign)
}

// Game is the authoritative state of one match.
type Game struct {
	teams      int
	deck       []Card
	assigned   map[ViewerID]Assignment
	joinOrder  []ViewerID
	turn       TeamID
	hint       *Hint
	eliminated []TeamID
	ended      bool
	history    []Event
}

// Deal samples rules.WordsCount words from pool, allocates their roles, and
// returns a game on the first team's turn awaiting a hint.
func Deal(rng *rand.Rand, pool []string, rules Rules) (*Game, error) {
	if rules.Teams() < 2 {
		return nil, ErrTooFewTeams
	}

	alloc, err := deck.Allocate(rng, rules.WordsCount, rules.WordsAssign, rules.DeadWords)
	if err != nil {
		if errors.Is(err, deck.ErrInsufficientRange) {
			return nil, construction(CodeInsufficientRange, "cannot deal game", err)
		}
		return nil, construction(CodeInvalidRules, "cannot deal game", err)
	}

	words, err := deck.SampleWords(rng, pool, rules.WordsCount)
	if err != nil {
		return nil, construction(CodeInsufficientWords, "cannot deal game", err)
	}

	return New(words, alloc)
}

// New builds a game from an explicit board. Cards in neither the assassin
// set nor any team set are neutral.
func New(words []string, alloc deck.Allocation) (*Game, error) {
	if len(alloc.Teams) < 2 {
		return nil, ErrTooFewTeams
	}

	cards := make([]Card, len(words))
	for i, w := range words {
		cards[i] = Card{Word: w, Role: RoleNeutral}
	}

	place := func(idx int, role Role) error {
		if idx < 0 || idx >= len(cards) {
			return construction(CodeInsufficientRange, "allocation exceeds deck", deck.ErrInsufficientRange)
		}
		cards[idx].Role = role
		return nil
	}

	for t, team := range alloc.Teams {
		for _, idx := range team {
			if err := place(idx, TeamRole(TeamID(t+1))); err != nil {
				return nil, err
			}
		}
	}
	// assassin wins over a team claim on the same index
	for _, idx := range alloc.Assassins {
		if err := place(idx, RoleAssassin); err != nil {
			return nil, err
		}
	}

	return &Game{
		teams:    len(alloc.Teams),
		deck:     cards,
		assigned: make(map[ViewerID]Assignment),
		turn:     1,
	}, nil
}

// TeamsCount returns the number of teams in the game.
func (g *Game) TeamsCount() int { return g.teams }

// Size returns the number of cards on the board.
func (g *Game) Size() int { return len(g.deck) }

// Turn returns the team currently holding the turn.
func (g *Game) Turn() TeamID { return g.turn }

// Ended reports whether exactly one team remains.
func (g *Game) Ended() bool { return g.ended }

// CurrentHint returns the active hint, if any.
func (g *Game) CurrentHint() (Hint, bool) {
	if g.hint == nil {
		return Hint{}, false
	}
	return *g.hint, true
}

// Card returns a copy of the card at key.
func (g *Game) Card(key int) (Card, bool) {
	if !g.validKey(key) {
		return Card{}, false
	}
	c := g.deck[key]
	c.Suggesters = slices.Clone(c.Suggesters)
	return c, true
}

// Assignment returns the viewer's seat, if they joined.
func (g *Game) Assignment(viewer ViewerID) (Assignment, bool) {
	a, ok := g.assigned[viewer]
	return a, ok
}

// Eliminated returns teams in the order they lost.
func (g *Game) Eliminated() []TeamID {
	return slices.Clone(g.eliminated)
}

// History returns a copy of every accepted event.
func (g *Game) History() []Event {
	return slices.Clone(g.history)
}

// IsEliminated reports whether team has lost.
func (g *Game) IsEliminated(team TeamID) bool {
	return slices.Contains(g.eliminated, team)
}

// Rank returns the final placing of team: 1 for the survivor once the game
// has ended, teamsCount-i for the i-th (0-based) eliminated team. Unresolved
// teams have no rank.
func (g *Game) Rank(team TeamID) (int, bool) {
	if i := slices.Index(g.eliminated, team); i >= 0 {
		return g.teams - i, true
	}
	if g.ended && g.validTeam(team) {
		return 1, true
	}
	return 0, false
}

// Ranking returns every team ordered from first to last place. It is only
// complete once the game has ended.
func (g *Game) Ranking() []TeamID {
	out := make([]TeamID, 0, g.teams)
	for t := TeamID(1); int(t) <= g.teams; t++ {
		if !g.IsEliminated(t) {
			out = append(out, t)
		}
	}
	for i := len(g.eliminated) - 1; i >= 0; i-- {
		out = append(out, g.eliminated[i])
	}
	return out
}

func (g *Game) validKey(key int) bool {
	return key >= 0 && key < len(g.deck)
}

func (g *Game) validTeam(team TeamID) bool {
	return team >= 1 && int(team) <= g.teams
}

func (g *Game) record(e Event) {
	g.history = append(g.history, e)
}

// JoinOperative seats viewer as an operative of team.
func (g *Game) JoinOperative(viewer ViewerID, team TeamID) error {
	if _, ok := g.assigned[viewer]; ok {
		return ErrAlreadyAssigned
	}
	if !g.validTeam(team) {
		return ErrInvalidTeam
	}
	if g.ended {
		return ErrGameEnded
	}

	g.assigned[viewer] = Assignment{Team: team}
	g.joinOrder = append(g.joinOrder, viewer)
	g.record(Event{Kind: EventJoinOperative, Viewer: viewer, Team: team})

	return nil
}

// JoinSpymaster seats viewer as a spymaster of team. An operative may be
// promoted on their own team; no other reassignment is allowed.
func (g *Game) JoinSpymaster(viewer ViewerID, team TeamID) error {
	if !g.validTeam(team) {
		return ErrInvalidTeam
	}
	if g.ended {
		return ErrGameEnded
	}

	current, ok := g.assigned[viewer]
	if ok && (current.Team != team || current.Spymaster) {
		return ErrRoleConflict
	}

	g.assigned[viewer] = Assignment{Team: team, Spymaster: true}
	if !ok {
		g.joinOrder = append(g.joinOrder, viewer)
	}
	g.record(Event{Kind: EventJoinSpymaster, Viewer: viewer, Team: team})

	return nil
}

// canGuess reports whether viewer is an operative of the team on turn.
func (g *Game) canGuess(viewer ViewerID) bool {
	a, ok := g.assigned[viewer]
	return ok && !a.Spymaster && a.Team == g.turn
}

// AddSuggestion marks key as a provisional pick of viewer. It does not
// require an active hint.
func (g *Game) AddSuggestion(viewer ViewerID, key int) error {
	if !g.validKey(key) {
		return ErrInvalidCard
	}
	if g.ended {
		return ErrGameEnded
	}
	card := &g.deck[key]
	if card.suggestedBy(viewer) {
		return ErrDuplicateSuggest
	}
	if !g.canGuess(viewer) {
		return ErrNotAuthorized
	}

	card.Suggesters = append(card.Suggesters, viewer)
	g.record(Event{Kind: EventAddSuggestion, Viewer: viewer, Key: key})

	return nil
}

// RemoveSuggestion withdraws viewer's suggestion on key.
func (g *Game) RemoveSuggestion(viewer ViewerID, key int) error {
	if !g.validKey(key) {
		return ErrInvalidCard
	}
	if g.ended {
		return ErrGameEnded
	}
	card := &g.deck[key]
	if !card.suggestedBy(viewer) {
		return ErrNotSuggested
	}
	if !g.canGuess(viewer) {
		return ErrNotAuthorized
	}

	card.Suggesters = slices.DeleteFunc(card.Suggesters, func(v ViewerID) bool { return v == viewer })
	g.record(Event{Kind: EventRemoveSuggestion, Viewer: viewer, Key: key})

	return nil
}

// SubmitHint sets the hint for the team on turn. Only that team's
// spymaster may give it, once per turn.
func (g *Game) SubmitHint(viewer ViewerID, word string, count int) error {
	if g.ended {
		return ErrGameEnded
	}
	if g.hint != nil {
		return ErrHintAlreadyActive
	}
	a, ok := g.assigned[viewer]
	if !ok || !a.Spymaster || a.Team != g.turn {
		return ErrNotAuthorized
	}

	hint := Hint{Word: word, Count: count}
	g.hint = &hint
	g.record(Event{Kind: EventSubmitHint, Viewer: viewer, Team: a.Team, Hint: hint})

	return nil
}

// SelectCard reveals key on behalf of an operative of the team on turn and
// resolves the outcome of its role.
func (g *Game) SelectCard(viewer ViewerID, key int) error {
	if !g.validKey(key) {
		return ErrInvalidCard
	}
	if g.ended {
		return ErrGameEnded
	}
	if g.hint == nil {
		return ErrNoActiveHint
	}
	if !g.canGuess(viewer) {
		return ErrNotAuthorized
	}
	card := &g.deck[key]
	if card.Revealed {
		return ErrCardRevealed
	}

	team := g.assigned[viewer].Team

	card.Revealed = true
	card.Suggesters = nil
	g.record(Event{Kind: EventSelectCard, Viewer: viewer, Team: team, Key: key})

	switch {
	case card.Role == RoleAssassin:
		// The turn pointer stays on the eliminated team; see DESIGN.md.
		g.loseTeam(team)
		g.checkEnd()
	case card.Role != TeamRole(g.turn):
		g.endTurn()
		g.checkEnd()
		if !g.ended {
			g.startTurn(g.nextTeam())
		}
	default:
		g.checkEnd()
	}

	return nil
}

func (g *Game) loseTeam(team TeamID) {
	if g.IsEliminated(team) {
		return
	}
	g.eliminated = append(g.eliminated, team)
	g.record(Event{Kind: EventLoseTeam, Team: team})
}

func (g *Game) endTurn() {
	g.hint = nil
	for i := range g.deck {
		g.deck[i].Suggesters = nil
	}
	g.record(Event{Kind: EventEndTurn, Team: g.turn})
}

func (g *Game) startTurn(team TeamID) {
	g.turn = team
	g.record(Event{Kind: EventStartTurn, Team: team})
}

// nextTeam is the first active team after the current one, wrapping past
// the last team. With a single active team it returns the current team.
func (g *Game) nextTeam() TeamID {
	for step := 1; step <= g.teams; step++ {
		next := TeamID((int(g.turn)-1+step)%g.teams + 1)
		if !g.IsEliminated(next) {
			return next
		}
	}
	return g.turn
}

func (g *Game) checkEnd() {
	if g.ended || len(g.eliminated) != g.teams-1 {
		return
	}
	g.ended = true
	g.record(Event{Kind: EventEndGame})
}
