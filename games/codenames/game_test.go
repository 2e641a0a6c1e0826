package codenames

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/codenames/games/deck"
)

// board10 is a two-team board: key 0 is the assassin, 1-3 team 1,
// 4-6 team 2, 7-9 neutral.
func board10(t *testing.T) *Game {
	t.Helper()

	words := []string{"ANT", "BEE", "CAT", "DOG", "EEL", "FOX", "GNU", "HEN", "IBIS", "JAY"}
	g, err := New(words, deck.Allocation{
		Assassins: []int{0},
		Teams:     [][]int{{1, 2, 3}, {4, 5, 6}},
	})
	require.NoError(t, err)

	return g
}

// seated adds a spymaster and an operative to every team of g.
func seated(t *testing.T, g *Game) *Game {
	t.Helper()

	for team := TeamID(1); int(team) <= g.TeamsCount(); team++ {
		require.NoError(t, g.JoinSpymaster(spy(team), team))
		require.NoError(t, g.JoinOperative(op(team), team))
	}

	return g
}

func spy(team TeamID) ViewerID { return ViewerID("spy" + string(rune('0'+team))) }
func op(team TeamID) ViewerID  { return ViewerID("op" + string(rune('0'+team))) }

func TestNewRoles(t *testing.T) {
	g := board10(t)

	want := []Role{RoleAssassin, 1, 1, 1, 2, 2, 2, RoleNeutral, RoleNeutral, RoleNeutral}
	for key, role := range want {
		c, ok := g.Card(key)
		require.True(t, ok)
		assert.Equal(t, role, c.Role, "card %d", key)
		assert.False(t, c.Revealed)
	}

	assert.Equal(t, TeamID(1), g.Turn())
	assert.False(t, g.Ended())
	_, ok := g.CurrentHint()
	assert.False(t, ok)
}

func TestNewRejectsSingleTeam(t *testing.T) {
	_, err := New([]string{"A", "B"}, deck.Allocation{Teams: [][]int{{0}}})
	assert.ErrorIs(t, err, ErrTooFewTeams)
	assert.ErrorIs(t, err, ConstructionError)
}

func TestDeal(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pool := deck.Default().Words

	g, err := Deal(rng, pool, Rules{WordsCount: 25, WordsAssign: []int{9, 8}, DeadWords: 1})
	require.NoError(t, err)

	counts := map[Role]int{}
	for key := 0; key < g.Size(); key++ {
		c, _ := g.Card(key)
		counts[c.Role]++
	}
	assert.Equal(t, 25, g.Size())
	assert.Equal(t, 1, counts[RoleAssassin])
	assert.Equal(t, 9, counts[1])
	assert.Equal(t, 8, counts[2])
	assert.Equal(t, 7, counts[RoleNeutral])
}

func TestDealRejects(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	_, err := Deal(rng, deck.Default().Words, Rules{WordsCount: 5, WordsAssign: []int{3, 3}, DeadWords: 1})
	assert.ErrorIs(t, err, ConstructionError)
	assert.ErrorIs(t, err, deck.ErrInsufficientRange)

	_, err = Deal(rng, []string{"A", "B", "C"}, Rules{WordsCount: 5, WordsAssign: []int{1, 1}, DeadWords: 1})
	assert.ErrorIs(t, err, ConstructionError)
	assert.ErrorIs(t, err, deck.ErrInsufficientWords)

	_, err = Deal(rng, deck.Default().Words, Rules{WordsCount: 5, WordsAssign: []int{2}, DeadWords: 1})
	assert.ErrorIs(t, err, ErrTooFewTeams)

	_, err = Deal(rng, deck.Default().Words, Rules{WordsCount: 5, WordsAssign: []int{2, -1}, DeadWords: 1})
	assert.ErrorIs(t, err, ConstructionError)

	assert.NotPanics(t, func() {
		_, err = Deal(rng, deck.Default().Words, Rules{WordsCount: 10, WordsAssign: []int{1, 1}, DeadWords: math.MaxInt})
	})
	assert.ErrorIs(t, err, deck.ErrInsufficientRange)

	assert.NotPanics(t, func() {
		_, err = Deal(rng, deck.Default().Words, Rules{WordsCount: 10, WordsAssign: []int{math.MaxInt, math.MaxInt, 3}, DeadWords: 1})
	})
	assert.ErrorIs(t, err, deck.ErrInsufficientRange)
}

func TestJoinOperative(t *testing.T) {
	g := board10(t)

	require.NoError(t, g.JoinOperative("alice", 1))
	assert.ErrorIs(t, g.JoinOperative("alice", 1), ErrAlreadyAssigned)
	assert.ErrorIs(t, g.JoinOperative("alice", 2), ErrAlreadyAssigned)
	assert.ErrorIs(t, g.JoinOperative("bob", 0), ErrInvalidTeam)
	assert.ErrorIs(t, g.JoinOperative("bob", 3), ErrInvalidTeam)
	assert.ErrorIs(t, g.JoinOperative("bob", 3), RangeError)

	a, ok := g.Assignment("alice")
	require.True(t, ok)
	assert.Equal(t, Assignment{Team: 1}, a)

	history := g.History()
	require.Len(t, history, 1)
	assert.Equal(t, Event{Kind: EventJoinOperative, Viewer: "alice", Team: 1}, history[0])
}

func TestJoinSpymasterPromotion(t *testing.T) {
	g := board10(t)

	require.NoError(t, g.JoinOperative("alice", 1))
	require.NoError(t, g.JoinSpymaster("alice", 1))
	assert.ErrorIs(t, g.JoinSpymaster("alice", 1), ErrRoleConflict)
	assert.ErrorIs(t, g.JoinSpymaster("alice", 2), ErrRoleConflict)
	assert.ErrorIs(t, g.JoinOperative("alice", 1), ErrAlreadyAssigned)

	require.NoError(t, g.JoinOperative("bob", 1))
	assert.ErrorIs(t, g.JoinSpymaster("bob", 2), ErrRoleConflict)

	// spymaster count per team is not capped
	require.NoError(t, g.JoinSpymaster("carol", 1))

	a, _ := g.Assignment("alice")
	assert.Equal(t, Assignment{Team: 1, Spymaster: true}, a)
	assert.Equal(t, []ViewerID{"alice", "bob", "carol"}, g.Viewers())
}

func TestAddSuggestion(t *testing.T) {
	g := seated(t, board10(t))
	require.NoError(t, g.JoinOperative("op1b", 1))

	require.NoError(t, g.AddSuggestion(op(1), 3))
	require.NoError(t, g.AddSuggestion("op1b", 3))
	assert.ErrorIs(t, g.AddSuggestion(op(1), 3), ErrDuplicateSuggest)
	assert.ErrorIs(t, g.AddSuggestion(op(1), 10), ErrInvalidCard)
	assert.ErrorIs(t, g.AddSuggestion(op(1), -1), ErrInvalidCard)
	assert.ErrorIs(t, g.AddSuggestion(spy(1), 2), ErrNotAuthorized)
	assert.ErrorIs(t, g.AddSuggestion(op(2), 2), ErrNotAuthorized)

	c, _ := g.Card(3)
	assert.Equal(t, []ViewerID{op(1), "op1b"}, c.Suggesters)

	require.NoError(t, g.RemoveSuggestion(op(1), 3))
	assert.ErrorIs(t, g.RemoveSuggestion(op(1), 3), ErrNotSuggested)
	assert.ErrorIs(t, g.RemoveSuggestion(op(1), 11), ErrInvalidCard)

	c, _ = g.Card(3)
	assert.Equal(t, []ViewerID{"op1b"}, c.Suggesters)
}

func TestSuggestionUnjoinedViewer(t *testing.T) {
	g := seated(t, board10(t))
	before := g.History()

	err := g.AddSuggestion("stranger", 2)
	assert.ErrorIs(t, err, AuthorizationError)
	assert.Equal(t, ClassAuthorization, ClassOf(err))

	c, _ := g.Card(2)
	assert.Empty(t, c.Suggesters)
	assert.Equal(t, before, g.History())
}

func TestSubmitHint(t *testing.T) {
	g := seated(t, board10(t))

	assert.ErrorIs(t, g.SubmitHint(op(1), "forest", 2), ErrNotAuthorized)
	assert.ErrorIs(t, g.SubmitHint(spy(2), "forest", 2), ErrNotAuthorized)
	assert.ErrorIs(t, g.SubmitHint("stranger", "forest", 2), ErrNotAuthorized)

	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	assert.ErrorIs(t, g.SubmitHint(spy(1), "river", 1), ErrHintAlreadyActive)

	hint, ok := g.CurrentHint()
	require.True(t, ok)
	assert.Equal(t, Hint{Word: "forest", Count: 2}, hint)
}

func TestSelectCardRequiresHint(t *testing.T) {
	g := seated(t, board10(t))

	assert.ErrorIs(t, g.SelectCard(op(1), 1), ErrNoActiveHint)

	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	assert.ErrorIs(t, g.SelectCard(spy(1), 1), ErrNotAuthorized)
	assert.ErrorIs(t, g.SelectCard(op(2), 1), ErrNotAuthorized)
	assert.ErrorIs(t, g.SelectCard(op(1), 10), ErrInvalidCard)
}

func TestSelectCorrectThenWrong(t *testing.T) {
	g := seated(t, board10(t))

	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))

	require.NoError(t, g.SelectCard(op(1), 1))
	assert.False(t, g.Ended())
	hint, ok := g.CurrentHint()
	require.True(t, ok)
	assert.Equal(t, Hint{Word: "forest", Count: 2}, hint)
	assert.Equal(t, TeamID(1), g.Turn())

	require.NoError(t, g.AddSuggestion(op(1), 8))
	require.NoError(t, g.AddSuggestion(op(1), 5))

	require.NoError(t, g.SelectCard(op(1), 4))
	_, ok = g.CurrentHint()
	assert.False(t, ok)
	assert.Equal(t, TeamID(2), g.Turn())
	assert.False(t, g.Ended())

	for key := 0; key < g.Size(); key++ {
		c, _ := g.Card(key)
		assert.Empty(t, c.Suggesters, "card %d", key)
	}

	kinds := []EventKind{}
	for _, e := range g.History() {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{
		EventJoinSpymaster, EventJoinOperative, EventJoinSpymaster, EventJoinOperative,
		EventSubmitHint, EventSelectCard, EventAddSuggestion, EventAddSuggestion,
		EventSelectCard, EventEndTurn, EventStartTurn,
	}, kinds)
}

func TestSelectNeutralEndsTurn(t *testing.T) {
	g := seated(t, board10(t))

	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.SelectCard(op(1), 9))

	assert.Equal(t, TeamID(2), g.Turn())
	_, ok := g.CurrentHint()
	assert.False(t, ok)
}

func TestSelectRevealsAndClearsSuggesters(t *testing.T) {
	for _, key := range []int{0, 2, 5, 8} {
		g := seated(t, board10(t))
		require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
		require.NoError(t, g.AddSuggestion(op(1), key))

		require.NoError(t, g.SelectCard(op(1), key))

		c, _ := g.Card(key)
		assert.True(t, c.Revealed, "card %d", key)
		assert.Empty(t, c.Suggesters, "card %d", key)
	}
}

func TestSelectRevealedCard(t *testing.T) {
	g := seated(t, board10(t))

	require.NoError(t, g.SubmitHint(spy(1), "forest", 3))
	require.NoError(t, g.SelectCard(op(1), 1))
	assert.ErrorIs(t, g.SelectCard(op(1), 1), ErrCardRevealed)
}

func TestAssassinTwoTeams(t *testing.T) {
	g := seated(t, board10(t))

	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.SelectCard(op(1), 0))

	assert.Equal(t, []TeamID{1}, g.Eliminated())
	assert.True(t, g.Ended())

	rank, ok := g.Rank(2)
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	rank, ok = g.Rank(1)
	require.True(t, ok)
	assert.Equal(t, 2, rank)
	assert.Equal(t, []TeamID{2, 1}, g.Ranking())

	history := g.History()
	tail := history[len(history)-3:]
	assert.Equal(t, EventSelectCard, tail[0].Kind)
	assert.Equal(t, Event{Kind: EventLoseTeam, Team: 1}, tail[1])
	assert.Equal(t, Event{Kind: EventEndGame}, tail[2])
}

func TestEndedGameRejectsEverything(t *testing.T) {
	g := seated(t, board10(t))
	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.SelectCard(op(1), 0))
	require.True(t, g.Ended())

	before := g.History()

	assert.ErrorIs(t, g.JoinOperative("late", 1), ErrGameEnded)
	assert.ErrorIs(t, g.JoinSpymaster("late", 2), ErrGameEnded)
	assert.ErrorIs(t, g.AddSuggestion(op(2), 4), ErrGameEnded)
	assert.ErrorIs(t, g.RemoveSuggestion(op(2), 4), ErrGameEnded)
	assert.ErrorIs(t, g.SubmitHint(spy(2), "x", 1), ErrGameEnded)
	assert.ErrorIs(t, g.SelectCard(op(2), 4), ErrGameEnded)

	assert.Equal(t, before, g.History())
}

// threeTeams: key 0 and 1 are assassins, team n owns keys 2n..2n+1.
func threeTeams(t *testing.T) *Game {
	t.Helper()

	words := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	g, err := New(words, deck.Allocation{
		Assassins: []int{0, 1},
		Teams:     [][]int{{2, 3}, {4, 5}, {6, 7}},
	})
	require.NoError(t, err)

	return seated(t, g)
}

func TestAssassinKeepsTurnPointer(t *testing.T) {
	g := threeTeams(t)

	require.NoError(t, g.SubmitHint(spy(1), "x", 1))
	require.NoError(t, g.SelectCard(op(1), 0))

	assert.Equal(t, []TeamID{1}, g.Eliminated())
	assert.False(t, g.Ended())
	assert.Equal(t, TeamID(1), g.Turn())
	_, ok := g.CurrentHint()
	assert.True(t, ok)

	for _, e := range g.History() {
		assert.NotEqual(t, EventEndTurn, e.Kind)
		assert.NotEqual(t, EventStartTurn, e.Kind)
	}

	// a second assassin does not eliminate team 1 twice
	require.NoError(t, g.SelectCard(op(1), 1))
	assert.Equal(t, []TeamID{1}, g.Eliminated())

	// a wrong pick hands the turn to the next active team
	require.NoError(t, g.SelectCard(op(1), 4))
	assert.Equal(t, TeamID(2), g.Turn())
}

func TestTurnSkipsEliminatedTeams(t *testing.T) {
	g := threeTeams(t)

	// team 1 hands over to team 2
	require.NoError(t, g.SubmitHint(spy(1), "x", 1))
	require.NoError(t, g.SelectCard(op(1), 8))
	require.Equal(t, TeamID(2), g.Turn())

	// team 2 hits an assassin, then a wrong card: turn moves to 3
	require.NoError(t, g.SubmitHint(spy(2), "y", 1))
	require.NoError(t, g.SelectCard(op(2), 0))
	require.Equal(t, []TeamID{2}, g.Eliminated())
	require.NoError(t, g.SelectCard(op(2), 9))
	require.Equal(t, TeamID(3), g.Turn())

	// team 3 picks a wrong card: wraps to 1, skipping eliminated 2
	require.NoError(t, g.SubmitHint(spy(3), "z", 1))
	require.NoError(t, g.SelectCard(op(3), 2))
	assert.Equal(t, TeamID(1), g.Turn())

	// team 1 picks team 3's card: skips 2 again
	require.NoError(t, g.SubmitHint(spy(1), "w", 1))
	require.NoError(t, g.SelectCard(op(1), 6))
	assert.Equal(t, TeamID(3), g.Turn())

	// team 3 hits the last assassin: only team 1 survives
	require.NoError(t, g.SubmitHint(spy(3), "v", 1))
	require.NoError(t, g.SelectCard(op(3), 1))
	assert.True(t, g.Ended())
	assert.Equal(t, []TeamID{2, 3}, g.Eliminated())

	ranks := map[TeamID]int{}
	for team := TeamID(1); team <= 3; team++ {
		r, ok := g.Rank(team)
		require.True(t, ok)
		ranks[team] = r
	}
	assert.Equal(t, map[TeamID]int{1: 1, 2: 3, 3: 2}, ranks)
	assert.Equal(t, []TeamID{1, 3, 2}, g.Ranking())
}

func TestRankUnresolved(t *testing.T) {
	g := threeTeams(t)

	for team := TeamID(1); team <= 3; team++ {
		_, ok := g.Rank(team)
		assert.False(t, ok)
	}

	require.NoError(t, g.SubmitHint(spy(1), "x", 1))
	require.NoError(t, g.SelectCard(op(1), 0))

	r, ok := g.Rank(1)
	require.True(t, ok)
	assert.Equal(t, 3, r)
	_, ok = g.Rank(2)
	assert.False(t, ok)
}

func TestCardCopiesAreIsolated(t *testing.T) {
	g := seated(t, board10(t))
	require.NoError(t, g.AddSuggestion(op(1), 2))

	c, _ := g.Card(2)
	c.Suggesters[0] = "mallory"
	c.Role = RoleAssassin

	fresh, _ := g.Card(2)
	assert.Equal(t, []ViewerID{op(1)}, fresh.Suggesters)
	assert.Equal(t, Role(1), fresh.Role)
}
