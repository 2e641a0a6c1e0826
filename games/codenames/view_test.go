package codenames

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRedactsRoles(t *testing.T) {
	g := seated(t, board10(t))
	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.SelectCard(op(1), 2))

	for _, viewer := range []ViewerID{op(1), op(2), "stranger"} {
		s := Project(g, viewer)
		for _, c := range s.Deck {
			if c.Key == 2 {
				require.NotNil(t, c.Role)
				assert.Equal(t, Role(1), *c.Role)
				continue
			}
			assert.Nil(t, c.Role, "viewer %s card %d", viewer, c.Key)
		}
	}

	for _, viewer := range []ViewerID{spy(1), spy(2)} {
		s := Project(g, viewer)
		for _, c := range s.Deck {
			require.NotNil(t, c.Role, "viewer %s card %d", viewer, c.Key)
			want, _ := g.Card(c.Key)
			assert.Equal(t, want.Role, *c.Role)
		}
	}
}

func TestProjectRolesStable(t *testing.T) {
	g := seated(t, board10(t))

	initial := Project(g, spy(1))

	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.SelectCard(op(1), 1))
	require.NoError(t, g.SelectCard(op(1), 5))
	require.NoError(t, g.SubmitHint(spy(2), "river", 1))
	require.NoError(t, g.SelectCard(op(2), 0))

	for _, viewer := range []ViewerID{spy(1), spy(2), op(1), op(2)} {
		s := Project(g, viewer)
		for i, c := range s.Deck {
			if c.Role != nil {
				assert.Equal(t, *initial.Deck[i].Role, *c.Role)
			}
		}
	}
}

func TestProjectTeamsAndRanks(t *testing.T) {
	g := seated(t, board10(t))
	require.NoError(t, g.JoinOperative("extra", 2))

	s := Project(g, "anyone")
	require.Len(t, s.Teams, 2)
	assert.Equal(t, []ViewerID{op(1)}, s.Teams[0].Operatives)
	assert.Equal(t, []ViewerID{spy(1)}, s.Teams[0].Spymasters)
	assert.Equal(t, []ViewerID{op(2), "extra"}, s.Teams[1].Operatives)
	assert.Nil(t, s.Teams[0].Rank)
	assert.Nil(t, s.Teams[1].Rank)

	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.SelectCard(op(1), 0))

	s = Project(g, "anyone")
	assert.True(t, s.End)
	require.NotNil(t, s.Teams[0].Rank)
	require.NotNil(t, s.Teams[1].Rank)
	assert.Equal(t, 2, *s.Teams[0].Rank)
	assert.Equal(t, 1, *s.Teams[1].Rank)
}

func TestProjectSnapshotIsDetached(t *testing.T) {
	g := seated(t, board10(t))
	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.AddSuggestion(op(1), 3))

	s := Project(g, op(1))
	require.NoError(t, g.SelectCard(op(1), 5))

	assert.Equal(t, []ViewerID{op(1)}, s.Deck[3].SuggestedBy)
	require.NotNil(t, s.CurrentHint)
	assert.Equal(t, "forest", s.CurrentHint.Word)
	assert.Equal(t, TeamID(1), s.CurrentTurn)
}

func TestSyncGameWire(t *testing.T) {
	g := seated(t, board10(t))
	require.NoError(t, g.SubmitHint(spy(1), "forest", 2))
	require.NoError(t, g.AddSuggestion(op(1), 3))
	require.NoError(t, g.SelectCard(op(1), 4))

	data, err := json.Marshal(SyncGame(Project(g, op(2))))
	require.NoError(t, err)

	var wire struct {
		Method  string `json:"method"`
		Payload struct {
			End         bool             `json:"end"`
			CurrentHint *Hint            `json:"current_hint"`
			CurrentTurn int              `json:"current_turn"`
			Deck        []map[string]any `json:"deck"`
			Teams       []map[string]any `json:"teams"`
			History     []map[string]any `json:"history"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, MethodSyncGame, wire.Method)
	assert.False(t, wire.Payload.End)
	assert.Nil(t, wire.Payload.CurrentHint)
	assert.Equal(t, 2, wire.Payload.CurrentTurn)
	require.Len(t, wire.Payload.Deck, 10)
	assert.Nil(t, wire.Payload.Deck[0]["role"])
	assert.Equal(t, float64(2), wire.Payload.Deck[4]["role"])
	assert.Equal(t, []any{}, wire.Payload.Deck[3]["suggested_by"])
	assert.Nil(t, wire.Payload.Teams[0]["rank"])

	types := []string{}
	for _, h := range wire.Payload.History {
		types = append(types, h["type"].(string))
	}
	assert.Equal(t, []string{"submit_hint", "select_card", "end_turn", "start_turn"}, types)

	assert.Equal(t, "forest", wire.Payload.History[0]["word"])
	assert.Equal(t, float64(2), wire.Payload.History[0]["count"])
	assert.Equal(t, float64(4), wire.Payload.History[1]["key"])
	assert.Equal(t, string(op(1)), wire.Payload.History[1]["player_id"])
	assert.Equal(t, float64(2), wire.Payload.History[3]["team"])
}

func TestNoGameWire(t *testing.T) {
	data, err := json.Marshal(NoGame())
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"SYNC_GAME","payload":null}`, string(data))
}

func TestRoomInfoWire(t *testing.T) {
	data, err := json.Marshal(RoomInfo([]RoomPlayer{{ID: "a", Name: "Otter", IsYou: true}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"UPDATE_ROOM_INFO","payload":{"players":[{"id":"a","name":"Otter","is_you":true}]}}`, string(data))
}
