package codenames

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Inbound methods.
const (
	MethodJoin       = "JOIN"
	MethodRename     = "RENAME"
	MethodStartGame  = "START_GAME"
	MethodCloseGame  = "CLOSE_GAME"
	MethodUpdateGame = "UPDATE_GAME"
)

// Outbound methods.
const (
	MethodSyncGame       = "SYNC_GAME"
	MethodUpdateRoomInfo = "UPDATE_ROOM_INFO"
)

// UPDATE_GAME payload types.
const (
	UpdateJoinOperative = "join_operative"
	UpdateJoinSpymaster = "join_spymaster"
	UpdateAddSuggest    = "add_suggest"
	UpdateRemoveSuggest = "remove_suggest"
	UpdateSubmitHint    = "submit_hint"
	UpdateSelectCard    = "select_card"
)

const maxNameLength = 32

type envelope struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload"`
}

// Message is an outbound envelope.
type Message struct {
	Method  string `json:"method"`
	Payload any    `json:"payload"`
}

// Command is a decoded inbound message.
type Command interface {
	Method() string
}

// Join binds a connection to a viewer. PlayerID is empty when the client
// did not supply one.
type Join struct {
	PlayerID ViewerID
}

// Rename changes a viewer's display name.
type Rename struct {
	PlayerID ViewerID
	Name     string
}

// StartGame deals a new game.
type StartGame struct {
	PlayerID ViewerID
	Rules    Rules
}

// CloseGame discards the room's game.
type CloseGame struct{}

func (Join) Method() string { return MethodJoin }
func (Rename) Method() string { return MethodRename }
func (StartGame) Method() string { return MethodStartGame }
func (CloseGame) Method() string { return MethodCloseGame }

// Update is an UPDATE_GAME message; Apply runs it against a game.
type Update interface {
	Command
	Actor() ViewerID
	Apply(g *Game) error
}

type JoinOperative struct {
	PlayerID ViewerID
	Team     TeamID
}

type JoinSpymaster struct {
	PlayerID ViewerID
	Team     TeamID
}

type AddSuggestion struct {
	PlayerID ViewerID
	Key      int
}

type RemoveSuggestion struct {
	PlayerID ViewerID
	Key      int
}

type SubmitHint struct {
	PlayerID ViewerID
	Word     string
	Count    int
}

type SelectCard struct {
	PlayerID ViewerID
	Key      int
}

func (JoinOperative) Method() string { return MethodUpdateGame }
func (JoinSpymaster) Method() string { return MethodUpdateGame }
func (AddSuggestion) Method() string { return MethodUpdateGame }
func (RemoveSuggestion) Method() string { return MethodUpdateGame }
func (SubmitHint) Method() string { return MethodUpdateGame }
func (SelectCard) Method() string { return MethodUpdateGame }

func (c JoinOperative) Actor() ViewerID { return c.PlayerID }
func (c JoinSpymaster) Actor() ViewerID { return c.PlayerID }
func (c AddSuggestion) Actor() ViewerID { return c.PlayerID }
func (c RemoveSuggestion) Actor() ViewerID { return c.PlayerID }
func (c SubmitHint) Actor() ViewerID { return c.PlayerID }
func (c SelectCard) Actor() ViewerID { return c.PlayerID }

func (c JoinOperative) Apply(g *Game) error { return g.JoinOperative(c.PlayerID, c.Team) }
func (c JoinSpymaster) Apply(g *Game) error { return g.JoinSpymaster(c.PlayerID, c.Team) }
func (c AddSuggestion) Apply(g *Game) error { return g.AddSuggestion(c.PlayerID, c.Key) }
func (c RemoveSuggestion) Apply(g *Game) error { return g.RemoveSuggestion(c.PlayerID, c.Key) }
func (c SubmitHint) Apply(g *Game) error { return g.SubmitHint(c.PlayerID, c.Word, c.Count) }
func (c SelectCard) Apply(g *Game) error { return g.SelectCard(c.PlayerID, c.Key) }

type joinPayload struct {
	PlayerID *string `json:"player_id"`
}

type renamePayload struct {
	PlayerID *string `json:"player_id"`
	NewName  *string `json:"new_name"`
}

type startPayload struct {
	PlayerID    *string `json:"player_id"`
	WordsCount  *int    `json:"words_count"`
	WordsAssign []int   `json:"words_assign"`
	DeadWords   *int    `json:"dead_words"`
}

type updatePayload struct {
	Type     string  `json:"type"`
	PlayerID *string `json:"player_id"`
	Team     *int    `json:"team"`
	Key      *int    `json:"key"`
	Word     *string `json:"word"`
	Count    *int    `json:"count"`
}

// Decode parses one inbound envelope. Anything unrecognised or missing a
// required field fails with a ValidationError.
func Decode(data []byte) (Command, error) {
	var env envelope
	if err := strictUnmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Method {
	case MethodJoin:
		var p joinPayload
		if err := decodePayload(env.Payload, &p, true); err != nil {
			return nil, err
		}
		if p.PlayerID == nil {
			return Join{}, nil
		}
		if *p.PlayerID == "" {
			return nil, ErrMalformed
		}
		return Join{PlayerID: ViewerID(*p.PlayerID)}, nil

	case MethodRename:
		var p renamePayload
		if err := decodePayload(env.Payload, &p, false); err != nil {
			return nil, err
		}
		id, err := requireID(p.PlayerID)
		if err != nil {
			return nil, err
		}
		if p.NewName == nil {
			return nil, ErrMalformed
		}
		name := strings.TrimSpace(*p.NewName)
		if name == "" || len([]rune(name)) > maxNameLength {
			return nil, ErrMalformed
		}
		return Rename{PlayerID: id, Name: name}, nil

	case MethodStartGame:
		var p startPayload
		if err := decodePayload(env.Payload, &p, false); err != nil {
			return nil, err
		}
		id, err := requireID(p.PlayerID)
		if err != nil {
			return nil, err
		}
		if p.WordsCount == nil || p.WordsAssign == nil || p.DeadWords == nil {
			return nil, ErrMalformed
		}
		return StartGame{
			PlayerID: id,
			Rules: Rules{
				WordsCount:  *p.WordsCount,
				WordsAssign: p.WordsAssign,
				DeadWords:   *p.DeadWords,
			},
		}, nil

	case MethodCloseGame:
		return CloseGame{}, nil

	case MethodUpdateGame:
		var p updatePayload
		if err := decodePayload(env.Payload, &p, false); err != nil {
			return nil, err
		}
		return decodeUpdate(p)
	}

	return nil, ErrUnknownMethod
}

func decodeUpdate(p updatePayload) (Update, error) {
	id, err := requireID(p.PlayerID)
	if err != nil {
		return nil, err
	}

	switch p.Type {
	case UpdateJoinOperative, UpdateJoinSpymaster:
		if p.Team == nil {
			return nil, ErrMalformed
		}
		if p.Type == UpdateJoinOperative {
			return JoinOperative{PlayerID: id, Team: TeamID(*p.Team)}, nil
		}
		return JoinSpymaster{PlayerID: id, Team: TeamID(*p.Team)}, nil

	case UpdateAddSuggest, UpdateRemoveSuggest, UpdateSelectCard:
		if p.Key == nil {
			return nil, ErrMalformed
		}
		switch p.Type {
		case UpdateAddSuggest:
			return AddSuggestion{PlayerID: id, Key: *p.Key}, nil
		case UpdateRemoveSuggest:
			return RemoveSuggestion{PlayerID: id, Key: *p.Key}, nil
		default:
			return SelectCard{PlayerID: id, Key: *p.Key}, nil
		}

	case UpdateSubmitHint:
		if p.Word == nil || p.Count == nil {
			return nil, ErrMalformed
		}
		return SubmitHint{PlayerID: id, Word: *p.Word, Count: *p.Count}, nil
	}

	return nil, ErrUnknownMethod
}

func requireID(id *string) (ViewerID, error) {
	if id == nil || *id == "" {
		return "", ErrMalformed
	}
	return ViewerID(*id), nil
}

func decodePayload(raw json.RawMessage, v any, optional bool) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if optional {
			return nil
		}
		return ErrMalformed
	}
	return strictUnmarshal(raw, v)
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &Error{Class: ClassValidation, Code: CodeMalformed, Message: "malformed message", Cause: err}
	}
	if dec.More() {
		return ErrMalformed
	}
	return nil
}

type historyEntry struct {
	Type     EventKind `json:"type"`
	PlayerID ViewerID  `json:"player_id,omitempty"`
	Team     TeamID    `json:"team,omitempty"`
	Key      *int      `json:"key,omitempty"`
	Word     *string   `json:"word,omitempty"`
	Count    *int      `json:"count,omitempty"`
}

type syncPayload struct {
	Snapshot
	History []historyEntry `json:"history"`
}

// SyncGame wraps a snapshot for the wire. Only public history kinds are
// forwarded.
func SyncGame(s Snapshot) Message {
	history := make([]historyEntry, 0, len(s.History))
	for _, e := range s.History {
		if !e.Kind.Public() {
			continue
		}
		entry := historyEntry{Type: e.Kind, PlayerID: e.Viewer, Team: e.Team}
		switch e.Kind {
		case EventSelectCard:
			key := e.Key
			entry.Key = &key
		case EventSubmitHint:
			word, count := e.Hint.Word, e.Hint.Count
			entry.Word, entry.Count = &word, &count
		}
		history = append(history, entry)
	}

	return Message{
		Method:  MethodSyncGame,
		Payload: syncPayload{Snapshot: s, History: history},
	}
}

// NoGame is the SYNC_GAME sent when a room has no game installed.
func NoGame() Message {
	return Message{Method: MethodSyncGame, Payload: nil}
}

// RoomPlayer is one entry of UPDATE_ROOM_INFO.
type RoomPlayer struct {
	ID    ViewerID `json:"id"`
	Name  string   `json:"name"`
	IsYou bool     `json:"is_you"`
}

// RoomInfo builds the UPDATE_ROOM_INFO message for one connection.
func RoomInfo(players []RoomPlayer) Message {
	return Message{
		Method:  MethodUpdateRoomInfo,
		Payload: struct {
			Players []RoomPlayer `json:"players"`
		}{Players: players},
	}
}
