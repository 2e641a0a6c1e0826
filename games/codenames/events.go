package codenames

// EventKind names a history entry.
type EventKind string

const (
	EventJoinOperative    EventKind = "join_operative"
	EventJoinSpymaster    EventKind = "join_spymaster"
	EventAddSuggestion    EventKind = "add_suggest"
	EventRemoveSuggestion EventKind = "remove_suggest"
	EventSubmitHint       EventKind = "submit_hint"
	EventSelectCard       EventKind = "select_card"
	EventLoseTeam         EventKind = "lose_team"
	EventEndTurn          EventKind = "end_turn"
	EventStartTurn        EventKind = "start_turn"
	EventEndGame          EventKind = "end_game"
)

// Public reports whether the kind is forwarded to clients in SYNC_GAME.
// Joins and suggestions stay in the engine's history only.
func (k EventKind) Public() bool {
	switch k {
	case EventSubmitHint, EventSelectCard, EventLoseTeam, EventEndTurn, EventStartTurn, EventEndGame:
		return true
	default:
		return false
	}
}

// Event is an append-only history entry. Fields that do not apply to the
// kind are left zero.
type Event struct {
	Kind   EventKind
	Viewer ViewerID
	Team   TeamID
	Key    int
	Hint   Hint
}
