package codenames

import "errors"

// Class groups rejection reasons by how a caller should react to them.
type Class string

const (
	ClassValidation    Class = "validation"
	ClassAuthorization Class = "authorization"
	ClassRange         Class = "range"
	ClassStateConflict Class = "state_conflict"
	ClassConstruction  Class = "construction"
)

// Code is a machine-readable rejection reason.
type Code string

const (
	CodeMalformed         Code = "malformed"
	CodeUnknownMethod     Code = "unknown_method"
	CodeNotAuthorized     Code = "not_authorized"
	CodeInvalidTeam       Code = "invalid_team"
	CodeInvalidCard       Code = "invalid_card"
	CodeGameEnded         Code = "game_ended"
	CodeAlreadyAssigned   Code = "already_assigned"
	CodeRoleConflict      Code = "role_conflict"
	CodeDuplicateSuggest  Code = "duplicate_suggestion"
	CodeNotSuggested      Code = "not_suggested"
	CodeHintAlreadyActive Code = "hint_already_active"
	CodeNoActiveHint      Code = "no_active_hint"
	CodeCardRevealed      Code = "card_revealed"
	CodeGameInProgress    Code = "game_in_progress"
	CodeNoGame            Code = "no_game"
	CodeInsufficientRange Code = "insufficient_range"
	CodeInsufficientWords Code = "insufficient_words"
	CodeTooFewTeams       Code = "too_few_teams"
	CodeInvalidRules      Code = "invalid_rules"
)

// Error is a rejected operation. Rejections never mutate game state.
type Error struct {
	Class   Class
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code, or by class when the target carries no code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return e.Class == t.Class
	}
	return e.Code == t.Code
}

// Class sentinels, for errors.Is(err, codenames.AuthorizationError).
var (
	ValidationError    = &Error{Class: ClassValidation, Message: "validation error"}
	AuthorizationError = &Error{Class: ClassAuthorization, Message: "authorization error"}
	RangeError         = &Error{Class: ClassRange, Message: "range error"}
	StateConflictError = &Error{Class: ClassStateConflict, Message: "state conflict"}
	ConstructionError  = &Error{Class: ClassConstruction, Message: "construction error"}
)

var (
	ErrMalformed         = &Error{Class: ClassValidation, Code: CodeMalformed, Message: "malformed message"}
	ErrUnknownMethod     = &Error{Class: ClassValidation, Code: CodeUnknownMethod, Message: "unknown method"}
	ErrNotAuthorized     = &Error{Class: ClassAuthorization, Code: CodeNotAuthorized, Message: "viewer may not perform this action"}
	ErrInvalidTeam       = &Error{Class: ClassRange, Code: CodeInvalidTeam, Message: "team out of range"}
	ErrInvalidCard       = &Error{Class: ClassRange, Code: CodeInvalidCard, Message: "card key out of range"}
	ErrGameEnded         = &Error{Class: ClassStateConflict, Code: CodeGameEnded, Message: "game has ended"}
	ErrAlreadyAssigned   = &Error{Class: ClassStateConflict, Code: CodeAlreadyAssigned, Message: "viewer already joined a team"}
	ErrRoleConflict      = &Error{Class: ClassStateConflict, Code: CodeRoleConflict, Message: "viewer already holds another role"}
	ErrDuplicateSuggest  = &Error{Class: ClassStateConflict, Code: CodeDuplicateSuggest, Message: "viewer already suggested this card"}
	ErrNotSuggested      = &Error{Class: ClassStateConflict, Code: CodeNotSuggested, Message: "viewer has not suggested this card"}
	ErrHintAlreadyActive = &Error{Class: ClassStateConflict, Code: CodeHintAlreadyActive, Message: "a hint is already active"}
	ErrNoActiveHint      = &Error{Class: ClassStateConflict, Code: CodeNoActiveHint, Message: "no active hint"}
	ErrCardRevealed      = &Error{Class: ClassStateConflict, Code: CodeCardRevealed, Message: "card already revealed"}
	ErrGameInProgress    = &Error{Class: ClassStateConflict, Code: CodeGameInProgress, Message: "a game is already in progress"}
	ErrNoGame            = &Error{Class: ClassStateConflict, Code: CodeNoGame, Message: "no game installed"}
	ErrTooFewTeams       = &Error{Class: ClassConstruction, Code: CodeTooFewTeams, Message: "at least two teams are required"}
	ErrInvalidRules      = &Error{Class: ClassConstruction, Code: CodeInvalidRules, Message: "invalid game rules"}
)

// ClassOf returns the class of err, or "" when err is not an *Error.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

func construction(code Code, message string, cause error) *Error {
	return &Error{Class: ClassConstruction, Code: code, Message: message, Cause: cause}
}
