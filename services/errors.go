package services

import "errors"

// Domain errors form a closed set so handlers can map each one to a specific
// HTTP response instead of string-matching service messages. Every one of
// them is terminal for the request: they signal business-rule violations,
// not transient faults, so callers must not retry past them.
var (
	ErrPoolNotFound       = errors.New("pool not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrAlreadyJoined      = errors.New("user already joined this pool")
	ErrNotAParticipant    = errors.New("user is not a participant of this pool")
	ErrDuplicateGuess     = errors.New("guess already submitted for this game")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrInvalidGuess       = errors.New("guess points must be non-negative")
	ErrInvalidScore       = errors.New("game scores must be non-negative")
	ErrResultAlreadySet   = errors.New("game result has already been set")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
