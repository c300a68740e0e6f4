package game

import "errors"

// User-facing errors. The message is sent verbatim to the client.
var (
	ErrInvalidCode          = errors.New("game code must be 8 letters or digits")
	ErrDuplicateCode        = errors.New("a game with that code already exists")
	ErrRoomNotFound         = errors.New("game not found")
	ErrGameAlreadyStarted   = errors.New("game has already started")
	ErrInvalidName          = errors.New("name cannot be empty")
	ErrNotHost              = errors.New("only the host can do that")
	ErrInvalidGrade         = errors.New("unknown grade level")
	ErrNoQuestionsAvailable = errors.New("no questions available for this grade level")
)
