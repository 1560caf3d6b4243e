package game

import "errors"

var (
	// ErrInvalidPhase is returned when an action is attempted outside its phase
	ErrInvalidPhase = errors.New("invalid phase")
	// ErrInvalidAction is returned for a malformed bet
	ErrInvalidAction = errors.New("invalid action")
	// ErrInsufficientChips is returned when a call or raise exceeds the stack
	ErrInsufficientChips = errors.New("insufficient chips")
	// ErrInvalidIndices is returned for a malformed discard selection
	ErrInvalidIndices = errors.New("invalid discard indices")
)
