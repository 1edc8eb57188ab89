package brackets

import "errors"

var (
	ErrInsufficientEntrants   = errors.New("insufficient entrants to build a bracket")
	ErrMixedEntrants          = errors.New("bracket entrants must all be athletes or all be teams")
	ErrDuplicateEntrant       = errors.New("entrant appears more than once in the bracket")
	ErrUnsupportedBracketType = errors.New("unsupported bracket type")
	ErrInvalidGraph           = errors.New("invalid advancement graph")

	ErrMatchNotFound            = errors.New("match not found")
	ErrInvalidWinner            = errors.New("winner is not one of the match entrants")
	ErrSlotsNotResolved         = errors.New("match slots are not resolved yet")
	ErrAlreadyTerminal          = errors.New("match is already completed or cancelled")
	ErrDownstreamAlreadyDecided = errors.New("a downstream match has already been decided")
	ErrSlotConflict             = errors.New("downstream slot is already resolved")
	ErrInvalidTransition        = errors.New("invalid match status transition")
	ErrInvalidScore             = errors.New("score is not consistent with the result method")
)
