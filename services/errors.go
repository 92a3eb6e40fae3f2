package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	// Resources
	ErrMatchNotFound = errors.New("match not found")
	ErrCourtNotFound = errors.New("court not found")

	// Input validation (rejected before any write)
	ErrNotEnoughParticipants = errors.New("at least 2 participants are required")
	ErrInvalidGroupSizing    = errors.New("group sizing constraints cannot be satisfied")
	ErrInvalidScoreSide      = errors.New("score side must be 1 or 2")
	ErrInvalidScoreDelta     = errors.New("score delta must be positive")
	ErrInvalidFinalScore     = errors.New("final score must not be negative")

	// State violations (no partial state change)
	ErrMatchNotScheduled      = errors.New("match is not in a scheduled state")
	ErrMatchNotInProgress     = errors.New("match is not in progress")
	ErrMatchAlreadyCompleted  = errors.New("match is already completed")
	ErrParticipantsIncomplete = errors.New("both participants must be named before the match can start")
	ErrEmptyActionLog         = errors.New("no actions to undo")
	ErrLastActionNotScoring   = errors.New("most recent action is not a scoring entry")

	// A drawn final score has no defined winner; the rule sets this
	// engine serves require a decisive result.
	ErrTieScore = errors.New("final score is a tie; a decisive winner is required")

	// Regeneration conflicts
	ErrBracketAlreadyStarted = errors.New("bracket cannot be regenerated: matches already started")
)
