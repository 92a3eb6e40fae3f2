package models

import "time"

type CourtStatus string

const (
	CourtStatusIdle  CourtStatus = "idle"
	CourtStatusInUse CourtStatus = "in_use"
)

// Court is the one shared mutable resource of the engine. It is occupied by
// at most one non-completed match at a time; Position is the allocation
// priority (lower first).
type Court struct {
	ID             int         `json:"id"`
	TournamentID   int         `json:"tournament_id"`
	Name           string      `json:"name"`
	Status         CourtStatus `json:"status"`
	CurrentMatchID *int        `json:"current_match_id,omitempty"`
	Position       int         `json:"position"`
	CreatedAt      time.Time   `json:"created_at"`
}
