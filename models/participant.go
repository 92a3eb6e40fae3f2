package models

// Participant is a read-only input supplied by the registration subsystem,
// already filtered to confirmed entries.
type Participant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
