package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusAwaitingParticipants MatchStatus = "awaiting_participants"
	MatchStatusAwaitingCourt        MatchStatus = "awaiting_court"
	MatchStatusScheduled            MatchStatus = "scheduled"
	MatchStatusInProgress           MatchStatus = "in_progress"
	MatchStatusCompleted            MatchStatus = "completed"
)

type Stage string

const (
	StageGroup    Stage = "group"
	StageKnockout Stage = "knockout"
)

// RoundLabel is the closed set of knockout round tags. It is computed once
// at generation time from the round's distance to the final and stored,
// never re-derived from strings at read time.
type RoundLabel string

const (
	RoundLabelFinal        RoundLabel = "final"
	RoundLabelThirdPlace   RoundLabel = "third_place"
	RoundLabelSemifinal    RoundLabel = "semifinal"
	RoundLabelQuarterfinal RoundLabel = "quarterfinal"
	RoundLabelRoundOf16    RoundLabel = "round_of_16"
	RoundLabelRoundOf32    RoundLabel = "round_of_32"
	RoundLabelRoundOf64    RoundLabel = "round_of_64"
	RoundLabelRoundOf128   RoundLabel = "round_of_128"
)

type ActionKind string

const (
	ActionPoint ActionKind = "point"
)

// ScoreAction is one entry of a match's append-only action log.
// Undo pops the latest entry and reverses its score effect.
type ScoreAction struct {
	Kind  ActionKind `json:"kind"`
	Side  int        `json:"side"` // 1 or 2
	Delta int        `json:"delta"`
	At    time.Time  `json:"at"`
}

// ScoreLog is stored as a JSONB column.
type ScoreLog []ScoreAction

func (l ScoreLog) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score log: %w", err)
	}
	return string(b), nil
}

func (l *ScoreLog) Scan(src interface{}) error {
	if src == nil {
		*l = ScoreLog{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for score log", src)
	}
	if len(data) == 0 {
		*l = ScoreLog{}
		return nil
	}
	return json.Unmarshal(data, l)
}

type Match struct {
	ID           int     `json:"id"`
	TournamentID int     `json:"tournament_id"`
	CategoryID   int     `json:"category_id"`
	Stage        Stage   `json:"stage"`
	Round        float64 `json:"round"` // third-place match sits at finalRound - 0.5
	MatchOrder   int     `json:"match_order"`

	GroupLabel *string     `json:"group_label,omitempty"`
	RoundLabel *RoundLabel `json:"round_label,omitempty"`

	Player1ID   *int    `json:"player1_id,omitempty"`
	Player1Name *string `json:"player1_name,omitempty"`
	Player2ID   *int    `json:"player2_id,omitempty"`
	Player2Name *string `json:"player2_name,omitempty"`
	WinnerID    *int    `json:"winner_id,omitempty"`

	NextMatchID        *int `json:"next_match_id,omitempty"`
	NextMatchSlot      *int `json:"next_match_slot,omitempty"`
	LoserNextMatchID   *int `json:"loser_next_match_id,omitempty"`
	LoserNextMatchSlot *int `json:"loser_next_match_slot,omitempty"`

	CourtID *int `json:"court_id,omitempty"`

	Score1  int      `json:"score1"`
	Score2  int      `json:"score2"`
	Actions ScoreLog `json:"actions"`

	Status    MatchStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsBye reports whether the match has exactly one real participant.
func (m *Match) IsBye() bool {
	return (m.Player1ID == nil) != (m.Player2ID == nil)
}

func (m *Match) BothSlotsFilled() bool {
	return m.Player1ID != nil && m.Player2ID != nil
}

func (m *Match) Started() bool {
	return m.Status == MatchStatusInProgress || m.Status == MatchStatusCompleted
}
