package brackets

import (
	"math/rand"

	"github.com/Dosada05/bracket-engine/models"
)

// Slot is one seat of a bracket before matches exist. A slot either holds a
// real participant, is a bye filler, or is empty (advancer not yet known,
// e.g. the knockout portion of a group-then-knockout category).
type Slot struct {
	ParticipantID *int
	Name          *string
	Bye           bool
}

// BracketMatch is a builder-internal match. UIDs are temporary; the bracket
// service maps them to persisted ids when it writes the graph.
type BracketMatch struct {
	UID          string
	Stage        models.Stage
	Round        float64
	OrderInRound int

	GroupLabel *string
	RoundLabel *models.RoundLabel

	Player1ID   *int
	Player1Name *string
	Player2ID   *int
	Player2Name *string

	NextUID  *string
	NextSlot *int

	LoserNextUID  *string
	LoserNextSlot *int

	CourtID *int

	Status models.MatchStatus
}

// IsBye reports whether exactly one real participant occupies the match.
func (bm *BracketMatch) IsBye() bool {
	return (bm.Player1ID == nil) != (bm.Player2ID == nil)
}

type GenerateParams struct {
	Participants []models.Participant
	Options      models.FormatOptions
	Rand         *rand.Rand
}

// Generate builds the full match set for one category according to its
// format options. The result is ordered by stage, round, then order in round.
func Generate(params GenerateParams) ([]*BracketMatch, error) {
	switch params.Options.Format {
	case models.FormatKnockout:
		return BuildSingleElimination(params.Participants, params.Options.ThirdPlace, params.Rand)
	case models.FormatGroupKnockout:
		return BuildGroupKnockout(params.Participants, params.Options, params.Rand)
	case models.FormatRoundRobin:
		return BuildRoundRobin(params.Participants, params.Rand)
	default:
		return nil, ErrUnsupportedFormat
	}
}
