package brackets

import (
	"fmt"
	"math/rand"

	"github.com/Dosada05/bracket-engine/models"
)

// BuildRoundRobin generates all C(N,2) pairings in one flat list, without a
// round or advancement structure. The participant order is shuffled so court
// and scheduling priority do not follow registration order.
func BuildRoundRobin(participants []models.Participant, rng *rand.Rand) ([]*BracketMatch, error) {
	if len(participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}
	shuffled := ShuffleParticipants(participants, rng)
	return pairings(shuffled, "RR", nil), nil
}

// pairings emits every participant-vs-participant match once, in a stable
// order, with sequential OrderInRound values.
func pairings(participants []models.Participant, uidPrefix string, groupLabel *string) []*BracketMatch {
	n := len(participants)
	matches := make([]*BracketMatch, 0, n*(n-1)/2)
	order := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			order++
			p1, p2 := participants[i], participants[j]
			p1ID, p1Name := p1.ID, p1.Name
			p2ID, p2Name := p2.ID, p2.Name
			matches = append(matches, &BracketMatch{
				UID:          fmt.Sprintf("%sM%d", uidPrefix, order),
				Stage:        models.StageGroup,
				Round:        1,
				OrderInRound: order,
				GroupLabel:   groupLabel,
				Player1ID:    &p1ID,
				Player1Name:  &p1Name,
				Player2ID:    &p2ID,
				Player2Name:  &p2Name,
				Status:       models.MatchStatusAwaitingCourt,
			})
		}
	}
	return matches
}
