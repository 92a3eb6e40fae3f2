package brackets

import (
	"fmt"
	"math/bits"
	"math/rand"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

// BuildSingleElimination seeds the participants (bye padding plus a uniform
// shuffle) and builds the complete knockout graph. With thirdPlace set and
// at least two rounds in the bracket, an extra match is inserted at a
// fractional round just before the final and wired from the semifinals via
// loser edges.
func BuildSingleElimination(participants []models.Participant, thirdPlace bool, rng *rand.Rand) ([]*BracketMatch, error) {
	slots, err := SeedSlots(participants, rng)
	if err != nil {
		return nil, err
	}
	return BuildKnockout(slots, thirdPlace)
}

// BuildKnockout builds the knockout graph over a slot list whose length is a
// power of two >= 2. Round 1 pairs consecutive slots; every later round is
// created empty and wired positionally: matches at order o and o+1 of a
// round feed slot 1 and 2 of match ceil(o/2) in the next round. A bye
// winner is written into its successor slot right away, so the persisted
// bracket needs no placeholder participants.
func BuildKnockout(slots []Slot, thirdPlace bool) ([]*BracketMatch, error) {
	size := len(slots)
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("knockout slot count must be a power of two >= 2, got %d", size)
	}
	numRounds := bits.Len(uint(size)) - 1

	rounds := make([][]*BracketMatch, numRounds+1) // 1-based
	for r := 1; r <= numRounds; r++ {
		numMatches := size >> uint(r)
		label := LabelForRound(r, numRounds)
		rounds[r] = make([]*BracketMatch, numMatches)
		for o := 1; o <= numMatches; o++ {
			rounds[r][o-1] = &BracketMatch{
				UID:          knockoutMatchUID(float64(r), o),
				Stage:        models.StageKnockout,
				Round:        float64(r),
				OrderInRound: o,
				RoundLabel:   &label,
				Status:       models.MatchStatusAwaitingParticipants,
			}
		}
	}

	// Round 1 takes the seeded slots pair-wise.
	for o := 1; o <= len(rounds[1]); o++ {
		bm := rounds[1][o-1]
		s1, s2 := slots[2*(o-1)], slots[2*o-1]
		if s1.Bye && s2.Bye {
			return nil, fmt.Errorf("two byes paired in round 1 match %d", o)
		}
		bm.Player1ID, bm.Player1Name = s1.ParticipantID, s1.Name
		bm.Player2ID, bm.Player2Name = s2.ParticipantID, s2.Name
		// A bye match already holds its one real participant; the bye
		// auto-progression completes it right after persisting.
		if bm.BothSlotsKnown() || bm.IsBye() {
			bm.Status = models.MatchStatusAwaitingCourt
		}
	}

	// Winner edges, and immediate advancement of bye winners.
	for r := 1; r < numRounds; r++ {
		for o := 1; o <= len(rounds[r]); o++ {
			bm := rounds[r][o-1]
			next := rounds[r+1][(o-1)/2]
			slot := 2 - o%2 // odd order feeds slot 1, even order slot 2
			bm.NextUID = &next.UID
			bm.NextSlot = &slot

			// Only round 1 holds genuine byes; a later-round match
			// with one filled slot is waiting on a predecessor.
			if r == 1 && bm.IsBye() {
				id, name := bm.solePlayer()
				setPlayer(next, slot, id, name)
			}
		}
	}

	for r := 2; r <= numRounds; r++ {
		for _, bm := range rounds[r] {
			if bm.BothSlotsKnown() {
				bm.Status = models.MatchStatusAwaitingCourt
			}
		}
	}

	matches := make([]*BracketMatch, 0, size)
	for r := 1; r <= numRounds; r++ {
		matches = append(matches, rounds[r]...)
	}

	if thirdPlace && numRounds >= 2 {
		tpLabel := models.RoundLabelThirdPlace
		tpRound := float64(numRounds) - 0.5
		tp := &BracketMatch{
			UID:          knockoutMatchUID(tpRound, 1),
			Stage:        models.StageKnockout,
			Round:        tpRound,
			OrderInRound: 1,
			RoundLabel:   &tpLabel,
			Status:       models.MatchStatusAwaitingParticipants,
		}
		semis := rounds[numRounds-1]
		for i, semi := range semis[:2] {
			slot := i + 1
			semi.LoserNextUID = &tp.UID
			semi.LoserNextSlot = &slot
		}
		matches = append(matches, tp)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].OrderInRound < matches[j].OrderInRound
	})
	return matches, nil
}

// BothSlotsKnown reports whether both participant slots hold real players.
func (bm *BracketMatch) BothSlotsKnown() bool {
	return bm.Player1ID != nil && bm.Player2ID != nil
}

func (bm *BracketMatch) solePlayer() (*int, *string) {
	if bm.Player1ID != nil {
		return bm.Player1ID, bm.Player1Name
	}
	return bm.Player2ID, bm.Player2Name
}

func setPlayer(bm *BracketMatch, slot int, id *int, name *string) {
	if slot == 1 {
		bm.Player1ID, bm.Player1Name = id, name
	} else {
		bm.Player2ID, bm.Player2Name = id, name
	}
}
