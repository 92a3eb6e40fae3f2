package brackets

import (
	"errors"
	"math/bits"
	"math/rand"

	"github.com/Dosada05/bracket-engine/models"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrUnsupportedFormat     = errors.New("unsupported category format")
)

// BracketSize returns the smallest power of two >= n.
func BracketSize(n int) int {
	if n <= 1 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

// SeedSlots pads the participant list with byes up to the next power of two
// and applies a uniform random permutation (Fisher-Yates) over the padded
// slot list. A shuffle can land two byes in the same round-1 pair, which
// would leave a successor slot empty forever, so a repair scan afterwards
// moves each doubled-up bye into the lowest pair without one. Byes are
// always fewer than half the slots, so the scan always terminates.
func SeedSlots(participants []models.Participant, rng *rand.Rand) ([]Slot, error) {
	n := len(participants)
	if n < 2 {
		return nil, ErrNotEnoughParticipants
	}

	size := BracketSize(n)
	slots := make([]Slot, 0, size)
	for i := range participants {
		id := participants[i].ID
		name := participants[i].Name
		slots = append(slots, Slot{ParticipantID: &id, Name: &name})
	}
	for i := n; i < size; i++ {
		slots = append(slots, Slot{Bye: true})
	}

	for i := len(slots) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		slots[i], slots[j] = slots[j], slots[i]
	}

	repairByePairs(slots)
	return slots, nil
}

func repairByePairs(slots []Slot) {
	for i := 0; i < len(slots); i += 2 {
		if !slots[i].Bye || !slots[i+1].Bye {
			continue
		}
		for j := 0; j < len(slots); j += 2 {
			if slots[j].Bye || slots[j+1].Bye {
				continue
			}
			slots[i+1], slots[j+1] = slots[j+1], slots[i+1]
			break
		}
	}
}

// ShuffleParticipants returns a Fisher-Yates shuffled copy. Used for group
// assignment, where no bye padding applies.
func ShuffleParticipants(participants []models.Participant, rng *rand.Rand) []models.Participant {
	shuffled := make([]models.Participant, len(participants))
	copy(shuffled, participants)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
