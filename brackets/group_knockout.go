package brackets

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/Dosada05/bracket-engine/models"
)

var (
	ErrInvalidGroupCount   = errors.New("group count must leave at least 2 participants per group")
	ErrInvalidAdvanceCount = errors.New("advance-per-group must be at least 1 and below the smallest group size")
)

// BuildGroupKnockout composes a round-robin pool phase with a knockout
// skeleton sized for the declared advancers. Participants are shuffled and
// dealt round-robin into groups; the knockout slots stay empty because the
// advancers are unknown until pool play completes.
func BuildGroupKnockout(participants []models.Participant, opts models.FormatOptions, rng *rand.Rand) ([]*BracketMatch, error) {
	n := len(participants)
	if n < 2 {
		return nil, ErrNotEnoughParticipants
	}
	if opts.GroupCount < 1 || n/opts.GroupCount < 2 {
		return nil, fmt.Errorf("%w: %d participants in %d groups", ErrInvalidGroupCount, n, opts.GroupCount)
	}
	smallestGroup := n / opts.GroupCount
	if opts.AdvancePerGroup < 1 || opts.AdvancePerGroup >= smallestGroup {
		return nil, fmt.Errorf("%w: advance %d, smallest group %d", ErrInvalidAdvanceCount, opts.AdvancePerGroup, smallestGroup)
	}

	shuffled := ShuffleParticipants(participants, rng)
	groups := make([][]models.Participant, opts.GroupCount)
	for i, p := range shuffled {
		g := i % opts.GroupCount
		groups[g] = append(groups[g], p)
	}

	matches := make([]*BracketMatch, 0)
	for g, members := range groups {
		label := GroupLabel(g)
		matches = append(matches, pairings(members, "G"+label, &label)...)
	}

	advancers := opts.GroupCount * opts.AdvancePerGroup
	if advancers < 2 {
		return nil, fmt.Errorf("%w: only %d advancer(s) total", ErrInvalidAdvanceCount, advancers)
	}
	knockoutSlots := make([]Slot, BracketSize(advancers))
	knockout, err := BuildKnockout(knockoutSlots, opts.ThirdPlace)
	if err != nil {
		return nil, err
	}
	return append(matches, knockout...), nil
}
