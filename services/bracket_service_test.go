package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bracketFixture struct {
	svc       *bracketService
	matchRepo *fakeMatchRepo
	courtRepo *fakeCourtRepo
}

func newBracketFixture(seed int64) *bracketFixture {
	matchRepo := newFakeMatchRepo()
	courtRepo := newFakeCourtRepo()
	svc := NewBracketService(&fakeTxRunner{}, matchRepo, courtRepo, nil, discardLogger()).(*bracketService)
	svc.newRand = func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
	return &bracketFixture{svc: svc, matchRepo: matchRepo, courtRepo: courtRepo}
}

func genParams(n int, opts models.FormatOptions) GenerateParams {
	ps := make([]models.Participant, n)
	for i := range ps {
		ps[i] = models.Participant{ID: i + 1, Name: "Player " + string(rune('A'+i%26))}
	}
	return GenerateParams{TournamentID: 1, CategoryID: 1, Participants: ps, Options: opts}
}

func TestGenerateKnockoutPersistsWiredGraph(t *testing.T) {
	f := newBracketFixture(7)
	params := genParams(5, models.FormatOptions{Format: models.FormatKnockout})

	created, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, created, 7) // bracket of 8

	byID := make(map[int]*models.Match, len(created))
	for _, m := range created {
		require.NotZero(t, m.ID)
		byID[m.ID] = m
	}

	var finals int
	for _, m := range created {
		if m.NextMatchID != nil {
			_, ok := byID[*m.NextMatchID]
			assert.True(t, ok, "match %d points at unknown successor", m.ID)
			require.NotNil(t, m.NextMatchSlot)
			assert.Contains(t, []int{1, 2}, *m.NextMatchSlot)
		} else {
			finals++
		}
	}
	assert.Equal(t, 1, finals)
}

func TestGenerateCompletesByesAndPropagatesWinners(t *testing.T) {
	f := newBracketFixture(3)
	params := genParams(5, models.FormatOptions{Format: models.FormatKnockout})

	created, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)

	byID := make(map[int]*models.Match, len(created))
	for _, m := range created {
		byID[m.ID] = m
	}

	byes := 0
	for _, m := range created {
		if m.Round != 1 || !m.IsBye() {
			continue
		}
		byes++
		assert.Equal(t, models.MatchStatusCompleted, m.Status, "bye match %d auto-completes", m.ID)
		require.NotNil(t, m.WinnerID)
		assert.Nil(t, m.CourtID, "bye match holds no court")

		// The sole participant is already waiting in the successor slot.
		next := byID[*m.NextMatchID]
		require.NotNil(t, next)
		var slotID *int
		if *m.NextMatchSlot == 1 {
			slotID = next.Player1ID
		} else {
			slotID = next.Player2ID
		}
		require.NotNil(t, slotID)
		assert.Equal(t, *m.WinnerID, *slotID)
	}
	assert.Equal(t, 3, byes, "bracket of 8 with 5 players has 3 byes")
}

func TestGenerateAllocatesCourtsAtCreation(t *testing.T) {
	f := newBracketFixture(5)
	f.courtRepo.add(1, "Court 1", 1)
	f.courtRepo.add(1, "Court 2", 2)
	params := genParams(8, models.FormatOptions{Format: models.FormatKnockout})

	created, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)

	for _, m := range created {
		require.NotNil(t, m.CourtID, "match %d (round %v)", m.ID, m.Round)
		if m.Round == 1 {
			assert.Equal(t, models.MatchStatusScheduled, m.Status)
		}
	}
}

func TestGenerateWithoutCourtsLeavesRoundOneWaiting(t *testing.T) {
	f := newBracketFixture(5)
	params := genParams(4, models.FormatOptions{Format: models.FormatKnockout})

	created, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)

	for _, m := range created {
		assert.Nil(t, m.CourtID)
		if m.Round == 1 {
			assert.Equal(t, models.MatchStatusAwaitingCourt, m.Status)
		}
	}
}

func TestGenerateValidation(t *testing.T) {
	f := newBracketFixture(1)

	_, err := f.svc.Generate(context.Background(), genParams(1, models.FormatOptions{Format: models.FormatKnockout}))
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)

	_, err = f.svc.Generate(context.Background(), genParams(5, models.FormatOptions{
		Format:          models.FormatGroupKnockout,
		GroupCount:      3,
		AdvancePerGroup: 1,
	}))
	assert.ErrorIs(t, err, ErrInvalidGroupSizing)
}

func TestRegenerateRefusedOncePlayStarted(t *testing.T) {
	f := newBracketFixture(2)
	params := genParams(4, models.FormatOptions{Format: models.FormatKnockout})

	created, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)

	// Simulate play starting on one match.
	require.NoError(t, f.matchRepo.UpdateStatus(context.Background(), nil, created[0].ID, models.MatchStatusInProgress))

	_, err = f.svc.Regenerate(context.Background(), params)
	assert.ErrorIs(t, err, ErrBracketAlreadyStarted)

	// Nothing was deleted.
	remaining, err := f.matchRepo.ListByCategory(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, remaining, len(created))
}

func TestRegenerateReplacesUnplayedBracket(t *testing.T) {
	f := newBracketFixture(2)
	params := genParams(4, models.FormatOptions{Format: models.FormatKnockout})

	first, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)

	second, err := f.svc.Regenerate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, second, len(first))

	oldIDs := make(map[int]bool)
	for _, m := range first {
		oldIDs[m.ID] = true
	}
	for _, m := range second {
		assert.False(t, oldIDs[m.ID], "regeneration reuses match id %d", m.ID)
	}

	remaining, err := f.matchRepo.ListByCategory(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, remaining, len(second), "old bracket fully removed")
}

func TestRegenerateKeepsCompletedByesOfOldBracket(t *testing.T) {
	// Bye auto-completion marks matches completed at generation time.
	// Regeneration treats those as blocking, same as played matches: a
	// bracket with byes must be regenerated before anyone plays, or not
	// at all.
	f := newBracketFixture(9)
	params := genParams(5, models.FormatOptions{Format: models.FormatKnockout})

	_, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)

	_, err = f.svc.Regenerate(context.Background(), params)
	assert.ErrorIs(t, err, ErrBracketAlreadyStarted)
}

func TestFullBracketAggregatesMatchesAndCourts(t *testing.T) {
	f := newBracketFixture(4)
	f.courtRepo.add(1, "Court 1", 1)
	params := genParams(4, models.FormatOptions{Format: models.FormatKnockout})

	created, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)

	view, err := f.svc.FullBracket(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, view.Matches, len(created))
	require.Len(t, view.Courts, 1)
	assert.Equal(t, "Court 1", view.Courts[0].Name)
}

func TestGenerateGroupKnockout(t *testing.T) {
	f := newBracketFixture(11)
	f.courtRepo.add(1, "Court 1", 1)
	f.courtRepo.add(1, "Court 2", 2)
	params := genParams(8, models.FormatOptions{
		Format:          models.FormatGroupKnockout,
		GroupCount:      2,
		AdvancePerGroup: 2,
	})

	created, err := f.svc.Generate(context.Background(), params)
	require.NoError(t, err)
	// Two groups of four: 2*C(4,2)=12 pool matches, plus 3 knockout.
	require.Len(t, created, 15)

	for _, m := range created {
		switch m.Stage {
		case models.StageGroup:
			require.NotNil(t, m.GroupLabel)
			require.NotNil(t, m.CourtID)
			assert.Equal(t, models.MatchStatusScheduled, m.Status)
		case models.StageKnockout:
			assert.Nil(t, m.Player1ID)
			assert.Nil(t, m.Player2ID)
			assert.Equal(t, models.MatchStatusAwaitingParticipants, m.Status)
		}
	}
}
