package brackets

import (
	"math/rand"
	"testing"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCourts(ids ...int) []*models.Court {
	courts := make([]*models.Court, len(ids))
	for i, id := range ids {
		courts[i] = &models.Court{ID: id, Name: "Court", Position: i + 1, Status: models.CourtStatusIdle}
	}
	return courts
}

func TestAllocateCourtsNoCourtsIsNoOp(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	matches, err := BuildSingleElimination(testParticipants(4), false, rng)
	require.NoError(t, err)

	AllocateCourts(matches, nil)

	for _, bm := range matches {
		assert.Nil(t, bm.CourtID, "uid=%s", bm.UID)
		if bm.Round == 1 {
			assert.Equal(t, models.MatchStatusAwaitingCourt, bm.Status)
		}
	}
}

func TestAllocateCourtsShowCourtRounds(t *testing.T) {
	rng := rand.New(rand.NewSource(16))
	matches, err := BuildSingleElimination(testParticipants(16), true, rng)
	require.NoError(t, err)

	courts := testCourts(101, 102, 103)
	AllocateCourts(matches, courts)

	for _, bm := range matches {
		require.NotNil(t, bm.RoundLabel)
		switch *bm.RoundLabel {
		case models.RoundLabelFinal, models.RoundLabelSemifinal, models.RoundLabelThirdPlace:
			require.NotNil(t, bm.CourtID, "uid=%s", bm.UID)
			assert.Equal(t, 101, *bm.CourtID, "show matches stay on the first court")
		default:
			require.NotNil(t, bm.CourtID, "uid=%s", bm.UID)
		}
	}
}

func TestAllocateCourtsRotatesEarlyRounds(t *testing.T) {
	rng := rand.New(rand.NewSource(16))
	matches, err := BuildSingleElimination(testParticipants(16), false, rng)
	require.NoError(t, err)

	courts := testCourts(1, 2, 3)
	AllocateCourts(matches, courts)

	// Round of 16: eight matches over three courts, rotation 1,2,3,1,2,3,1,2.
	want := []int{1, 2, 3, 1, 2, 3, 1, 2}
	var got []int
	for _, bm := range matches {
		if bm.Round == 1 {
			require.NotNil(t, bm.CourtID)
			got = append(got, *bm.CourtID)
		}
	}
	assert.Equal(t, want, got)
}

func TestAllocateCourtsSkipsRoundOneByes(t *testing.T) {
	rng := rand.New(rand.NewSource(47))
	matches, err := BuildSingleElimination(testParticipants(5), false, rng)
	require.NoError(t, err)

	AllocateCourts(matches, testCourts(1, 2))

	for _, bm := range matches {
		if bm.Round == 1 && bm.IsBye() {
			assert.Nil(t, bm.CourtID, "bye match %s must not hold a court", bm.UID)
			assert.Equal(t, models.MatchStatusAwaitingCourt, bm.Status)
		}
	}
}

func TestAllocateCourtsSchedulesAssignedMatches(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	matches, err := BuildSingleElimination(testParticipants(8), false, rng)
	require.NoError(t, err)

	AllocateCourts(matches, testCourts(9))

	for _, bm := range matches {
		if bm.Round == 1 && !bm.IsBye() {
			assert.Equal(t, models.MatchStatusScheduled, bm.Status, "uid=%s", bm.UID)
		}
		if bm.Round > 1 && !bm.BothSlotsKnown() {
			// A static court does not make an unfilled match playable.
			require.NotNil(t, bm.CourtID)
			assert.Equal(t, models.MatchStatusAwaitingParticipants, bm.Status, "uid=%s", bm.UID)
		}
	}
}

func TestAllocateCourtsFixedCourtPerGroup(t *testing.T) {
	opts := models.FormatOptions{
		Format:          models.FormatGroupKnockout,
		GroupCount:      3,
		AdvancePerGroup: 1,
	}
	rng := rand.New(rand.NewSource(9))
	matches, err := BuildGroupKnockout(testParticipants(9), opts, rng)
	require.NoError(t, err)

	AllocateCourts(matches, testCourts(21, 22))

	courtByGroup := make(map[string]int)
	for _, bm := range matches {
		if bm.Stage != models.StageGroup {
			continue
		}
		require.NotNil(t, bm.CourtID)
		require.NotNil(t, bm.GroupLabel)
		assert.Equal(t, models.MatchStatusScheduled, bm.Status)
		if prev, ok := courtByGroup[*bm.GroupLabel]; ok {
			assert.Equal(t, prev, *bm.CourtID, "group %s split across courts", *bm.GroupLabel)
		} else {
			courtByGroup[*bm.GroupLabel] = *bm.CourtID
		}
	}

	// Groups A,B,C over courts 21,22 rotate back to 21 for C.
	assert.Equal(t, map[string]int{"A": 21, "B": 22, "C": 21}, courtByGroup)
}

func TestLabelForRound(t *testing.T) {
	assert.Equal(t, models.RoundLabelFinal, LabelForRound(3, 3))
	assert.Equal(t, models.RoundLabelSemifinal, LabelForRound(2, 3))
	assert.Equal(t, models.RoundLabelQuarterfinal, LabelForRound(1, 3))
	assert.Equal(t, models.RoundLabelRoundOf16, LabelForRound(1, 4))
	assert.Equal(t, models.RoundLabelRoundOf128, LabelForRound(1, 8))
}

func TestGroupLabel(t *testing.T) {
	assert.Equal(t, "A", GroupLabel(0))
	assert.Equal(t, "Z", GroupLabel(25))
	assert.Equal(t, "AA", GroupLabel(26))
	assert.Equal(t, "AB", GroupLabel(27))
}
