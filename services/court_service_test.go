package services

import (
	"context"
	"testing"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type courtFixture struct {
	svc       CourtService
	matchRepo *fakeMatchRepo
	courtRepo *fakeCourtRepo
}

func newCourtFixture() *courtFixture {
	matchRepo := newFakeMatchRepo()
	courtRepo := newFakeCourtRepo()
	svc := NewCourtService(&fakeTxRunner{}, matchRepo, courtRepo, nil, discardLogger())
	return &courtFixture{svc: svc, matchRepo: matchRepo, courtRepo: courtRepo}
}

func (f *courtFixture) addMatch(t *testing.T, m *models.Match) *models.Match {
	t.Helper()
	if m.TournamentID == 0 {
		m.TournamentID = 1
	}
	if m.CategoryID == 0 {
		m.CategoryID = 1
	}
	require.NoError(t, f.matchRepo.Create(context.Background(), nil, m))
	return m
}

func TestCreateCourtDefaultsToIdle(t *testing.T) {
	f := newCourtFixture()
	court := &models.Court{TournamentID: 1, Name: "Court 1", Position: 1}

	require.NoError(t, f.svc.Create(context.Background(), court))
	require.NotZero(t, court.ID)
	assert.Equal(t, models.CourtStatusIdle, court.Status)
}

func TestDeleteCourtNotFound(t *testing.T) {
	f := newCourtFixture()
	assert.ErrorIs(t, f.svc.Delete(context.Background(), 123), ErrCourtNotFound)
}

func TestReassignCourtsNeverTouchesStartedMatches(t *testing.T) {
	f := newCourtFixture()
	oldCourt := f.courtRepo.add(1, "Old", 1)
	f.courtRepo.add(1, "New", 2)

	p1, p2 := 1, 2
	n1, n2 := "Ana", "Bea"
	playing := f.addMatch(t, &models.Match{
		Stage: models.StageKnockout, Round: 1, MatchOrder: 1,
		Player1ID: &p1, Player1Name: &n1, Player2ID: &p2, Player2Name: &n2,
		CourtID: &oldCourt.ID,
		Status:  models.MatchStatusInProgress,
	})
	done := f.addMatch(t, &models.Match{
		Stage: models.StageKnockout, Round: 1, MatchOrder: 2,
		Status: models.MatchStatusCompleted,
	})
	pending := f.addMatch(t, &models.Match{
		Stage: models.StageKnockout, Round: 1, MatchOrder: 3,
		Player1ID: &p1, Player1Name: &n1, Player2ID: &p2, Player2Name: &n2,
		Status: models.MatchStatusAwaitingCourt,
	})

	result, err := f.svc.ReassignCourts(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.Succeeded)

	gotPlaying, err := f.matchRepo.GetByID(context.Background(), playing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, gotPlaying.Status)
	require.NotNil(t, gotPlaying.CourtID)
	assert.Equal(t, oldCourt.ID, *gotPlaying.CourtID)

	gotDone, err := f.matchRepo.GetByID(context.Background(), done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, gotDone.Status)
	assert.Nil(t, gotDone.CourtID)

	gotPending, err := f.matchRepo.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	require.NotNil(t, gotPending.CourtID)
	assert.Equal(t, models.MatchStatusScheduled, gotPending.Status)
}

func TestReassignCourtsWithNoCourtsIsNoOp(t *testing.T) {
	f := newCourtFixture()
	m := f.addMatch(t, &models.Match{
		Stage: models.StageKnockout, Round: 1, MatchOrder: 1,
		Status: models.MatchStatusAwaitingCourt,
	})

	result, err := f.svc.ReassignCourts(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Succeeded)
	assert.Zero(t, result.Skipped)

	got, err := f.matchRepo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAwaitingCourt, got.Status)
	assert.Nil(t, got.CourtID)
}

func TestReassignCourtsPicksUpNewCourt(t *testing.T) {
	f := newCourtFixture()
	// Whole bracket generated with no courts; one arrives mid-event.
	p1, p2 := 1, 2
	n1, n2 := "Ana", "Bea"
	first := f.addMatch(t, &models.Match{
		Stage: models.StageKnockout, Round: 1, MatchOrder: 1,
		RoundLabel: roundLabelPtr(models.RoundLabelQuarterfinal),
		Player1ID:  &p1, Player1Name: &n1, Player2ID: &p2, Player2Name: &n2,
		Status: models.MatchStatusAwaitingCourt,
	})
	court := f.courtRepo.add(1, "Court 1", 1)

	result, err := f.svc.ReassignCourts(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	got, err := f.matchRepo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CourtID)
	assert.Equal(t, court.ID, *got.CourtID)
	assert.Equal(t, models.MatchStatusScheduled, got.Status)
}

func TestReassignCourtsScopedToCategory(t *testing.T) {
	f := newCourtFixture()
	f.courtRepo.add(1, "Court 1", 1)

	inScope := f.addMatch(t, &models.Match{
		CategoryID: 1, Stage: models.StageKnockout, Round: 1, MatchOrder: 1,
		RoundLabel: roundLabelPtr(models.RoundLabelQuarterfinal),
		Status:     models.MatchStatusAwaitingCourt,
	})
	outOfScope := f.addMatch(t, &models.Match{
		CategoryID: 2, Stage: models.StageKnockout, Round: 1, MatchOrder: 1,
		RoundLabel: roundLabelPtr(models.RoundLabelQuarterfinal),
		Status:     models.MatchStatusAwaitingCourt,
	})

	categoryID := 1
	result, err := f.svc.ReassignCourts(context.Background(), 1, &categoryID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	gotIn, err := f.matchRepo.GetByID(context.Background(), inScope.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotIn.CourtID)

	gotOut, err := f.matchRepo.GetByID(context.Background(), outOfScope.ID)
	require.NoError(t, err)
	assert.Nil(t, gotOut.CourtID)
}

func roundLabelPtr(l models.RoundLabel) *models.RoundLabel {
	return &l
}
