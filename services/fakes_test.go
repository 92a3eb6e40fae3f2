package services

import (
	"context"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// fakeTxRunner executes the transactional function directly. The fakes
// below are not transactional, which is fine for exercising service logic.
type fakeTxRunner struct {
	beginErr error
}

func (f *fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	c.Actions = append(models.ScoreLog(nil), m.Actions...)
	return &c
}

func (f *fakeMatchRepo) get(id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) sorted(filter func(*models.Match) bool) []*models.Match {
	out := make([]*models.Match, 0, len(f.matches))
	for _, m := range f.matches {
		if filter(m) {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage // group before knockout
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.MatchOrder != b.MatchOrder {
			return a.MatchOrder < b.MatchOrder
		}
		return a.ID < b.ID
	})
	return out
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	f.nextID++
	match.ID = f.nextID
	f.matches[match.ID] = cloneMatch(match)
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return cloneMatch(m), nil
}

func (f *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeMatchRepo) ListByCategory(ctx context.Context, categoryID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	return f.sorted(func(m *models.Match) bool {
		if m.CategoryID != categoryID {
			return false
		}
		return statusFilter == nil || m.Status == *statusFilter
	}), nil
}

func (f *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return f.sorted(func(m *models.Match) bool {
		return m.TournamentID == tournamentID
	}), nil
}

func (f *fakeMatchRepo) UpdateGraphLinks(ctx context.Context, exec repositories.SQLExecutor, matchID int, nextID, nextSlot, loserNextID, loserNextSlot *int) error {
	m, err := f.get(matchID)
	if err != nil {
		return err
	}
	m.NextMatchID, m.NextMatchSlot = nextID, nextSlot
	m.LoserNextMatchID, m.LoserNextMatchSlot = loserNextID, loserNextSlot
	return nil
}

func (f *fakeMatchRepo) UpdateSlot(ctx context.Context, exec repositories.SQLExecutor, matchID, slot int, participantID *int, name *string, status models.MatchStatus) error {
	m, err := f.get(matchID)
	if err != nil {
		return err
	}
	if slot == 1 {
		m.Player1ID, m.Player1Name = participantID, name
	} else {
		m.Player2ID, m.Player2Name = participantID, name
	}
	m.Status = status
	return nil
}

func (f *fakeMatchRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, matchID, score1, score2 int, actions models.ScoreLog) error {
	m, err := f.get(matchID)
	if err != nil {
		return err
	}
	m.Score1, m.Score2 = score1, score2
	m.Actions = append(models.ScoreLog(nil), actions...)
	return nil
}

func (f *fakeMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, matchID int, status models.MatchStatus) error {
	m, err := f.get(matchID)
	if err != nil {
		return err
	}
	m.Status = status
	return nil
}

func (f *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, matchID, score1, score2 int, winnerID *int, status models.MatchStatus) error {
	m, err := f.get(matchID)
	if err != nil {
		return err
	}
	m.Score1, m.Score2 = score1, score2
	m.WinnerID = winnerID
	m.Status = status
	return nil
}

func (f *fakeMatchRepo) UpdateCourt(ctx context.Context, exec repositories.SQLExecutor, matchID int, courtID *int, status models.MatchStatus) error {
	m, err := f.get(matchID)
	if err != nil {
		return err
	}
	m.CourtID = courtID
	m.Status = status
	return nil
}

func (f *fakeMatchRepo) NextAwaitingCourt(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Match, error) {
	waiting := f.sorted(func(m *models.Match) bool {
		return m.TournamentID == tournamentID && m.Status == models.MatchStatusAwaitingCourt
	})
	if len(waiting) == 0 {
		return nil, repositories.ErrMatchNotFound
	}
	sort.Slice(waiting, func(i, j int) bool {
		a, b := waiting[i], waiting[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.MatchOrder != b.MatchOrder {
			return a.MatchOrder < b.MatchOrder
		}
		return a.ID < b.ID
	})
	return waiting[0], nil
}

func (f *fakeMatchRepo) CountByCategoryAndStatuses(ctx context.Context, categoryID int, statuses []models.MatchStatus) (int, error) {
	count := 0
	for _, m := range f.matches {
		if m.CategoryID != categoryID {
			continue
		}
		for _, s := range statuses {
			if m.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeMatchRepo) DeleteByCategoryAndStatuses(ctx context.Context, exec repositories.SQLExecutor, categoryID int, statuses []models.MatchStatus) (int, error) {
	deleted := 0
	for id, m := range f.matches {
		if m.CategoryID != categoryID {
			continue
		}
		for _, s := range statuses {
			if m.Status == s {
				delete(f.matches, id)
				deleted++
				break
			}
		}
	}
	return deleted, nil
}

type fakeCourtRepo struct {
	nextID int
	courts map[int]*models.Court
}

func newFakeCourtRepo() *fakeCourtRepo {
	return &fakeCourtRepo{courts: make(map[int]*models.Court)}
}

func (f *fakeCourtRepo) add(tournamentID int, name string, position int) *models.Court {
	f.nextID++
	c := &models.Court{
		ID:           f.nextID,
		TournamentID: tournamentID,
		Name:         name,
		Status:       models.CourtStatusIdle,
		Position:     position,
	}
	f.courts[c.ID] = c
	return c
}

func (f *fakeCourtRepo) Create(ctx context.Context, court *models.Court) error {
	f.nextID++
	court.ID = f.nextID
	c := *court
	f.courts[c.ID] = &c
	return nil
}

func (f *fakeCourtRepo) GetByID(ctx context.Context, id int) (*models.Court, error) {
	c, ok := f.courts[id]
	if !ok {
		return nil, repositories.ErrCourtNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCourtRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	out := make([]*models.Court, 0, len(f.courts))
	for _, c := range f.courts {
		if c.TournamentID == tournamentID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeCourtRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, courtID int, status models.CourtStatus, currentMatchID *int) error {
	c, ok := f.courts[courtID]
	if !ok {
		return repositories.ErrCourtNotFound
	}
	c.Status = status
	c.CurrentMatchID = currentMatchID
	return nil
}

func (f *fakeCourtRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.courts[id]; !ok {
		return repositories.ErrCourtNotFound
	}
	delete(f.courts, id)
	return nil
}
