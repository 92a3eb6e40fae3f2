package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// ReassignResult reports how many unstarted matches received a (possibly
// unchanged) court assignment and how many matches were skipped because
// they had started or finished.
type ReassignResult struct {
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
}

type CourtService interface {
	List(ctx context.Context, tournamentID int) ([]*models.Court, error)
	Create(ctx context.Context, court *models.Court) error
	Delete(ctx context.Context, courtID int) error
	// ReassignCourts re-runs the allocation heuristic over the
	// tournament's unstarted matches; categoryID narrows it to one
	// category when non-nil.
	ReassignCourts(ctx context.Context, tournamentID int, categoryID *int) (*ReassignResult, error)
}

type courtService struct {
	tx        repositories.TxRunner
	matchRepo repositories.MatchRepository
	courtRepo repositories.CourtRepository
	hub       *brackets.Hub
	logger    *slog.Logger
}

func NewCourtService(
	tx repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	courtRepo repositories.CourtRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) CourtService {
	return &courtService{
		tx:        tx,
		matchRepo: matchRepo,
		courtRepo: courtRepo,
		hub:       hub,
		logger:    logger,
	}
}

func (s *courtService) List(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	return s.courtRepo.ListByTournament(ctx, tournamentID)
}

func (s *courtService) Create(ctx context.Context, court *models.Court) error {
	if court.Status == "" {
		court.Status = models.CourtStatusIdle
	}
	return s.courtRepo.Create(ctx, court)
}

func (s *courtService) Delete(ctx context.Context, courtID int) error {
	err := s.courtRepo.Delete(ctx, courtID)
	if errors.Is(err, repositories.ErrCourtNotFound) {
		return ErrCourtNotFound
	}
	return err
}

// ReassignCourts replays the creation-time allocation heuristic over the
// current court list. Matches that are in progress or completed are never
// touched; everything else gets the court the heuristic assigns today,
// which also picks up courts added or removed since generation.
func (s *courtService) ReassignCourts(ctx context.Context, tournamentID int, categoryID *int) (*ReassignResult, error) {
	courts, err := s.courtRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var matches []*models.Match
	if categoryID != nil {
		matches, err = s.matchRepo.ListByCategory(ctx, *categoryID, nil)
	} else {
		matches, err = s.matchRepo.ListByTournament(ctx, tournamentID)
	}
	if err != nil {
		return nil, err
	}

	result := &ReassignResult{}
	unstarted := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Started() {
			result.Skipped++
			continue
		}
		unstarted = append(unstarted, m)
	}
	if len(courts) == 0 || len(unstarted) == 0 {
		return result, nil
	}

	proxies := toBracketMatches(unstarted)
	brackets.AllocateCourts(proxies, courts)

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for i, m := range unstarted {
			proxy := proxies[i]
			if err := s.matchRepo.UpdateCourt(ctx, exec, m.ID, proxy.CourtID, proxy.Status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Succeeded = len(unstarted)

	if s.hub != nil {
		s.hub.Publish(brackets.Event{
			Type:         brackets.EventCourtsReassigned,
			TournamentID: tournamentID,
			Payload:      result,
		})
	}
	return result, nil
}

// toBracketMatches projects persisted matches back into builder matches so
// the allocator can run over them unchanged.
func toBracketMatches(matches []*models.Match) []*brackets.BracketMatch {
	proxies := make([]*brackets.BracketMatch, len(matches))
	for i, m := range matches {
		proxies[i] = &brackets.BracketMatch{
			UID:          "",
			Stage:        m.Stage,
			Round:        m.Round,
			OrderInRound: m.MatchOrder,
			GroupLabel:   m.GroupLabel,
			RoundLabel:   m.RoundLabel,
			Player1ID:    m.Player1ID,
			Player1Name:  m.Player1Name,
			Player2ID:    m.Player2ID,
			Player2Name:  m.Player2Name,
			Status:       m.Status,
		}
	}
	return proxies
}
