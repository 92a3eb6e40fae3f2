package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// GenerateParams carries everything the engine needs to build one
// category's bracket. Participants and format options come from external
// collaborators and are not validated beyond what generation requires.
type GenerateParams struct {
	TournamentID int
	CategoryID   int
	Participants []models.Participant
	Options      models.FormatOptions
}

// BracketView is the aggregate consumed by UI collaborators.
type BracketView struct {
	Matches []*models.Match `json:"matches"`
	Courts  []*models.Court `json:"courts"`
}

type BracketService interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error)
	Regenerate(ctx context.Context, params GenerateParams) ([]*models.Match, error)
	FullBracket(ctx context.Context, tournamentID, categoryID int) (*BracketView, error)
}

type bracketService struct {
	tx        repositories.TxRunner
	matchRepo repositories.MatchRepository
	courtRepo repositories.CourtRepository
	hub       *brackets.Hub
	logger    *slog.Logger

	// newRand is swapped for a seeded source in tests.
	newRand func() *rand.Rand
}

func NewBracketService(
	tx repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	courtRepo repositories.CourtRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:        tx,
		matchRepo: matchRepo,
		courtRepo: courtRepo,
		hub:       hub,
		logger:    logger,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Generate builds and persists a complete bracket for one category:
// seeding, graph construction, court allocation, then a transactional
// two-pass write (insert every match, wire successor links through the
// freshly assigned ids) followed by bye auto-progression.
func (s *bracketService) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	built, err := s.buildAndAllocate(ctx, params)
	if err != nil {
		return nil, err
	}

	var created []*models.Match
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		created, err = s.persistBracket(ctx, exec, params.TournamentID, params.CategoryID, built)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", params.TournamentID),
		slog.Int("category_id", params.CategoryID),
		slog.String("format", string(params.Options.Format)),
		slog.Int("matches", len(created)))
	s.publish(brackets.EventBracketGenerated, params.TournamentID, map[string]int{
		"category_id": params.CategoryID,
		"matches":     len(created),
	})
	return created, nil
}

// Regenerate tears an unplayed bracket down and rebuilds it with the
// adjusted participant order. Refused outright when any match of the
// category has been started or completed.
func (s *bracketService) Regenerate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	blocking, err := s.matchRepo.CountByCategoryAndStatuses(ctx, params.CategoryID, []models.MatchStatus{
		models.MatchStatusInProgress,
		models.MatchStatusCompleted,
	})
	if err != nil {
		return nil, err
	}
	if blocking > 0 {
		return nil, fmt.Errorf("%w: %d blocking match(es)", ErrBracketAlreadyStarted, blocking)
	}

	built, err := s.buildAndAllocate(ctx, params)
	if err != nil {
		return nil, err
	}

	var created []*models.Match
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		deleted, err := s.matchRepo.DeleteByCategoryAndStatuses(ctx, exec, params.CategoryID, []models.MatchStatus{
			models.MatchStatusAwaitingParticipants,
			models.MatchStatusAwaitingCourt,
			models.MatchStatusScheduled,
		})
		if err != nil {
			return err
		}
		s.logger.Info("bracket deleted for regeneration",
			slog.Int("category_id", params.CategoryID),
			slog.Int("deleted", deleted))

		created, err = s.persistBracket(ctx, exec, params.TournamentID, params.CategoryID, built)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(brackets.EventBracketDeleted, params.TournamentID, map[string]int{"category_id": params.CategoryID})
	s.publish(brackets.EventBracketGenerated, params.TournamentID, map[string]int{
		"category_id": params.CategoryID,
		"matches":     len(created),
	})
	return created, nil
}

// FullBracket loads the category's matches and the tournament's courts in
// parallel.
func (s *bracketService) FullBracket(ctx context.Context, tournamentID, categoryID int) (*BracketView, error) {
	view := &BracketView{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		matches, err := s.matchRepo.ListByCategory(gCtx, categoryID, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches for category %d: %w", categoryID, err)
		}
		view.Matches = matches
		return nil
	})
	g.Go(func() error {
		courts, err := s.courtRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list courts for tournament %d: %w", tournamentID, err)
		}
		view.Courts = courts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *bracketService) buildAndAllocate(ctx context.Context, params GenerateParams) ([]*brackets.BracketMatch, error) {
	if len(params.Participants) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, len(params.Participants))
	}

	built, err := brackets.Generate(brackets.GenerateParams{
		Participants: params.Participants,
		Options:      params.Options,
		Rand:         s.newRand(),
	})
	if err != nil {
		switch {
		case errors.Is(err, brackets.ErrNotEnoughParticipants):
			return nil, ErrNotEnoughParticipants
		case errors.Is(err, brackets.ErrInvalidGroupCount), errors.Is(err, brackets.ErrInvalidAdvanceCount):
			return nil, fmt.Errorf("%w: %v", ErrInvalidGroupSizing, err)
		}
		return nil, fmt.Errorf("failed to build bracket for category %d: %w", params.CategoryID, err)
	}

	courts, err := s.courtRepo.ListByTournament(ctx, params.TournamentID)
	if err != nil {
		return nil, err
	}
	brackets.AllocateCourts(built, courts)
	return built, nil
}

// persistBracket is the only writer of participant slots besides the
// completion transaction: initial seeding and bye advancement both land
// here.
//
// First pass inserts every match and records the id its builder UID
// received; the second pass rewrites the winner/loser successor pointers
// from UIDs to those ids; the last pass force-completes bye matches.
func (s *bracketService) persistBracket(ctx context.Context, exec repositories.SQLExecutor, tournamentID, categoryID int, built []*brackets.BracketMatch) ([]*models.Match, error) {
	idByUID := make(map[string]int, len(built))
	created := make([]*models.Match, 0, len(built))

	for _, bm := range built {
		match := &models.Match{
			TournamentID: tournamentID,
			CategoryID:   categoryID,
			Stage:        bm.Stage,
			Round:        bm.Round,
			MatchOrder:   bm.OrderInRound,
			GroupLabel:   bm.GroupLabel,
			RoundLabel:   bm.RoundLabel,
			Player1ID:    bm.Player1ID,
			Player1Name:  bm.Player1Name,
			Player2ID:    bm.Player2ID,
			Player2Name:  bm.Player2Name,
			CourtID:      bm.CourtID,
			Actions:      models.ScoreLog{},
			Status:       bm.Status,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return nil, err
		}
		idByUID[bm.UID] = match.ID
		created = append(created, match)
	}

	for i, bm := range built {
		if bm.NextUID == nil && bm.LoserNextUID == nil {
			continue
		}
		match := created[i]
		if bm.NextUID != nil {
			id, ok := idByUID[*bm.NextUID]
			if !ok {
				return nil, fmt.Errorf("successor %q of match %q was not persisted", *bm.NextUID, bm.UID)
			}
			match.NextMatchID, match.NextMatchSlot = &id, bm.NextSlot
		}
		if bm.LoserNextUID != nil {
			id, ok := idByUID[*bm.LoserNextUID]
			if !ok {
				return nil, fmt.Errorf("loser successor %q of match %q was not persisted", *bm.LoserNextUID, bm.UID)
			}
			match.LoserNextMatchID, match.LoserNextMatchSlot = &id, bm.LoserNextSlot
		}
		if err := s.matchRepo.UpdateGraphLinks(ctx, exec, match.ID,
			match.NextMatchID, match.NextMatchSlot,
			match.LoserNextMatchID, match.LoserNextMatchSlot); err != nil {
			return nil, err
		}
	}

	if err := s.completeByes(ctx, exec, built, created); err != nil {
		return nil, err
	}
	return created, nil
}

// completeByes force-completes every bye match with its sole participant as
// winner. The builder already propagated bye winners into the successor
// slots that were inserted above, so only the bye match itself needs
// finalizing. Guarded by status, so running it again is a no-op.
func (s *bracketService) completeByes(ctx context.Context, exec repositories.SQLExecutor, built []*brackets.BracketMatch, created []*models.Match) error {
	for i, bm := range built {
		if bm.Stage != models.StageKnockout || bm.Round != 1 || !bm.IsBye() {
			continue
		}
		match := created[i]
		if match.Status == models.MatchStatusCompleted {
			continue
		}

		winnerID := match.Player1ID
		if winnerID == nil {
			winnerID = match.Player2ID
		}
		if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, 0, 0, winnerID, models.MatchStatusCompleted); err != nil {
			return err
		}
		if match.CourtID != nil {
			if err := s.courtRepo.UpdateStatus(ctx, exec, *match.CourtID, models.CourtStatusIdle, nil); err != nil {
				return err
			}
			if err := s.matchRepo.UpdateCourt(ctx, exec, match.ID, nil, models.MatchStatusCompleted); err != nil {
				return err
			}
			match.CourtID = nil
		}
		match.WinnerID = winnerID
		match.Status = models.MatchStatusCompleted
	}
	return nil
}

func (s *bracketService) publish(eventType string, tournamentID int, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(brackets.Event{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
	})
}
