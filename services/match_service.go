package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// FinalScore is the decisive result a referee submits to complete a match.
type FinalScore struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

type MatchService interface {
	Get(ctx context.Context, matchID int) (*models.Match, error)
	ListByCategory(ctx context.Context, categoryID int, status *models.MatchStatus) ([]*models.Match, error)
	Start(ctx context.Context, matchID int) error
	RecordScore(ctx context.Context, matchID, side, delta int) error
	Undo(ctx context.Context, matchID int) error
	Complete(ctx context.Context, matchID int, final FinalScore) error
}

type matchService struct {
	tx        repositories.TxRunner
	matchRepo repositories.MatchRepository
	courtRepo repositories.CourtRepository
	hub       *brackets.Hub
	logger    *slog.Logger
}

func NewMatchService(
	tx repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	courtRepo repositories.CourtRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:        tx,
		matchRepo: matchRepo,
		courtRepo: courtRepo,
		hub:       hub,
		logger:    logger,
	}
}

func (s *matchService) Get(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByCategory(ctx context.Context, categoryID int, status *models.MatchStatus) ([]*models.Match, error) {
	return s.matchRepo.ListByCategory(ctx, categoryID, status)
}

// Start moves a scheduled match into play. Both participants must be named:
// a match whose slots are still being fed by predecessors cannot start.
func (s *matchService) Start(ctx context.Context, matchID int) error {
	var tournamentID int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.lockMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		switch match.Status {
		case models.MatchStatusScheduled:
		case models.MatchStatusCompleted:
			return ErrMatchAlreadyCompleted
		default:
			return ErrMatchNotScheduled
		}
		if !namePresent(match.Player1Name) || !namePresent(match.Player2Name) {
			return ErrParticipantsIncomplete
		}

		if err := s.matchRepo.UpdateStatus(ctx, exec, match.ID, models.MatchStatusInProgress); err != nil {
			return err
		}
		if match.CourtID != nil {
			if err := s.courtRepo.UpdateStatus(ctx, exec, *match.CourtID, models.CourtStatusInUse, &match.ID); err != nil {
				return err
			}
		}
		tournamentID = match.TournamentID
		return nil
	})
	if err != nil {
		return err
	}

	s.publishMatch(ctx, tournamentID, matchID)
	return nil
}

// RecordScore appends a scoring entry to the action log and updates the
// running totals. Valid only while the match is in progress.
func (s *matchService) RecordScore(ctx context.Context, matchID, side, delta int) error {
	if side != 1 && side != 2 {
		return ErrInvalidScoreSide
	}
	if delta <= 0 {
		return ErrInvalidScoreDelta
	}

	var tournamentID int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.lockMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusInProgress {
			return ErrMatchNotInProgress
		}

		actions := append(match.Actions, models.ScoreAction{
			Kind:  models.ActionPoint,
			Side:  side,
			Delta: delta,
			At:    time.Now().UTC(),
		})
		score1, score2 := match.Score1, match.Score2
		if side == 1 {
			score1 += delta
		} else {
			score2 += delta
		}
		tournamentID = match.TournamentID
		return s.matchRepo.UpdateScore(ctx, exec, match.ID, score1, score2, actions)
	})
	if err != nil {
		return err
	}

	s.publishMatch(ctx, tournamentID, matchID)
	return nil
}

// Undo pops the most recent entry off the action log and reverses its score
// effect. Fails when the log is empty or its latest entry is not a scoring
// entry.
func (s *matchService) Undo(ctx context.Context, matchID int) error {
	var tournamentID int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.lockMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusInProgress {
			return ErrMatchNotInProgress
		}
		if len(match.Actions) == 0 {
			return ErrEmptyActionLog
		}
		last := match.Actions[len(match.Actions)-1]
		if last.Kind != models.ActionPoint {
			return ErrLastActionNotScoring
		}

		actions := match.Actions[:len(match.Actions)-1]
		score1, score2 := match.Score1, match.Score2
		if last.Side == 1 {
			score1 -= last.Delta
		} else {
			score2 -= last.Delta
		}
		tournamentID = match.TournamentID
		return s.matchRepo.UpdateScore(ctx, exec, match.ID, score1, score2, actions)
	})
	if err != nil {
		return err
	}

	s.publishMatch(ctx, tournamentID, matchID)
	return nil
}

// Complete finalizes an in-progress match in one transaction: the match and
// both successors are read (and locked) before anything is written, the
// winner and loser advance into their successor slots, and the match's
// court is released. Court re-dispatch deliberately happens after the
// commit; see dispatchFreedCourt.
func (s *matchService) Complete(ctx context.Context, matchID int, final FinalScore) error {
	if final.Score1 < 0 || final.Score2 < 0 {
		return ErrInvalidFinalScore
	}
	if final.Score1 == final.Score2 {
		return ErrTieScore
	}

	var (
		tournamentID int
		freedCourtID *int
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.lockMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if match.Status == models.MatchStatusCompleted {
			return ErrMatchAlreadyCompleted
		}
		if match.Status != models.MatchStatusInProgress {
			return ErrMatchNotInProgress
		}

		// Capture the full read set before any write, so successor
		// readiness is judged on fresh state inside this transaction.
		var next, loserNext *models.Match
		if match.NextMatchID != nil {
			if next, err = s.lockMatch(ctx, exec, *match.NextMatchID); err != nil {
				return err
			}
		}
		if match.LoserNextMatchID != nil {
			if loserNext, err = s.lockMatch(ctx, exec, *match.LoserNextMatchID); err != nil {
				return err
			}
		}

		winnerID, winnerName, loserID, loserName := decideWinner(match, final)

		if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, final.Score1, final.Score2, &winnerID, models.MatchStatusCompleted); err != nil {
			return err
		}

		if match.CourtID != nil {
			if err := s.courtRepo.UpdateStatus(ctx, exec, *match.CourtID, models.CourtStatusIdle, nil); err != nil {
				return err
			}
			freedCourtID = match.CourtID
		}

		if next != nil {
			if err := s.advance(ctx, exec, next, *match.NextMatchSlot, winnerID, winnerName); err != nil {
				return err
			}
		}
		if loserNext != nil {
			if err := s.advance(ctx, exec, loserNext, *match.LoserNextMatchSlot, loserID, loserName); err != nil {
				return err
			}
		}

		tournamentID = match.TournamentID
		return nil
	})
	if err != nil {
		return err
	}

	if freedCourtID != nil {
		s.dispatchFreedCourt(ctx, tournamentID, *freedCourtID)
	}
	s.publishMatch(ctx, tournamentID, matchID)
	return nil
}

// advance writes a participant into a successor slot and recomputes the
// successor's readiness: once no slot is null it leaves awaiting
// participants, straight to scheduled when a court is already fixed for it.
func (s *matchService) advance(ctx context.Context, exec repositories.SQLExecutor, successor *models.Match, slot, participantID int, name string) error {
	filled := *successor
	if slot == 1 {
		filled.Player1ID, filled.Player1Name = &participantID, &name
	} else {
		filled.Player2ID, filled.Player2Name = &participantID, &name
	}

	status := successor.Status
	if status == models.MatchStatusAwaitingParticipants && filled.BothSlotsFilled() {
		if successor.CourtID != nil {
			status = models.MatchStatusScheduled
		} else {
			status = models.MatchStatusAwaitingCourt
		}
	}
	return s.matchRepo.UpdateSlot(ctx, exec, successor.ID, slot, &participantID, &name, status)
}

// dispatchFreedCourt hands a just-released court to the highest-priority
// match still waiting for one. Best effort: a failure here is logged and
// swallowed, never unwinding the completion that freed the court. The court
// then simply sits idle until the next dispatch opportunity.
func (s *matchService) dispatchFreedCourt(ctx context.Context, tournamentID, courtID int) {
	var dispatchedID int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		next, err := s.matchRepo.NextAwaitingCourt(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil // nothing waiting
			}
			return err
		}
		if err := s.matchRepo.UpdateCourt(ctx, exec, next.ID, &courtID, models.MatchStatusScheduled); err != nil {
			return err
		}
		if err := s.courtRepo.UpdateStatus(ctx, exec, courtID, models.CourtStatusInUse, &next.ID); err != nil {
			return err
		}
		dispatchedID = next.ID
		return nil
	})
	if err != nil {
		s.logger.Error("court dispatch failed",
			slog.Int("tournament_id", tournamentID),
			slog.Int("court_id", courtID),
			slog.Any("error", err))
		return
	}
	if dispatchedID != 0 && s.hub != nil {
		s.hub.Publish(brackets.Event{
			Type:         brackets.EventCourtDispatched,
			TournamentID: tournamentID,
			Payload:      map[string]int{"court_id": courtID, "match_id": dispatchedID},
		})
	}
}

func (s *matchService) lockMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) publishMatch(ctx context.Context, tournamentID, matchID int) {
	if s.hub == nil {
		return
	}
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		s.logger.Warn("failed to load match for broadcast", slog.Int("match_id", matchID), slog.Any("error", err))
		return
	}
	s.hub.Publish(brackets.Event{
		Type:         brackets.EventMatchUpdated,
		TournamentID: tournamentID,
		Payload:      match,
	})
}

func decideWinner(match *models.Match, final FinalScore) (winnerID int, winnerName string, loserID int, loserName string) {
	if final.Score1 > final.Score2 {
		return deref(match.Player1ID), derefString(match.Player1Name), deref(match.Player2ID), derefString(match.Player2Name)
	}
	return deref(match.Player2ID), derefString(match.Player2Name), deref(match.Player1ID), derefString(match.Player1Name)
}

func namePresent(name *string) bool {
	return name != nil && *name != ""
}
