package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchCourtInvalid      = errors.New("match court conflict or invalid")
)

const matchColumns = `id, tournament_id, category_id, stage, round, match_order,
	group_label, round_label, player1_id, player1_name, player2_id, player2_name,
	winner_id, next_match_id, next_match_slot, loser_next_match_id, loser_next_match_slot,
	court_id, score1, score2, actions, status, created_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByCategory(ctx context.Context, categoryID int, statusFilter *models.MatchStatus) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdateGraphLinks(ctx context.Context, exec SQLExecutor, matchID int, nextID, nextSlot, loserNextID, loserNextSlot *int) error
	UpdateSlot(ctx context.Context, exec SQLExecutor, matchID, slot int, participantID *int, name *string, status models.MatchStatus) error
	UpdateScore(ctx context.Context, exec SQLExecutor, matchID, score1, score2 int, actions models.ScoreLog) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, matchID int, status models.MatchStatus) error
	UpdateResult(ctx context.Context, exec SQLExecutor, matchID, score1, score2 int, winnerID *int, status models.MatchStatus) error
	UpdateCourt(ctx context.Context, exec SQLExecutor, matchID int, courtID *int, status models.MatchStatus) error
	NextAwaitingCourt(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Match, error)
	CountByCategoryAndStatuses(ctx context.Context, categoryID int, statuses []models.MatchStatus) (int, error)
	DeleteByCategoryAndStatuses(ctx context.Context, exec SQLExecutor, categoryID int, statuses []models.MatchStatus) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, category_id, stage, round, match_order, group_label, round_label,
			 player1_id, player1_name, player2_id, player2_name, winner_id,
			 next_match_id, next_match_slot, loser_next_match_id, loser_next_match_slot,
			 court_id, score1, score2, actions, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.CategoryID,
		match.Stage,
		match.Round,
		match.MatchOrder,
		match.GroupLabel,
		match.RoundLabel,
		match.Player1ID,
		match.Player1Name,
		match.Player2ID,
		match.Player2Name,
		match.WinnerID,
		match.NextMatchID,
		match.NextMatchSlot,
		match.LoserNextMatchID,
		match.LoserNextMatchSlot,
		match.CourtID,
		match.Score1,
		match.Score2,
		match.Actions,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByIDForUpdate locks the row for the duration of the surrounding
// transaction, so two completions of the same match (or of two matches
// feeding the same successor) serialize instead of clobbering each other.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanOne(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) ListByCategory(ctx context.Context, categoryID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE category_id = $1`)
	args := []interface{}{categoryID}

	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY stage ASC, round ASC, match_order ASC, id ASC")

	return r.queryMatches(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1
		ORDER BY category_id ASC, stage ASC, round ASC, match_order ASC, id ASC`
	return r.queryMatches(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) UpdateGraphLinks(ctx context.Context, exec SQLExecutor, matchID int, nextID, nextSlot, loserNextID, loserNextSlot *int) error {
	query := `UPDATE matches
		SET next_match_id = $1, next_match_slot = $2, loser_next_match_id = $3, loser_next_match_slot = $4
		WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, nextID, nextSlot, loserNextID, loserNextSlot, matchID)
	if err != nil {
		return fmt.Errorf("UpdateGraphLinks: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, matchID, slot int, participantID *int, name *string, status models.MatchStatus) error {
	var idColumn, nameColumn string
	switch slot {
	case 1:
		idColumn, nameColumn = "player1_id", "player1_name"
	case 2:
		idColumn, nameColumn = "player2_id", "player2_name"
	default:
		return fmt.Errorf("invalid participant slot %d for match %d", slot, matchID)
	}
	query := fmt.Sprintf(`UPDATE matches SET %s = $1, %s = $2, status = $3 WHERE id = $4`, idColumn, nameColumn)
	result, err := exec.ExecContext(ctx, query, participantID, name, status, matchID)
	if err != nil {
		return fmt.Errorf("UpdateSlot: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, matchID, score1, score2 int, actions models.ScoreLog) error {
	query := `UPDATE matches SET score1 = $1, score2 = $2, actions = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, score1, score2, actions, matchID)
	if err != nil {
		return fmt.Errorf("UpdateScore: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, matchID int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, matchID)
	if err != nil {
		return fmt.Errorf("UpdateStatus: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, matchID, score1, score2 int, winnerID *int, status models.MatchStatus) error {
	query := `UPDATE matches SET score1 = $1, score2 = $2, winner_id = $3, status = $4 WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, score1, score2, winnerID, status, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateCourt(ctx context.Context, exec SQLExecutor, matchID int, courtID *int, status models.MatchStatus) error {
	query := `UPDATE matches SET court_id = $1, status = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, courtID, status, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// NextAwaitingCourt picks the single highest-priority match still waiting
// for a court: lowest round first, then match order. SKIP LOCKED keeps two
// concurrent dispatches from fighting over the same match.
func (r *postgresMatchRepository) NextAwaitingCourt(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1 AND status = $2
		ORDER BY round ASC, match_order ASC, id ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`
	match := &models.Match{}
	err := scanMatch(exec.QueryRowContext(ctx, query, tournamentID, models.MatchStatusAwaitingCourt), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan next awaiting-court match for tournament %d: %w", tournamentID, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) CountByCategoryAndStatuses(ctx context.Context, categoryID int, statuses []models.MatchStatus) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE category_id = $1 AND status = ANY($2)`
	var count int
	if err := r.db.QueryRowContext(ctx, query, categoryID, pq.Array(statusStrings(statuses))).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for category %d: %w", categoryID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) DeleteByCategoryAndStatuses(ctx context.Context, exec SQLExecutor, categoryID int, statuses []models.MatchStatus) (int, error) {
	query := `DELETE FROM matches WHERE category_id = $1 AND status = ANY($2)`
	result, err := exec.ExecContext(ctx, query, categoryID, pq.Array(statusStrings(statuses)))
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches for category %d: %w", categoryID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if scanErr := scanMatch(rows, match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) scanOne(row *sql.Row, id int) (*models.Match, error) {
	match := &models.Match{}
	if err := scanMatch(row, match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner, match *models.Match) error {
	return row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.CategoryID,
		&match.Stage,
		&match.Round,
		&match.MatchOrder,
		&match.GroupLabel,
		&match.RoundLabel,
		&match.Player1ID,
		&match.Player1Name,
		&match.Player2ID,
		&match.Player2Name,
		&match.WinnerID,
		&match.NextMatchID,
		&match.NextMatchSlot,
		&match.LoserNextMatchID,
		&match.LoserNextMatchSlot,
		&match.CourtID,
		&match.Score1,
		&match.Score2,
		&match.Actions,
		&match.Status,
		&match.CreatedAt,
	)
}

func statusStrings(statuses []models.MatchStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey", "matches_category_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_court_id_fkey":
			return ErrMatchCourtInvalid
		}
	}
	return err
}
