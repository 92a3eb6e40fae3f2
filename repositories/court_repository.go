package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrCourtNotFound          = errors.New("court not found")
	ErrCourtTournamentInvalid = errors.New("court tournament conflict or invalid")
	ErrCourtNameConflict      = errors.New("court name is already in use for this tournament")
)

const courtColumns = `id, tournament_id, name, status, current_match_id, position, created_at`

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, id int) (*models.Court, error)
	// ListByTournament returns the tournament's courts in allocation
	// priority order (position ascending).
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, courtID int, status models.CourtStatus, currentMatchID *int) error
	Delete(ctx context.Context, id int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) Create(ctx context.Context, court *models.Court) error {
	query := `
		INSERT INTO courts (tournament_id, name, status, current_match_id, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		court.TournamentID,
		court.Name,
		court.Status,
		court.CurrentMatchID,
		court.Position,
	).Scan(&court.ID, &court.CreatedAt)
	return r.handleCourtError(err)
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE id = $1`
	court := &models.Court{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&court.ID,
		&court.TournamentID,
		&court.Name,
		&court.Status,
		&court.CurrentMatchID,
		&court.Position,
		&court.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to scan court by id %d: %w", id, err)
	}
	return court, nil
}

func (r *postgresCourtRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE tournament_id = $1 ORDER BY position ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	courts := make([]*models.Court, 0)
	for rows.Next() {
		court := &models.Court{}
		if scanErr := rows.Scan(
			&court.ID,
			&court.TournamentID,
			&court.Name,
			&court.Status,
			&court.CurrentMatchID,
			&court.Position,
			&court.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", scanErr)
		}
		courts = append(courts, court)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court rows iteration: %w", err)
	}
	return courts, nil
}

func (r *postgresCourtRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, courtID int, status models.CourtStatus, currentMatchID *int) error {
	query := `UPDATE courts SET status = $1, current_match_id = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, status, currentMatchID, courtID)
	if err != nil {
		return r.handleCourtError(err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM courts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) handleCourtError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "courts_tournament_id_fkey":
			return ErrCourtTournamentInvalid
		case "courts_tournament_id_name_key":
			return ErrCourtNameConflict
		}
	}
	return err
}
