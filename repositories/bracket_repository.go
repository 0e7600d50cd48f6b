package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dojofed/tournament-core/models"
	"github.com/lib/pq"
)

var (
	ErrBracketNotFound     = errors.New("bracket not found")
	ErrBracketEventInvalid = errors.New("bracket event conflict or invalid")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, id int) (*models.Bracket, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Bracket, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BracketStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

const bracketColumns = `id, event_id, category_name, age_category, weight_category, belt_category,
	total_participants, status, created_at`

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	query := `
		INSERT INTO brackets
			(event_id, category_name, age_category, weight_category, belt_category, total_participants, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		bracket.EventID,
		bracket.CategoryName,
		bracket.AgeCategory,
		bracket.WeightCategory,
		bracket.BeltCategory,
		bracket.TotalParticipants,
		bracket.Status,
	).Scan(&bracket.ID, &bracket.CreatedAt)

	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE id = $1`

	bracket := &models.Bracket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&bracket.ID,
		&bracket.EventID,
		&bracket.CategoryName,
		&bracket.AgeCategory,
		&bracket.WeightCategory,
		&bracket.BeltCategory,
		&bracket.TotalParticipants,
		&bracket.Status,
		&bracket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket by id %d: %w", id, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE event_id = $1 ORDER BY category_name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets for event %d: %w", eventID, err)
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		var bracket models.Bracket
		if scanErr := rows.Scan(
			&bracket.ID,
			&bracket.EventID,
			&bracket.CategoryName,
			&bracket.AgeCategory,
			&bracket.WeightCategory,
			&bracket.BeltCategory,
			&bracket.TotalParticipants,
			&bracket.Status,
			&bracket.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", scanErr)
		}
		brackets = append(brackets, &bracket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return brackets, nil
}

func (r *postgresBracketRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BracketStatus) error {
	query := `UPDATE brackets SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleBracketError(err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) Delete(ctx context.Context, id int) error {
	// Матчи и результаты удаляются каскадно по внешним ключам.
	query := `DELETE FROM brackets WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "brackets_event_id_fkey":
			return ErrBracketEventInvalid
		}
	}
	return err
}
