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
	ErrResultBracketInvalid = errors.New("result bracket conflict or invalid")
	ErrResultConflict       = errors.New("result already exists for this fighter and bracket")
)

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.Result) error
	ListByBracket(ctx context.Context, bracketID int) ([]*models.Result, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Result, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

const resultColumns = `id, bracket_id, event_id, fighter_id, fighter_name, dojo_name,
	category_name, rank, medal, created_at`

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.Result) error {
	query := `
		INSERT INTO results
			(bracket_id, event_id, fighter_id, fighter_name, dojo_name, category_name, rank, medal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		result.BracketID,
		result.EventID,
		result.FighterID,
		result.FighterName,
		result.DojoName,
		result.CategoryName,
		result.Rank,
		result.Medal,
	).Scan(&result.ID, &result.CreatedAt)

	return r.handleResultError(err)
}

func (r *postgresResultRepository) ListByBracket(ctx context.Context, bracketID int) ([]*models.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE bracket_id = $1 ORDER BY rank ASC, id ASC`
	return r.list(ctx, query, bracketID)
}

func (r *postgresResultRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE event_id = $1 ORDER BY category_name ASC, rank ASC, id ASC`
	return r.list(ctx, query, eventID)
}

func (r *postgresResultRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.Result, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.Result, 0)
	for rows.Next() {
		var result models.Result
		if scanErr := rows.Scan(
			&result.ID,
			&result.BracketID,
			&result.EventID,
			&result.FighterID,
			&result.FighterName,
			&result.DojoName,
			&result.CategoryName,
			&result.Rank,
			&result.Medal,
			&result.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", scanErr)
		}
		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during result rows iteration: %w", err)
	}
	return results, nil
}

func (r *postgresResultRepository) handleResultError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "results_bracket_id_fkey":
			return ErrResultBracketInvalid
		case "results_bracket_id_fighter_id_key":
			return ErrResultConflict
		}
	}
	return err
}
