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
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchBracketInvalid = errors.New("match bracket conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetByIDForUpdate блокирует строку матча (SELECT ... FOR UPDATE), чтобы
	// два одновременных завершения не гонялись за одним свободным слотом.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateNextMatch(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, bracket_id, round, round_label, match_number,
	fighter1_id, fighter1_name, fighter2_id, fighter2_name, is_bye, status,
	score1, score2, winner_id, started_at, completed_at, notes, next_match_id, created_at`

func scanMatch(scanner interface{ Scan(...interface{}) error }, match *models.Match) error {
	return scanner.Scan(
		&match.ID,
		&match.BracketID,
		&match.Round,
		&match.RoundLabel,
		&match.MatchNumber,
		&match.Fighter1ID,
		&match.Fighter1Name,
		&match.Fighter2ID,
		&match.Fighter2Name,
		&match.IsBye,
		&match.Status,
		&match.Score1,
		&match.Score2,
		&match.WinnerID,
		&match.StartedAt,
		&match.CompletedAt,
		&match.Notes,
		&match.NextMatchID,
		&match.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(bracket_id, round, round_label, match_number, fighter1_id, fighter1_name,
			 fighter2_id, fighter2_name, is_bye, status, score1, score2, winner_id,
			 started_at, completed_at, notes, next_match_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.BracketID,
		match.Round,
		match.RoundLabel,
		match.MatchNumber,
		match.Fighter1ID,
		match.Fighter1Name,
		match.Fighter2ID,
		match.Fighter2Name,
		match.IsBye,
		match.Status,
		match.Score1,
		match.Score2,
		match.WinnerID,
		match.StartedAt,
		match.CompletedAt,
		match.Notes,
		match.NextMatchID,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`

	match := &models.Match{}
	if err := scanMatch(exec.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d for update: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE bracket_id = $1 ORDER BY match_number ASC`
	return r.list(ctx, query, bracketID)
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.bracket_id, m.round, m.round_label, m.match_number,
		       m.fighter1_id, m.fighter1_name, m.fighter2_id, m.fighter2_name, m.is_bye, m.status,
		       m.score1, m.score2, m.winner_id, m.started_at, m.completed_at, m.notes, m.next_match_id, m.created_at
		FROM matches m
		JOIN brackets b ON b.id = m.bracket_id
		WHERE b.event_id = $1
		ORDER BY m.bracket_id ASC, m.match_number ASC`
	return r.list(ctx, query, eventID)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := scanMatch(rows, &match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// Update перезаписывает изменяемые колонки матча. Слоты бойцов входят сюда,
// потому что продвижение победителя — это запись в слот следующего матча.
func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET fighter1_id = $1, fighter1_name = $2, fighter2_id = $3, fighter2_name = $4,
		    status = $5, score1 = $6, score2 = $7, winner_id = $8,
		    started_at = $9, completed_at = $10, notes = $11
		WHERE id = $12`

	result, err := exec.ExecContext(ctx, query,
		match.Fighter1ID,
		match.Fighter1Name,
		match.Fighter2ID,
		match.Fighter2Name,
		match.Status,
		match.Score1,
		match.Score2,
		match.WinnerID,
		match.StartedAt,
		match.CompletedAt,
		match.Notes,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatch(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int) error {
	query := `UPDATE matches SET next_match_id = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, nextMatchID, matchID)
	if err != nil {
		return fmt.Errorf("UpdateNextMatch: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_bracket_id_fkey":
			return ErrMatchBracketInvalid
		case "matches_next_match_id_fkey":
			return fmt.Errorf("next match reference invalid: %w", err)
		}
	}
	return err
}
