package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dojofed/tournament-core/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository — читающий адаптер к таблице внешней системы мероприятий.
// Ядро турниров мероприятия не создаёт и не изменяет.
type EventRepository interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT id, name, location, start_date, status, created_at FROM events WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Location,
		&event.StartDate,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %d: %w", id, err)
	}
	return event, nil
}
