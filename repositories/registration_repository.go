package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dojofed/tournament-core/models"
)

// RegistrationRepository — читающий адаптер к заявкам внешней системы
// членства. Ядру нужны только одобренные участники мероприятия.
type RegistrationRepository interface {
	ListApprovedByEvent(ctx context.Context, eventID int) ([]*models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) ListApprovedByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	query := `
		SELECT id, event_id, fighter_id, fighter_name, dojo_name,
		       age_category, weight_category, belt_category, belt_rank, status, created_at
		FROM registrations
		WHERE event_id = $1 AND status = $2
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID, models.RegistrationStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved registrations for event %d: %w", eventID, err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if scanErr := rows.Scan(
			&reg.ID,
			&reg.EventID,
			&reg.FighterID,
			&reg.FighterName,
			&reg.DojoName,
			&reg.AgeCategory,
			&reg.WeightCategory,
			&reg.BeltCategory,
			&reg.BeltRank,
			&reg.Status,
			&reg.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		registrations = append(registrations, &reg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return registrations, nil
}
