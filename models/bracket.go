package models

import "time"

// BracketStatus представляет статусы сетки, соответствующие ENUM в БД.
type BracketStatus string

const (
	BracketStatusDraft      BracketStatus = "DRAFT"
	BracketStatusLocked     BracketStatus = "LOCKED"
	BracketStatusInProgress BracketStatus = "IN_PROGRESS"
	BracketStatusCompleted  BracketStatus = "COMPLETED"
)

// Bracket — сетка одной категории в рамках одного мероприятия.
// Матчи принадлежат сетке эксклюзивно (удаление каскадное).
type Bracket struct {
	ID                int           `json:"id" db:"id"`
	EventID           int           `json:"event_id" db:"event_id"`
	CategoryName      string        `json:"category_name" db:"category_name"`
	AgeCategory       string        `json:"age_category" db:"age_category"`
	WeightCategory    string        `json:"weight_category" db:"weight_category"`
	BeltCategory      string        `json:"belt_category" db:"belt_category"`
	TotalParticipants int           `json:"total_participants" db:"total_participants"`
	Status            BracketStatus `json:"status" db:"status"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`

	Matches []Match `json:"matches,omitempty" db:"-"`
}
