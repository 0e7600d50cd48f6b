package models

import "time"

// EventStatus соответствует ENUM в БД.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCanceled  EventStatus = "canceled"
)

// Event принадлежит внешней системе управления мероприятиями.
// Ядро турниров читает его только для проверки существования и атрибутов.
type Event struct {
	ID        int         `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Location  *string     `json:"location,omitempty" db:"location"`
	StartDate time.Time   `json:"start_date" db:"start_date"`
	Status    EventStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
