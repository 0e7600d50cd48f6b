package models

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

// Registration — одобренная заявка бойца на мероприятие.
// Категорийные поля (возраст, вес, пояс) — непрозрачные метки,
// пустое значение трактуется ядром как "Open".
type Registration struct {
	ID             int                `json:"id" db:"id"`
	EventID        int                `json:"event_id" db:"event_id"`
	FighterID      int                `json:"fighter_id" db:"fighter_id"`
	FighterName    string             `json:"fighter_name" db:"fighter_name"`
	DojoName       *string            `json:"dojo_name,omitempty" db:"dojo_name"`
	AgeCategory    *string            `json:"age_category,omitempty" db:"age_category"`
	WeightCategory *string            `json:"weight_category,omitempty" db:"weight_category"`
	BeltCategory   *string            `json:"belt_category,omitempty" db:"belt_category"`
	BeltRank       *string            `json:"belt_rank,omitempty" db:"belt_rank"`
	Status         RegistrationStatus `json:"status" db:"status"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}
