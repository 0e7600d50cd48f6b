package models

import "time"

type Medal string

const (
	MedalGold   Medal = "GOLD"
	MedalSilver Medal = "SILVER"
	MedalBronze Medal = "BRONZE"
)

// Result — медальная запись, создаётся только калькулятором результатов.
// После записи не изменяется; повторный расчёт для сетки запрещён.
type Result struct {
	ID           int       `json:"id" db:"id"`
	BracketID    int       `json:"bracket_id" db:"bracket_id"`
	EventID      int       `json:"event_id" db:"event_id"`
	FighterID    int       `json:"fighter_id" db:"fighter_id"`
	FighterName  string    `json:"fighter_name" db:"fighter_name"`
	DojoName     *string   `json:"dojo_name,omitempty" db:"dojo_name"`
	CategoryName string    `json:"category_name" db:"category_name"`
	Rank         int       `json:"rank" db:"rank"`
	Medal        Medal     `json:"medal" db:"medal"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
