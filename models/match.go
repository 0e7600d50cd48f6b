package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match — один бой в сетке. NextMatchID равен nil только у финала.
type Match struct {
	ID           int         `json:"id" db:"id"`
	BracketID    int         `json:"bracket_id" db:"bracket_id"`
	Round        int         `json:"round" db:"round"`
	RoundLabel   string      `json:"round_label" db:"round_label"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	Fighter1ID   *int        `json:"fighter1_id,omitempty" db:"fighter1_id"`
	Fighter1Name *string     `json:"fighter1_name,omitempty" db:"fighter1_name"`
	Fighter2ID   *int        `json:"fighter2_id,omitempty" db:"fighter2_id"`
	Fighter2Name *string     `json:"fighter2_name,omitempty" db:"fighter2_name"`
	IsBye        bool        `json:"is_bye" db:"is_bye"`
	Status       MatchStatus `json:"status" db:"status"`
	Score1       *int        `json:"score1,omitempty" db:"score1"`
	Score2       *int        `json:"score2,omitempty" db:"score2"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	StartedAt    *time.Time  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	Notes        *string     `json:"notes,omitempty" db:"notes"`
	NextMatchID  *int        `json:"next_match_id,omitempty" db:"next_match_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
