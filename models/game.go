package models

import (
	"time"
)

// Game is shared, read-mostly reference data: it belongs to no pool and its
// kickoff time never changes once scheduled. Final scores are nil until the
// result is posted, and are posted exactly once.
type Game struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	FirstTeamCode   string    `json:"first_team_code" gorm:"not null"`
	SecondTeamCode  string    `json:"second_team_code" gorm:"not null"`
	KickoffAt       time.Time `json:"kickoff_at" gorm:"not null"`
	FirstTeamScore  *int      `json:"first_team_score"`
	SecondTeamScore *int      `json:"second_team_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// Finished reports whether the final result has been posted.
func (g *Game) Finished() bool {
	return g.FirstTeamScore != nil && g.SecondTeamScore != nil
}
