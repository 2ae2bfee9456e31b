package models

import (
	"time"
)

// Guess is a participant's one-time prediction for a game. It is immutable
// after creation; the composite unique index enforces at-most-one guess per
// (participant, game) even under concurrent submissions.
type Guess struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ParticipantID    uint      `json:"participant_id" gorm:"not null;uniqueIndex:idx_guess_participant_game"`
	GameID           uint      `json:"game_id" gorm:"not null;uniqueIndex:idx_guess_participant_game"`
	FirstTeamPoints  int       `json:"first_team_points" gorm:"not null"`
	SecondTeamPoints int       `json:"second_team_points" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`

	// Relationships
	Participant Participant `json:"participant,omitempty"`
	Game        Game        `json:"game,omitempty"`
}
