package models

import (
	"time"
)

// Participant binds one user to one pool. The composite unique index is the
// authoritative guard for the one-membership-per-user-per-pool invariant.
type Participant struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_participant_user_pool"`
	PoolID   uint      `json:"pool_id" gorm:"not null;uniqueIndex:idx_participant_user_pool"`
	JoinedAt time.Time `json:"joined_at"`

	// Relationships
	User    User    `json:"user,omitempty"`
	Pool    Pool    `json:"pool,omitempty"`
	Guesses []Guess `json:"guesses,omitempty" gorm:"foreignKey:ParticipantID"`
}
